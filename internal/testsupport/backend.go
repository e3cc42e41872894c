package testsupport

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"weav/internal/api"
	"weav/internal/backend"
)

const cdnBase = "https://cdn.weav.test"

// FakeBackend is an in-memory WEAV API served over httptest. Jobs advance
// through a scripted status sequence, one step per status poll, and apply
// their effect on the session when they first report success.
type FakeBackend struct {
	t      testing.TB
	server *httptest.Server

	mu          sync.Mutex
	sessions    map[int64]*api.Session
	order       []int64
	documents   map[int64][]api.DocumentItem
	jobs        map[string]*fakeJob
	script      []api.JobState
	jobError    string
	failures    map[string]failure
	calls       map[string]int
	imageReqs   []api.ImageRequest
	regenReqs   []api.ImageRegenerateRequest
	chatReqs    []api.ChatCompleteRequest
	cancelled   []string
	nextSession int64
	nextMessage int64
	nextImage   int64
	nextDoc     int64
	nextTask    int
	nextUpload  int
}

type failure struct {
	status int
	body   string
}

type fakeJob struct {
	taskID   string
	jobID    int64
	sequence []api.JobState
	step     int
	errMsg   string
	applied  bool
	apply    func(*FakeBackend)
}

// NewFakeBackend starts a fake backend and registers its shutdown.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeBackend{
		t:         t,
		sessions:  make(map[int64]*api.Session),
		documents: make(map[int64][]api.DocumentItem),
		jobs:      make(map[string]*fakeJob),
		script:    []api.JobState{api.JobSuccess},
		failures:  make(map[string]failure),
		calls:     make(map[string]int),
	}
	f.server = httptest.NewServer(f.router())
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the server base URL.
func (f *FakeBackend) URL() string {
	return f.server.URL
}

// Client returns a backend client pointed at the fake.
func (f *FakeBackend) Client() *backend.Client {
	client, err := backend.New(f.server.URL)
	if err != nil {
		f.t.Fatalf("backend.New: %v", err)
	}
	return client
}

// ScriptJobs sets the status sequence for jobs created from now on. The last
// state repeats once the sequence is exhausted.
func (f *FakeBackend) ScriptJobs(states ...api.JobState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = slices.Clone(states)
}

// FailJobsWith sets the error text reported by jobs that end in failure.
func (f *FakeBackend) FailJobsWith(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobError = message
}

// Fail makes every request to route ("POST /api/v1/chat/image/") answer with
// status and body until Recover is called.
func (f *FakeBackend) Fail(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = failure{status: status, body: body}
}

// Recover clears an injected failure.
func (f *FakeBackend) Recover(route string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, route)
}

// Calls returns how many requests hit route.
func (f *FakeBackend) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

// Cancelled returns the task ids the client asked to cancel.
func (f *FakeBackend) Cancelled() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.cancelled)
}

// ImageRequests returns every image generation body received.
func (f *FakeBackend) ImageRequests() []api.ImageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.imageReqs)
}

// ImageRegenerateRequests returns every image regenerate body received.
func (f *FakeBackend) ImageRegenerateRequests() []api.ImageRegenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.regenReqs)
}

// ChatRequests returns every chat completion body received.
func (f *FakeBackend) ChatRequests() []api.ChatCompleteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.chatReqs)
}

// SeedSession stores a session and returns it with its assigned id.
func (f *FakeBackend) SeedSession(session api.Session) api.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSession++
	session.ID = f.nextSession
	if session.CreatedAt == "" {
		session.CreatedAt = now()
	}
	session.UpdatedAt = session.CreatedAt
	f.sessions[session.ID] = &session
	f.order = append([]int64{session.ID}, f.order...)
	return cloneSession(&session)
}

// Session returns the stored state of a session.
func (f *FakeBackend) Session(id int64) (api.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return api.Session{}, false
	}
	return cloneSession(session), true
}

// SeedDocument attaches a document to a session.
func (f *FakeBackend) SeedDocument(sessionID int64, name string, status api.DocumentStatus) api.DocumentItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextDoc++
	doc := api.DocumentItem{
		ID:           f.nextDoc,
		OriginalName: name,
		Status:       status,
		FileURL:      fmt.Sprintf("%s/docs/%d.pdf", cdnBase, f.nextDoc),
		CreatedAt:    now(),
	}
	f.documents[sessionID] = append(f.documents[sessionID], doc)
	return doc
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func cloneSession(s *api.Session) api.Session {
	out := *s
	out.Messages = slices.Clone(s.Messages)
	out.ImageRecords = slices.Clone(s.ImageRecords)
	out.ReferenceImageURLs = slices.Clone(s.ReferenceImageURLs)
	return out
}

func (f *FakeBackend) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), f.track)

	v1 := router.Group("/api/v1")
	v1.GET("/sessions/", f.listSessions)
	v1.POST("/sessions/", f.createSession)
	v1.GET("/sessions/:id/", f.getSession)
	v1.PATCH("/sessions/:id/", f.patchSession)
	v1.DELETE("/sessions/:id/", f.deleteSession)
	v1.GET("/sessions/:id/documents/", f.listDocuments)
	v1.DELETE("/sessions/:id/documents/:doc/", f.deleteDocument)
	v1.POST("/sessions/:id/upload/", f.uploadDocument)

	v1.POST("/chat/complete/", f.completeChat)
	v1.POST("/chat/regenerate/", f.regenerateChat)
	v1.POST("/chat/image/", f.generateImage)
	v1.POST("/chat/image/regenerate/", f.regenerateImage)
	v1.POST("/chat/image/upload-reference/", f.uploadReference)
	v1.POST("/chat/image/upload-attachments/", f.uploadAttachments)
	v1.GET("/chat/job/:task/", f.jobStatus)
	v1.POST("/chat/job/:task/cancel/", f.cancelJob)
	return router
}

// track counts requests per route and serves injected failures.
func (f *FakeBackend) track(c *gin.Context) {
	route := c.Request.Method + " " + c.FullPath()
	f.mu.Lock()
	f.calls[route]++
	fail, ok := f.failures[route]
	f.mu.Unlock()
	if ok {
		c.Data(fail.status, "application/json", []byte(fail.body))
		c.Abort()
		return
	}
	c.Next()
}

func (f *FakeBackend) sessionFromParam(c *gin.Context) (*api.Session, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid session id"})
		return nil, false
	}
	session, ok := f.sessions[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return nil, false
	}
	return session, true
}

func (f *FakeBackend) listSessions(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.Session, 0, len(f.order))
	for _, id := range f.order {
		summary := cloneSession(f.sessions[id])
		summary.Messages = nil
		summary.ImageRecords = nil
		out = append(out, summary)
	}
	c.JSON(http.StatusOK, out)
}

func (f *FakeBackend) createSession(c *gin.Context) {
	var req api.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if _, ok := api.ParseSessionKind(string(req.Kind)); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid kind"})
		return
	}
	if req.Title == "" {
		req.Title = "Untitled"
	}
	created := f.SeedSession(api.Session{Kind: req.Kind, Title: req.Title})
	c.JSON(http.StatusCreated, created)
}

func (f *FakeBackend) getSession(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessionFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cloneSession(session))
}

func (f *FakeBackend) patchSession(c *gin.Context) {
	var req api.PatchSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessionFromParam(c)
	if !ok {
		return
	}
	session.Title = req.Title
	session.UpdatedAt = now()
	c.JSON(http.StatusOK, cloneSession(session))
}

func (f *FakeBackend) deleteSession(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessionFromParam(c)
	if !ok {
		return
	}
	delete(f.sessions, session.ID)
	delete(f.documents, session.ID)
	f.order = slices.DeleteFunc(f.order, func(id int64) bool { return id == session.ID })
	c.Status(http.StatusNoContent)
}

func (f *FakeBackend) listDocuments(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessionFromParam(c)
	if !ok {
		return
	}
	docs := f.documents[session.ID]
	if docs == nil {
		docs = []api.DocumentItem{}
	}
	c.JSON(http.StatusOK, docs)
}

func (f *FakeBackend) deleteDocument(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessionFromParam(c)
	if !ok {
		return
	}
	docID, _ := strconv.ParseInt(c.Param("doc"), 10, 64)
	before := len(f.documents[session.ID])
	f.documents[session.ID] = slices.DeleteFunc(f.documents[session.ID], func(d api.DocumentItem) bool { return d.ID == docID })
	if len(f.documents[session.ID]) == before {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.Status(http.StatusNoContent)
}

func (f *FakeBackend) uploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	f.mu.Lock()
	session, ok := f.sessionFromParam(c)
	f.mu.Unlock()
	if !ok {
		return
	}
	doc := f.SeedDocument(session.ID, file.Filename, api.DocumentPending)
	c.JSON(http.StatusCreated, api.UploadedDocument{
		DocumentID:   doc.ID,
		OriginalName: doc.OriginalName,
		Status:       doc.Status,
		FileURL:      doc.FileURL,
	})
}
