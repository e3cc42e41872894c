package testsupport

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"weav/internal/api"
)

// newJobLocked registers a job that runs apply on its first success.
func (f *FakeBackend) newJobLocked(apply func(*FakeBackend)) *fakeJob {
	f.nextTask++
	job := &fakeJob{
		taskID:   fmt.Sprintf("task-%04d", f.nextTask),
		jobID:    int64(f.nextTask),
		sequence: slices.Clone(f.script),
		errMsg:   f.jobError,
		apply:    apply,
	}
	if len(job.sequence) == 0 {
		job.sequence = []api.JobState{api.JobSuccess}
	}
	f.jobs[job.taskID] = job
	return job
}

func (f *FakeBackend) appendMessageLocked(sessionID int64, role api.Role, content string) api.Message {
	f.nextMessage++
	msg := api.Message{ID: f.nextMessage, Role: role, Content: content, CreatedAt: now()}
	if session, ok := f.sessions[sessionID]; ok {
		session.Messages = append(session.Messages, msg)
		session.UpdatedAt = msg.CreatedAt
	}
	return msg
}

func (f *FakeBackend) appendImageLocked(sessionID int64, prompt, model string, meta *api.ImageMetadata) {
	f.nextImage++
	record := api.ImageRecord{
		ID:        f.nextImage,
		Prompt:    prompt,
		ImageURL:  fmt.Sprintf("%s/images/%d.png", cdnBase, f.nextImage),
		Model:     model,
		Metadata:  meta,
		CreatedAt: now(),
	}
	if session, ok := f.sessions[sessionID]; ok {
		session.ImageRecords = append(session.ImageRecords, record)
		session.UpdatedAt = record.CreatedAt
	}
}

func (f *FakeBackend) completeChat(c *gin.Context) {
	var req api.ChatCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[req.SessionID]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "session not found"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "prompt is required"})
		return
	}
	f.chatReqs = append(f.chatReqs, req)
	userMsg := f.appendMessageLocked(req.SessionID, api.RoleUser, req.Prompt)
	job := f.newJobLocked(func(f *FakeBackend) {
		f.appendMessageLocked(req.SessionID, api.RoleAssistant, fmt.Sprintf("[%s] reply to %q", req.Model, req.Prompt))
	})
	c.JSON(http.StatusOK, api.SubmitResponse{TaskID: job.taskID, JobID: job.jobID, MessageID: userMsg.ID})
}

func (f *FakeBackend) regenerateChat(c *gin.Context) {
	var req api.ChatRegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[req.SessionID]
	if !ok || !session.CanRegenerateChat() {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "nothing to regenerate"})
		return
	}
	job := f.newJobLocked(func(f *FakeBackend) {
		s := f.sessions[req.SessionID]
		if s == nil || len(s.Messages) == 0 {
			return
		}
		last := &s.Messages[len(s.Messages)-1]
		last.Content = fmt.Sprintf("[%s] regenerated", req.Model)
	})
	c.JSON(http.StatusOK, api.SubmitResponse{TaskID: job.taskID, JobID: job.jobID})
}

func (f *FakeBackend) generateImage(c *gin.Context) {
	var req api.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[req.SessionID]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "session not found"})
		return
	}
	f.imageReqs = append(f.imageReqs, req)
	meta := &api.ImageMetadata{InputAttachmentURLs: slices.Clone(req.ImageURLs)}
	switch {
	case len(req.ReferenceImageURLs) > 0:
		meta.InputReferenceURLs = slices.Clone(req.ReferenceImageURLs)
	case req.ReferenceImageURL != "":
		meta.InputReferenceURLs = []string{req.ReferenceImageURL}
	}
	job := f.newJobLocked(func(f *FakeBackend) {
		for range max(req.NumImages, 1) {
			f.appendImageLocked(req.SessionID, req.Prompt, req.Model, meta)
		}
	})
	c.JSON(http.StatusOK, api.SubmitResponse{TaskID: job.taskID, JobID: job.jobID})
}

func (f *FakeBackend) regenerateImage(c *gin.Context) {
	var req api.ImageRegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[req.SessionID]
	if !ok || len(session.ImageRecords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "nothing to regenerate"})
		return
	}
	f.regenReqs = append(f.regenReqs, req)
	last := session.ImageRecords[len(session.ImageRecords)-1]
	prompt := req.Prompt
	if prompt == "" {
		prompt = last.Prompt
	}
	model := req.Model
	if model == "" {
		model = last.Model
	}
	job := f.newJobLocked(func(f *FakeBackend) {
		f.appendImageLocked(req.SessionID, prompt, model, last.Metadata)
	})
	c.JSON(http.StatusOK, api.SubmitResponse{TaskID: job.taskID, JobID: job.jobID})
}

func (f *FakeBackend) jobStatus(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[c.Param("task")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "unknown task"})
		return
	}
	state := job.sequence[min(job.step, len(job.sequence)-1)]
	job.step++

	status := api.JobStatus{TaskID: job.taskID, JobID: job.jobID, Status: state}
	switch state {
	case api.JobSuccess:
		if !job.applied {
			job.applied = true
			job.apply(f)
		}
	case api.JobFailure:
		status.Error = job.errMsg
	}
	c.JSON(http.StatusOK, status)
}

func (f *FakeBackend) cancelJob(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	taskID := c.Param("task")
	if _, ok := f.jobs[taskID]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "unknown task"})
		return
	}
	f.cancelled = append(f.cancelled, taskID)
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (f *FakeBackend) uploadReference(c *gin.Context) {
	if _, err := c.FormFile("image"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "image is required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUpload++
	c.JSON(http.StatusOK, api.ReferenceUploadResponse{URL: fmt.Sprintf("%s/uploads/ref-%d.png", cdnBase, f.nextUpload)})
}

func (f *FakeBackend) uploadAttachments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "images are required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	urls := make([]string, 0, len(form.File["images"]))
	for range form.File["images"] {
		f.nextUpload++
		urls = append(urls, fmt.Sprintf("%s/uploads/att-%d.png", cdnBase, f.nextUpload))
	}
	c.JSON(http.StatusOK, api.AttachmentUploadResponse{URLs: urls})
}
