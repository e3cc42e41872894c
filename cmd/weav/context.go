package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"weav/internal/api"
	"weav/internal/attachments"
	"weav/internal/backend"
	"weav/internal/config"
	"weav/internal/documents"
	"weav/internal/generation"
	"weav/internal/localstate"
	"weav/internal/logging"
	"weav/internal/prefs"
	"weav/internal/services"
	"weav/internal/sessions"
	"weav/internal/toast"
)

type commandContext struct {
	configFlag  *string
	sessionFlag *int64
	jsonFlag    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	appOnce sync.Once
	app     *app
	appErr  error
}

// app is the set of components one invocation works with.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	state     *localstate.Store
	lock      *localstate.SendLock
	client    *backend.Client
	toast     *toast.Toast
	prefs     *prefs.Store
	sessions  *sessions.Store
	pipeline  *attachments.Pipeline
	documents *documents.Service
	engine    *generation.Engine
}

func newCommandContext(configFlag *string, sessionFlag *int64, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		sessionFlag: sessionFlag,
		jsonFlag:    jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// ensureApp wires every component on first use. Toasts are echoed to the
// command's stderr.
func (c *commandContext) ensureApp(cmd *cobra.Command) (*app, error) {
	c.appOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.appErr = err
			return
		}
		c.app, c.appErr = buildApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	})
	return c.app, c.appErr
}

func buildApp(ctx context.Context, cfg *config.Config, notices io.Writer) (*app, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	state, err := localstate.Open(cfg.StatePath(), logger)
	if err != nil {
		return nil, err
	}
	client, err := backend.NewFromConfig(cfg, logger)
	if err != nil {
		_ = state.Close()
		return nil, err
	}

	colorize := shouldColorize(notices)
	notifier := toast.New(
		toast.WithDuration(cfg.ToastDuration()),
		toast.WithListener(func(message string) {
			fmt.Fprintln(notices, renderNotice(message, colorize))
		}),
	)

	preferences := prefs.New(
		prefs.WithDefaults(cfg.Models.DefaultChat, cfg.Models.DefaultImage),
		prefs.WithModelStore(state),
		prefs.WithLogger(logger),
	)
	preferences.Load(ctx)

	pipeline := attachments.NewPipeline(client, preferences, notifier,
		attachments.WithLimits(attachments.Limits{MaxBytes: cfg.Uploads.MaxBytes, AllowedTypes: cfg.Uploads.AllowedTypes}),
		attachments.WithLogger(logger),
	)
	store := sessions.New(client,
		sessions.WithMarker(state),
		sessions.WithLogger(logger),
		sessions.OnDelete(pipeline.ForgetSession),
	)
	docs := documents.NewService(client, preferences, notifier, documents.Limits{
		MaxBytes:     cfg.Uploads.MaxDocumentBytes,
		AllowedTypes: cfg.Uploads.DocumentTypes,
	}, logger)
	engine := generation.New(client, store, preferences, generation.Options{
		PollInterval:    cfg.PollInterval(),
		MaxPollAttempts: cfg.Generation.PollMaxAttempts,
		CancelTimeout:   cfg.CancelTimeout(),
		Notifier:        notifier,
		Logger:          logger,
		PromptLimits: generation.PromptLimits{
			Chat:   cfg.Generation.MaxChatPromptChars,
			Image:  cfg.Generation.MaxImagePromptChars,
			Models: cfg.Generation.PromptLimits,
		},
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		state:     state,
		lock:      localstate.NewSendLock(cfg.LockPath()),
		client:    client,
		toast:     notifier,
		prefs:     preferences,
		sessions:  store,
		pipeline:  pipeline,
		documents: docs,
		engine:    engine,
	}, nil
}

// close waits for background cancel requests and releases the state database.
func (c *commandContext) close() error {
	if c.app == nil {
		return nil
	}
	c.app.engine.Wait()
	return c.app.state.Close()
}

// withSession initializes the session store and resolves the session a
// command acts on: the --session flag when set, otherwise the restored
// current session.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(*app, *api.Session) error) error {
	a, err := c.ensureApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := a.sessions.Init(ctx); err != nil {
		return err
	}
	if c.sessionFlag != nil && *c.sessionFlag > 0 {
		id := *c.sessionFlag
		if current, ok := a.sessions.CurrentID(); !ok || current != id {
			if _, err := a.sessions.Select(ctx, &id); err != nil {
				return err
			}
		}
	}
	session := a.sessions.Current()
	if session == nil {
		return services.Wrap(services.ErrValidation, "cli", "session",
			"no session selected; run `weav sessions select <id>` or pass --session", nil)
	}
	return fn(a, session)
}

// withApp is withSession for commands that do not need a selected session.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(*app) error) error {
	a, err := c.ensureApp(cmd)
	if err != nil {
		return err
	}
	return fn(a)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

const retryHint = "This looks temporary; run the command again in a moment."

// friendlyError drops the component prefix from errors meant for the user
// and adds a retry hint when the failure looks temporary.
func friendlyError(err error) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		message = backend.Message(err)
	}
	if services.Retryable(err) {
		return fmt.Errorf("%s\n%s", message, retryHint)
	}
	return errors.New(message)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
