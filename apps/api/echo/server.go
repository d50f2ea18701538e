package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/admission"
	"github.com/brightloop/brightloop/core/blob"
	"github.com/brightloop/brightloop/core/document"
	"github.com/brightloop/brightloop/core/rollstatement"
	"github.com/brightloop/brightloop/core/school"
	"github.com/brightloop/brightloop/core/student"
	"github.com/brightloop/brightloop/core/user"
	"github.com/brightloop/brightloop/core/website"
)

type (
	ServerDeps struct {
		Conf         *core.Config
		Logger       core.Logger
		Validate     *validator.Validate
		Translator   ut.Translator
		UserSvc      user.Service
		SchoolSvc    school.Service
		StudentSvc   student.Service
		AdmissionSvc admission.Service
		RollStmtSvc  rollstatement.Service
		Documents    *document.Renderer
		Sites        *website.Renderer
		Store        blob.Store
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		metrics  *metrics
		jwtConf  middleware.JWTConfig
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		metrics:  newMetrics(),
		jwtConf:  newJWTConfig(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.metrics.middleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/metrics", echo.WrapHandler(s.metrics.handler()))
	s.app.GET("/media/*", s.serveMedia)
	registerSiteAPI(s.app, s.deps)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.jwtConf)
	authed := []echo.MiddlewareFunc{jwt, sessionMiddleware(s.deps.UserSvc), readOnlyDemoMiddleware}

	registerAuthAPI(v1, s.deps, s.jwtConf, authed)
	registerToolsAPI(v1, s.deps)
	registerAdminAPI(v1, s.deps, authed)
	registerSchoolAPI(v1, s.deps, authed)
	registerStudentAPI(v1, s.deps, authed)
	registerAdmissionAPI(v1, s.deps, authed)
	registerRollStatementAPI(v1, s.deps, authed)
}

// Start listens on the configured address until the server is shut down.
// Listening errors are sent on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }

func (s *Server) Close() error { return s.app.Close() }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
