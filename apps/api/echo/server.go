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

	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/contact"
	"github.com/trezcool/sayansi/core/enroll"
	"github.com/trezcool/sayansi/core/registration"
	"github.com/trezcool/sayansi/core/user"
)

type (
	// ServerDeps regroups all the Server dependencies.
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    user.Service
		ContactSvc contact.Service
		RegSvc     registration.Service
		EnrollSvc  enroll.Service
		SMSSvc     core.SMSService
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwt      echo.MiddlewareFunc
		errs     chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.CORS())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.jwt = middleware.JWTWithConfig(newJWTConfig(conf))

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	registerContactAPI(v1, s.jwt, s.deps.ContactSvc, s.deps.Validate)
	registerRegistrationAPI(v1, s.jwt, s.deps.RegSvc, s.deps.Validate)
	registerEnrollAPI(v1, s.jwt, s.deps.EnrollSvc, s.deps.Validate, conf)
	registerUserAPI(v1, s.jwt, s.deps.UserSvc, s.deps.Validate, conf)
	registerAdminAPI(v1, s.jwt, adminDeps{
		conf:       conf,
		contactSvc: s.deps.ContactSvc,
		regSvc:     s.deps.RegSvc,
		enrollSvc:  s.deps.EnrollSvc,
		smsSvc:     s.deps.SMSSvc,
		validate:   s.deps.Validate,
	})
}

func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errs }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown triggers a graceful shutdown from within the app.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
