package http

import (
	stdhttp "net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"namesmith/app/internal/topic"
)

// Options configures the HTTP server wiring.
type Options struct {
	TopicService   topic.Service
	Database       *gorm.DB
	Logger         *logrus.Logger
	SentryHub      *sentry.Hub
	AllowedOrigins []string
}

// Server wires the HTTP transport layer via Huma over a standard mux, with
// CORS applied around the whole router.
type Server struct {
	api     huma.API
	mux     *stdhttp.ServeMux
	handler stdhttp.Handler
	topics  topic.Service
	logger  *logrus.Logger
	sentry  *sentry.Hub
	db      *gorm.DB
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.TopicService == nil {
		return nil, eris.New("topic service is required")
	}
	if opts.Database == nil {
		return nil, eris.New("database is required")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("Namesmith", "1.0.0")

	api := humago.New(mux, config)

	srv := &Server{
		api:    api,
		mux:    mux,
		topics: opts.TopicService,
		logger: opts.Logger,
		sentry: opts.SentryHub,
		db:     opts.Database,
	}

	srv.handler = newCORSHandler(opts.AllowedOrigins, mux)

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.handler
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.registerHomeRoute()
	s.registerItemsRoute()
	s.registerTopicItemsRoute()
	s.registerHealthRoute()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.handler.ServeHTTP(w, r)
}
