package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/api"
	"github.com/adfharrison1/docgate/pkg/metrics"
)

// Server holds the router and the middleware chain around it.
type Server struct {
	router  *mux.Router
	handler http.Handler
	logger  *zap.Logger
}

// Config collects what the server needs besides the gateway.
type Config struct {
	Logger           *zap.Logger
	Metrics          *metrics.Metrics
	RequestTimeout   time.Duration
	MaxBodySize      int64
	CORSAllowOrigins []string
	// Status reports the backend connection state on /health.
	Status api.StatusFunc
}

// NewServer creates a new instance of Server.
func NewServer(gateway api.Gateway, cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		router: mux.NewRouter(),
		logger: log,
	}

	handler := api.NewHandler(gateway,
		api.WithStatus(cfg.Status),
		api.WithMaxBodySize(cfg.MaxBodySize),
	)
	handler.RegisterRoutes(s.router)
	if cfg.Metrics != nil {
		s.router.Handle("/metrics", cfg.Metrics.Handler()).Methods("GET")
	}

	s.router.Use(api.RequestLogger(log))
	if cfg.Metrics != nil {
		s.router.Use(api.Instrument(cfg.Metrics))
	}
	s.router.Use(api.Timeout(cfg.RequestTimeout))

	// Customize NotFoundHandler to log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Warn("No route found", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		api.WriteJSONError(w, http.StatusNotFound, "no route for "+r.URL.Path)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Warn("Method not allowed", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		api.WriteJSONError(w, http.StatusMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path)
	})

	s.handler = api.CORS(cfg.CORSAllowOrigins)(s.router)
	return s
}

// Router exposes the full handler chain.
func (s *Server) Router() http.Handler {
	return s.handler
}
