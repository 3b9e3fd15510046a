// Package admin serves the daemon's HTTP inspection endpoints.
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/danmuck/gridd/internal/auth"
	"github.com/danmuck/gridd/internal/handler"
	"github.com/danmuck/gridd/internal/namespace"
	"github.com/danmuck/gridd/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const Version = "0.1.0"

type Config struct {
	Addr        string
	CorsOrigins []string
	// Token, when set, is required as a bearer token on every route but
	// /health.
	Token     string
	Registry  *handler.Registry
	Namespace *namespace.Holder
}

type Server struct {
	addr      string
	registry  *handler.Registry
	namespace *namespace.Holder
	router    *gin.Engine
	token     string
	started   time.Time
}

// BindingInfo describes one registry entry.
type BindingInfo struct {
	Name      string   `json:"name"`
	Versioned bool     `json:"versioned"`
	Tags      []string `json:"tags,omitempty"`
}

// TagInfo describes one published service tag.
type TagInfo struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

func New(cfg Config) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		addr:      cfg.Addr,
		registry:  cfg.Registry,
		namespace: cfg.Namespace,
		router:    r,
		token:     cfg.Token,
		started:   time.Now(),
	}
	if s.registry == nil {
		s.registry = handler.NewRegistry()
	}
	if s.namespace == nil {
		s.namespace = &namespace.Holder{}
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		name, _ := s.namespace.Name()
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(s.started).String(),
			"ns":       name,
			"handlers": s.registry.Len(),
			"version":  Version,
		})
	})

	routes := s.routes()
	routes.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.GET("/namespace", func(c *gin.Context) {
		name, ok := s.namespace.Name()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "namespace not set"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": name})
	})

	routes.GET("/namespace/info", func(c *gin.Context) {
		info, ok := s.namespace.Info()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "namespace not set"})
			return
		}
		c.JSON(http.StatusOK, info)
	})

	routes.GET("/handlers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"handlers": listBindings(s.registry)})
	})

	routes.GET("/tags", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tags": listTags(s.registry.ServiceTags())})
	})
}

func (s *Server) routes() gin.IRoutes {
	if s.token == "" {
		return s.router
	}
	return s.router.Group("/", auth.Middleware(auth.StaticToken{Token: s.token}))
}

// Serve listens on the configured address until ctx is done, then shuts
// the listener down.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("admin.Serve listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "admin listen")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "admin shutdown")
		}
		log.Info().Str("addr", s.addr).Msg("admin.Serve stopped")
		return nil
	}
}

func listBindings(r *handler.Registry) []BindingInfo {
	return lo.Map(r.Bindings(), func(b *handler.Binding, _ int) BindingInfo {
		return BindingInfo{
			Name:      b.Name(),
			Versioned: b.Versioned(),
			Tags:      lo.Map(b.Tags(), func(t handler.ServiceTag, _ int) string { return t.Name }),
		}
	})
}

func listTags(tags []handler.ServiceTag) []TagInfo {
	return lo.Map(tags, func(t handler.ServiceTag, _ int) TagInfo {
		return TagInfo{Name: t.Name, Kind: t.Kind.String(), Value: t.Value()}
	})
}

func normalizeOrigins(origins []string) []string {
	origins = lo.Compact(origins)
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
