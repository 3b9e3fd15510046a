// Package gridd assembles the daemon: handler registry, namespace, reply
// defaults and the admin surface.
package gridd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/danmuck/gridd/internal/admin"
	"github.com/danmuck/gridd/internal/builtin"
	"github.com/danmuck/gridd/internal/config"
	"github.com/danmuck/gridd/internal/handler"
	"github.com/danmuck/gridd/internal/namespace"
	"github.com/danmuck/gridd/internal/reply"
	"github.com/danmuck/gridd/internal/request"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidTimeout = errors.New("gridd: operation timeout must be positive")

// ServiceConfig configures the daemon.
type ServiceConfig struct {
	// Namespace names the served namespace when no namespace file is given.
	Namespace               string
	NamespaceInfoFile       string
	DefaultOperationTimeout time.Duration
	AdminListenAddr         string
	AdminToken              string
	CorsOrigins             []string
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		DefaultOperationTimeout: reply.DefaultOperationTimeout,
		AdminListenAddr:         "127.0.0.1:6010",
	}
}

// Service owns the state shared by every request: the registry, which is
// complete once NewService returns, and the namespace holder.
type Service struct {
	cfg       ServiceConfig
	registry  *handler.Registry
	namespace *namespace.Holder
	settings  reply.Settings
	admin     *admin.Server
}

// NewService validates cfg, loads the namespace file when one is configured
// and registers the builtin handlers. extra runs after the builtins so its
// bindings take precedence.
func NewService(cfg ServiceConfig, extra ...func(*handler.Registry) error) (*Service, error) {
	if cfg.DefaultOperationTimeout <= 0 {
		return nil, ErrInvalidTimeout
	}
	s := &Service{
		cfg:       cfg,
		registry:  handler.NewRegistry(),
		namespace: &namespace.Holder{},
	}
	s.settings = reply.DefaultSettings()
	s.settings.DefaultTimeout = cfg.DefaultOperationTimeout

	if err := s.loadNamespace(); err != nil {
		return nil, err
	}
	if err := builtin.Register(s.registry, s.namespace); err != nil {
		return nil, errors.Wrap(err, "gridd: register builtins")
	}
	for _, fn := range extra {
		if err := fn(s.registry); err != nil {
			return nil, errors.Wrap(err, "gridd: register handlers")
		}
	}
	if strings.TrimSpace(cfg.AdminListenAddr) != "" {
		s.admin = admin.New(admin.Config{
			Addr:        cfg.AdminListenAddr,
			CorsOrigins: cfg.CorsOrigins,
			Token:       cfg.AdminToken,
			Registry:    s.registry,
			Namespace:   s.namespace,
		})
	}
	return s, nil
}

func (s *Service) loadNamespace() error {
	path := strings.TrimSpace(s.cfg.NamespaceInfoFile)
	if path == "" {
		if name := strings.TrimSpace(s.cfg.Namespace); name != "" {
			s.namespace.Set(&namespace.Info{Name: name})
		}
		return nil
	}
	info, err := config.LoadNamespaceInfo(path)
	if err != nil {
		return err
	}
	if want := strings.TrimSpace(s.cfg.Namespace); want != "" && want != info.Name {
		return errors.Newf("gridd: namespace file %s describes %q, configured %q", path, info.Name, want)
	}
	s.namespace.Set(info)
	return nil
}

// ReloadNamespace re-reads the configured namespace file.
func (s *Service) ReloadNamespace() error {
	if strings.TrimSpace(s.cfg.NamespaceInfoFile) == "" {
		return errors.New("gridd: no namespace file configured")
	}
	return s.loadNamespace()
}

func (s *Service) Registry() *handler.Registry { return s.registry }

func (s *Service) Namespace() *namespace.Holder { return s.namespace }

func (s *Service) Admin() *admin.Server { return s.admin }

// NewReply returns a reply context for req sent with the service defaults.
func (s *Service) NewReply(req *request.Context) *reply.Context {
	return reply.New(req, s.settings)
}

// Run blocks until SIGINT or SIGTERM.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve runs the admin surface, when configured, and reloads the namespace
// file on SIGHUP until ctx is done.
func (s *Service) Serve(ctx context.Context) error {
	name, _ := s.namespace.Name()
	log.Info().
		Str("ns", name).
		Int("handlers", s.registry.Len()).
		Dur("timeout", reply.EffectiveTimeout(s.cfg.DefaultOperationTimeout)).
		Str("admin", s.cfg.AdminListenAddr).
		Msg("gridd.Service ready")

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, gctx := errgroup.WithContext(ctx)
	if s.admin != nil {
		g.Go(func() error {
			return s.admin.Serve(gctx)
		})
	}
	g.Go(func() error {
		return s.reloadLoop(gctx, hup)
	})
	err := g.Wait()
	log.Info().Err(err).Msg("gridd.Service stopped")
	return err
}

// reloadLoop re-reads the namespace file on every tick of reload. A failed
// reload keeps the previous snapshot.
func (s *Service) reloadLoop(ctx context.Context, reload <-chan os.Signal) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reload:
			if strings.TrimSpace(s.cfg.NamespaceInfoFile) == "" {
				continue
			}
			if err := s.ReloadNamespace(); err != nil {
				log.Warn().Err(err).Str("path", s.cfg.NamespaceInfoFile).Msg("gridd.Service namespace reload failed")
				continue
			}
			log.Info().Str("path", s.cfg.NamespaceInfoFile).Msg("gridd.Service namespace reloaded")
		}
	}
}
