package main

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/danmuck/gridd/internal/gridd"
	"github.com/samber/lo"
)

// envConfig lists the settings that GRIDD_* variables override. Unset
// variables leave the file value alone.
type envConfig struct {
	Namespace               string        `env:"GRIDD_NAMESPACE"`
	NamespaceInfoFile       string        `env:"GRIDD_NAMESPACE_INFO_FILE"`
	DefaultOperationTimeout time.Duration `env:"GRIDD_DEFAULT_OPERATION_TIMEOUT"`
	AdminListenAddr         string        `env:"GRIDD_ADMIN_LISTEN_ADDR"`
	AdminToken              string        `env:"GRIDD_ADMIN_TOKEN"`
	CorsOrigins             []string      `env:"GRIDD_CORS_ORIGINS" envSeparator:","`
}

func applyEnv(cfg gridd.ServiceConfig) (gridd.ServiceConfig, error) {
	overlay := envConfig{
		Namespace:               cfg.Namespace,
		NamespaceInfoFile:       cfg.NamespaceInfoFile,
		DefaultOperationTimeout: cfg.DefaultOperationTimeout,
		AdminListenAddr:         cfg.AdminListenAddr,
		AdminToken:              cfg.AdminToken,
		CorsOrigins:             cfg.CorsOrigins,
	}
	if err := env.Parse(&overlay); err != nil {
		return gridd.ServiceConfig{}, errors.Wrap(err, "failed to parse environment")
	}
	if overlay.DefaultOperationTimeout <= 0 {
		return gridd.ServiceConfig{}, errors.Newf("GRIDD_DEFAULT_OPERATION_TIMEOUT must be positive, got %s", overlay.DefaultOperationTimeout)
	}
	cfg.Namespace = strings.TrimSpace(overlay.Namespace)
	cfg.NamespaceInfoFile = strings.TrimSpace(overlay.NamespaceInfoFile)
	cfg.DefaultOperationTimeout = overlay.DefaultOperationTimeout
	cfg.AdminListenAddr = strings.TrimSpace(overlay.AdminListenAddr)
	cfg.AdminToken = strings.TrimSpace(overlay.AdminToken)
	cfg.CorsOrigins = lo.Compact(lo.Map(overlay.CorsOrigins, func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
	return cfg, nil
}
