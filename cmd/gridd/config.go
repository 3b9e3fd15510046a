package main

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/danmuck/gridd/internal/gridd"
	"github.com/samber/lo"
)

// gridd.toml key mapping to service settings.
type fileConfig struct {
	Namespace               string   `toml:"namespace"`
	NamespaceInfoFile       string   `toml:"namespace_info_file"`
	DefaultOperationTimeout string   `toml:"default_operation_timeout"`
	AdminListenAddr         string   `toml:"admin_listen_addr"`
	AdminToken              string   `toml:"admin_token"`
	CorsOrigins             []string `toml:"cors_origins"`
}

// loadServiceConfig overlays the keys present in path onto the defaults.
func loadServiceConfig(path string) (gridd.ServiceConfig, error) {
	cfg := gridd.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return gridd.ServiceConfig{}, errors.Wrap(err, "load gridd config")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return gridd.ServiceConfig{}, errors.Newf("load gridd config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("namespace") {
		cfg.Namespace = strings.TrimSpace(raw.Namespace)
	}
	if meta.IsDefined("namespace_info_file") {
		cfg.NamespaceInfoFile = resolvePath(path, raw.NamespaceInfoFile)
	}
	if meta.IsDefined("default_operation_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DefaultOperationTimeout))
		if err != nil {
			return gridd.ServiceConfig{}, errors.Wrap(err, "load gridd config: default_operation_timeout")
		}
		if d <= 0 {
			return gridd.ServiceConfig{}, errors.Newf("load gridd config: default_operation_timeout must be positive, got %s", d)
		}
		cfg.DefaultOperationTimeout = d
	}
	if meta.IsDefined("admin_listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminListenAddr)
	}
	if meta.IsDefined("admin_token") {
		cfg.AdminToken = strings.TrimSpace(raw.AdminToken)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = lo.Compact(lo.Map(raw.CorsOrigins, func(o string, _ int) string {
			return strings.TrimSpace(o)
		}))
	}
	return cfg, nil
}

// resolvePath makes p relative to the directory of the config file.
func resolvePath(configPath, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
