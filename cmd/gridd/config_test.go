package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/gridd/internal/gridd"
	"github.com/danmuck/gridd/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gridd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadServiceConfigDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
namespace = " NS "
namespace_info_file = "ns.toml"
default_operation_timeout = "90s"
admin_token = "s3cret"
cors_origins = ["https://console.local", " "]
`)
	cfg, err := loadServiceConfig(path)
	require.NoError(t, err)
	require.Equal(t, "NS", cfg.Namespace)
	require.Equal(t, filepath.Join(filepath.Dir(path), "ns.toml"), cfg.NamespaceInfoFile)
	require.Equal(t, 90*time.Second, cfg.DefaultOperationTimeout)
	require.Equal(t, "s3cret", cfg.AdminToken)
	require.Equal(t, []string{"https://console.local"}, cfg.CorsOrigins)
	require.Equal(t, gridd.DefaultServiceConfig().AdminListenAddr, cfg.AdminListenAddr)
}

func TestLoadServiceConfigEmptyAdminDisablesIt(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadServiceConfig(writeConfig(t, `admin_listen_addr = ""`))
	require.NoError(t, err)
	require.Empty(t, cfg.AdminListenAddr)
	require.Equal(t, gridd.DefaultServiceConfig().DefaultOperationTimeout, cfg.DefaultOperationTimeout)
}

func TestLoadServiceConfigRejects(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"bad duration":      `default_operation_timeout = "soon"`,
		"negative duration": `default_operation_timeout = "-1s"`,
		"unknown key":       `listen = ":6000"`,
		"bad syntax":        `namespace = `,
	}
	for label, content := range cases {
		_, err := loadServiceConfig(writeConfig(t, content))
		require.Error(t, err, label)
	}
}

func TestResolvePath(t *testing.T) {
	require.Equal(t, "/etc/gridd/ns.toml", resolvePath("/etc/gridd/gridd.toml", "ns.toml"))
	require.Equal(t, "/abs/ns.toml", resolvePath("/etc/gridd/gridd.toml", "/abs/ns.toml"))
	require.Equal(t, "", resolvePath("/etc/gridd/gridd.toml", " "))
}
