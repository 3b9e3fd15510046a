package gridd

import (
	"context"
	"net"
	"os"
	"syscall"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/gridd/internal/config"
	"github.com/danmuck/gridd/internal/handler"
	"github.com/danmuck/gridd/internal/protocol"
	"github.com/danmuck/gridd/internal/reply"
	"github.com/danmuck/gridd/internal/request"
	"github.com/danmuck/gridd/internal/testutil/testlog"
	"github.com/stretchr/testify/require"
)

func testConfig() ServiceConfig {
	cfg := DefaultServiceConfig()
	cfg.AdminListenAddr = ""
	return cfg
}

func TestNewServiceRegistersBuiltins(t *testing.T) {
	testlog.Start(t)
	s, err := NewService(testConfig())
	require.NoError(t, err)
	require.Equal(t, 3, s.Registry().Len())
	require.Nil(t, s.Admin())
	_, ok := s.Namespace().Name()
	require.False(t, ok)
}

func TestNewServiceRejectsBadTimeout(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig()
	cfg.DefaultOperationTimeout = 0
	_, err := NewService(cfg)
	require.ErrorIs(t, err, ErrInvalidTimeout)
}

func TestNewServiceLoadsNamespaceFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "ns.toml")
	require.NoError(t, config.WriteNamespaceTemplate(path, false))

	cfg := testConfig()
	cfg.NamespaceInfoFile = path
	s, err := NewService(cfg)
	require.NoError(t, err)
	name, ok := s.Namespace().Name()
	require.True(t, ok)
	require.Equal(t, "NS", name)

	require.NoError(t, os.WriteFile(path, []byte("name = \"NS\"\nchunksize = 42\n"), 0o600))
	require.NoError(t, s.ReloadNamespace())
	info, _ := s.Namespace().Info()
	require.Equal(t, int64(42), info.Chunksize)

	cfg.Namespace = "OTHER"
	_, err = NewService(cfg)
	require.Error(t, err)
}

func TestNewServiceNamespaceNameOnly(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig()
	cfg.Namespace = "NS"
	s, err := NewService(cfg)
	require.NoError(t, err)
	name, ok := s.Namespace().Name()
	require.True(t, ok)
	require.Equal(t, "NS", name)
	require.Error(t, s.ReloadNamespace())
}

func TestServiceRepliesThroughExtraHandler(t *testing.T) {
	testlog.Start(t)
	s, err := NewService(testConfig(), func(r *handler.Registry) error {
		return r.Add("echo", handler.MatchName("REQ_ECHO"), func(rc *reply.Context) error {
			rc.SetMessage(200, "OK")
			rc.SetBody(reply.CopyBody([]byte(rc.Request().RequestName())))
			return rc.Reply()
		})
	})
	require.NoError(t, err)

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	req := request.New(server, nil).WithRequest(protocol.NewRequest(21, "REQ_ECHO"))
	b, ok := s.Registry().Lookup(req.Request)
	require.True(t, ok)

	errc := make(chan error, 1)
	go func() { errc <- b.Invoke(s.NewReply(req)) }()
	env, err := protocol.DefaultCodec().Read(client)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	require.Equal(t, uint64(21), env.ID)
	require.Equal(t, "REQ_ECHO", string(env.Body))
}

func TestServeStopsOnCancel(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig()
	cfg.AdminListenAddr = "127.0.0.1:0"
	s, err := NewService(cfg)
	require.NoError(t, err)
	require.NotNil(t, s.Admin())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestReloadLoopKeepsSnapshotOnBadFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "ns.toml")
	require.NoError(t, config.WriteNamespaceTemplate(path, false))
	cfg := testConfig()
	cfg.NamespaceInfoFile = path
	s, err := NewService(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	reload := make(chan os.Signal)
	done := make(chan error, 1)
	go func() { done <- s.reloadLoop(ctx, reload) }()

	// An unbuffered send returns once the loop took the signal, so a second
	// send also waits for the first reload to finish.
	require.NoError(t, os.WriteFile(path, []byte("name = \"NS\"\nchunksize = 7\n"), 0o600))
	reload <- syscall.SIGHUP
	reload <- syscall.SIGHUP
	require.NoError(t, os.WriteFile(path, []byte("chunksize = -1\n"), 0o600))
	reload <- syscall.SIGHUP
	reload <- syscall.SIGHUP
	cancel()
	require.NoError(t, <-done)

	info, ok := s.Namespace().Info()
	require.True(t, ok)
	require.Equal(t, int64(7), info.Chunksize)
}
