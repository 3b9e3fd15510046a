package wire

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/danmuck/gridd/internal/testutil/testlog"
	"github.com/danmuck/gridd/internal/testutil/tlstest"
	"github.com/stretchr/testify/require"
)

func TestSendWritesWholeBuffer(t *testing.T) {
	testlog.Start(t)
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 5)
		_, _ = io.ReadFull(client, buf)
		got <- buf
	}()

	n, err := Send(server, time.Second, []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []byte("hello"), <-got)
}

func TestSendReportsPartialWriteOnTimeout(t *testing.T) {
	testlog.Start(t)
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		buf := make([]byte, 4)
		_, _ = io.ReadFull(client, buf)
	}()

	n, err := DeadlineSender{}.Send(server, 50*time.Millisecond, []byte("0123456789"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTimeout), "expected timeout, got %v", err)
	require.Equal(t, 4, n)
}

func TestSendOnClosedConn(t *testing.T) {
	testlog.Start(t)
	server, client := net.Pipe()
	_ = client.Close()
	_ = server.Close()

	n, err := Send(server, time.Second, []byte("x"))
	require.Error(t, err)
	require.Zero(t, n)
}

func TestSendRejectsBadInput(t *testing.T) {
	testlog.Start(t)
	_, err := Send(nil, time.Second, []byte("x"))
	require.ErrorIs(t, err, ErrNilConn)

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	_, err = Send(server, 0, []byte("x"))
	require.ErrorIs(t, err, ErrInvalidTimeout)

	n, err := Send(server, time.Second, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSenderFuncAdapts(t *testing.T) {
	testlog.Start(t)
	var s Sender = SenderFunc(func(conn net.Conn, timeout time.Duration, data []byte) (int, error) {
		return len(data) - 1, nil
	})
	n, err := s.Send(nil, time.Second, []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestSendOverTLS(t *testing.T) {
	testlog.Start(t)
	server, client := tlstest.Pair(t)

	payload := make([]byte, 1<<20)
	for i := range payload {
		payload[i] = byte(i)
	}
	got := make(chan []byte, 1)
	go func() {
		buf := make([]byte, len(payload))
		_, _ = io.ReadFull(client, buf)
		got <- buf
	}()

	n, err := Send(server, 5*time.Second, payload)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.Equal(t, payload, <-got)
}

func TestSendOverTLSTimesOutWhenPeerStalls(t *testing.T) {
	testlog.Start(t)
	server, _ := tlstest.Pair(t)

	payload := make([]byte, 64<<20)
	n, err := Send(server, 100*time.Millisecond, payload)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTimeout), "got %v", err)
	require.Less(t, n, len(payload))
}
