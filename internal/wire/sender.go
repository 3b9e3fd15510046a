// Package wire pushes encoded frames onto connections under a write deadline.
package wire

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrNilConn        = errors.New("wire: nil connection")
	ErrInvalidTimeout = errors.New("wire: timeout must be positive")
	ErrTimeout        = errors.New("wire: write timed out")
	ErrClosed         = errors.New("wire: connection closed")
)

// Sender writes data to conn within timeout and reports the bytes written.
// Implementations never retry; callers compare the count with len(data).
type Sender interface {
	Send(conn net.Conn, timeout time.Duration, data []byte) (int, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(conn net.Conn, timeout time.Duration, data []byte) (int, error)

func (f SenderFunc) Send(conn net.Conn, timeout time.Duration, data []byte) (int, error) {
	return f(conn, timeout, data)
}

// DeadlineSender bounds every write with a connection write deadline.
type DeadlineSender struct {
	// Now is the clock used to compute deadlines; time.Now when nil.
	Now func() time.Time
}

var _ Sender = DeadlineSender{}

// Send writes the whole of data, or as much as fits before the deadline.
func (s DeadlineSender) Send(conn net.Conn, timeout time.Duration, data []byte) (int, error) {
	if conn == nil {
		return 0, ErrNilConn
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTimeout, timeout)
	}
	if len(data) == 0 {
		return 0, nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if err := conn.SetWriteDeadline(now().Add(timeout)); err != nil {
		return 0, fmt.Errorf("wire: set write deadline: %w", classify(err))
	}
	defer func() {
		if err := conn.SetWriteDeadline(time.Time{}); err != nil {
			log.Debug().Err(err).Msg("wire.Send clear deadline failed")
		}
	}()

	n, err := conn.Write(data)
	if err != nil {
		log.Warn().
			Str("remote", remoteString(conn)).
			Int("written", n).
			Int("len", len(data)).
			Dur("timeout", timeout).
			Err(err).
			Msg("wire.Send write failed")
		return n, fmt.Errorf("wire: wrote %d/%d bytes: %w", n, len(data), classify(err))
	}
	return n, nil
}

// Send writes data with the default DeadlineSender.
func Send(conn net.Conn, timeout time.Duration, data []byte) (int, error) {
	return DeadlineSender{}.Send(conn, timeout, data)
}

func classify(err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded):
		return errors.Join(ErrTimeout, err)
	case errors.As(err, &ne) && ne.Timeout():
		return errors.Join(ErrTimeout, err)
	case errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		return errors.Join(ErrClosed, err)
	default:
		return err
	}
}

func remoteString(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
