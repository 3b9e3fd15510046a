// Package reply accumulates the response to one request and sends it as a
// single frame.
package reply

import (
	"maps"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/danmuck/gridd/internal/observability"
	"github.com/danmuck/gridd/internal/protocol"
	"github.com/danmuck/gridd/internal/request"
	"github.com/danmuck/gridd/internal/wire"
	"github.com/rs/zerolog/log"
)

// NoMessage is sent in place of an unset message text.
const NoMessage = "NOMSG"

// Settings are the collaborators a reply is sent through.
type Settings struct {
	// DefaultTimeout is the configured operation timeout; the send
	// timeout is derived from it with EffectiveTimeout.
	DefaultTimeout time.Duration
	Marshaller     protocol.Marshaller
	Sender         wire.Sender
}

func DefaultSettings() Settings {
	return Settings{
		DefaultTimeout: DefaultOperationTimeout,
		Marshaller:     protocol.DefaultCodec(),
		Sender:         wire.DeadlineSender{},
	}
}

func (s Settings) withDefaults() Settings {
	if s.Marshaller == nil {
		s.Marshaller = protocol.DefaultCodec()
	}
	if s.Sender == nil {
		s.Sender = wire.DeadlineSender{}
	}
	return s
}

// Context is the mutable reply state of one request. Like the request it
// belongs to, it has a single owner and takes no locks.
type Context struct {
	req      *request.Context
	settings Settings

	code    int
	message string
	body    Body
	headers map[string][]byte
	warning error
}

// New returns an empty reply bound to req. req is referenced, not owned.
func New(req *request.Context, settings Settings) *Context {
	return &Context{req: req, settings: settings.withDefaults()}
}

func (c *Context) Request() *request.Context {
	if c == nil {
		return nil
	}
	return c.req
}

// SetMessage replaces the status code and message text. An empty text is
// stored as no message.
func (c *Context) SetMessage(code int, text string) {
	if c == nil {
		return
	}
	c.code = code
	c.message = text
	log.Trace().Int("code", code).Str("msg", text).Msg("reply.SetMessage")
}

func (c *Context) Code() int {
	if c == nil {
		return 0
	}
	return c.code
}

// Message returns the message text and whether one is set.
func (c *Context) Message() (string, bool) {
	if c == nil || c.message == "" {
		return "", false
	}
	return c.message, true
}

// SetBody drops the current body, then installs b unless b is empty.
func (c *Context) SetBody(b Body) {
	if c == nil {
		return
	}
	c.body = Body{}
	if b.IsEmpty() {
		return
	}
	c.body = b
	log.Trace().Int("size", b.Len()).Stringer("ownership", b.Ownership()).Msg("reply.SetBody")
}

func (c *Context) Body() Body {
	if c == nil {
		return Body{}
	}
	return c.body
}

// AddHeader stores a copy of value under key, replacing any previous value.
// Empty keys and empty values are ignored.
func (c *Context) AddHeader(key string, value []byte) {
	if c == nil || key == "" || len(value) == 0 {
		return
	}
	if c.headers == nil {
		c.headers = make(map[string][]byte)
	}
	c.headers[key] = append([]byte(nil), value...)
}

// AddStringHeader is AddHeader for text values.
func (c *Context) AddStringHeader(key, value string) {
	if value == "" {
		return
	}
	c.AddHeader(key, []byte(value))
}

// Header returns the value stored under key.
func (c *Context) Header(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.headers[key]
	return v, ok
}

func (c *Context) HeaderCount() int {
	if c == nil {
		return 0
	}
	return len(c.headers)
}

// SetWarning records a non-fatal condition for the dispatcher to report.
// Only a full Clear discards it.
func (c *Context) SetWarning(err error) {
	if c == nil {
		return
	}
	c.warning = err
}

func (c *Context) Warning() error {
	if c == nil {
		return nil
	}
	return c.warning
}

// Envelope snapshots the current state as a reply envelope.
func (c *Context) Envelope() *protocol.Envelope {
	if c == nil {
		return nil
	}
	msg := c.message
	if msg == "" {
		msg = NoMessage
	}
	env := &protocol.Envelope{
		ID:      c.req.RequestID(),
		Kind:    protocol.KindReply,
		Code:    c.code,
		Message: msg,
		Body:    c.body.Bytes(),
	}
	if len(c.headers) > 0 {
		env.Headers = maps.Clone(c.headers)
	}
	return env
}

// Reply marshals the current state and writes it to the request connection.
// It succeeds only when the whole frame was written. The context is left
// untouched; call Reset or Clear before reusing it.
func (c *Context) Reply() error {
	if c == nil {
		return invalidArgument("reply: nil context")
	}
	if c.req == nil || c.req.Conn == nil {
		return errors.Wrap(invalidArgument("no request connection"), "failed to reply")
	}

	raw, err := c.settings.Marshaller.Marshal(c.Envelope())
	if err == nil && raw == nil {
		err = errors.New("marshaller produced no frame")
	}
	if err != nil {
		observability.RecordReply(c.code, "encode_failed", 0, 0)
		log.Warn().Str("req", c.req.RequestName()).Int("code", c.code).Err(err).Msg("reply.Reply encode failed")
		return errors.Wrap(errors.Mark(err, ErrEncodingFailure), "failed to reply")
	}
	if len(raw) == 0 {
		observability.RecordReply(c.code, "sent", 0, 0)
		return nil
	}

	timeout := EffectiveTimeout(c.settings.DefaultTimeout)
	start := time.Now()
	n, err := c.settings.Sender.Send(c.req.Conn, timeout, raw)
	took := time.Since(start)

	if err == nil && n > 0 && n == len(raw) {
		observability.RecordReply(c.code, "sent", n, took)
		log.Debug().
			Str("req", c.req.RequestName()).
			Uint64("id", c.req.RequestID()).
			Int("code", c.code).
			Int("bytes", n).
			Dur("elapsed", c.req.Elapsed()).
			Msg("reply.Reply sent")
		return nil
	}

	observability.RecordReply(c.code, "send_failed", max(n, 0), took)
	if err == nil {
		err = errors.Newf("short write: %d/%d bytes", n, len(raw))
	}
	log.Warn().
		Str("req", c.req.RequestName()).
		Str("remote", c.req.Remote.String()).
		Int("code", c.code).
		Int("written", n).
		Int("len", len(raw)).
		Dur("timeout", timeout).
		Err(err).
		Msg("reply.Reply send failed")
	return errors.Wrap(errors.Mark(err, ErrTransmissionFailure), "failed to reply")
}

// Reset clears status, message and body, keeping headers and warning for a
// follow-up reply on the same request.
func (c *Context) Reset() {
	if c == nil {
		return
	}
	c.code = 0
	c.message = ""
	c.body = Body{}
}

// Clear resets everything, headers and pending warning included.
func (c *Context) Clear() {
	if c == nil {
		return
	}
	c.Reset()
	c.headers = nil
	c.warning = nil
}
