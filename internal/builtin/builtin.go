// Package builtin registers the handlers every gridd daemon answers.
package builtin

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/danmuck/gridd/internal/handler"
	"github.com/danmuck/gridd/internal/namespace"
	"github.com/danmuck/gridd/internal/reply"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	NamePing     = "REQ_PING"
	NameNSInfo   = "REQ_NSINFO"
	NameHandlers = "REQ_HANDLERS"

	// HeaderHandlerCount carries the number of registered handlers.
	HeaderHandlerCount = "x-gridd-handlers"
)

// NamespaceSource yields the current namespace snapshot.
type NamespaceSource interface {
	Info() (*namespace.Info, bool)
}

// Register adds the builtin handlers to r. Handlers registered later take
// precedence over them.
func Register(r *handler.Registry, ns NamespaceSource) error {
	if r == nil || ns == nil {
		return errors.Wrap(handler.ErrInvalidArgument, "builtin: registry and namespace source are required")
	}
	if err := r.AddVersioned(NamePing, handler.MatchName(NamePing), ping,
		[]handler.ServiceTag{handler.BoolTag("stat.ping", true)}); err != nil {
		return err
	}
	if err := r.AddVersioned(NameNSInfo, handler.MatchName(NameNSInfo), nsinfo(ns),
		[]handler.ServiceTag{handler.BoolTag("tag.nsinfo", true)}); err != nil {
		return err
	}
	l := &listing{registry: r}
	if err := r.Add(NameHandlers, handler.MatchName(NameHandlers), l.serve); err != nil {
		return err
	}
	log.Debug().Int("handlers", r.Len()).Msg("builtin.Register done")
	return nil
}

func ping(rc *reply.Context, _ []handler.ServiceTag) error {
	rc.SetMessage(200, "OK")
	return rc.Reply()
}

func nsinfo(ns NamespaceSource) handler.TaggedHandlerFunc {
	return func(rc *reply.Context, _ []handler.ServiceTag) error {
		info, ok := ns.Info()
		if !ok {
			rc.SetMessage(500, "no namespace info")
			return rc.Reply()
		}
		raw, err := json.Marshal(info)
		if err != nil {
			rc.SetMessage(500, "namespace info encoding failed")
			rc.SetWarning(err)
			return rc.Reply()
		}
		rc.SetMessage(200, "OK")
		rc.SetBody(reply.TakeBody(raw))
		return rc.Reply()
	}
}

// listing serves the binding names. The buffer is built on first use,
// once registration is over, and lent to every reply afterwards.
type listing struct {
	registry *handler.Registry
	once     sync.Once
	names    []byte
	count    string
}

func (l *listing) build() {
	bindings := l.registry.Bindings()
	names := lo.Map(bindings, func(b *handler.Binding, _ int) string { return b.Name() })
	l.names = []byte(strings.Join(names, "\n"))
	l.count = strconv.Itoa(len(bindings))
}

func (l *listing) serve(rc *reply.Context) error {
	l.once.Do(l.build)
	rc.SetMessage(200, "OK")
	rc.AddStringHeader(HeaderHandlerCount, l.count)
	rc.SetBody(reply.BorrowBody(l.names))
	return rc.Reply()
}
