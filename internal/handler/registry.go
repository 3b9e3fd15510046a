// Package handler binds request matchers to the code producing replies.
package handler

import (
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/danmuck/gridd/internal/observability"
	"github.com/danmuck/gridd/internal/protocol"
	"github.com/danmuck/gridd/internal/reply"
	"github.com/rs/zerolog/log"
)

// MaxNameLen bounds binding names; longer names are truncated.
const MaxNameLen = 31

// ErrInvalidArgument is returned by registration calls missing a name,
// matcher or handler. It is the reply package's sentinel.
var ErrInvalidArgument = reply.ErrInvalidArgument

// Matcher reports whether a binding accepts a request.
type Matcher func(req *protocol.Envelope) bool

// Handler produces the reply for a matched request. tags are the capability
// tags of the binding it was registered with.
type Handler interface {
	Handle(rc *reply.Context, tags []ServiceTag) error
}

// HandlerFunc is the plain handler variant.
type HandlerFunc func(rc *reply.Context) error

func (f HandlerFunc) Handle(rc *reply.Context, _ []ServiceTag) error { return f(rc) }

// TaggedHandlerFunc is the tag-carrying handler variant.
type TaggedHandlerFunc func(rc *reply.Context, tags []ServiceTag) error

func (f TaggedHandlerFunc) Handle(rc *reply.Context, tags []ServiceTag) error { return f(rc, tags) }

// Binding is one immutable registry entry.
type Binding struct {
	name      string
	matcher   Matcher
	handler   Handler
	tags      []ServiceTag
	versioned bool
	next      *Binding
}

func (b *Binding) Name() string { return b.name }

// Versioned reports whether the binding holds a tag-carrying handler.
func (b *Binding) Versioned() bool { return b.versioned }

// Tags returns a copy of the binding's capability tags.
func (b *Binding) Tags() []ServiceTag { return dupTags(b.tags) }

func (b *Binding) Matches(req *protocol.Envelope) bool {
	return b.matcher(req)
}

// Invoke runs the handler against rc.
func (b *Binding) Invoke(rc *reply.Context) error {
	err := b.handler.Handle(rc, b.tags)
	observability.RecordHandler(b.name, err)
	if err != nil {
		log.Warn().Str("handler", b.name).Err(err).Msg("handler.Invoke failed")
	}
	return err
}

// Registry is the chain of bindings consulted by the dispatcher. It is
// filled once at startup and read without locking afterwards; registering
// while lookups run is unsupported.
type Registry struct {
	head        *Binding
	size        int
	serviceTags []ServiceTag
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a plain handler ahead of every existing binding.
func (r *Registry) Add(name string, m Matcher, h HandlerFunc) error {
	if name == "" || m == nil || h == nil {
		return errors.Wrap(ErrInvalidArgument, "handler: name, matcher and handler are required")
	}
	r.push(&Binding{name: truncateName(name), matcher: m, handler: h})
	return nil
}

// AddVersioned registers a tag-carrying handler ahead of every existing
// binding and appends copies of tags to the service tag list.
func (r *Registry) AddVersioned(name string, m Matcher, h TaggedHandlerFunc, tags []ServiceTag) error {
	if name == "" || m == nil || h == nil {
		return errors.Wrap(ErrInvalidArgument, "handler: name, matcher and handler are required")
	}
	r.push(&Binding{name: truncateName(name), matcher: m, handler: h, tags: dupTags(tags), versioned: true})
	for _, t := range tags {
		r.serviceTags = append(r.serviceTags, t.Dup())
	}
	return nil
}

func (r *Registry) push(b *Binding) {
	b.next = r.head
	r.head = b
	r.size++
	log.Debug().Str("handler", b.name).Bool("versioned", b.versioned).Int("tags", len(b.tags)).Msg("handler.Registry new handler")
}

// Lookup returns the most recently registered binding accepting req.
func (r *Registry) Lookup(req *protocol.Envelope) (*Binding, bool) {
	var found *Binding
	r.Walk(func(b *Binding) bool {
		if b.Matches(req) {
			found = b
			return false
		}
		return true
	})
	return found, found != nil
}

// Walk visits bindings from the most recently registered until fn
// returns false.
func (r *Registry) Walk(fn func(b *Binding) bool) {
	if r == nil {
		return
	}
	for b := r.head; b != nil; b = b.next {
		if !fn(b) {
			return
		}
	}
}

// Bindings returns the chain in lookup order.
func (r *Registry) Bindings() []*Binding {
	out := make([]*Binding, 0, r.Len())
	r.Walk(func(b *Binding) bool {
		out = append(out, b)
		return true
	})
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return r.size
}

// ServiceTags returns a copy of the tags collected from versioned handlers.
func (r *Registry) ServiceTags() []ServiceTag {
	if r == nil {
		return nil
	}
	return dupTags(r.serviceTags)
}

// MatchName accepts requests whose name equals name.
func MatchName(name string) Matcher {
	return func(req *protocol.Envelope) bool {
		return req != nil && req.Name == name
	}
}

// MatchPrefix accepts requests whose name starts with prefix.
func MatchPrefix(prefix string) Matcher {
	return func(req *protocol.Envelope) bool {
		return req != nil && strings.HasPrefix(req.Name, prefix)
	}
}

func truncateName(name string) string {
	if len(name) <= MaxNameLen {
		return name
	}
	cut := MaxNameLen
	for cut > 0 && !utf8.RuneStart(name[cut]) {
		cut--
	}
	return name[:cut]
}
