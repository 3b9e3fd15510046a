package protocol

import (
	"sort"

	"github.com/danmuck/gridd/internal/protocol/schema"
	"github.com/samber/lo"
)

// Kind distinguishes request envelopes from reply envelopes.
type Kind uint32

const (
	KindRequest Kind = Kind(schema.KindRequest)
	KindReply   Kind = Kind(schema.KindReply)
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindReply:
		return "reply"
	default:
		return "unknown"
	}
}

// Envelope is the decoded form of one frame.
//
// Requests carry Name; replies carry Code and Message. Headers and Body are
// valid on both.
type Envelope struct {
	ID      uint64
	Kind    Kind
	Name    string
	Code    int
	Message string
	Headers map[string][]byte
	Body    []byte
}

// NewRequest builds a request envelope for the named operation.
func NewRequest(id uint64, name string) *Envelope {
	return &Envelope{ID: id, Kind: KindRequest, Name: name}
}

// Header returns the value stored under key.
func (e *Envelope) Header(key string) ([]byte, bool) {
	if e == nil || e.Headers == nil {
		return nil, false
	}
	v, ok := e.Headers[key]
	return v, ok
}

// SetHeader stores a copy of value under key, replacing any previous value.
func (e *Envelope) SetHeader(key string, value []byte) {
	if e.Headers == nil {
		e.Headers = make(map[string][]byte)
	}
	e.Headers[key] = append([]byte(nil), value...)
}

// HeaderKeys returns the header keys in a stable order.
func (e *Envelope) HeaderKeys() []string {
	if e == nil {
		return nil
	}
	keys := lo.Keys(e.Headers)
	sort.Strings(keys)
	return keys
}
