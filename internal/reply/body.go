package reply

import "bytes"

// Ownership tells whether a Body's buffer belongs to the reply context.
type Ownership uint8

const (
	NoBody Ownership = iota
	// Owned buffers belong to the reply context and are dropped with it.
	Owned
	// Borrowed buffers stay with the caller, who must keep them valid and
	// unchanged until the reply is sent.
	Borrowed
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	default:
		return "none"
	}
}

// Body is a reply payload tagged with its ownership.
type Body struct {
	data []byte
	own  Ownership
}

// CopyBody duplicates b; later changes to b do not reach the body.
func CopyBody(b []byte) Body {
	if len(b) == 0 {
		return Body{}
	}
	return Body{data: bytes.Clone(b), own: Owned}
}

// TakeBody adopts b without copying. The caller gives up b.
func TakeBody(b []byte) Body {
	if len(b) == 0 {
		return Body{}
	}
	return Body{data: b, own: Owned}
}

// BorrowBody aliases b without copying or taking ownership.
func BorrowBody(b []byte) Body {
	if len(b) == 0 {
		return Body{}
	}
	return Body{data: b, own: Borrowed}
}

func (b Body) Bytes() []byte { return b.data }

func (b Body) Len() int { return len(b.data) }

func (b Body) Ownership() Ownership { return b.own }

func (b Body) IsEmpty() bool { return len(b.data) == 0 }

// Duplicate returns an Owned copy whatever the receiver's ownership.
func (b Body) Duplicate() Body {
	return CopyBody(b.data)
}
