package protocol

import "errors"

var (
	ErrNilEnvelope     = errors.New("protocol: nil envelope")
	ErrUnknownKind     = errors.New("protocol: unknown envelope kind")
	ErrDuplicateHeader = errors.New("protocol: duplicate header key")
	ErrHeaderKeyLength = errors.New("protocol: header key too long")
)
