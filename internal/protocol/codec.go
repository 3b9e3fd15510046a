package protocol

import (
	"fmt"
	"io"

	"github.com/danmuck/gridd/internal/protocol/frame"
	"github.com/danmuck/gridd/internal/protocol/schema"
	"github.com/danmuck/gridd/internal/protocol/tlv"
)

const maxHeaderKeyLen = 1<<16 - 1

// Marshaller turns an envelope into one wire frame.
type Marshaller interface {
	Marshal(env *Envelope) ([]byte, error)
}

// Codec is the default frame marshaller.
type Codec struct {
	Limits frame.Limits
}

// DefaultCodec returns a codec bound to frame.DefaultLimits.
func DefaultCodec() Codec {
	return Codec{Limits: frame.DefaultLimits()}
}

var _ Marshaller = Codec{}

func (c Codec) limits() frame.Limits {
	if c.Limits.MaxPayloadBytes == 0 {
		return frame.DefaultLimits()
	}
	return c.Limits
}

// Marshal encodes env as a single frame.
func (c Codec) Marshal(env *Envelope) ([]byte, error) {
	if env == nil {
		return nil, ErrNilEnvelope
	}
	fields, err := envelopeFields(env)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(uint32(env.Kind), fields); err != nil {
		return nil, err
	}
	var flags uint32
	if env.Kind == KindReply {
		flags |= frame.FlagIsReply
		if env.Code >= 400 {
			flags |= frame.FlagIsError
		}
	}
	payload := tlv.EncodeFields(fields)
	return frame.Append(nil, frame.Frame{
		Header: frame.Header{
			MessageID: env.ID,
			Kind:      uint32(env.Kind),
			Flags:     flags,
		},
		Payload: payload,
	}, c.limits())
}

// Unmarshal decodes exactly one frame held in b.
func (c Codec) Unmarshal(b []byte) (*Envelope, error) {
	fr, err := frame.Parse(b, c.limits())
	if err != nil {
		return nil, err
	}
	return FromFrame(fr)
}

// Read decodes the next frame from r.
func (c Codec) Read(r io.Reader) (*Envelope, error) {
	fr, err := frame.ReadFrame(r, c.limits())
	if err != nil {
		return nil, err
	}
	return FromFrame(fr)
}

// Write marshals env and writes the frame to w.
func (c Codec) Write(w io.Writer, env *Envelope) error {
	b, err := c.Marshal(env)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// FromFrame validates and decodes a frame payload.
func FromFrame(fr frame.Frame) (*Envelope, error) {
	kind := Kind(fr.Header.Kind)
	if kind != KindRequest && kind != KindReply {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, fr.Header.Kind)
	}
	fields, err := tlv.DecodeFields(fr.Payload)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(fr.Header.Kind, fields); err != nil {
		return nil, err
	}

	env := &Envelope{ID: fr.Header.MessageID, Kind: kind}
	for _, f := range fields {
		switch f.ID {
		case schema.FieldName:
			env.Name = string(f.Value)
		case schema.FieldMessage:
			env.Message = string(f.Value)
		case schema.FieldCode:
			code, err := tlv.U32FromBytes(f.Value)
			if err != nil {
				return nil, err
			}
			env.Code = int(int32(code))
		case schema.FieldBody:
			env.Body = f.Value
		case schema.FieldHeader:
			key, val, err := tlv.SplitNamed(f)
			if err != nil {
				return nil, err
			}
			if _, dup := env.Headers[key]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, key)
			}
			if env.Headers == nil {
				env.Headers = make(map[string][]byte)
			}
			env.Headers[key] = val
		}
	}
	return env, nil
}

func envelopeFields(env *Envelope) ([]tlv.Field, error) {
	fields := make([]tlv.Field, 0, 4+len(env.Headers))
	switch env.Kind {
	case KindRequest:
		fields = append(fields, tlv.Field{ID: schema.FieldName, Type: tlv.TypeString, Value: []byte(env.Name)})
	case KindReply:
		fields = append(fields,
			tlv.Field{ID: schema.FieldCode, Type: tlv.TypeU32, Value: tlv.U32Bytes(uint32(int32(env.Code)))},
			tlv.Field{ID: schema.FieldMessage, Type: tlv.TypeString, Value: []byte(env.Message)},
		)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, env.Kind)
	}
	for _, key := range env.HeaderKeys() {
		if len(key) > maxHeaderKeyLen {
			return nil, fmt.Errorf("%w: %d bytes", ErrHeaderKeyLength, len(key))
		}
		fields = append(fields, tlv.NamedField(schema.FieldHeader, key, env.Headers[key]))
	}
	if len(env.Body) > 0 {
		fields = append(fields, tlv.Field{ID: schema.FieldBody, Type: tlv.TypeBytes, Value: env.Body})
	}
	return fields, nil
}
