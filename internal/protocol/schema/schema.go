package schema

import (
	"fmt"

	"github.com/danmuck/gridd/internal/protocol/tlv"
	"github.com/rs/zerolog/log"
)

// Frame kinds.
const (
	KindRequest uint32 = 1
	KindReply   uint32 = 2
)

// Field IDs.
const (
	FieldName    uint16 = 1
	FieldCode    uint16 = 2
	FieldMessage uint16 = 3
	FieldHeader  uint16 = 4
	FieldBody    uint16 = 5
)

type Requirement struct {
	ID   uint16
	Type uint8
}

type ValidationError struct {
	Kind    uint32
	FieldID uint16
	Reason  string
}

func (e ValidationError) Error() string {
	if e.FieldID == 0 {
		return fmt.Sprintf("schema: kind=%d: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("schema: kind=%d field=%d: %s", e.Kind, e.FieldID, e.Reason)
}

var requirements = map[uint32][]Requirement{
	KindRequest: {
		{FieldName, tlv.TypeString},
	},
	KindReply: {
		{FieldCode, tlv.TypeU32},
		{FieldMessage, tlv.TypeString},
	},
}

// optional lists fields that may be absent but must carry the right type.
var optional = map[uint16]uint8{
	FieldName:    tlv.TypeString,
	FieldCode:    tlv.TypeU32,
	FieldMessage: tlv.TypeString,
	FieldHeader:  tlv.TypeNamed,
	FieldBody:    tlv.TypeBytes,
}

// Validate enforces required fields and field types for a frame kind.
// Unknown field IDs are ignored.
func Validate(kind uint32, fields []tlv.Field) error {
	reqs, ok := requirements[kind]
	if !ok {
		log.Error().Uint32("kind", kind).Msg("schema.Validate unknown kind")
		return ValidationError{Kind: kind, Reason: "unknown kind"}
	}
	for _, req := range reqs {
		if _, found := tlv.GetField(fields, req.ID); !found {
			log.Error().Uint32("kind", kind).Uint16("field_id", req.ID).Msg("schema.Validate missing field")
			return ValidationError{Kind: kind, FieldID: req.ID, Reason: "missing required field"}
		}
	}
	for _, f := range fields {
		want, known := optional[f.ID]
		if !known {
			continue
		}
		if f.Type != want {
			log.Error().
				Uint32("kind", kind).
				Uint16("field_id", f.ID).
				Uint8("got", f.Type).
				Uint8("want", want).
				Msg("schema.Validate type mismatch")
			return ValidationError{Kind: kind, FieldID: f.ID, Reason: "type mismatch"}
		}
	}
	log.Trace().Uint32("kind", kind).Int("fields", len(fields)).Msg("schema.Validate ok")
	return nil
}
