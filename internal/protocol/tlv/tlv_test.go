package tlv

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDecodeFieldsRoundTripPreservesUnknown(t *testing.T) {
	in := []Field{
		{ID: 1, Type: TypeString, Value: []byte("REQ_PING")},
		{ID: 9999, Type: TypeBytes, Value: []byte{0xAA, 0xBB}}, // unknown field id
	}
	b := EncodeFields(in)
	out, err := DecodeFields(b)
	if err != nil {
		t.Fatalf("decode fields: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(out))
	}
	if out[1].ID != 9999 || out[1].Type != TypeBytes || !bytes.Equal(out[1].Value, []byte{0xAA, 0xBB}) {
		t.Fatalf("unknown field not preserved: %+v", out[1])
	}
}

func TestDecodeFieldsMalformedHeaderIsDeterministic(t *testing.T) {
	_, err := DecodeFields([]byte{1, 2, 3})
	if !errors.Is(err, ErrShortFieldHeader) {
		t.Fatalf("expected ErrShortFieldHeader, got %v", err)
	}
}

func TestDecodeFieldsMalformedLengthIsDeterministic(t *testing.T) {
	// id=1, type=string, len=5, value only 2 bytes
	payload := []byte{0, 1, TypeString, 0, 0, 0, 5, 'a', 'b'}
	_, err := DecodeFields(payload)
	if !errors.Is(err, ErrShortFieldValue) {
		t.Fatalf("expected ErrShortFieldValue, got %v", err)
	}
}

func TestNamedFieldSplit(t *testing.T) {
	f := NamedField(40, "x-oio-req-id", []byte("abc"))
	key, val, err := SplitNamed(f)
	if err != nil {
		t.Fatalf("split named: %v", err)
	}
	if key != "x-oio-req-id" || string(val) != "abc" {
		t.Fatalf("unexpected named field: key=%q val=%q", key, val)
	}
}

func TestSplitNamedRejectsMalformed(t *testing.T) {
	cases := []struct {
		field Field
		want  error
	}{
		{Field{ID: 1, Type: TypeNamed, Value: []byte{0}}, ErrShortNamedKey},
		{Field{ID: 1, Type: TypeNamed, Value: []byte{0, 9, 'a'}}, ErrShortNamedKey},
		{Field{ID: 1, Type: TypeNamed, Value: []byte{0, 0, 'v'}}, ErrEmptyNamedKey},
	}
	for _, tc := range cases {
		if _, _, err := SplitNamed(tc.field); !errors.Is(err, tc.want) {
			t.Fatalf("expected %v for %v, got %v", tc.want, tc.field.Value, err)
		}
	}
	if _, _, err := SplitNamed(Field{ID: 1, Type: TypeBytes}); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}
