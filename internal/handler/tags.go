package handler

import (
	"fmt"
	"strconv"
)

// TagKind is the type of a ServiceTag value.
type TagKind uint8

const (
	TagNone TagKind = iota
	TagBool
	TagInt
	TagFloat
	TagString
)

func (k TagKind) String() string {
	switch k {
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagString:
		return "string"
	default:
		return "none"
	}
}

// ServiceTag is one capability tag a handler contributes to the service
// description published for discovery.
type ServiceTag struct {
	Name string
	Kind TagKind
	b    bool
	i    int64
	f    float64
	s    string
}

func BoolTag(name string, v bool) ServiceTag { return ServiceTag{Name: name, Kind: TagBool, b: v} }

func IntTag(name string, v int64) ServiceTag { return ServiceTag{Name: name, Kind: TagInt, i: v} }

func FloatTag(name string, v float64) ServiceTag {
	return ServiceTag{Name: name, Kind: TagFloat, f: v}
}

func StringTag(name, v string) ServiceTag { return ServiceTag{Name: name, Kind: TagString, s: v} }

// Dup returns an independent copy of t.
func (t ServiceTag) Dup() ServiceTag {
	return t
}

func (t ServiceTag) Bool() (bool, bool) { return t.b, t.Kind == TagBool }

func (t ServiceTag) Int() (int64, bool) { return t.i, t.Kind == TagInt }

func (t ServiceTag) Float() (float64, bool) { return t.f, t.Kind == TagFloat }

func (t ServiceTag) Str() (string, bool) { return t.s, t.Kind == TagString }

// Value renders the tag value as text.
func (t ServiceTag) Value() string {
	switch t.Kind {
	case TagBool:
		return strconv.FormatBool(t.b)
	case TagInt:
		return strconv.FormatInt(t.i, 10)
	case TagFloat:
		return strconv.FormatFloat(t.f, 'g', -1, 64)
	case TagString:
		return t.s
	default:
		return ""
	}
}

func (t ServiceTag) GoString() string {
	return fmt.Sprintf("%s=%s", t.Name, t.Value())
}

func dupTags(in []ServiceTag) []ServiceTag {
	if len(in) == 0 {
		return nil
	}
	out := make([]ServiceTag, len(in))
	for i, t := range in {
		out[i] = t.Dup()
	}
	return out
}
