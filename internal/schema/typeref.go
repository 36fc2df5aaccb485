package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Geospatial named types. Every other named type is treated as a scalar.
const (
	PointType          = "Point"
	CartesianPointType = "CartesianPoint"
)

// Kind classifies an attribute by the shape of its element type.
type Kind int

const (
	KindScalar Kind = iota
	KindPoint
	KindCartesianPoint
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindCartesianPoint:
		return "cartesianPoint"
	default:
		return "scalar"
	}
}

// namePattern matches a GraphQL name.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TypeRef is a parsed attribute type string such as "String!" or "[Point!]".
type TypeRef struct {
	Name         string `json:"name"`
	List         bool   `json:"list,omitempty"`
	Required     bool   `json:"required,omitempty"`
	ElemRequired bool   `json:"elemRequired,omitempty"`
}

// ParseTypeRef parses the type grammar Name, Name!, [Name], [Name!] and
// [Name!]!.
func ParseTypeRef(s string) (TypeRef, error) {
	var t TypeRef
	rest := strings.TrimSpace(s)
	if rest == "" {
		return t, fmt.Errorf("empty type")
	}

	if strings.HasPrefix(rest, "[") {
		t.List = true
		if strings.HasSuffix(rest, "!") {
			t.Required = true
			rest = rest[:len(rest)-1]
		}
		if !strings.HasSuffix(rest, "]") {
			return TypeRef{}, fmt.Errorf("invalid type %q: unterminated list", s)
		}
		rest = rest[1 : len(rest)-1]
		if strings.HasSuffix(rest, "!") {
			t.ElemRequired = true
			rest = rest[:len(rest)-1]
		}
	} else if strings.HasSuffix(rest, "!") {
		t.Required = true
		rest = rest[:len(rest)-1]
	}

	if !namePattern.MatchString(rest) {
		return TypeRef{}, fmt.Errorf("invalid type %q: %q is not a type name", s, rest)
	}
	t.Name = rest
	return t, nil
}

// String renders the type back into its source grammar.
func (t TypeRef) String() string {
	var b strings.Builder
	if t.List {
		b.WriteByte('[')
	}
	b.WriteString(t.Name)
	if t.List {
		if t.ElemRequired {
			b.WriteByte('!')
		}
		b.WriteByte(']')
	}
	if t.Required {
		b.WriteByte('!')
	}
	return b.String()
}

// Kind reports the element kind of the type, looking through list wrappers.
func (t TypeRef) Kind() Kind {
	switch t.Name {
	case PointType:
		return KindPoint
	case CartesianPointType:
		return KindCartesianPoint
	default:
		return KindScalar
	}
}

// Subfield is a selectable component of a geospatial type.
type Subfield struct {
	Name string
	Type string
}

// PointSubfields are the components of a Point, in canonical order.
var PointSubfields = []Subfield{
	{Name: "longitude", Type: "Float"},
	{Name: "latitude", Type: "Float"},
	{Name: "height", Type: "Float"},
	{Name: "crs", Type: "String"},
	{Name: "srid", Type: "Int"},
}

// CartesianPointSubfields are the components of a CartesianPoint, in
// canonical order.
var CartesianPointSubfields = []Subfield{
	{Name: "x", Type: "Float"},
	{Name: "y", Type: "Float"},
	{Name: "z", Type: "Float"},
	{Name: "crs", Type: "String"},
	{Name: "srid", Type: "Int"},
}

// Subfields returns the selectable components for a geospatial kind, or nil
// for scalars.
func (k Kind) Subfields() []Subfield {
	switch k {
	case KindPoint:
		return PointSubfields
	case KindCartesianPoint:
		return CartesianPointSubfields
	default:
		return nil
	}
}
