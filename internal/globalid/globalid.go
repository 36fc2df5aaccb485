// Package globalid encodes and decodes the opaque identifiers accepted by the
// node(id:) root field.
//
// An identifier is the standard base64 encoding of "<Type>:<field>:<value>".
// The value may itself contain colons; type and field may not.
package globalid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned by Decode for input that is not a global id.
var ErrMalformed = errors.New("malformed global id")

const separator = ":"

// ID is a decoded global identifier.
type ID struct {
	TypeName string `json:"typeName"`
	Field    string `json:"field"`
	Value    string `json:"value"`
}

// String returns the encoded form of id.
func (id ID) String() string {
	return Encode(id.TypeName, id.Field, id.Value)
}

// Encode returns the global id of the entity typeName whose attribute field
// has the given value.
func Encode(typeName, field, value string) string {
	raw := typeName + separator + field + separator + value
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// Decode parses an encoded global id.
func Decode(encoded string) (ID, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q is not base64", ErrMalformed, encoded)
	}
	parts := strings.SplitN(string(raw), separator, 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, encoded)
	}
	return ID{TypeName: parts[0], Field: parts[1], Value: parts[2]}, nil
}
