// Package value provides the argument value model shared by the selection
// tree, the query IR and the schema snapshot store.
//
// Values are a sealed set of JSON-like types. GraphQL literals, request
// variables and decoded JSON documents all convert into the same
// representation so that argument decoders only ever switch over one closed
// set of cases.
//
// Key design constraints:
//   - Object iteration is only deterministic through SortedKeys
//   - Canonical encoding (MarshalCanonical) orders keys by UTF-16 code units
//     and NFC-normalizes strings, so equal values always hash equally
//   - Enum values keep their own type so callers can tell `ASC` apart from `"ASC"`
//     when that matters; most decoders accept both
//
// value imports nothing internal.
package value
