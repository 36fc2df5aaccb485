package testutil

// FixedRequestIDGenerator generates the same request id every time.
//
// This enables deterministic test execution and golden snapshot comparison:
// the same scenario compiled with the same generator produces byte-identical
// results.
//
// Thread-safety: FixedRequestIDGenerator is stateless and safe for concurrent use.
type FixedRequestIDGenerator struct {
	id string
}

// NewFixedRequestIDGenerator creates a new fixed request id generator.
//
// If id is empty, Generate() returns "test-request-default".
func NewFixedRequestIDGenerator(id string) *FixedRequestIDGenerator {
	if id == "" {
		id = "test-request-default"
	}
	return &FixedRequestIDGenerator{id: id}
}

// Generate returns the fixed request id.
//
// Implements engine.RequestIDGenerator interface.
func (g *FixedRequestIDGenerator) Generate() string {
	return g.id
}
