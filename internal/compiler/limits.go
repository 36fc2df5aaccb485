package compiler

// Limits bound the size of a compiled selection. Zero means unlimited.
//
// Relationships may form cycles (Movie.actors -> Person.movies -> Movie), so
// nothing in the schema bounds how deep a client can nest traversals. Limits
// give operators admission control over that.
type Limits struct {
	// MaxDepth is the maximum number of nested reads, counting the root
	// read as 1.
	MaxDepth int `yaml:"max_depth" json:"maxDepth" validate:"gte=0"`

	// MaxFields is the maximum number of fields selected on nodes and edge
	// properties across the whole operation.
	MaxFields int `yaml:"max_fields" json:"maxFields" validate:"gte=0"`
}

// budget tracks one compile against its limits.
//
// Each compile has its own budget; it is not safe for concurrent use.
type budget struct {
	limits Limits
	fields int // Fields counted so far
	depth  int // Deepest read reached so far
}

func newBudget(limits Limits) *budget {
	return &budget{limits: limits}
}

// enter records a read at depth and checks it against MaxDepth.
func (b *budget) enter(depth int) error {
	b.depth = max(b.depth, depth)
	if b.limits.MaxDepth > 0 && depth > b.limits.MaxDepth {
		return &LimitExceededError{Limit: "depth", Value: depth, Max: b.limits.MaxDepth}
	}
	return nil
}

// field counts one selected field and checks the total against MaxFields.
func (b *budget) field() error {
	b.fields++
	if b.limits.MaxFields > 0 && b.fields > b.limits.MaxFields {
		return &LimitExceededError{Limit: "fields", Value: b.fields, Max: b.limits.MaxFields}
	}
	return nil
}
