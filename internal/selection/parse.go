package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/location"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/roach88/resolvetree/internal/value"
)

// RootType is the type name root fields are keyed under.
const RootType = "Query"

const typenameField = "__typename"

// Typer resolves the output type of a field selected under a parent type.
type Typer interface {
	FieldType(parent, field string) (string, bool)
}

// Options configure Parse.
type Options struct {
	// Variables are the request variables.
	Variables value.Object

	// OperationName selects the operation when the document has several.
	OperationName string

	// Typer keys child buckets. Required.
	Typer Typer
}

// Operation is a parsed query operation.
type Operation struct {
	Name string

	// Root holds the root fields under RootType.
	Root *Field
}

// Fields returns the root fields in request order.
func (o *Operation) Fields() Bucket {
	return o.Root.Bucket(RootType)
}

// ParseError is a request that cannot be turned into a selection tree.
type ParseError struct {
	Message   string
	Locations []location.SourceLocation
}

func (e *ParseError) Error() string {
	if len(e.Locations) > 0 {
		return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Locations[0].Line, e.Locations[0].Column)
	}
	return e.Message
}

// Parse parses GraphQL request text into a selection tree.
//
// Only query operations are supported. Variables are substituted, @skip and
// @include are applied and fragments are expanded: fields of a fragment are
// keyed under its type condition, plain fields under their parent's type.
// Fields unknown to the Typer are kept so that the compiler can reject them.
func Parse(query string, opts Options) (*Operation, error) {
	if opts.Typer == nil {
		return nil, errors.New("selection: Typer is required")
	}

	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return nil, syntaxError(err)
	}

	w := &walker{
		typer:     opts.Typer,
		fragments: make(map[string]*ast.FragmentDefinition),
		visiting:  make(map[string]bool),
	}

	var ops []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		switch d := def.(type) {
		case *ast.OperationDefinition:
			ops = append(ops, d)
		case *ast.FragmentDefinition:
			w.fragments[d.Name.Value] = d
		}
	}

	op, err := pickOperation(ops, opts.OperationName)
	if err != nil {
		return nil, err
	}
	if op.Operation != ast.OperationTypeQuery {
		return nil, &ParseError{
			Message:   fmt.Sprintf("only query operations are supported, got %s", op.Operation),
			Locations: locations(op),
		}
	}

	w.vars, err = resolveVariables(op, opts.Variables)
	if err != nil {
		return nil, err
	}

	root := &Field{Fields: make(map[string]Bucket)}
	if err := w.collect(op.SelectionSet, RootType, root.Fields); err != nil {
		return nil, err
	}

	result := &Operation{Root: root}
	if op.Name != nil {
		result.Name = op.Name.Value
	}
	return result, nil
}

func pickOperation(ops []*ast.OperationDefinition, name string) (*ast.OperationDefinition, error) {
	if len(ops) == 0 {
		return nil, &ParseError{Message: "document contains no operations"}
	}
	if name == "" {
		if len(ops) > 1 {
			return nil, &ParseError{Message: "must provide operation name if query contains multiple operations"}
		}
		return ops[0], nil
	}
	for _, op := range ops {
		if op.Name != nil && op.Name.Value == name {
			return op, nil
		}
	}
	return nil, &ParseError{Message: fmt.Sprintf("unknown operation named %q", name)}
}

// resolveVariables applies defaults and checks required variables.
// Variables that are neither provided nor defaulted are left out.
func resolveVariables(op *ast.OperationDefinition, provided value.Object) (value.Object, error) {
	vars := make(value.Object, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		name := def.Variable.Name.Value
		if v, ok := provided.Get(name); ok {
			vars[name] = v
			continue
		}
		if def.DefaultValue != nil {
			v, _, err := literal(def.DefaultValue, nil)
			if err != nil {
				return nil, err
			}
			vars[name] = v
			continue
		}
		if _, required := def.Type.(*ast.NonNull); required {
			return nil, &ParseError{
				Message:   fmt.Sprintf("variable $%s of required type was not provided", name),
				Locations: locations(def),
			}
		}
	}
	return vars, nil
}

type walker struct {
	typer     Typer
	vars      value.Object
	fragments map[string]*ast.FragmentDefinition
	visiting  map[string]bool
}

// collect adds the selections of set to into, keyed by type name.
func (w *walker) collect(set *ast.SelectionSet, parentType string, into map[string]Bucket) error {
	if set == nil {
		return nil
	}
	for _, sel := range set.Selections {
		switch s := sel.(type) {
		case *ast.Field:
			ok, err := w.included(s.Directives)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if s.Name.Value == typenameField {
				continue
			}
			f, err := w.field(s, parentType)
			if err != nil {
				return err
			}
			into[parentType] = into[parentType].add(f)

		case *ast.InlineFragment:
			ok, err := w.included(s.Directives)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			typ := parentType
			if s.TypeCondition != nil {
				typ = s.TypeCondition.Name.Value
			}
			if err := w.collect(s.SelectionSet, typ, into); err != nil {
				return err
			}

		case *ast.FragmentSpread:
			ok, err := w.included(s.Directives)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := w.spread(s, into); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) spread(s *ast.FragmentSpread, into map[string]Bucket) error {
	name := s.Name.Value
	frag, ok := w.fragments[name]
	if !ok {
		return &ParseError{Message: fmt.Sprintf("unknown fragment %q", name), Locations: locations(s)}
	}
	if w.visiting[name] {
		return &ParseError{Message: fmt.Sprintf("fragment %q spreads itself", name), Locations: locations(s)}
	}
	w.visiting[name] = true
	defer delete(w.visiting, name)

	return w.collect(frag.SelectionSet, frag.TypeCondition.Name.Value, into)
}

func (w *walker) field(s *ast.Field, parentType string) (*Field, error) {
	f := &Field{Name: s.Name.Value, Alias: s.Name.Value}
	if s.Alias != nil {
		f.Alias = s.Alias.Value
	}

	if len(s.Arguments) > 0 {
		f.Args = make(value.Object, len(s.Arguments))
		for _, arg := range s.Arguments {
			v, present, err := literal(arg.Value, w.vars)
			if err != nil {
				return nil, err
			}
			if present {
				f.Args[arg.Name.Value] = v
			}
		}
	}

	if s.SelectionSet != nil {
		// An unknown field keeps its children under an empty type name;
		// the compiler rejects the field before looking at them.
		childType, _ := w.typer.FieldType(parentType, f.Name)
		f.Fields = make(map[string]Bucket)
		if err := w.collect(s.SelectionSet, childType, f.Fields); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// included evaluates @skip and @include.
func (w *walker) included(directives []*ast.Directive) (bool, error) {
	for _, d := range directives {
		name := d.Name.Value
		if name != "skip" && name != "include" {
			continue
		}
		var cond value.Value
		for _, arg := range d.Arguments {
			if arg.Name.Value == "if" {
				v, _, err := literal(arg.Value, w.vars)
				if err != nil {
					return false, err
				}
				cond = v
			}
		}
		b, ok := cond.(value.Bool)
		if !ok {
			return false, &ParseError{
				Message:   fmt.Sprintf("@%s requires a Boolean \"if\" argument", name),
				Locations: locations(d),
			}
		}
		if (name == "skip" && bool(b)) || (name == "include" && !bool(b)) {
			return false, nil
		}
	}
	return true, nil
}

// literal converts an AST value. present is false for a variable that was
// neither provided nor defaulted.
func literal(v ast.Value, vars value.Object) (value.Value, bool, error) {
	switch val := v.(type) {
	case *ast.Variable:
		resolved, ok := vars.Get(val.Name.Value)
		if !ok {
			return value.Null{}, false, nil
		}
		return resolved, true, nil
	case *ast.IntValue:
		i, err := strconv.ParseInt(val.Value, 10, 64)
		if err != nil {
			return nil, false, &ParseError{Message: fmt.Sprintf("integer %s out of range", val.Value), Locations: locations(val)}
		}
		return value.Int(i), true, nil
	case *ast.FloatValue:
		f, err := strconv.ParseFloat(val.Value, 64)
		if err != nil {
			return nil, false, &ParseError{Message: fmt.Sprintf("invalid float %s", val.Value), Locations: locations(val)}
		}
		return value.Float(f), true, nil
	case *ast.StringValue:
		return value.String(val.Value), true, nil
	case *ast.BooleanValue:
		return value.Bool(val.Value), true, nil
	case *ast.EnumValue:
		return value.Enum(val.Value), true, nil
	case *ast.ListValue:
		list := make(value.List, 0, len(val.Values))
		for _, elem := range val.Values {
			conv, _, err := literal(elem, vars)
			if err != nil {
				return nil, false, err
			}
			list = append(list, conv)
		}
		return list, true, nil
	case *ast.ObjectValue:
		obj := make(value.Object, len(val.Fields))
		for _, field := range val.Fields {
			conv, present, err := literal(field.Value, vars)
			if err != nil {
				return nil, false, err
			}
			if present {
				obj[field.Name.Value] = conv
			}
		}
		return obj, true, nil
	default:
		return nil, false, &ParseError{Message: fmt.Sprintf("unsupported value %T", v)}
	}
}

func locations(n ast.Node) []location.SourceLocation {
	loc := n.GetLoc()
	if loc == nil || loc.Source == nil {
		return nil
	}
	return []location.SourceLocation{location.GetLocation(loc.Source, loc.Start)}
}

// syntaxError converts a graphql-go syntax error.
func syntaxError(err error) error {
	var gqlErr *gqlerrors.Error
	if errors.As(err, &gqlErr) {
		return &ParseError{
			Message:   strings.TrimSpace(gqlErr.Message),
			Locations: gqlErr.Locations,
		}
	}
	return &ParseError{Message: err.Error()}
}
