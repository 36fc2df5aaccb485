// Package irtext renders query IR as an indented, human-readable outline.
//
// The CLI prints this for `compile --format text`. The output is
// deterministic: field maps are rendered in sorted key order and argument
// values in canonical JSON.
package irtext

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/resolvetree/internal/queryir"
	"github.com/roach88/resolvetree/internal/value"
)

const indentUnit = "  "

// Renderer renders IR trees.
type Renderer struct {
	// Indent is the indentation prefix of the root line.
	Indent string
}

// Render renders op with no root indentation.
func Render(op *queryir.ReadOperation) (string, error) {
	return (&Renderer{}).Render(op)
}

// Render converts op to its outline.
//
//	movies: read Movie
//	  where {"predicates":{"title":{"equals":"Matrix"}}}
//	  connection first=5 sort=[{node.title ASC}]
//	    edges
//	      node
//	        title
func (r *Renderer) Render(op *queryir.ReadOperation) (string, error) {
	if op == nil {
		return "", fmt.Errorf("cannot render nil read")
	}
	var b strings.Builder
	if err := r.read(&b, op.Alias, op, r.Indent); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (r *Renderer) read(b *strings.Builder, key string, op *queryir.ReadOperation, indent string) error {
	b.WriteString(indent + key + ": read " + op.Target)
	if rel := op.Relationship; rel != nil {
		fmt.Fprintf(b, " via %s.%s [%s %s]", rel.Source, rel.Name, rel.Type, rel.Direction)
		if rel.Properties != "" {
			b.WriteString(" properties " + rel.Properties)
		}
	}
	b.WriteString("\n")

	indent += indentUnit
	if op.Where != nil {
		where, err := canonicalJSON(op.Where)
		if err != nil {
			return fmt.Errorf("render where: %w", err)
		}
		b.WriteString(indent + "where " + where + "\n")
	}

	conn := op.Connection
	if conn == nil {
		return nil
	}
	b.WriteString(indent + conn.Alias + connectionArgs(conn.Args) + "\n")

	edge := conn.Edges
	if edge == nil {
		return nil
	}
	indent += indentUnit
	b.WriteString(indent + edge.Alias + "\n")

	indent += indentUnit
	if node := edge.Node; node != nil {
		b.WriteString(indent + node.Alias + "\n")
		for _, k := range sortedKeys(node.Fields) {
			if err := r.field(b, k, node.Fields[k], indent+indentUnit); err != nil {
				return err
			}
		}
	}
	if props := edge.Properties; props != nil {
		b.WriteString(indent + props.Alias + "\n")
		for _, k := range sortedKeys(props.Fields) {
			if err := r.field(b, k, props.Fields[k], indent+indentUnit); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) field(b *strings.Builder, key string, f queryir.NodeField, indent string) error {
	switch field := f.(type) {
	case *queryir.ReadOperation:
		return r.read(b, key, field, indent)
	case *queryir.ScalarField:
		line, err := scalar(key, field)
		if err != nil {
			return err
		}
		b.WriteString(indent + line + "\n")
	case *queryir.PointField:
		b.WriteString(indent + named(key, field.Name) + ": Point " +
			components(field.Longitude, field.Latitude, field.Height, field.CRS, field.SRID) + "\n")
	case *queryir.CartesianPointField:
		b.WriteString(indent + named(key, field.Name) + ": CartesianPoint " +
			components(field.X, field.Y, field.Z, field.CRS, field.SRID) + "\n")
	default:
		return fmt.Errorf("unsupported field type: %T", f)
	}
	return nil
}

// scalar renders "key", "key <- name" when the response key differs from
// the stored attribute, plus arguments and the global id marker.
func scalar(key string, f *queryir.ScalarField) (string, error) {
	line := named(key, f.Name)
	if len(f.Args) > 0 {
		args, err := canonicalJSON(f.Args)
		if err != nil {
			return "", fmt.Errorf("render args of %s: %w", key, err)
		}
		line += " args=" + args
	}
	if f.GlobalID {
		line += " (global id)"
	}
	return line, nil
}

func named(key, name string) string {
	if key == name {
		return key
	}
	return key + " <- " + name
}

// components lists the selected geo components in canonical order.
func components(fields ...*queryir.ScalarField) string {
	var parts []string
	for _, f := range fields {
		if f != nil {
			parts = append(parts, named(f.Alias, f.Name))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func connectionArgs(args queryir.ConnectionArgs) string {
	var parts []string
	if args.First != nil {
		parts = append(parts, fmt.Sprintf("first=%d", *args.First))
	}
	if args.After != nil {
		parts = append(parts, fmt.Sprintf("after=%q", *args.After))
	}
	if len(args.Sort) > 0 {
		entries := make([]string, 0, len(args.Sort))
		for _, se := range args.Sort {
			var keys []string
			for _, sf := range se.Node {
				keys = append(keys, fmt.Sprintf("node.%s %s", sf.Field, sf.Direction))
			}
			for _, sf := range se.Properties {
				keys = append(keys, fmt.Sprintf("properties.%s %s", sf.Field, sf.Direction))
			}
			entries = append(entries, "{"+strings.Join(keys, ", ")+"}")
		}
		parts = append(parts, "sort=["+strings.Join(entries, ", ")+"]")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// canonicalJSON encodes v (anything JSON-encodable) in canonical form.
func canonicalJSON(v any) (string, error) {
	conv, err := toValue(v)
	if err != nil {
		return "", err
	}
	data, err := value.MarshalCanonical(conv)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func toValue(v any) (value.Value, error) {
	if val, ok := v.(value.Value); ok {
		return val, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return value.Unmarshal(data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
