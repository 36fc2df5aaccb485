package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ettle/strcase"
	"github.com/go-playground/validator/v10"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedDefinition = "E100" // unsupported definition value

	// Structural errors (E101-E104)
	ErrMissingField     = "E101" // required field is empty
	ErrInvalidName      = "E102" // not a GraphQL name
	ErrInvalidType      = "E103" // invalid type string
	ErrInvalidDirection = "E104" // direction is not IN or OUT

	// Semantic errors (E105-E119)
	ErrDuplicateName      = "E105" // duplicate entity/attribute/relationship/properties name
	ErrUnknownTarget      = "E106" // relationship target is not an entity
	ErrUnknownProperties  = "E107" // relationship properties type is not declared
	ErrInvalidGlobalID    = "E108" // global id names a missing, list or geo attribute
	ErrReservedName       = "E109" // reserved type name
	ErrRootFieldCollision = "E110" // two entities read by the same root field
)

// ReservedTypeNames are generated by the read API and cannot be declared.
var ReservedTypeNames = []string{"Query", "Node", PointType, CartesianPointType, "PageInfo"}

// NodeRootField is the root field that resolves global identifiers.
const NodeRootField = "node"

// GlobalIDField is the client-facing alias of an entity's global identifier.
const GlobalIDField = "id"

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is returned by Build when a definition is invalid.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report paths with the authored (yaml) names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("gqlname", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("typeref", func(fl validator.FieldLevel) bool {
		_, err := ParseTypeRef(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks a definition against structural and semantic rules.
// Returns all errors found (does not fail-fast).
func Validate(def *Definition) []ValidationError {
	if def == nil {
		return []ValidationError{{
			Field:   "definition",
			Message: "definition is nil",
			Code:    ErrUnsupportedDefinition,
		}}
	}

	errs := validateStructure(def)
	errs = append(errs, validateNames(def)...)
	for i := range def.Entities {
		errs = append(errs, validateEntity(def, i)...)
	}
	return errs
}

// validateStructure runs the struct tag rules.
func validateStructure(def *Definition) []ValidationError {
	err := validate.Struct(def)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "definition", Message: err.Error(), Code: ErrUnsupportedDefinition}}
	}

	errs := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fieldErrorToValidationError(fe))
	}
	return errs
}

func fieldErrorToValidationError(fe validator.FieldError) ValidationError {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required", "min":
		return ValidationError{Field: field, Message: "is required", Code: ErrMissingField}
	case "gqlname":
		return ValidationError{Field: field, Message: fmt.Sprintf("%q is not a valid name", fe.Value()), Code: ErrInvalidName}
	case "typeref":
		return ValidationError{Field: field, Message: fmt.Sprintf("invalid type %q", fe.Value()), Code: ErrInvalidType}
	case "oneof":
		return ValidationError{Field: field, Message: fmt.Sprintf("invalid direction %q, must be \"IN\" or \"OUT\"", fe.Value()), Code: ErrInvalidDirection}
	default:
		return ValidationError{Field: field, Message: fmt.Sprintf("failed %q rule", fe.Tag()), Code: ErrUnsupportedDefinition}
	}
}

// validateNames checks type-level naming: duplicates, reserved names and
// root field collisions.
func validateNames(def *Definition) []ValidationError {
	var errs []ValidationError

	typeNames := make(map[string]bool)
	rootFields := make(map[string]string)

	for i, e := range def.Entities {
		field := fmt.Sprintf("entities[%d].name", i)
		if isReserved(e.Name) {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("%q is a reserved type name", e.Name), Code: ErrReservedName})
		}
		if typeNames[e.Name] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("duplicate type name: %q", e.Name), Code: ErrDuplicateName})
		}
		typeNames[e.Name] = true

		root := RootField(e)
		if root == NodeRootField {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entities[%d].plural", i),
				Message: fmt.Sprintf("root field %q is reserved for global node lookup", root),
				Code:    ErrRootFieldCollision,
			})
		} else if other, ok := rootFields[root]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entities[%d].plural", i),
				Message: fmt.Sprintf("root field %q already reads %q", root, other),
				Code:    ErrRootFieldCollision,
			})
		} else {
			rootFields[root] = e.Name
		}
	}

	for i, p := range def.Properties {
		field := fmt.Sprintf("properties[%d].name", i)
		if isReserved(p.Name) {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("%q is a reserved type name", p.Name), Code: ErrReservedName})
		}
		if typeNames[p.Name] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("duplicate type name: %q", p.Name), Code: ErrDuplicateName})
		}
		typeNames[p.Name] = true

		errs = append(errs, duplicateAttributes(p.Attributes, fmt.Sprintf("properties[%d]", i))...)
	}

	return errs
}

// validateEntity checks one entity's members against the whole definition.
func validateEntity(def *Definition, idx int) []ValidationError {
	e := def.Entities[idx]
	prefix := fmt.Sprintf("entities[%d]", idx)

	errs := duplicateAttributes(e.Attributes, prefix)

	members := make(map[string]bool, len(e.Attributes))
	for _, a := range e.Attributes {
		members[a.Name] = true
	}

	for j, r := range e.Relationships {
		field := fmt.Sprintf("%s.relationships[%d]", prefix, j)
		if members[r.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate field name %q on entity %q", r.Name, e.Name),
				Code:    ErrDuplicateName,
			})
		}
		members[r.Name] = true

		if r.Target != "" && !hasEntity(def, r.Target) {
			errs = append(errs, ValidationError{
				Field:   field + ".target",
				Message: fmt.Sprintf("unknown target entity %q", r.Target),
				Code:    ErrUnknownTarget,
			})
		}
		if r.Properties != "" && def.findProperties(r.Properties) == nil {
			errs = append(errs, ValidationError{
				Field:   field + ".properties",
				Message: fmt.Sprintf("unknown properties type %q", r.Properties),
				Code:    ErrUnknownProperties,
			})
		}
	}

	if e.GlobalID != "" {
		errs = append(errs, validateGlobalID(e, prefix)...)
	}

	return errs
}

func validateGlobalID(e EntityDefinition, prefix string) []ValidationError {
	field := prefix + ".globalId"

	var attr *AttributeDefinition
	for i := range e.Attributes {
		if e.Attributes[i].Name == e.GlobalID {
			attr = &e.Attributes[i]
			break
		}
	}
	if attr == nil {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("global id %q is not an attribute of %q", e.GlobalID, e.Name),
			Code:    ErrInvalidGlobalID,
		}}
	}

	var errs []ValidationError
	if ref, err := ParseTypeRef(attr.Type); err == nil && (ref.List || ref.Kind() != KindScalar) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("global id %q must be a scalar attribute, got %s", e.GlobalID, ref),
			Code:    ErrInvalidGlobalID,
		})
	}

	// The "id" alias resolves to the global id attribute, so a different
	// attribute named "id" would be unreachable.
	if e.GlobalID != GlobalIDField {
		for _, a := range e.Attributes {
			if a.Name == GlobalIDField {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("attribute %q is shadowed by the global id alias", GlobalIDField),
					Code:    ErrInvalidGlobalID,
				})
			}
		}
	}
	return errs
}

func duplicateAttributes(attrs []AttributeDefinition, prefix string) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(attrs))
	for i, a := range attrs {
		if seen[a.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.attributes[%d].name", prefix, i),
				Message: fmt.Sprintf("duplicate attribute name: %q", a.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[a.Name] = true
	}
	return errs
}

func hasEntity(def *Definition, name string) bool {
	for _, e := range def.Entities {
		if e.Name == name {
			return true
		}
	}
	return false
}

func isReserved(name string) bool {
	for _, r := range ReservedTypeNames {
		if r == name {
			return true
		}
	}
	return false
}

// RootField returns the root query field that reads an entity: the declared
// plural, or the camel-cased name with an "s" suffix.
func RootField(e EntityDefinition) string {
	if e.Plural != "" {
		return e.Plural
	}
	return strcase.ToCamel(e.Name) + "s"
}
