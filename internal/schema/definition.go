package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the authored form of a schema, before validation and
// resolution. Slices keep declaration order.
type Definition struct {
	Entities   []EntityDefinition     `yaml:"entities" json:"entities" validate:"required,min=1,dive"`
	Properties []PropertiesDefinition `yaml:"properties,omitempty" json:"properties,omitempty" validate:"dive"`
}

// EntityDefinition declares one entity.
type EntityDefinition struct {
	Name          string                   `yaml:"name" json:"name" validate:"required,gqlname"`
	Plural        string                   `yaml:"plural,omitempty" json:"plural,omitempty" validate:"omitempty,gqlname"`
	GlobalID      string                   `yaml:"globalId,omitempty" json:"globalId,omitempty" validate:"omitempty,gqlname"`
	Attributes    []AttributeDefinition    `yaml:"attributes,omitempty" json:"attributes,omitempty" validate:"dive"`
	Relationships []RelationshipDefinition `yaml:"relationships,omitempty" json:"relationships,omitempty" validate:"dive"`
}

// AttributeDefinition declares a typed attribute.
type AttributeDefinition struct {
	Name string `yaml:"name" json:"name" validate:"required,gqlname"`
	Type string `yaml:"type" json:"type" validate:"required,typeref"`
}

// RelationshipDefinition declares a relationship from the enclosing entity.
type RelationshipDefinition struct {
	Name       string `yaml:"name" json:"name" validate:"required,gqlname"`
	Type       string `yaml:"type" json:"type" validate:"required,gqlname"`
	Direction  string `yaml:"direction" json:"direction" validate:"required,oneof=IN OUT"`
	Target     string `yaml:"target" json:"target" validate:"required,gqlname"`
	Properties string `yaml:"properties,omitempty" json:"properties,omitempty" validate:"omitempty,gqlname"`
}

// PropertiesDefinition declares the attributes carried by relationships
// that reference it.
type PropertiesDefinition struct {
	Name       string                `yaml:"name" json:"name" validate:"required,gqlname"`
	Attributes []AttributeDefinition `yaml:"attributes" json:"attributes" validate:"required,min=1,dive"`
}

// LoadYAML reads a Definition from a YAML file.
func LoadYAML(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading schema: %v", err)}
	}
	return ParseYAML(data)
}

// ParseYAML decodes a Definition from YAML bytes. Unknown keys are rejected.
func ParseYAML(data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing schema YAML: %v", err)}
	}
	return &def, nil
}

// findProperties returns the properties definition with the given name.
func (d *Definition) findProperties(name string) *PropertiesDefinition {
	for i := range d.Properties {
		if d.Properties[i].Name == name {
			return &d.Properties[i]
		}
	}
	return nil
}
