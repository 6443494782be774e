package conventions

import (
	"go/token"
	"slices"

	"github.com/zjrosen/roster/internal/loader"
)

// Identity fields every domain type declares.
const (
	FieldID      = "ID"
	FieldVersion = "Version"
)

// TagTransient marks a field that is not persisted: `roster:"transient"`.
const TagTransient = "transient"

// Property is an exported field of a domain type.
type Property struct {
	Name       string
	Type       string
	Persistent bool
}

// Domain is a persistent entity type.
type Domain struct {
	artifact
	properties []Property
}

// IsDomain reports whether t is a struct declaring both identity fields.
func IsDomain(t *loader.Type) bool {
	return t != nil && t.Kind() == loader.KindStruct && t.HasField(FieldID) && t.HasField(FieldVersion)
}

// NewDomain builds the domain facade for t.
func NewDomain(t *loader.Type) (*Domain, error) {
	d := &Domain{artifact: newArtifact(t, "")}
	for _, f := range t.Fields() {
		if f.Embedded || !token.IsExported(f.Name) {
			continue
		}
		d.properties = append(d.properties, Property{
			Name:       f.Name,
			Type:       f.Type,
			Persistent: f.Tag.Get("roster") != TagTransient,
		})
	}
	return d, nil
}

// Properties lists every exported field in declaration order.
func (d *Domain) Properties() []Property { return slices.Clone(d.properties) }

// PersistentProperties lists the properties that are stored.
func (d *Domain) PersistentProperties() []Property {
	var out []Property
	for _, p := range d.properties {
		if p.Persistent {
			out = append(out, p)
		}
	}
	return out
}

// Property returns the named property.
func (d *Domain) Property(name string) (Property, bool) {
	for _, p := range d.properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}
