package nagios

import (
	"strings"
)

// Object types used in rendered configuration
const (
	ObjectTypeHost    = "host"
	ObjectTypeService = "service"
)

// attributeWidth is the column the attribute value starts at, matching the
// layout Nagios tooling writes.
const attributeWidth = 30

type attribute struct {
	key   string
	value string
}

// ObjectDefinition is a single `define <type> { ... }` block. Attributes keep
// the order in which they were first set.
type ObjectDefinition struct {
	Type  string
	attrs []attribute
}

func NewObjectDefinition(objectType string) *ObjectDefinition {
	return &ObjectDefinition{Type: objectType}
}

// Set assigns an attribute. Setting an existing key replaces the value in place.
func (o *ObjectDefinition) Set(key, value string) *ObjectDefinition {
	for i := range o.attrs {
		if o.attrs[i].key == key {
			o.attrs[i].value = value
			return o
		}
	}
	o.attrs = append(o.attrs, attribute{key: key, value: value})
	return o
}

// Get returns the attribute value and whether it is set.
func (o *ObjectDefinition) Get(key string) (string, bool) {
	for _, a := range o.attrs {
		if a.key == key {
			return a.value, true
		}
	}
	return "", false
}

// Keys returns attribute names in definition order.
func (o *ObjectDefinition) Keys() []string {
	keys := make([]string, len(o.attrs))
	for i, a := range o.attrs {
		keys[i] = a.key
	}
	return keys
}

func (o *ObjectDefinition) writeTo(b *strings.Builder) {
	b.WriteString("define ")
	b.WriteString(o.Type)
	b.WriteString(" {\n")
	for _, a := range o.attrs {
		b.WriteString("  ")
		b.WriteString(a.key)
		if pad := attributeWidth - len(a.key); pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(" ")
		b.WriteString(a.value)
		b.WriteString("\n")
	}
	b.WriteString("}\n")
}

func (o *ObjectDefinition) String() string {
	var b strings.Builder
	o.writeTo(&b)
	return b.String()
}

// FormatObjects joins blocks with a blank line between them.
func FormatObjects(objects []*ObjectDefinition) string {
	var b strings.Builder
	for i, o := range objects {
		if i > 0 {
			b.WriteString("\n")
		}
		o.writeTo(&b)
	}
	return b.String()
}
