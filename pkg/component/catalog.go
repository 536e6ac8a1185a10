package component

import (
	"strings"
)

type entry struct {
	key   string
	value Value
}

// Catalog is an ordered collection of attributes, optionally parameterized.
// Attribute and parameter keys start with "$" and keep their insertion order,
// which the canonical form preserves. Catalogs are the universal shape of
// every value the notary produces: certificates, notarized documents,
// citations and persisted configurations.
type Catalog struct {
	attributes []entry
	parameters []entry
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Set adds an attribute, or replaces its value in place when the key already
// exists.
func (c *Catalog) Set(key string, value Value) {
	for i, e := range c.attributes {
		if e.key == key {
			c.attributes[i].value = value
			return
		}
	}
	c.attributes = append(c.attributes, entry{key: key, value: value})
}

// Get returns the value of an attribute, or nil when the key is absent.
func (c *Catalog) Get(key string) Value {
	for _, e := range c.attributes {
		if e.key == key {
			return e.value
		}
	}
	return nil
}

// Has reports whether an attribute exists.
func (c *Catalog) Has(key string) bool {
	return c.Get(key) != nil
}

// Remove deletes an attribute and returns its value, or nil when the key is
// absent.
func (c *Catalog) Remove(key string) Value {
	for i, e := range c.attributes {
		if e.key == key {
			c.attributes = append(c.attributes[:i], c.attributes[i+1:]...)
			return e.value
		}
	}
	return nil
}

// Keys returns the attribute keys in insertion order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.attributes))
	for i, e := range c.attributes {
		keys[i] = e.key
	}
	return keys
}

// Size returns the number of attributes.
func (c *Catalog) Size() int {
	return len(c.attributes)
}

// SetParameter adds a parameter, or replaces its value in place when the key
// already exists.
func (c *Catalog) SetParameter(key string, value Value) {
	for i, e := range c.parameters {
		if e.key == key {
			c.parameters[i].value = value
			return
		}
	}
	c.parameters = append(c.parameters, entry{key: key, value: value})
}

// Parameter returns the value of a parameter, or nil when the key is absent.
func (c *Catalog) Parameter(key string) Value {
	for _, e := range c.parameters {
		if e.key == key {
			return e.value
		}
	}
	return nil
}

// ParameterKeys returns the parameter keys in insertion order.
func (c *Catalog) ParameterKeys() []string {
	keys := make([]string, len(c.parameters))
	for i, e := range c.parameters {
		keys[i] = e.key
	}
	return keys
}

// Clone returns a deep copy. Nested catalogs are cloned recursively and
// binary values are copied; the other scalar values are immutable and shared.
func (c *Catalog) Clone() *Catalog {
	clone := &Catalog{
		attributes: make([]entry, len(c.attributes)),
		parameters: make([]entry, len(c.parameters)),
	}
	for i, e := range c.attributes {
		clone.attributes[i] = entry{key: e.key, value: cloneValue(e.value)}
	}
	for i, e := range c.parameters {
		clone.parameters[i] = entry{key: e.key, value: cloneValue(e.value)}
	}
	return clone
}

func cloneValue(v Value) Value {
	switch value := v.(type) {
	case *Catalog:
		return value.Clone()
	case Binary:
		duplicate := make(Binary, len(value))
		copy(duplicate, value)
		return duplicate
	default:
		return v
	}
}

// Format renders the canonical form: attributes one per line, indented four
// spaces per nesting level, with parameters appended to the closing bracket.
func (c *Catalog) Format() string {
	return c.formatAt(0)
}

func (c *Catalog) Equal(other Value) bool {
	return other != nil && c.Format() == other.Format()
}

func (c *Catalog) formatAt(depth int) string {
	var b strings.Builder
	if len(c.attributes) == 0 {
		b.WriteString("[:]")
	} else {
		b.WriteString("[\n")
		indent := strings.Repeat("    ", depth+1)
		for _, e := range c.attributes {
			b.WriteString(indent)
			b.WriteString(e.key)
			b.WriteString(": ")
			b.WriteString(formatValue(e.value, depth+1))
			b.WriteString("\n")
		}
		b.WriteString(strings.Repeat("    ", depth))
		b.WriteString("]")
	}
	if len(c.parameters) > 0 {
		b.WriteString("(")
		for i, e := range c.parameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.key)
			b.WriteString(": ")
			b.WriteString(formatValue(e.value, depth))
		}
		b.WriteString(")")
	}
	return b.String()
}

func formatValue(v Value, depth int) string {
	if catalog, ok := v.(*Catalog); ok {
		return catalog.formatAt(depth)
	}
	return v.Format()
}
