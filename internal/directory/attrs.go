package directory

import "encoding/json"

// Attr is a directory attribute value: either a single string or an ordered
// list of strings. The two shapes are tagged explicitly rather than coerced,
// so a one-element list stays a list.
type Attr struct {
	multi  bool
	values []string
}

func Single(value string) Attr {
	return Attr{values: []string{value}}
}

func Multi(values ...string) Attr {
	return Attr{multi: true, values: append([]string(nil), values...)}
}

// FromValues builds an Attr from raw directory values: one value is Single,
// anything else is Multi.
func FromValues(values []string) Attr {
	if len(values) == 1 {
		return Single(values[0])
	}
	return Multi(values...)
}

func (a Attr) IsMulti() bool {
	return a.multi
}

// Values returns the attribute values in order. Single yields one element.
func (a Attr) Values() []string {
	return append([]string(nil), a.values...)
}

// First returns the first value, or "" for an empty attribute.
func (a Attr) First() string {
	if len(a.values) == 0 {
		return ""
	}
	return a.values[0]
}

// MarshalJSON renders Single as a string and Multi as an array.
func (a Attr) MarshalJSON() ([]byte, error) {
	if a.multi {
		return json.Marshal(a.values)
	}
	return json.Marshal(a.First())
}

// Entry is a directory entry: a DN plus its attribute map.
type Entry struct {
	DN         string          `json:"dn"`
	Attributes map[string]Attr `json:"attributes"`
}
