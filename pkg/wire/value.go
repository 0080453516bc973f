package wire

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// TaggedValue is the wire envelope for a single value. Exactly one of the two
// shapes is populated:
//
//   - wrapped form: Value holds the payload (primitive, date string, or an
//     array of nested tagged values for containers);
//   - flat form: Fields holds named nested values (entity kinds, and
//     Provisioning whose field names are dynamic parameter names).
//
// After UnmarshalJSON, Value holds a json.RawMessage; the decoder parses it
// according to the kind's natural representation. The encoder populates Value
// with native Go values ready for marshaling.
type TaggedValue struct {
	Tag    string
	Value  any
	Fields map[string]*TaggedValue
}

// MarshalJSON emits the tagged object: the discriminator plus either the
// single "value" payload or the flat field set.
func (tv *TaggedValue) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(tv.Fields)+2)
	m[TagClass] = tv.Tag
	if tv.Fields != nil {
		for name, field := range tv.Fields {
			if field == nil {
				continue
			}
			m[name] = field
		}
	} else {
		m["value"] = tv.Value
	}
	return json.Marshal(m)
}

// UnmarshalJSON parses a tagged object. The payload under "value" is kept raw
// for the decoder; flat-form fields are parsed recursively, with a field that
// is not itself a tagged object recorded as nil so the decoder can degrade it
// to an absent value instead of failing the whole envelope.
func (tv *TaggedValue) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("wire: tagged value is not an object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("wire: tagged value is null")
	}

	tagRaw, ok := raw[TagClass]
	if !ok {
		return fmt.Errorf("wire: tagged value has no %s field", TagClass)
	}
	var tag string
	if err := json.Unmarshal(tagRaw, &tag); err != nil {
		return fmt.Errorf("wire: %s is not a string: %w", TagClass, err)
	}
	tv.Tag = tag

	if KindFor(tag).IsEntity() {
		tv.Fields = make(map[string]*TaggedValue, len(raw)-1)
		for name, fieldRaw := range raw {
			if name == TagClass {
				continue
			}
			var field TaggedValue
			if err := json.Unmarshal(fieldRaw, &field); err != nil {
				tv.Fields[name] = nil
				continue
			}
			tv.Fields[name] = &field
		}
		return nil
	}

	if valueRaw, ok := raw["value"]; ok {
		tv.Value = valueRaw
	}
	return nil
}

// Kind returns the registered kind for the value's tag.
func (tv *TaggedValue) Kind() Kind {
	return KindFor(tv.Tag)
}

// rawValue returns the wrapped payload as raw JSON, or nil when the payload
// is missing or was populated natively by the encoder.
func (tv *TaggedValue) rawValue() (json.RawMessage, bool) {
	raw, ok := tv.Value.(json.RawMessage)
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// Set is an unordered, deduplicating collection of decoded values. Elements
// may be heterogeneous; equality is structural.
type Set struct {
	elems []any
}

// NewSet builds a Set from the given values, dropping duplicates.
func NewSet(values ...any) *Set {
	s := &Set{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts a value unless an equal element is already present.
func (s *Set) Add(v any) {
	if s.Contains(v) {
		return
	}
	s.elems = append(s.elems, v)
}

// Contains reports whether an equal element is present.
func (s *Set) Contains(v any) bool {
	for _, e := range s.elems {
		if reflect.DeepEqual(e, v) {
			return true
		}
	}
	return false
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.elems)
}

// Values returns the elements in unspecified order.
func (s *Set) Values() []any {
	out := make([]any, len(s.elems))
	copy(out, s.elems)
	return out
}

// sortedFieldNames returns the flat-form field names in stable order, for
// deterministic logging and tests.
func (tv *TaggedValue) sortedFieldNames() []string {
	names := make([]string, 0, len(tv.Fields))
	for name := range tv.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
