package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Warning records a field- or element-level decode failure that was degraded
// to an absent value instead of aborting the surrounding structure. A nil
// decoded value with no matching warning is absent by design (null input,
// missing payload); a warning marks absence due to failure.
type Warning struct {
	Path   string
	Reason string
}

func warnf(path, format string, args ...any) Warning {
	return Warning{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// DecodeValue converts a tagged wire value into its native representation.
//
// Primitive kinds parse strictly from the wrapped payload, except Boolean,
// which also accepts a boolean-like string. Date parses with DateLayout and
// degrades to absent on failure rather than erroring; this asymmetry is part
// of the wire contract. HashSet decodes per-element, dropping failed elements
// to absent. Entity kinds match wire keys case-insensitively against the
// entity's field table; failed field assignments leave the field at its
// default and are reported in the returned warnings.
//
// The List tag is encode-only and is rejected here, as is any tag outside
// the registered vocabulary.
func DecodeValue(tv *TaggedValue) (any, []Warning, error) {
	return decodeValue(tv, "")
}

func decodeValue(tv *TaggedValue, path string) (any, []Warning, error) {
	if tv == nil {
		return nil, nil, nil
	}

	kind := tv.Kind()
	switch kind {
	case KindInteger:
		n, err := decodeInteger(tv)
		if err != nil {
			return nil, nil, err
		}
		return n, nil, nil
	case KindLong:
		n, err := decodeLong(tv)
		if err != nil {
			return nil, nil, err
		}
		return n, nil, nil
	case KindDouble:
		f, err := decodeDouble(tv)
		if err != nil {
			return nil, nil, err
		}
		return f, nil, nil
	case KindBoolean:
		b, err := decodeBoolean(tv)
		if err != nil {
			return nil, nil, err
		}
		return b, nil, nil
	case KindString:
		s, err := decodeString(tv)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case KindDate:
		return decodeDate(tv, path)
	case KindSet:
		return decodeSet(tv, path)
	case KindList:
		return nil, nil, fmt.Errorf("wire: tag %q is encode-only and cannot be decoded", tv.Tag)
	default:
		if kind.IsEntity() {
			return decodeEntity(tv, kind, path)
		}
		return nil, nil, fmt.Errorf("wire: unrecognized tag %q", tv.Tag)
	}
}

func decodeInteger(tv *TaggedValue) (int, error) {
	raw, ok := tv.rawValue()
	if !ok {
		return 0, fmt.Errorf("wire: Integer value missing")
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("wire: cannot parse Integer from %s", raw)
}

func decodeLong(tv *TaggedValue) (int64, error) {
	raw, ok := tv.rawValue()
	if !ok {
		return 0, fmt.Errorf("wire: Long value missing")
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("wire: cannot parse Long from %s", raw)
}

func decodeDouble(tv *TaggedValue) (float64, error) {
	raw, ok := tv.rawValue()
	if !ok {
		return 0, fmt.Errorf("wire: Double value missing")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("wire: cannot parse Double from %s", raw)
}

// decodeBoolean is lenient: clients send both native booleans and the string
// literals the encoder itself produces.
func decodeBoolean(tv *TaggedValue) (bool, error) {
	raw, ok := tv.rawValue()
	if !ok {
		return false, fmt.Errorf("wire: Boolean value missing")
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, nil
		}
	}
	return false, fmt.Errorf("wire: cannot parse Boolean from %s", raw)
}

func decodeString(tv *TaggedValue) (string, error) {
	raw, ok := tv.rawValue()
	if !ok {
		return "", fmt.Errorf("wire: String value missing")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("wire: cannot parse String from %s", raw)
	}
	return s, nil
}

// decodeDate never errors: a missing payload is absent by design, an
// unparseable one degrades to absent with a warning.
func decodeDate(tv *TaggedValue, path string) (any, []Warning, error) {
	raw, ok := tv.rawValue()
	if !ok {
		return nil, nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, []Warning{warnf(path, "Date value is not a string")}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, []Warning{warnf(path, "cannot parse Date %q", s)}, nil
	}
	return t, nil, nil
}

func decodeSet(tv *TaggedValue, path string) (any, []Warning, error) {
	raw, ok := tv.rawValue()
	if !ok {
		return nil, nil, fmt.Errorf("wire: HashSet value missing")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, nil, fmt.Errorf("wire: HashSet value is not an array: %w", err)
	}

	set := NewSet()
	var warnings []Warning
	for i, elemRaw := range elems {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		var elem TaggedValue
		if err := json.Unmarshal(elemRaw, &elem); err != nil {
			warnings = append(warnings, warnf(elemPath, "element is not a tagged value"))
			continue
		}
		v, ws, err := decodeValue(&elem, elemPath)
		warnings = append(warnings, ws...)
		if err != nil {
			warnings = append(warnings, warnf(elemPath, "%v", err))
			continue
		}
		if v != nil {
			set.Add(v)
		}
	}
	return set, warnings, nil
}

// decodeEntity constructs a fresh default instance and assigns every wire key
// that matches a declared field case-insensitively. Unmatched keys are
// ignored; a failed assignment leaves the field at its default and is
// reported as a warning.
func decodeEntity(tv *TaggedValue, kind Kind, path string) (any, []Warning, error) {
	spec, ok := entitySpecs[kind]
	if !ok {
		return nil, nil, fmt.Errorf("wire: no field table for entity tag %q", tv.Tag)
	}

	target := spec.newInstance()
	var warnings []Warning
	for _, name := range tv.sortedFieldNames() {
		fieldPath := path + "." + name
		if path == "" {
			fieldPath = strings.ToLower(tv.Tag) + "." + name
		}

		setter, ok := spec.fields[strings.ToLower(name)]
		if !ok {
			continue
		}
		field := tv.Fields[name]
		if field == nil {
			warnings = append(warnings, warnf(fieldPath, "field value is not a tagged value"))
			continue
		}
		v, ws, err := decodeValue(field, fieldPath)
		warnings = append(warnings, ws...)
		if err != nil {
			warnings = append(warnings, warnf(fieldPath, "%v", err))
			continue
		}
		if v == nil {
			continue
		}
		if err := setter(target, v); err != nil {
			warnings = append(warnings, warnf(fieldPath, "%v", err))
		}
	}
	return target, warnings, nil
}
