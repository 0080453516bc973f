// Package wire implements the type-tagged JSON format used between clients
// and the gateway. Every value on the wire is a JSON object carrying a
// "__jsonclass__" tag naming its kind, so heterogeneous parameters and nested
// objects can be reconstructed without positional schema knowledge.
//
// Request:   {"method": "service-method-name", "parameters": [param0, param1, ...]}
// Parameter: {"__jsonclass__": "kind", "value": payload} or
//            {"__jsonclass__": "kind", field: param, field: param, ...}
package wire

// TagClass is the discriminator field present on every tagged value.
const TagClass = "__jsonclass__"

// DateLayout is the fixed wire format for Date values (yyyyMMddHHmmss).
const DateLayout = "20060102150405"

// Kind identifies one of the closed set of wire value kinds.
type Kind int

const (
	KindInvalid Kind = iota
	KindInteger
	KindLong
	KindDouble
	KindBoolean
	KindString
	KindDate
	KindList
	KindSet
	KindEvent
	KindAccount
	KindApplication
	KindCarrier
	KindPhone
	KindProvisioning
	KindProvisioningParameter
	KindLocationFix
	KindCounter
)

// The tag vocabulary is closed: entries are fixed at process start and never
// change at runtime. The List tag is produced by the encoder but never
// accepted by the decoder (see DecodeValue).
var tagsByKind = map[Kind]string{
	KindInteger:               "Integer",
	KindLong:                  "Long",
	KindDouble:                "Double",
	KindBoolean:               "Boolean",
	KindString:                "String",
	KindDate:                  "Date",
	KindList:                  "List",
	KindSet:                   "HashSet",
	KindEvent:                 "Event",
	KindAccount:               "Account",
	KindApplication:           "Application",
	KindCarrier:               "Carrier",
	KindPhone:                 "Phone",
	KindProvisioning:          "Provisioning",
	KindProvisioningParameter: "ProvisioningParameter",
	KindLocationFix:           "LocationFix",
	KindCounter:               "Counter",
}

var kindsByTag = func() map[string]Kind {
	m := make(map[string]Kind, len(tagsByKind))
	for k, tag := range tagsByKind {
		m[tag] = k
	}
	return m
}()

// TagFor returns the wire tag for a kind, or the empty string for an
// unregistered kind.
func TagFor(k Kind) string {
	return tagsByKind[k]
}

// KindFor returns the kind for a wire tag, or KindInvalid when the tag is not
// part of the vocabulary.
func KindFor(tag string) Kind {
	return kindsByTag[tag]
}

// IsEntity reports whether the kind is one of the registered domain entity
// kinds (flat-field wire shape rather than the wrapped-value shape).
func (k Kind) IsEntity() bool {
	switch k {
	case KindEvent, KindAccount, KindApplication, KindCarrier, KindPhone,
		KindProvisioning, KindProvisioningParameter, KindLocationFix, KindCounter:
		return true
	}
	return false
}

func (k Kind) String() string {
	if tag, ok := tagsByKind[k]; ok {
		return tag
	}
	return "Invalid"
}
