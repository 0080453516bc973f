package rpc

import (
	"encoding/json"
	"strings"

	"github.com/pulselog/telemetry-gateway/pkg/wire"
)

// RequestEnvelope is a decoded request: the resolved owning service, the
// method name, and the positional parameters with their declared wire kinds.
// Envelopes are per-call values; nothing is shared across calls.
type RequestEnvelope struct {
	Service    string
	Method     string
	ParamKinds []wire.Kind
	Params     []any
	// Warnings holds field- and element-level degradations recorded while
	// decoding the parameters (see wire.Warning).
	Warnings []wire.Warning
}

// rawRequest distinguishes a missing field from a present-but-null one so
// MalformedRequest can be separated from ParseError.
type rawRequest struct {
	Method     *string            `json:"method"`
	Parameters *[]json.RawMessage `json:"parameters"`
}

// DecodeRequest parses a request payload and resolves its method against the
// dispatch table. Failure modes, in order: CodeEmptyPayload for a blank
// payload, CodeParseError for invalid JSON, CodeMalformedRequest when method
// or parameters is missing, CodeUnknownMethod when the method does not
// resolve, and CodeBadParameterType when any parameter fails to decode — the
// whole request fails atomically, there is no partial success.
func DecodeRequest(table *MethodTable, payload string) (*RequestEnvelope, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, NewError(CodeEmptyPayload, "received empty message payload")
	}

	var raw rawRequest
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, Errorf(CodeParseError, "message parse error: %v", err)
	}
	if raw.Method == nil || raw.Parameters == nil {
		return nil, NewError(CodeMalformedRequest, "improperly formed request: missing method or parameters")
	}

	method := *raw.Method
	service, ok := table.ServiceFor(method)
	if !ok {
		return nil, Errorf(CodeUnknownMethod, "invalid service request: unknown method %q", method)
	}

	env := &RequestEnvelope{
		Service:    service,
		Method:     method,
		ParamKinds: make([]wire.Kind, len(*raw.Parameters)),
		Params:     make([]any, len(*raw.Parameters)),
	}
	for i, paramRaw := range *raw.Parameters {
		var tv wire.TaggedValue
		if err := json.Unmarshal(paramRaw, &tv); err != nil {
			return nil, Errorf(CodeBadParameterType, "bad parameter %d: %v", i, err)
		}
		kind := tv.Kind()
		if kind == wire.KindInvalid {
			return nil, Errorf(CodeBadParameterType, "bad parameter %d: unrecognized tag %q", i, tv.Tag)
		}
		v, warnings, err := wire.DecodeValue(&tv)
		if err != nil {
			return nil, Errorf(CodeBadParameterType, "bad parameter %d: %v", i, err)
		}
		env.ParamKinds[i] = kind
		env.Params[i] = v
		env.Warnings = append(env.Warnings, warnings...)
	}
	return env, nil
}
