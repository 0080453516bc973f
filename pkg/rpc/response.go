package rpc

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pulselog/telemetry-gateway/pkg/wire"
)

const responseLogPrefix = "rpc:response"

// ResponseEnvelope is the outbound wire shape: an encoded result value (or
// absent for void and failed calls), a numeric error code with 0 meaning
// success, and a human-readable message for failures.
type ResponseEnvelope struct {
	Value        *wire.TaggedValue `json:"value,omitempty"`
	ErrorCode    int               `json:"error"`
	ErrorMessage string            `json:"errorMessage"`
}

// Success builds a success envelope around an encoded result value. A nil
// result yields an envelope with no value (void call). If the result cannot
// be encoded the envelope degrades to an EncodeFailure error.
func Success(result any) *ResponseEnvelope {
	tv, err := wire.EncodeValue(result)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - encode failed: %v", responseLogPrefix, err))
		return Failure(Errorf(CodeEncodeFailure, "cannot encode result: %v", err))
	}
	return &ResponseEnvelope{Value: tv, ErrorCode: CodeOK}
}

// Failure builds a failure envelope from an error, mapping it to a numeric
// code via CodeOf.
func Failure(err error) *ResponseEnvelope {
	return &ResponseEnvelope{
		ErrorCode:    CodeOf(err),
		ErrorMessage: err.Error(),
	}
}

// Encode marshals the envelope to its outbound payload string.
func (r *ResponseEnvelope) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("%s - failed to marshal response: %w", responseLogPrefix, err)
	}
	return string(data), nil
}
