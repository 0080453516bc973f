package rpc

import (
	"strings"
	"testing"
	"time"

	"github.com/pulselog/telemetry-gateway/pkg/wire"
)

func decodeRequestErr(t *testing.T, payload string, wantCode int) *Error {
	t.Helper()
	_, err := DecodeRequest(testTable(t), payload)
	if err == nil {
		t.Fatalf("rpc:request_test - DecodeRequest(%q) should fail", payload)
	}
	rpcErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("rpc:request_test - error is %T, want *Error", err)
	}
	if rpcErr.Code != wantCode {
		t.Errorf("rpc:request_test - code = %d, want %d (%s)", rpcErr.Code, wantCode, rpcErr.Message)
	}
	return rpcErr
}

func TestDecodeRequestEmptyPayload(t *testing.T) {
	decodeRequestErr(t, "", CodeEmptyPayload)
	decodeRequestErr(t, "   \n\t", CodeEmptyPayload)
}

func TestDecodeRequestParseError(t *testing.T) {
	decodeRequestErr(t, "{not json", CodeParseError)
}

func TestDecodeRequestMalformed(t *testing.T) {
	decodeRequestErr(t, `{"parameters":[]}`, CodeMalformedRequest)
	decodeRequestErr(t, `{"method":"Greet"}`, CodeMalformedRequest)
	decodeRequestErr(t, `{"method":null,"parameters":[]}`, CodeMalformedRequest)
}

func TestDecodeRequestUnknownMethod(t *testing.T) {
	err := decodeRequestErr(t, `{"method":"Nope","parameters":[]}`, CodeUnknownMethod)
	if !strings.Contains(err.Message, "Nope") {
		t.Errorf("rpc:request_test - message should name the method: %q", err.Message)
	}
}

func TestDecodeRequestSuccess(t *testing.T) {
	payload := `{"method":"Greet","parameters":[{"__jsonclass__":"String","value":"world"}]}`
	env, err := DecodeRequest(testTable(t), payload)
	if err != nil {
		t.Fatalf("rpc:request_test - DecodeRequest: %v", err)
	}
	if env.Service != "greeter" || env.Method != "Greet" {
		t.Errorf("rpc:request_test - envelope = %+v", env)
	}
	if len(env.Params) != 1 || env.Params[0] != "world" {
		t.Errorf("rpc:request_test - params = %v", env.Params)
	}
	if len(env.ParamKinds) != 1 || env.ParamKinds[0] != wire.KindString {
		t.Errorf("rpc:request_test - param kinds = %v", env.ParamKinds)
	}
}

func TestDecodeRequestNoParameters(t *testing.T) {
	env, err := DecodeRequest(testTable(t), `{"method":"Reset","parameters":[]}`)
	if err != nil {
		t.Fatalf("rpc:request_test - DecodeRequest: %v", err)
	}
	if len(env.Params) != 0 {
		t.Errorf("rpc:request_test - params = %v, want empty", env.Params)
	}
}

func TestDecodeRequestBadParameterAtomicity(t *testing.T) {
	// The second parameter fails, so the whole request fails even though the
	// first decoded cleanly.
	payload := `{"method":"Add","parameters":[
		{"__jsonclass__":"Long","value":1},
		{"__jsonclass__":"Long","value":"not-a-number"}]}`
	err := decodeRequestErr(t, payload, CodeBadParameterType)
	if !strings.Contains(err.Message, "parameter 1") {
		t.Errorf("rpc:request_test - message should index the bad parameter: %q", err.Message)
	}
}

func TestDecodeRequestUnknownTag(t *testing.T) {
	payload := `{"method":"Greet","parameters":[{"__jsonclass__":"Blob","value":"x"}]}`
	decodeRequestErr(t, payload, CodeBadParameterType)
}

func TestDecodeRequestUntaggedParameter(t *testing.T) {
	payload := `{"method":"Greet","parameters":["bare"]}`
	decodeRequestErr(t, payload, CodeBadParameterType)
}

func TestDecodeRequestListParameterRejected(t *testing.T) {
	payload := `{"method":"Greet","parameters":[{"__jsonclass__":"List","value":[]}]}`
	decodeRequestErr(t, payload, CodeBadParameterType)
}

func TestDecodeRequestCollectsWarnings(t *testing.T) {
	payload := `{"method":"Greet","parameters":[{"__jsonclass__":"Date","value":"garbage"}]}`
	env, err := DecodeRequest(testTable(t), payload)
	if err != nil {
		t.Fatalf("rpc:request_test - DecodeRequest: %v", err)
	}
	if env.Params[0] != nil {
		t.Errorf("rpc:request_test - bad date should decode absent, got %v", env.Params[0])
	}
	if len(env.Warnings) != 1 {
		t.Errorf("rpc:request_test - warnings = %v, want one", env.Warnings)
	}
}

func TestDecodeRequestDateParameter(t *testing.T) {
	payload := `{"method":"Greet","parameters":[{"__jsonclass__":"Date","value":"20260824120000"}]}`
	env, err := DecodeRequest(testTable(t), payload)
	if err != nil {
		t.Fatalf("rpc:request_test - DecodeRequest: %v", err)
	}
	want := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	ts, ok := env.Params[0].(time.Time)
	if !ok || !ts.Equal(want) {
		t.Errorf("rpc:request_test - date param = %v, want %v", env.Params[0], want)
	}
}
