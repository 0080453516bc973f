package wire

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pulselog/telemetry-gateway/pkg/model"
)

// roundTrip encodes a value, marshals it to wire JSON, unmarshals, and
// decodes it back.
func roundTrip(t *testing.T, v any) (any, []Warning) {
	t.Helper()
	tv, err := EncodeValue(v)
	if err != nil {
		t.Fatalf("wire:roundtrip_test - encode: %v", err)
	}
	data, err := json.Marshal(tv)
	if err != nil {
		t.Fatalf("wire:roundtrip_test - marshal: %v", err)
	}
	var back TaggedValue
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("wire:roundtrip_test - unmarshal %s: %v", data, err)
	}
	out, warnings, err := DecodeValue(&back)
	if err != nil {
		t.Fatalf("wire:roundtrip_test - decode %s: %v", data, err)
	}
	return out, warnings
}

func TestRoundTripBooleanLiteral(t *testing.T) {
	// The encoder writes "true"/"false" as string literals; the decoder must
	// accept its own output.
	for _, b := range []bool{true, false} {
		got, warnings := roundTrip(t, b)
		if got != b {
			t.Errorf("wire:roundtrip_test - bool %v round-tripped to %v", b, got)
		}
		if len(warnings) != 0 {
			t.Errorf("wire:roundtrip_test - unexpected warnings: %v", warnings)
		}
	}
}

func TestRoundTripPhone(t *testing.T) {
	in := &model.Phone{ID: 3, ClientID: "dev-1", Version: "2.1.0"}
	got, warnings := roundTrip(t, in)
	phone, ok := got.(*model.Phone)
	if !ok {
		t.Fatalf("wire:roundtrip_test - got %T, want *model.Phone", got)
	}
	if *phone != *in {
		t.Errorf("wire:roundtrip_test - phone = %+v, want %+v", phone, in)
	}
	if len(warnings) != 0 {
		t.Errorf("wire:roundtrip_test - unexpected warnings: %v", warnings)
	}
}

func TestRoundTripEventWithApplication(t *testing.T) {
	when := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	in := &model.Event{
		ID:          5,
		RecordTime:  when,
		Description: "login",
		Data:        "ok",
		Latitude:    52.1,
		Longitude:   4.3,
		Application: &model.Application{ID: 10, Name: "tracker", AccountID: 42},
	}
	got, warnings := roundTrip(t, in)
	event := got.(*model.Event)
	if event.Description != "login" || !event.RecordTime.Equal(when) || event.Latitude != 52.1 {
		t.Errorf("wire:roundtrip_test - event = %+v", event)
	}
	if event.Application == nil || event.Application.ID != 10 || event.Application.AccountID != 42 {
		t.Errorf("wire:roundtrip_test - nested application = %+v", event.Application)
	}
	if len(warnings) != 0 {
		t.Errorf("wire:roundtrip_test - unexpected warnings: %v", warnings)
	}
}

func TestRoundTripSetDeduplicates(t *testing.T) {
	got, _ := roundTrip(t, NewSet("a", "b"))
	set := got.(*Set)
	if set.Len() != 2 {
		t.Errorf("wire:roundtrip_test - set Len = %d, want 2", set.Len())
	}

	// Duplicates on the wire collapse on decode.
	payload := `{"__jsonclass__":"HashSet","value":[
		{"__jsonclass__":"Long","value":1},
		{"__jsonclass__":"Long","value":1},
		{"__jsonclass__":"Long","value":2}]}`
	var tv TaggedValue
	if err := json.Unmarshal([]byte(payload), &tv); err != nil {
		t.Fatalf("wire:roundtrip_test - unmarshal: %v", err)
	}
	v, _, err := DecodeValue(&tv)
	if err != nil {
		t.Fatalf("wire:roundtrip_test - decode: %v", err)
	}
	if v.(*Set).Len() != 2 {
		t.Errorf("wire:roundtrip_test - wire duplicates should collapse, Len = %d", v.(*Set).Len())
	}
}

func TestApplicationNeverEmbedsFullAccount(t *testing.T) {
	account := &model.Account{ID: 42, Email: "owner@example.com", EmailToken: "secret"}
	app := &model.Application{ID: 10, Name: "tracker", Account: account}
	account.Applications = []*model.Application{app}

	tv, err := EncodeValue(account)
	if err != nil {
		t.Fatalf("wire:roundtrip_test - encode cyclic account: %v", err)
	}
	data, err := json.Marshal(tv)
	if err != nil {
		t.Fatalf("wire:roundtrip_test - marshal cyclic account: %v", err)
	}
	// The account appears once at the top; inside applications it must be a
	// bare id, so its email shows up exactly once in the payload.
	if n := strings.Count(string(data), "owner@example.com"); n != 1 {
		t.Errorf("wire:roundtrip_test - account email appears %d times, want 1:\n%s", n, data)
	}
	if n := strings.Count(string(data), `"Account"`); n != 1 {
		t.Errorf("wire:roundtrip_test - Account tag appears %d times, want 1", n)
	}
}

func TestAccountApplicationsDegradeOnDecode(t *testing.T) {
	// Applications encode under the List tag, which the decoder rejects, so a
	// full-circle account comes back without its applications and with a
	// warning naming the field.
	in := &model.Account{
		ID:           42,
		Email:        "owner@example.com",
		Applications: []*model.Application{{ID: 10, Name: "tracker", AccountID: 42}},
	}
	got, warnings := roundTrip(t, in)
	account := got.(*model.Account)
	if account.ID != 42 || account.Email != "owner@example.com" {
		t.Errorf("wire:roundtrip_test - account scalars should survive: %+v", account)
	}
	if account.Applications != nil {
		t.Errorf("wire:roundtrip_test - applications should degrade to absent, got %+v", account.Applications)
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w.Path, "applications") {
			found = true
		}
	}
	if !found {
		t.Errorf("wire:roundtrip_test - expected a warning for applications, got %v", warnings)
	}
}

func TestRoundTripConcurrentMatchesSerial(t *testing.T) {
	in := &model.Event{
		ID:          9,
		RecordTime:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Description: "heartbeat",
		Latitude:    1.5,
		Longitude:   2.5,
	}
	serialTV, err := EncodeValue(in)
	if err != nil {
		t.Fatalf("wire:roundtrip_test - serial encode: %v", err)
	}
	serialJSON, err := json.Marshal(serialTV)
	if err != nil {
		t.Fatalf("wire:roundtrip_test - serial marshal: %v", err)
	}
	serial, _, err := DecodeValue(mustUnmarshalTV(t, serialJSON))
	if err != nil {
		t.Fatalf("wire:roundtrip_test - serial decode: %v", err)
	}

	var wg sync.WaitGroup
	errCh := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tv, err := EncodeValue(in)
			if err != nil {
				errCh <- err.Error()
				return
			}
			data, err := json.Marshal(tv)
			if err != nil {
				errCh <- err.Error()
				return
			}
			var back TaggedValue
			if err := json.Unmarshal(data, &back); err != nil {
				errCh <- err.Error()
				return
			}
			out, _, err := DecodeValue(&back)
			if err != nil {
				errCh <- err.Error()
				return
			}
			if *out.(*model.Event) != *serial.(*model.Event) {
				errCh <- "concurrent decode diverged from serial decode"
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for msg := range errCh {
		t.Errorf("wire:roundtrip_test - %s", msg)
	}
}

func mustUnmarshalTV(t *testing.T, data []byte) *TaggedValue {
	t.Helper()
	var tv TaggedValue
	if err := json.Unmarshal(data, &tv); err != nil {
		t.Fatalf("wire:roundtrip_test - unmarshal %s: %v", data, err)
	}
	return &tv
}
