package commsutil

import "testing"

func TestBuildRecordSubject(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		want     string
	}{
		{"basic", "device-42", "tg.records.ingested.device-42"},
		{"dotted id", "ios.4F2A", "tg.records.ingested.ios_4F2A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildRecordSubject(tt.clientID)
			if got != tt.want {
				t.Errorf("BuildRecordSubject(%q) = %q, want %q", tt.clientID, got, tt.want)
			}
		})
	}
}

func TestBuildAccountSubject(t *testing.T) {
	got := BuildAccountSubject(17)
	if got != "tg.accounts.changed.17" {
		t.Errorf("BuildAccountSubject(17) = %q, want %q", got, "tg.accounts.changed.17")
	}
}
