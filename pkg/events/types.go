// Package events defines event types and publisher interfaces for gateway
// change events.
package events

// RecordIngestedEvent is emitted after a telemetry record is stored.
type RecordIngestedEvent struct {
	ClientID      string `json:"clientId"`
	ApplicationID int64  `json:"applicationId,omitempty"`
	RecordKind    string `json:"recordKind"` // "event" or "locationFix"
	RecordID      int64  `json:"recordId"`
	Count         int64  `json:"count"`
	Timestamp     string `json:"timestamp"`
}

// AccountChangedEvent is emitted after an account mutation.
type AccountChangedEvent struct {
	AccountID     int64    `json:"accountId"`
	ChangedFields []string `json:"changedFields"`
	Timestamp     string   `json:"timestamp"`
}
