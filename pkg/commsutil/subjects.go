package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	// SubjectGateway receives raw tagged-JSON request payloads.
	SubjectGateway = "tg.gateway.v1"
	// SubjectRecordEvent carries record-ingested change events.
	SubjectRecordEvent = "tg.records.ingested"
	// SubjectAccountEvent carries account change events.
	SubjectAccountEvent = "tg.accounts.changed"
)

// BuildRecordSubject builds a granular record-ingested subject for one client
// device. Dots in the client id would create extra subject tokens, so they
// are folded to underscores.
func BuildRecordSubject(clientID string) string {
	safe := strings.ReplaceAll(clientID, ".", "_")
	return fmt.Sprintf("%s.%s", SubjectRecordEvent, safe)
}

// BuildAccountSubject builds a granular account change subject.
func BuildAccountSubject(accountID int64) string {
	return fmt.Sprintf("%s.%d", SubjectAccountEvent, accountID)
}
