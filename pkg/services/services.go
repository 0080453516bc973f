// Package services declares the four service interfaces reachable over the
// wire protocol and their Postgres-backed implementations. The dispatch table
// in pkg/rpc is built from exactly these interfaces; a method name may appear
// in only one of them.
package services

import (
	"context"
	"time"

	"github.com/pulselog/telemetry-gateway/pkg/model"
	"github.com/pulselog/telemetry-gateway/pkg/wire"
)

// AccountService manages customer accounts.
type AccountService interface {
	// RegisterAccount creates a new account and issues an email
	// verification token.
	RegisterAccount(ctx context.Context, email, name, phoneNumber string) (*model.Account, error)
	// GetAccount returns the account with the given id, applications
	// included.
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	// VerifyEmail consumes a verification token and activates the account.
	VerifyEmail(ctx context.Context, token string) (bool, error)
	// UpdateAccountDescription replaces the account description.
	UpdateAccountDescription(ctx context.Context, id int64, description string) (*model.Account, error)
	// SetNotification toggles notification delivery for the account.
	SetNotification(ctx context.Context, id int64, enabled bool) (bool, error)
	// GetApplications lists the account's applications.
	GetApplications(ctx context.Context, accountID int64) ([]any, error)
}

// ProvisioningService serves client configuration.
type ProvisioningService interface {
	// GetProvisioning returns the active parameter set for a client,
	// filtered by the client's reported version against each parameter's
	// version constraint.
	GetProvisioning(ctx context.Context, clientID, version string) (*model.Provisioning, error)
	// SetProvisioningParameter creates or replaces a named parameter.
	SetProvisioningParameter(ctx context.Context, name, value, paramType string, active bool) (*model.ProvisioningParameter, error)
	// DeactivateParameter marks a parameter inactive; it is no longer
	// transmitted to any client.
	DeactivateParameter(ctx context.Context, name string) (bool, error)
}

// RecordService ingests telemetry from client devices.
type RecordService interface {
	// RegisterPhone registers (or refreshes) a client device.
	RegisterPhone(ctx context.Context, clientID, version string) (*model.Phone, error)
	// RecordEvent stores a single event and returns its id.
	RecordEvent(ctx context.Context, clientID string, event *model.Event) (int64, error)
	// RecordEvents stores a batch of events delivered as an unordered set
	// and returns the number stored.
	RecordEvents(ctx context.Context, clientID string, events *wire.Set) (int64, error)
	// RecordLocationFix stores a GPS fix and returns its id.
	RecordLocationFix(ctx context.Context, clientID string, fix *model.LocationFix) (int64, error)
}

// ReportingService aggregates recorded telemetry.
type ReportingService interface {
	// EventCount returns the number of events for an application in the
	// given window.
	EventCount(ctx context.Context, applicationID int64, start, end time.Time) (int64, error)
	// EventCounters returns per-description counters for an application in
	// the given window.
	EventCounters(ctx context.Context, applicationID int64, start, end time.Time) ([]any, error)
	// RecentEvents returns the most recent events for an application.
	RecentEvents(ctx context.Context, applicationID, limit int64) ([]any, error)
}
