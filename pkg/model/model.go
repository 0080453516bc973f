// Package model defines the domain entities carried over the wire protocol.
// Entities are plain field shapes; business logic lives in pkg/services.
package model

import "time"

// Entity marks a type as one of the registered domain entity kinds. The wire
// encoder dispatches on the concrete type behind this interface.
type Entity interface {
	entity()
}

// Account is a customer account owning zero or more applications.
type Account struct {
	ID              int64
	Email           string
	Name            string
	PhoneNumber     string
	LastContactTime time.Time
	EmailToken      string
	Status          int64
	Notification    bool
	Description     string
	Applications    []*Application
}

// Application is a registered client application belonging to an account.
type Application struct {
	ID           int64
	Name         string
	Account      *Account
	AccountID    int64
	ReleaseDate  time.Time
	Announcement string
}

// Carrier is a mobile network operator.
type Carrier struct {
	ID          int64
	Name        string
	TextGateway string
}

// Event is a single telemetry record reported by a client.
type Event struct {
	ID          int64
	RecordTime  time.Time
	Description string
	Data        string
	Latitude    float64
	Longitude   float64
	Application *Application
}

// LocationFix is a GPS fix reported by a client.
type LocationFix struct {
	ID        int64
	Latitude  float64
	Longitude float64
	Accuracy  float64
	TimeOfFix time.Time
}

// Phone is a registered client device.
type Phone struct {
	ID       int64
	ClientID string
	Version  string
}

// Provisioning is the set of configuration parameters pushed to a client.
type Provisioning struct {
	ID         int64
	Parameters []*ProvisioningParameter
}

// ProvisioningParameter is a single named configuration value. Inactive
// parameters are never transmitted. VersionRange, when set, is a semver
// constraint limiting which client versions receive the parameter.
type ProvisioningParameter struct {
	ID           int64
	Name         string
	Value        string
	Type         string
	Active       bool
	VersionRange string
}

// Counter is an aggregated event count used by reporting.
type Counter struct {
	ID    int64
	Name  string
	Count int64
	AsOf  time.Time
}

func (*Account) entity()               {}
func (*Application) entity()           {}
func (*Carrier) entity()               {}
func (*Event) entity()                 {}
func (*LocationFix) entity()           {}
func (*Phone) entity()                 {}
func (*Provisioning) entity()          {}
func (*ProvisioningParameter) entity() {}
func (*Counter) entity()               {}
