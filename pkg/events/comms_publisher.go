package events

import (
	"context"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/pulselog/telemetry-gateway/pkg/commsutil"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use
// defaults.
type CommsPublisherOpts struct {
	// RecordSubject overrides the record-ingested subject.
	RecordSubject string
	// AccountSubject overrides the account change subject.
	AccountSubject string
}

// CommsPublisher publishes gateway change events to COMMS subjects.
type CommsPublisher struct {
	nc             *comms.Conn
	recordSubject  string
	accountSubject string
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use
// defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) *CommsPublisher {
	recordSubject := commsutil.SubjectRecordEvent
	accountSubject := commsutil.SubjectAccountEvent
	if opts != nil && opts.RecordSubject != "" {
		recordSubject = opts.RecordSubject
	}
	if opts != nil && opts.AccountSubject != "" {
		accountSubject = opts.AccountSubject
	}
	return &CommsPublisher{nc: nc, recordSubject: recordSubject, accountSubject: accountSubject}
}

// PublishRecordIngested publishes to both the granular per-client and global
// record subjects.
func (p *CommsPublisher) PublishRecordIngested(_ context.Context, event *RecordIngestedEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	granularSubject := commsutil.BuildRecordSubject(event.ClientID)
	if err := p.nc.Publish(granularSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, granularSubject, err))
		return err
	}

	if err := p.nc.Publish(p.recordSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, p.recordSubject, err))
		return err
	}

	slog.Debug(fmt.Sprintf("%s - Published record event for %s", commsPublisherLogPrefix, event.ClientID))
	return nil
}

// PublishAccountChanged publishes to both the granular per-account and global
// account subjects.
func (p *CommsPublisher) PublishAccountChanged(_ context.Context, event *AccountChangedEvent) error {
	data, err := commsutil.EncodePayload(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	granularSubject := commsutil.BuildAccountSubject(event.AccountID)
	if err := p.nc.Publish(granularSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, granularSubject, err))
		return err
	}

	if err := p.nc.Publish(p.accountSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, p.accountSubject, err))
		return err
	}

	slog.Debug(fmt.Sprintf("%s - Published account event for %d", commsPublisherLogPrefix, event.AccountID))
	return nil
}
