package events

import "context"

// EventPublisher is the interface for publishing gateway change events.
type EventPublisher interface {
	PublishRecordIngested(ctx context.Context, event *RecordIngestedEvent) error
	PublishAccountChanged(ctx context.Context, event *AccountChangedEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing (for in-process usage
// without events).
type NoOpPublisher struct{}

// PublishRecordIngested is a no-op.
func (p *NoOpPublisher) PublishRecordIngested(_ context.Context, _ *RecordIngestedEvent) error {
	return nil
}

// PublishAccountChanged is a no-op.
func (p *NoOpPublisher) PublishAccountChanged(_ context.Context, _ *AccountChangedEvent) error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls callback functions (for
// testing). Nil callbacks are skipped.
type CallbackPublisher struct {
	OnRecordIngested func(ctx context.Context, event *RecordIngestedEvent) error
	OnAccountChanged func(ctx context.Context, event *AccountChangedEvent) error
}

// PublishRecordIngested calls the record callback.
func (p *CallbackPublisher) PublishRecordIngested(ctx context.Context, event *RecordIngestedEvent) error {
	if p.OnRecordIngested == nil {
		return nil
	}
	return p.OnRecordIngested(ctx, event)
}

// PublishAccountChanged calls the account callback.
func (p *CallbackPublisher) PublishAccountChanged(ctx context.Context, event *AccountChangedEvent) error {
	if p.OnAccountChanged == nil {
		return nil
	}
	return p.OnAccountChanged(ctx, event)
}
