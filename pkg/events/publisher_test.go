package events

import (
	"context"
	"testing"
)

func TestNoOpPublisher(t *testing.T) {
	p := &NoOpPublisher{}
	if err := p.PublishRecordIngested(context.Background(), &RecordIngestedEvent{ClientID: "c1"}); err != nil {
		t.Errorf("PublishRecordIngested() error = %v, want nil", err)
	}
	if err := p.PublishAccountChanged(context.Background(), &AccountChangedEvent{AccountID: 1}); err != nil {
		t.Errorf("PublishAccountChanged() error = %v, want nil", err)
	}
}

func TestCallbackPublisher(t *testing.T) {
	var gotRecord *RecordIngestedEvent
	var gotAccount *AccountChangedEvent

	p := &CallbackPublisher{
		OnRecordIngested: func(_ context.Context, event *RecordIngestedEvent) error {
			gotRecord = event
			return nil
		},
		OnAccountChanged: func(_ context.Context, event *AccountChangedEvent) error {
			gotAccount = event
			return nil
		},
	}

	if err := p.PublishRecordIngested(context.Background(), &RecordIngestedEvent{ClientID: "c1", RecordKind: "event"}); err != nil {
		t.Fatalf("PublishRecordIngested() error = %v", err)
	}
	if gotRecord == nil || gotRecord.ClientID != "c1" {
		t.Errorf("record callback got %+v, want ClientID c1", gotRecord)
	}

	if err := p.PublishAccountChanged(context.Background(), &AccountChangedEvent{AccountID: 7}); err != nil {
		t.Fatalf("PublishAccountChanged() error = %v", err)
	}
	if gotAccount == nil || gotAccount.AccountID != 7 {
		t.Errorf("account callback got %+v, want AccountID 7", gotAccount)
	}
}

func TestCallbackPublisherNilCallbacks(t *testing.T) {
	p := &CallbackPublisher{}
	if err := p.PublishRecordIngested(context.Background(), &RecordIngestedEvent{}); err != nil {
		t.Errorf("PublishRecordIngested() with nil callback error = %v, want nil", err)
	}
	if err := p.PublishAccountChanged(context.Background(), &AccountChangedEvent{}); err != nil {
		t.Errorf("PublishAccountChanged() with nil callback error = %v, want nil", err)
	}
}
