package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pulselog/telemetry-gateway/pkg/db"
	"github.com/pulselog/telemetry-gateway/pkg/events"
	"github.com/pulselog/telemetry-gateway/pkg/model"
	"github.com/pulselog/telemetry-gateway/pkg/rpc"
	"github.com/pulselog/telemetry-gateway/pkg/wire"
)

const recordLogPrefix = "services:record"

// recordService is the Postgres-backed RecordService.
type recordService struct {
	repo      *db.Repository
	publisher events.EventPublisher
}

// NewRecordService creates the record ingestion service.
func NewRecordService(repo *db.Repository, publisher events.EventPublisher) RecordService {
	if publisher == nil {
		publisher = &events.NoOpPublisher{}
	}
	return &recordService{repo: repo, publisher: publisher}
}

func (s *recordService) RegisterPhone(ctx context.Context, clientID, version string) (*model.Phone, error) {
	if clientID == "" {
		return nil, rpc.Errorf(rpc.CodeInvalidArgument, "client id must not be empty")
	}

	phone, err := s.repo.UpsertPhone(ctx, clientID, version)
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("%s - Registered phone %d clientID=%s", recordLogPrefix, phone.ID, clientID))
	return phone, nil
}

func (s *recordService) RecordEvent(ctx context.Context, clientID string, event *model.Event) (int64, error) {
	if event == nil {
		return 0, rpc.Errorf(rpc.CodeInvalidArgument, "event must not be null")
	}

	phone, err := s.phoneFor(ctx, clientID)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.InsertEvent(ctx, phone.ID, event)
	if err != nil {
		return 0, err
	}

	s.notifyIngested(ctx, clientID, "event", id, 1, event.Application)
	return id, nil
}

func (s *recordService) RecordEvents(ctx context.Context, clientID string, evs *wire.Set) (int64, error) {
	if evs == nil || evs.Len() == 0 {
		return 0, nil
	}

	phone, err := s.phoneFor(ctx, clientID)
	if err != nil {
		return 0, err
	}

	var stored int64
	var lastID int64
	for _, v := range evs.Values() {
		event, ok := v.(*model.Event)
		if !ok {
			return stored, rpc.Errorf(rpc.CodeInvalidArgument, "batch contains a non-event element")
		}
		id, err := s.repo.InsertEvent(ctx, phone.ID, event)
		if err != nil {
			return stored, err
		}
		stored++
		lastID = id
	}

	slog.Info(fmt.Sprintf("%s - Stored %d events for clientID=%s", recordLogPrefix, stored, clientID))
	s.notifyIngested(ctx, clientID, "event", lastID, stored, nil)
	return stored, nil
}

func (s *recordService) RecordLocationFix(ctx context.Context, clientID string, fix *model.LocationFix) (int64, error) {
	if fix == nil {
		return 0, rpc.Errorf(rpc.CodeInvalidArgument, "location fix must not be null")
	}

	phone, err := s.phoneFor(ctx, clientID)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.InsertLocationFix(ctx, phone.ID, fix)
	if err != nil {
		return 0, err
	}

	s.notifyIngested(ctx, clientID, "locationFix", id, 1, nil)
	return id, nil
}

// phoneFor resolves the registered device for a client id. Unknown devices
// are rejected; clients must call registerPhone first.
func (s *recordService) phoneFor(ctx context.Context, clientID string) (*model.Phone, error) {
	phone, err := s.repo.GetPhoneByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, rpc.Errorf(rpc.CodeNotFound, "unregistered client %s", clientID)
		}
		return nil, err
	}
	return phone, nil
}

func (s *recordService) notifyIngested(ctx context.Context, clientID, kind string, recordID, count int64, app *model.Application) {
	event := &events.RecordIngestedEvent{
		ClientID:   clientID,
		RecordKind: kind,
		RecordID:   recordID,
		Count:      count,
		Timestamp:  time.Now().UTC().Format(wire.DateLayout),
	}
	if app != nil {
		event.ApplicationID = app.ID
	}
	if err := s.publisher.PublishRecordIngested(ctx, event); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to publish record event: %v", recordLogPrefix, err))
	}
}
