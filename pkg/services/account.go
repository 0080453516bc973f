package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pulselog/telemetry-gateway/pkg/db"
	"github.com/pulselog/telemetry-gateway/pkg/events"
	"github.com/pulselog/telemetry-gateway/pkg/model"
	"github.com/pulselog/telemetry-gateway/pkg/rpc"
	"github.com/pulselog/telemetry-gateway/pkg/wire"
)

const accountLogPrefix = "services:account"

// accountService is the Postgres-backed AccountService.
type accountService struct {
	repo      *db.Repository
	publisher events.EventPublisher
}

// NewAccountService creates the account service. A nil publisher disables
// change events.
func NewAccountService(repo *db.Repository, publisher events.EventPublisher) AccountService {
	if publisher == nil {
		publisher = &events.NoOpPublisher{}
	}
	return &accountService{repo: repo, publisher: publisher}
}

func (s *accountService) RegisterAccount(ctx context.Context, email, name, phoneNumber string) (*model.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, rpc.Errorf(rpc.CodeInvalidArgument, "invalid email address")
	}

	token, err := newEmailToken()
	if err != nil {
		return nil, fmt.Errorf("%s - generate token: %w", accountLogPrefix, err)
	}

	account, err := s.repo.CreateAccount(ctx, email, name, phoneNumber, token)
	if err != nil {
		return nil, err
	}

	slog.Info(fmt.Sprintf("%s - Registered account %d for %s", accountLogPrefix, account.ID, email))
	s.notifyChanged(ctx, account.ID, "registered")
	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, rpc.Errorf(rpc.CodeNotFound, "account %d not found", id)
		}
		return nil, err
	}

	apps, err := s.repo.ListApplications(ctx, id)
	if err != nil {
		return nil, err
	}
	account.Applications = apps
	return account, nil
}

func (s *accountService) VerifyEmail(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, rpc.Errorf(rpc.CodeInvalidArgument, "empty verification token")
	}

	account, err := s.repo.GetAccountByEmailToken(ctx, token)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			slog.Warn(fmt.Sprintf("%s - Verification failed, unknown token", accountLogPrefix))
			return false, nil
		}
		return false, err
	}

	if err := s.repo.MarkAccountVerified(ctx, account.ID); err != nil {
		return false, err
	}

	slog.Info(fmt.Sprintf("%s - Verified account %d", accountLogPrefix, account.ID))
	s.notifyChanged(ctx, account.ID, "status")
	return true, nil
}

func (s *accountService) UpdateAccountDescription(ctx context.Context, id int64, description string) (*model.Account, error) {
	account, err := s.repo.UpdateAccountDescription(ctx, id, description)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, rpc.Errorf(rpc.CodeNotFound, "account %d not found", id)
		}
		return nil, err
	}

	s.notifyChanged(ctx, id, "description")
	return account, nil
}

func (s *accountService) SetNotification(ctx context.Context, id int64, enabled bool) (bool, error) {
	if err := s.repo.SetAccountNotification(ctx, id, enabled); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, rpc.Errorf(rpc.CodeNotFound, "account %d not found", id)
		}
		return false, err
	}

	s.notifyChanged(ctx, id, "notification")
	return enabled, nil
}

func (s *accountService) GetApplications(ctx context.Context, accountID int64) ([]any, error) {
	apps, err := s.repo.ListApplications(ctx, accountID)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(apps))
	for _, app := range apps {
		out = append(out, app)
	}
	return out, nil
}

func (s *accountService) notifyChanged(ctx context.Context, accountID int64, fields ...string) {
	event := &events.AccountChangedEvent{
		AccountID:     accountID,
		ChangedFields: fields,
		Timestamp:     time.Now().UTC().Format(wire.DateLayout),
	}
	if err := s.publisher.PublishAccountChanged(ctx, event); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to publish account event: %v", accountLogPrefix, err))
	}
}

// newEmailToken returns a 32-hex-char random verification token.
func newEmailToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
