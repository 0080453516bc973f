package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulselog/telemetry-gateway/pkg/model"
)

const repoLogPrefix = "db:repository"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("db: not found")

// Repository provides database access for the telemetry gateway. Rows scan
// directly into pkg/model entities; the entities are plain field shapes, so a
// separate row-model layer would only duplicate them.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// =========================================================================
// ACCOUNT OPERATIONS
// =========================================================================

// CreateAccount inserts a new account in unverified status.
func (r *Repository) CreateAccount(ctx context.Context, email, name, phoneNumber, emailToken string) (*model.Account, error) {
	slog.Info(fmt.Sprintf("%s - CreateAccount email=%s", repoLogPrefix, email))

	row := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (email, name, phone_number, email_token, status, notification, last_contact_time)
		 VALUES ($1, $2, $3, $4, 0, TRUE, NOW())
		 RETURNING id, email, name, phone_number, last_contact_time, email_token, status, notification, description`,
		email, name, phoneNumber, emailToken)
	return scanAccount(row)
}

// GetAccount finds an account by id.
func (r *Repository) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, name, phone_number, last_contact_time, email_token, status, notification, description
		 FROM accounts WHERE id = $1 LIMIT 1`, id)
	return scanAccount(row)
}

// GetAccountByEmailToken finds an account by its verification token.
func (r *Repository) GetAccountByEmailToken(ctx context.Context, token string) (*model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, name, phone_number, last_contact_time, email_token, status, notification, description
		 FROM accounts WHERE email_token = $1 LIMIT 1`, token)
	return scanAccount(row)
}

// MarkAccountVerified activates the account and consumes its token.
func (r *Repository) MarkAccountVerified(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET status = 1, email_token = '', last_contact_time = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s - MarkAccountVerified: %w", repoLogPrefix, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateAccountDescription replaces the account description.
func (r *Repository) UpdateAccountDescription(ctx context.Context, id int64, description string) (*model.Account, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE accounts SET description = $2, last_contact_time = NOW()
		 WHERE id = $1
		 RETURNING id, email, name, phone_number, last_contact_time, email_token, status, notification, description`,
		id, description)
	return scanAccount(row)
}

// SetAccountNotification toggles notification delivery.
func (r *Repository) SetAccountNotification(ctx context.Context, id int64, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET notification = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return fmt.Errorf("%s - SetAccountNotification: %w", repoLogPrefix, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListApplications returns the account's applications.
func (r *Repository) ListApplications(ctx context.Context, accountID int64) ([]*model.Application, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, name, release_date, announcement
		 FROM applications WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s - ListApplications: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var apps []*model.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// =========================================================================
// PHONE OPERATIONS
// =========================================================================

// UpsertPhone registers a client device or refreshes its reported version.
func (r *Repository) UpsertPhone(ctx context.Context, clientID, version string) (*model.Phone, error) {
	slog.Debug(fmt.Sprintf("%s - UpsertPhone clientID=%s version=%s", repoLogPrefix, clientID, version))

	row := r.pool.QueryRow(ctx,
		`INSERT INTO phones (client_id, version)
		 VALUES ($1, $2)
		 ON CONFLICT (client_id) DO UPDATE SET version = EXCLUDED.version
		 RETURNING id, client_id, version`,
		clientID, version)
	var p model.Phone
	if err := row.Scan(&p.ID, &p.ClientID, &p.Version); err != nil {
		return nil, fmt.Errorf("%s - UpsertPhone: %w", repoLogPrefix, err)
	}
	return &p, nil
}

// GetPhoneByClientID finds a registered device.
func (r *Repository) GetPhoneByClientID(ctx context.Context, clientID string) (*model.Phone, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, client_id, version FROM phones WHERE client_id = $1 LIMIT 1`, clientID)
	var p model.Phone
	if err := row.Scan(&p.ID, &p.ClientID, &p.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s - GetPhoneByClientID: %w", repoLogPrefix, err)
	}
	return &p, nil
}

// =========================================================================
// RECORD OPERATIONS
// =========================================================================

// InsertEvent stores an event reported by a device.
func (r *Repository) InsertEvent(ctx context.Context, phoneID int64, e *model.Event) (int64, error) {
	recordTime := e.RecordTime
	if recordTime.IsZero() {
		recordTime = time.Now().UTC()
	}
	var applicationID *int64
	if e.Application != nil && e.Application.ID != 0 {
		applicationID = &e.Application.ID
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO events (phone_id, application_id, record_time, description, data, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		phoneID, applicationID, recordTime, e.Description, e.Data, e.Latitude, e.Longitude).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s - InsertEvent: %w", repoLogPrefix, err)
	}
	return id, nil
}

// InsertLocationFix stores a GPS fix reported by a device.
func (r *Repository) InsertLocationFix(ctx context.Context, phoneID int64, lf *model.LocationFix) (int64, error) {
	timeOfFix := lf.TimeOfFix
	if timeOfFix.IsZero() {
		timeOfFix = time.Now().UTC()
	}

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO location_fixes (phone_id, latitude, longitude, accuracy, time_of_fix)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		phoneID, lf.Latitude, lf.Longitude, lf.Accuracy, timeOfFix).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s - InsertLocationFix: %w", repoLogPrefix, err)
	}
	return id, nil
}

// =========================================================================
// PROVISIONING OPERATIONS
// =========================================================================

// ListProvisioningParameters returns every parameter, active or not.
func (r *Repository) ListProvisioningParameters(ctx context.Context) ([]*model.ProvisioningParameter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, value, type, active, version_range
		 FROM provisioning_parameters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s - ListProvisioningParameters: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var params []*model.ProvisioningParameter
	for rows.Next() {
		var p model.ProvisioningParameter
		if err := rows.Scan(&p.ID, &p.Name, &p.Value, &p.Type, &p.Active, &p.VersionRange); err != nil {
			return nil, fmt.Errorf("%s - scan provisioning parameter: %w", repoLogPrefix, err)
		}
		params = append(params, &p)
	}
	return params, rows.Err()
}

// UpsertProvisioningParameter creates or replaces a named parameter.
func (r *Repository) UpsertProvisioningParameter(ctx context.Context, p *model.ProvisioningParameter) (*model.ProvisioningParameter, error) {
	slog.Info(fmt.Sprintf("%s - UpsertProvisioningParameter name=%s active=%v", repoLogPrefix, p.Name, p.Active))

	row := r.pool.QueryRow(ctx,
		`INSERT INTO provisioning_parameters (name, value, type, active, version_range)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (name) DO UPDATE SET
		   value = EXCLUDED.value,
		   type = EXCLUDED.type,
		   active = EXCLUDED.active,
		   version_range = EXCLUDED.version_range
		 RETURNING id, name, value, type, active, version_range`,
		p.Name, p.Value, p.Type, p.Active, p.VersionRange)
	var out model.ProvisioningParameter
	if err := row.Scan(&out.ID, &out.Name, &out.Value, &out.Type, &out.Active, &out.VersionRange); err != nil {
		return nil, fmt.Errorf("%s - UpsertProvisioningParameter: %w", repoLogPrefix, err)
	}
	return &out, nil
}

// DeactivateProvisioningParameter marks a parameter inactive. Returns false
// when no parameter with that name exists.
func (r *Repository) DeactivateProvisioningParameter(ctx context.Context, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE provisioning_parameters SET active = FALSE WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("%s - DeactivateProvisioningParameter: %w", repoLogPrefix, err)
	}
	return tag.RowsAffected() > 0, nil
}

// =========================================================================
// REPORTING OPERATIONS
// =========================================================================

// CountEvents returns the number of events for an application in a window.
func (r *Repository) CountEvents(ctx context.Context, applicationID int64, start, end time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events
		 WHERE application_id = $1 AND record_time >= $2 AND record_time < $3`,
		applicationID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s - CountEvents: %w", repoLogPrefix, err)
	}
	return count, nil
}

// EventCountersByDescription aggregates events per description in a window.
func (r *Repository) EventCountersByDescription(ctx context.Context, applicationID int64, start, end time.Time) ([]*model.Counter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT description, COUNT(*) AS count, MAX(record_time) AS as_of
		 FROM events
		 WHERE application_id = $1 AND record_time >= $2 AND record_time < $3
		 GROUP BY description
		 ORDER BY count DESC, description`,
		applicationID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s - EventCountersByDescription: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var counters []*model.Counter
	for rows.Next() {
		var c model.Counter
		if err := rows.Scan(&c.Name, &c.Count, &c.AsOf); err != nil {
			return nil, fmt.Errorf("%s - scan counter: %w", repoLogPrefix, err)
		}
		counters = append(counters, &c)
	}
	return counters, rows.Err()
}

// RecentEvents returns the newest events for an application, newest first.
func (r *Repository) RecentEvents(ctx context.Context, applicationID, limit int64) ([]*model.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, record_time, description, data, latitude, longitude
		 FROM events
		 WHERE application_id = $1
		 ORDER BY record_time DESC, id DESC
		 LIMIT $2`,
		applicationID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s - RecentEvents: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.RecordTime, &e.Description, &e.Data, &e.Latitude, &e.Longitude); err != nil {
			return nil, fmt.Errorf("%s - scan event: %w", repoLogPrefix, err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// =========================================================================
// SCAN HELPERS
// =========================================================================

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PhoneNumber, &a.LastContactTime,
		&a.EmailToken, &a.Status, &a.Notification, &a.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s - scan account: %w", repoLogPrefix, err)
	}
	return &a, nil
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	var app model.Application
	err := row.Scan(&app.ID, &app.AccountID, &app.Name, &app.ReleaseDate, &app.Announcement)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s - scan application: %w", repoLogPrefix, err)
	}
	return &app, nil
}
