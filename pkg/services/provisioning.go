package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/pulselog/telemetry-gateway/pkg/db"
	"github.com/pulselog/telemetry-gateway/pkg/events"
	"github.com/pulselog/telemetry-gateway/pkg/model"
	"github.com/pulselog/telemetry-gateway/pkg/rpc"
)

const provisioningLogPrefix = "services:provisioning"

// provisioningService is the Postgres-backed ProvisioningService.
type provisioningService struct {
	repo      *db.Repository
	publisher events.EventPublisher
}

// NewProvisioningService creates the provisioning service.
func NewProvisioningService(repo *db.Repository, publisher events.EventPublisher) ProvisioningService {
	if publisher == nil {
		publisher = &events.NoOpPublisher{}
	}
	return &provisioningService{repo: repo, publisher: publisher}
}

func (s *provisioningService) GetProvisioning(ctx context.Context, clientID, version string) (*model.Provisioning, error) {
	params, err := s.repo.ListProvisioningParameters(ctx)
	if err != nil {
		return nil, err
	}

	filtered := FilterParameters(params, version)
	slog.Debug(fmt.Sprintf("%s - GetProvisioning clientID=%s version=%s -> %d parameters",
		provisioningLogPrefix, clientID, version, len(filtered)))

	return &model.Provisioning{Parameters: filtered}, nil
}

func (s *provisioningService) SetProvisioningParameter(ctx context.Context, name, value, paramType string, active bool) (*model.ProvisioningParameter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, rpc.Errorf(rpc.CodeInvalidArgument, "parameter name must not be empty")
	}

	param := &model.ProvisioningParameter{
		Name:   name,
		Value:  value,
		Type:   paramType,
		Active: active,
	}
	return s.repo.UpsertProvisioningParameter(ctx, param)
}

func (s *provisioningService) DeactivateParameter(ctx context.Context, name string) (bool, error) {
	ok, err := s.repo.DeactivateProvisioningParameter(ctx, name)
	if err != nil {
		return false, err
	}
	if !ok {
		slog.Warn(fmt.Sprintf("%s - DeactivateParameter: no parameter named %s", provisioningLogPrefix, name))
	}
	return ok, nil
}

// FilterParameters keeps the active parameters whose version constraint admits
// the client's reported version. Parameters without a constraint always pass.
// When the client version does not parse as semver, only unconstrained
// parameters pass.
func FilterParameters(params []*model.ProvisioningParameter, clientVersion string) []*model.ProvisioningParameter {
	clientSemver, semverErr := semver.NewVersion(strings.TrimSpace(clientVersion))

	var out []*model.ProvisioningParameter
	for _, p := range params {
		if p == nil || !p.Active {
			continue
		}
		if p.VersionRange == "" {
			out = append(out, p)
			continue
		}

		constraint, err := semver.NewConstraint(p.VersionRange)
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - parameter %s has invalid version range %q",
				provisioningLogPrefix, p.Name, p.VersionRange))
			continue
		}
		if semverErr != nil {
			continue
		}
		if constraint.Check(clientSemver) {
			out = append(out, p)
		}
	}
	return out
}
