package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	pkgerrors "github.com/cafeconecta/cafeconecta-backend/pkg/errors"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
)

// Service defines the account operations exposed by the users controller.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpgradePlan(ctx context.Context, id uuid.UUID, plan string) (*UserDTO, error)
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*UserDTO, error)
	List(ctx context.Context, limit int) ([]UserDTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo   *Repository
	Logger *logger.Logger
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

// UpgradePlan moves a producer onto a new subscription tier. Buyers have no
// plan to change.
func (s *service) UpgradePlan(ctx context.Context, id uuid.UUID, plan string) (*UserDTO, error) {
	parsed, err := enums.ParseSubscriptionPlan(plan)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user.Role != enums.UserRoleProducer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only producers have subscription plans")
	}
	if user.Plan == parsed {
		return FromModel(user), nil
	}

	if err := s.repo.UpdatePlan(ctx, id, parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update plan")
	}
	user.Plan = parsed

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"user_id": id.String(), "plan": parsed})
		s.logg.Info(logCtx, "subscription plan changed")
	}
	return FromModel(user), nil
}

// SetBlocked toggles the admin block flag. Blocked accounts fail login and
// refresh until unblocked.
func (s *service) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user.Role == enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin accounts cannot be blocked")
	}

	if err := s.repo.SetBlocked(ctx, id, blocked); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update block flag")
	}
	user.IsBlocked = blocked
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, limit int) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}
