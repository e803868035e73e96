package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"twitterapi/internal/domain"
	"twitterapi/internal/validation"
	"twitterapi/pkg/logger"
	"twitterapi/pkg/metrics"
	"twitterapi/pkg/tracing"
)

type UserService struct {
	repo      domain.UserRepository
	auditLog  domain.AuditLogService
	validator *validation.Validator
	logger    logger.Logger
}

func NewUserService(
	repo domain.UserRepository,
	auditLog domain.AuditLogService,
	validator *validation.Validator,
	logger logger.Logger,
) domain.UserService {
	return &UserService{
		repo:      repo,
		auditLog:  auditLog,
		validator: validator,
		logger:    logger,
	}
}

func (s *UserService) CreateUser(ctx context.Context, req *domain.UserRegister) (*domain.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserService.CreateUser")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:                  uuid.NewString(),
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Password:            req.Password,
		Country:             req.Country,
		BirthDate:           req.BirthDate,
		CreationAccountDate: req.CreationAccountDate,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			return nil, err
		}
		tracing.RecordError(span, err)
		s.logger.ErrorContext(ctx, "Failed to create user", map[string]interface{}{"email": req.Email, "error": err.Error()})
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.RecordMutation("user", "create")
	audit(ctx, s.auditLog, domain.EntityTypeUser, user.ID, domain.ActionTypeCreate, fmt.Sprintf("User registered: %s", user.Email))

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser replaces every mutable field of the user with req.
func (s *UserService) UpdateUser(ctx context.Context, id string, req *domain.UserRegister) (*domain.User, error) {
	ctx, span := tracing.StartSpan(ctx, "UserService.UpdateUser")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.Email != req.Email {
		if err := s.ensureEmailFree(ctx, req.Email, id); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.Update(ctx, id, req.Fields())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			return nil, err
		}
		tracing.RecordError(span, err)
		s.logger.ErrorContext(ctx, "Failed to update user", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("update user: %w", err)
	}

	metrics.RecordMutation("user", "update")
	audit(ctx, s.auditLog, domain.EntityTypeUser, id, domain.ActionTypeUpdate, "User updated")

	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) (*domain.UserDeleted, error) {
	ctx, span := tracing.StartSpan(ctx, "UserService.DeleteUser")
	defer span.End()

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		tracing.RecordError(span, err)
		s.logger.ErrorContext(ctx, "Failed to delete user", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("delete user: %w", err)
	}

	metrics.RecordMutation("user", "delete")
	audit(ctx, s.auditLog, domain.EntityTypeUser, id, domain.ActionTypeDelete, fmt.Sprintf("User deleted: %s", removed.Email))

	return &domain.UserDeleted{
		UserID:        removed.ID,
		Email:         removed.Email,
		DeleteMessage: fmt.Sprintf("%s has been deleted successfully!", removed.FirstName),
	}, nil
}

// ImportUser stores a legacy user under its existing identifier. It reports
// false when a user with the same id or email is already present.
func (s *UserService) ImportUser(ctx context.Context, user *domain.User) (bool, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := validation.ValidateID("user_id", user.ID); err != nil {
		return false, err
	}

	req := &domain.UserRegister{
		Email:               user.Email,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		Password:            user.Password,
		Country:             user.Country,
		BirthDate:           user.BirthDate,
		CreationAccountDate: user.CreationAccountDate,
	}
	if err := s.validator.Struct(req); err != nil {
		return false, err
	}

	if _, err := s.repo.FindByID(ctx, user.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	if _, err := s.repo.FindByEmail(ctx, user.Email); err == nil {
		s.logger.WarnContext(ctx, "Skipping imported user with a registered email", map[string]interface{}{"id": user.ID, "email": user.Email})
		return false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) || errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			return false, nil
		}
		return false, fmt.Errorf("import user: %w", err)
	}

	metrics.RecordMutation("user", "import")
	audit(ctx, s.auditLog, domain.EntityTypeUser, user.ID, domain.ActionTypeImport, "User imported")

	return true, nil
}

// ensureEmailFree fails with ErrEmailAlreadyRegistered when a user other than ownerID has email.
func (s *UserService) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to check email availability", map[string]interface{}{"email": email, "error": err.Error()})
		return fmt.Errorf("check email: %w", err)
	case existing.ID == ownerID:
		return nil
	default:
		return domain.ErrEmailAlreadyRegistered
	}
}
