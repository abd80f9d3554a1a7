package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// UserSummary is the admin view of a user. It never includes the password hash.
type UserSummary struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Mobile    string
	Role      models.Role
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Mobile    string
	Role      string
}

// UpdateUserInput holds optional changes; nil fields are left as they are.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Mobile    *string
	Password  *string
	Role      *string
}

// AdminService is user management for super admins. Callers are expected to
// have passed the authorization gate already.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *AdminService {
	return &AdminService{db: db, repomanager: m, log: log.With("module", "admin")}
}

func (s *AdminService) List(ctx context.Context) ([]UserSummary, error) {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		s.log.Error(ctx, "list users failed", "error", err)
		return nil, common.ErrorInternal
	}

	result := make([]UserSummary, 0, len(users))
	for _, u := range users {
		result = append(result, UserSummary{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Mobile:    u.Mobile,
			Role:      u.Role,
		})
	}
	return result, nil
}

// Create adds a user directly, skipping OTP verification. Role defaults to
// "user"; without a password the account gets a random one.
func (s *AdminService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrValidation)
	}

	role := models.RoleUser
	if in.Role != "" {
		r, ok := models.ParseRole(in.Role)
		if !ok {
			return nil, fmt.Errorf("%w: invalid role %q", common.ErrValidation, in.Role)
		}
		role = r
	}

	password := in.Password
	if password == "" {
		password = cryptox.RandomPassword()
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Mobile:       in.Mobile,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		s.log.Error(ctx, "create user failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "user created by admin", "user_id", user.ID, "role", string(role))
	return user, nil
}

// Update applies in to user id. Unknown ids yield common.ErrorNotFound.
func (s *AdminService) Update(ctx context.Context, id int64, in UpdateUserInput) error {
	upd := models.UserUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Mobile:    in.Mobile,
	}

	if in.Role != nil {
		r, ok := models.ParseRole(*in.Role)
		if !ok {
			return fmt.Errorf("%w: invalid role %q", common.ErrValidation, *in.Role)
		}
		upd.Role = &r
	}

	if in.Password != nil {
		hash, err := cryptox.HashPassword(*in.Password)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
		upd.PasswordHash = &hash
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if _, err := repo.GetByID(ctx, id); err != nil {
			return err
		}
		return repo.Update(ctx, id, upd)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		s.log.Error(ctx, "update user failed", "user_id", id, "error", err)
		return common.ErrorInternal
	}

	s.log.Info(ctx, "user updated by admin", "user_id", id)
	return nil
}

func (s *AdminService) Delete(ctx context.Context, id int64) error {
	if err := s.repomanager.Users(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		s.log.Error(ctx, "delete user failed", "user_id", id, "error", err)
		return common.ErrorInternal
	}

	s.log.Info(ctx, "user deleted by admin", "user_id", id)
	return nil
}

// EnsureSuperAdmin creates a super admin with the given credentials, or
// promotes an existing account and resets its password. created reports
// which of the two happened.
func (s *AdminService) EnsureSuperAdmin(ctx context.Context, email, password string) (created bool, err error) {
	if password == "" {
		return false, fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	existing, err := s.repomanager.Users(s.db).GetByEmail(ctx, NormalizeEmail(email))
	switch {
	case err == nil:
		role := string(models.RoleSuperAdmin)
		return false, s.Update(ctx, existing.ID, UpdateUserInput{Password: &password, Role: &role})
	case errors.Is(err, common.ErrorNotFound):
		_, err = s.Create(ctx, CreateUserInput{Email: email, Password: password, Role: string(models.RoleSuperAdmin)})
		return err == nil, err
	default:
		s.log.Error(ctx, "user lookup failed", "error", err)
		return false, common.ErrorInternal
	}
}
