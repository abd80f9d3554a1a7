package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newAdminService(t *testing.T, users *memUsers) *AdminService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	return NewAdminService(db, &fakeRepoManager{u: users}, logging.Nop{})
}

func TestAdminList_NoHashes(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "admin@example.com", "Adm1n!", models.RoleSuperAdmin)
	seedUser(t, users, "a@x.io", "pw1", models.RoleUser)
	s := newAdminService(t, users)

	got, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []UserSummary{
		{ID: 1, Email: "admin@example.com", Role: models.RoleSuperAdmin},
		{ID: 2, Email: "a@x.io", Role: models.RoleUser},
	}, got)
}

func TestAdminList_Error(t *testing.T) {
	users := newMemUsers()
	users.listErr = errBoom{}

	_, err := newAdminService(t, users).List(context.Background())
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestAdminCreate_Defaults(t *testing.T) {
	users := newMemUsers()
	s := newAdminService(t, users)

	u, err := s.Create(context.Background(), CreateUserInput{Email: "New@X.io"})
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEmpty(t, u.PasswordHash)
}

func TestAdminCreate_WithPasswordAndRole(t *testing.T) {
	users := newMemUsers()
	s := newAdminService(t, users)

	u, err := s.Create(context.Background(), CreateUserInput{
		Email: "boss@x.io", Password: "s3cret", Role: "super_admin", FirstName: "B",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, u.Role)
	assert.True(t, cryptox.CheckPassword("s3cret", u.PasswordHash))
}

func TestAdminCreate_Validation(t *testing.T) {
	s := newAdminService(t, newMemUsers())

	_, err := s.Create(context.Background(), CreateUserInput{})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Create(context.Background(), CreateUserInput{Email: "a@x.io", Role: "root"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAdminCreate_Duplicate(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "a@x.io", "pw1", models.RoleUser)

	_, err := newAdminService(t, users).Create(context.Background(), CreateUserInput{Email: "a@x.io"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestAdminUpdate(t *testing.T) {
	users := newMemUsers()
	u := seedUser(t, users, "a@x.io", "pw1", models.RoleUser)

	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	s := NewAdminService(db, &fakeRepoManager{u: users}, logging.Nop{})

	err := s.Update(context.Background(), u.ID, UpdateUserInput{
		FirstName: strPtr("Ann"),
		Password:  strPtr("pw2"),
		Role:      strPtr("super_admin"),
	})
	require.NoError(t, err)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}

	got, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, models.RoleSuperAdmin, got.Role)
	assert.True(t, cryptox.CheckPassword("pw2", got.PasswordHash))
}

func TestAdminUpdate_NotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	s := NewAdminService(db, &fakeRepoManager{u: newMemUsers()}, logging.Nop{})

	err := s.Update(context.Background(), 42, UpdateUserInput{FirstName: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestAdminUpdate_InvalidRole(t *testing.T) {
	s := newAdminService(t, newMemUsers())

	err := s.Update(context.Background(), 1, UpdateUserInput{Role: strPtr("root")})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAdminUpdate_BeginError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin().WillReturnError(errBoom{})
	s := NewAdminService(db, &fakeRepoManager{u: newMemUsers()}, logging.Nop{})

	err := s.Update(context.Background(), 1, UpdateUserInput{})
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestAdminDelete(t *testing.T) {
	users := newMemUsers()
	u := seedUser(t, users, "a@x.io", "pw1", models.RoleUser)
	s := newAdminService(t, users)

	require.NoError(t, s.Delete(context.Background(), u.ID))
	assert.ErrorIs(t, s.Delete(context.Background(), u.ID), common.ErrorNotFound)
}

func TestAdminDelete_Error(t *testing.T) {
	users := newMemUsers()
	users.deleteErr = errBoom{}

	err := newAdminService(t, users).Delete(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestEnsureSuperAdmin_Creates(t *testing.T) {
	users := newMemUsers()
	s := newAdminService(t, users)

	created, err := s.EnsureSuperAdmin(context.Background(), "Admin@Example.com", "Adm1n!")
	require.NoError(t, err)
	assert.True(t, created)

	u, err := users.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, u.Role)
	assert.True(t, cryptox.CheckPassword("Adm1n!", u.PasswordHash))
}

func TestEnsureSuperAdmin_PromotesExisting(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "admin@example.com", "old", models.RoleUser)

	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	s := NewAdminService(db, &fakeRepoManager{u: users}, logging.Nop{})

	created, err := s.EnsureSuperAdmin(context.Background(), "admin@example.com", "new")
	require.NoError(t, err)
	assert.False(t, created)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}

	u, err := users.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, u.Role)
	assert.True(t, cryptox.CheckPassword("new", u.PasswordHash))
}

func TestEnsureSuperAdmin_Errors(t *testing.T) {
	_, err := newAdminService(t, newMemUsers()).EnsureSuperAdmin(context.Background(), "admin@example.com", "")
	assert.ErrorIs(t, err, common.ErrValidation)

	users := newMemUsers()
	users.getErr = errBoom{}
	_, err = newAdminService(t, users).EnsureSuperAdmin(context.Background(), "admin@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}
