package httpapi

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	usersrepo "github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

var jwtSecret = []byte("jwt-secret")

func tokenFor(t *testing.T, role string, tt auth.TokenType, ttl time.Duration) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Identity{Subject: "1", Role: role, Email: "x@x.io"}, tt, jwtSecret, ttl)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return tok
}

type fakeRegistrar struct {
	got       services.RegisterInput
	uploaded  string
	token     string
	err       error
	verifyErr error
}

func (f *fakeRegistrar) Register(ctx context.Context, in services.RegisterInput) (string, error) {
	f.got = in
	if in.ProfilePic != nil {
		b, _ := io.ReadAll(in.ProfilePic.Body)
		f.uploaded = in.ProfilePic.Filename + ":" + string(b)
	}
	return f.token, f.err
}

func (f *fakeRegistrar) Verify(ctx context.Context, token, otp string) error {
	return f.verifyErr
}

// fakeAuth verifies real JWTs but serves canned login results.
type fakeAuth struct {
	login    *services.LoginResult
	loginErr error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	return f.login, f.loginErr
}

func (f *fakeAuth) Refresh(ctx context.Context, token string) (string, error) {
	id, err := f.ParseRefreshToken(token)
	if err != nil {
		return "", err
	}
	return auth.GenerateToken(*id, auth.TokenTypeAccess, jwtSecret, time.Minute)
}

func (f *fakeAuth) ParseAccessToken(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, jwtSecret, auth.TokenTypeAccess)
}

func (f *fakeAuth) ParseRefreshToken(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, jwtSecret, auth.TokenTypeRefresh)
}

type fakeAdmin struct {
	users     []services.UserSummary
	created   services.CreateUserInput
	updatedID int64
	updated   services.UpdateUserInput
	err       error
	panicMsg  string
}

func (f *fakeAdmin) List(ctx context.Context) ([]services.UserSummary, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.users, f.err
}

func (f *fakeAdmin) Create(ctx context.Context, in services.CreateUserInput) (*models.User, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: 9, Email: in.Email}, nil
}

func (f *fakeAdmin) Update(ctx context.Context, id int64, in services.UpdateUserInput) error {
	f.updatedID, f.updated = id, in
	return f.err
}

func (f *fakeAdmin) Delete(ctx context.Context, id int64) error {
	return f.err
}

type fixture struct {
	reg   *fakeRegistrar
	auth  *fakeAuth
	admin *fakeAdmin
	h     http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{reg: &fakeRegistrar{}, auth: &fakeAuth{}, admin: &fakeAdmin{}}
	s := NewServer(Options{AllowedOrigin: "*", PhoneRegion: "US"}, logging.Nop{}, f.reg, f.auth, f.admin)
	f.h = s.Handler()
	return f
}

func (f *fixture) do(method, path, bearer, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

// memUsers is a minimal users.Repository for end-to-end handler tests.
type memUsers struct {
	mu    sync.Mutex
	users []models.User
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == u.Email {
			return nil, common.ErrDuplicateEmail
		}
	}
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, *u)
	return u, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == email {
			return &e, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) List(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.User(nil), m.users...), nil
}

func (m *memUsers) Update(ctx context.Context, id int64, upd models.UserUpdate) error {
	return common.ErrorNotFound
}

func (m *memUsers) Delete(ctx context.Context, id int64) error {
	return common.ErrorNotFound
}

type memManager struct{ u *memUsers }

func (m memManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m memManager) Users(dbx.DBTX) usersrepo.Repository         { return m.u }
