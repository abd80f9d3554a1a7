// Package services contains the server's business logic. RegistrationService
// runs the two-step email registration: Register parks the candidate and
// mails an OTP, Verify checks the OTP and creates the user.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/filestore"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/pending"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/tokencodec"
)

// OTPGenerator produces one-time codes.
type OTPGenerator interface {
	Generate() (string, error)
}

// Upload is a file received with a registration.
type Upload struct {
	Filename string
	Body     io.Reader
}

type RegisterInput struct {
	Email      string
	FirstName  string
	LastName   string
	Password   string
	Mobile     string
	ProfilePic *Upload
}

// registrationClaims is what the registration token carries. It is readable
// by the client, so it never holds the OTP or the password.
type registrationClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RegistrationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	pending     pending.Store
	codec       *tokencodec.Codec
	otp         OTPGenerator
	mailer      mailer.Sender
	files       filestore.Store
	tokenMaxAge time.Duration
	log         logging.Logger
}

// NewRegistrationService wires the flow. files may be nil, in which case
// uploaded pictures are ignored.
func NewRegistrationService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	store pending.Store,
	codec *tokencodec.Codec,
	gen OTPGenerator,
	sender mailer.Sender,
	files filestore.Store,
	cfg *config.Config,
	log logging.Logger,
) *RegistrationService {
	return &RegistrationService{
		db:          db,
		repomanager: m,
		pending:     store,
		codec:       codec,
		otp:         gen,
		mailer:      sender,
		files:       files,
		tokenMaxAge: cfg.RegistrationTokenMaxAge,
		log:         log.With("module", "registration"),
	}
}

// Register records a pending registration, mails its OTP and returns the
// registration token. A second call for the same email replaces the first.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := NormalizeEmail(in.Email)

	_, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	switch {
	case err == nil:
		return "", common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		s.log.Error(ctx, "user lookup failed", "error", err)
		return "", common.ErrorInternal
	}

	var pic string
	if in.ProfilePic != nil && s.files != nil {
		pic, err = s.files.Save(ctx, in.ProfilePic.Filename, in.ProfilePic.Body)
		if err != nil {
			if errors.Is(err, filestore.ErrUnsupportedType) {
				return "", fmt.Errorf("%w: %v", common.ErrValidation, err)
			}
			s.log.Error(ctx, "profile picture upload failed", "error", err)
			return "", common.ErrorInternal
		}
	}

	code, err := s.otp.Generate()
	if err != nil {
		s.log.Error(ctx, "otp generation failed", "error", err)
		return "", common.ErrorInternal
	}

	entry := models.PendingRegistration{
		OTP: code,
		Candidate: models.Candidate{
			Email:      email,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			Password:   in.Password,
			Mobile:     in.Mobile,
			ProfilePic: pic,
		},
	}
	if err := s.pending.Put(ctx, email, entry); err != nil {
		s.log.Error(ctx, "pending store failed", "error", err)
		return "", common.ErrorInternal
	}

	token, err := s.codec.Encode(registrationClaims{
		Email:     email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}, common.RegistrationTokenSalt)
	if err != nil {
		_, _ = s.pending.RemoveIfOTP(ctx, email, code)
		s.log.Error(ctx, "registration token failed", "error", err)
		return "", common.ErrorInternal
	}

	subject, body := mailer.OTPMessage(code)
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		_, _ = s.pending.RemoveIfOTP(ctx, email, code)
		s.log.Warn(ctx, "otp email not delivered", "email", email, "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrEmailDelivery, err)
	}

	s.log.Info(ctx, "registration pending", "email", email)
	return token, nil
}

// Verify finalizes the registration bound to token when otp matches the
// pending entry. A wrong OTP leaves the entry in place.
func (s *RegistrationService) Verify(ctx context.Context, token, otp string) error {
	var claims registrationClaims
	if err := s.codec.Decode(token, common.RegistrationTokenSalt, s.tokenMaxAge, &claims); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidOrExpiredToken, err)
	}

	entry, err := s.pending.Get(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrNoPendingRegistration
		}
		s.log.Error(ctx, "pending lookup failed", "error", err)
		return common.ErrorInternal
	}

	if subtle.ConstantTimeCompare([]byte(entry.OTP), []byte(otp)) != 1 {
		return common.ErrInvalidOtp
	}

	hash, err := cryptox.HashPassword(entry.Candidate.Password)
	if err != nil {
		if errors.Is(err, cryptox.ErrEmptyPassword) || errors.Is(err, cryptox.ErrPasswordTooLong) {
			return fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
		s.log.Error(ctx, "password hashing failed", "error", err)
		return common.ErrorInternal
	}

	c := entry.Candidate
	_, err = s.repomanager.Users(s.db).Create(ctx, &models.User{
		Email:        c.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Mobile:       c.Mobile,
		ProfilePic:   c.ProfilePic,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return err
		}
		s.log.Error(ctx, "user create failed", "error", err)
		return common.ErrorInternal
	}

	if _, err := s.pending.RemoveIfOTP(ctx, c.Email, entry.OTP); err != nil {
		s.log.Warn(ctx, "pending cleanup failed", "email", c.Email, "error", err)
	}

	s.log.Info(ctx, "user registered", "email", c.Email)
	return nil
}

// NormalizeEmail trims and lower-cases an address so lookups and the unique
// constraint agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
