// Package pending holds registrations that are waiting for OTP confirmation.
//
// Entries are keyed by email and the last write wins: a second registration
// for the same address replaces the first one's OTP and payload.
package pending

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/puzpuzpuz/xsync/v3"
)

// Store is the pending-registration contract used by the registration flow.
// Get returns common.ErrorNotFound for unknown or expired emails.
type Store interface {
	Put(ctx context.Context, email string, entry models.PendingRegistration) error
	Get(ctx context.Context, email string) (*models.PendingRegistration, error)
	Remove(ctx context.Context, email string) error
	// RemoveIfOTP drops the entry only while it still holds otp, so a newer
	// registration for the same email is left alone.
	RemoveIfOTP(ctx context.Context, email, otp string) (bool, error)
}

// MemoryStore is a process-local Store. Its contents are lost on restart.
type MemoryStore struct {
	entries *xsync.MapOf[string, models.PendingRegistration]
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an empty store. Entries older than ttl are treated as
// absent; ttl <= 0 keeps entries until they are overwritten or removed.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: xsync.NewMapOf[string, models.PendingRegistration](),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, email string, entry models.PendingRegistration) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.entries.Store(email, entry)
	s.purgeExpired()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, email string) (*models.PendingRegistration, error) {
	entry, ok := s.entries.Load(email)
	if !ok {
		return nil, common.ErrorNotFound
	}
	if s.expired(entry) {
		s.entries.Compute(email, func(old models.PendingRegistration, loaded bool) (models.PendingRegistration, bool) {
			// a concurrent Put may have replaced the stale entry
			return old, !loaded || s.expired(old)
		})
		return nil, common.ErrorNotFound
	}
	return &entry, nil
}

func (s *MemoryStore) Remove(ctx context.Context, email string) error {
	s.entries.Delete(email)
	return nil
}

func (s *MemoryStore) RemoveIfOTP(ctx context.Context, email, otp string) (bool, error) {
	removed := false
	s.entries.Compute(email, func(old models.PendingRegistration, loaded bool) (models.PendingRegistration, bool) {
		if !loaded {
			return old, true
		}
		if old.OTP == otp {
			removed = true
			return old, true
		}
		return old, false
	})
	return removed, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	return s.entries.Size()
}

func (s *MemoryStore) expired(entry models.PendingRegistration) bool {
	return s.ttl > 0 && s.now().Sub(entry.CreatedAt) > s.ttl
}

func (s *MemoryStore) purgeExpired() {
	if s.ttl <= 0 {
		return
	}
	s.entries.Range(func(email string, entry models.PendingRegistration) bool {
		if s.expired(entry) {
			s.entries.Compute(email, func(old models.PendingRegistration, loaded bool) (models.PendingRegistration, bool) {
				return old, !loaded || s.expired(old)
			})
		}
		return true
	})
}
