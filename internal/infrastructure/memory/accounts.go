package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/herbal-remedy-api/internal/domain"
)

// PendingRepo stores unverified registrations keyed by email.
type PendingRepo struct {
	mu    sync.Mutex
	items map[string]domain.PendingAccount
}

func NewPendingRepo() *PendingRepo {
	return &PendingRepo{items: make(map[string]domain.PendingAccount)}
}

// Create inserts p unless a live (unexpired) pending record already holds the email.
func (r *PendingRepo) Create(_ context.Context, p *domain.PendingAccount, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.items[p.Email]; ok && !cur.Expired(now) {
		return fmt.Errorf("pending registration exists: %w", domain.ErrConflict)
	}
	r.items[p.Email] = *p
	return nil
}

func (r *PendingRepo) GetByEmail(_ context.Context, email string) (*domain.PendingAccount, error) {
	return r.find(func(p domain.PendingAccount) bool { return p.Email == email })
}

func (r *PendingRepo) GetByUsername(_ context.Context, username string) (*domain.PendingAccount, error) {
	return r.find(func(p domain.PendingAccount) bool { return p.Username == username })
}

func (r *PendingRepo) GetByToken(_ context.Context, token string) (*domain.PendingAccount, error) {
	return r.find(func(p domain.PendingAccount) bool { return p.Token == token })
}

// RotateToken replaces the token and expiry of a live pending record.
func (r *PendingRepo) RotateToken(_ context.Context, email, token string, expiresAt int64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[email]
	if !ok || p.Expired(now) {
		return fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	p.Token = token
	p.ExpiresAt = expiresAt
	r.items[email] = p
	return nil
}

func (r *PendingRepo) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, email)
	return nil
}

// Sweep removes pending records whose expiry has been reached.
func (r *PendingRepo) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, p := range r.items {
		if p.Expired(now) {
			delete(r.items, k)
			n++
		}
	}
	return n
}

// find returns the matching record with the latest expiry. Expired records linger until
// Sweep, so a username can match several; the latest one is live whenever any is.
func (r *PendingRepo) find(match func(domain.PendingAccount) bool) (*domain.PendingAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *domain.PendingAccount
	for _, p := range r.items {
		if match(p) && (best == nil || p.ExpiresAt > best.ExpiresAt) {
			cp := p
			best = &cp
		}
	}
	if best == nil {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	return best, nil
}

// AccountRepo stores verified accounts keyed by username.
type AccountRepo struct {
	mu    sync.Mutex
	items map[string]domain.Account
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{items: make(map[string]domain.Account)}
}

func (r *AccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.Username]; ok {
		return fmt.Errorf("account exists: %w", domain.ErrConflict)
	}
	r.items[a.Username] = *a
	return nil
}

// Put overwrites unconditionally. Test helper for seeding inconsistent data.
func (r *AccountRepo) Put(a domain.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.Username] = a
}

func (r *AccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[username]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.Email == email {
			cp := a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
}
