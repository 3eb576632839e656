package client

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Status tracks the lifecycle of the most recent async operation on a slice.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// Snapshot is the observable state of one slice: the cached data plus the
// outcome of the last operation that touched it.
type Snapshot struct {
	Account *Account
	Status  Status
	Message string
}

// AdminSnapshot carries the admin identity and the cached user listing.
type AdminSnapshot struct {
	Account *Account
	Users   []Account
	Status  Status
	Message string
}

// IdentityEvent is published whenever the signed-in identity changes: login,
// profile mutation, or logout (Account nil). Profile views subscribe to this
// instead of reaching into the auth slice's storage.
type IdentityEvent struct {
	Account *Account
}

// Store is the client-side state container. It owns the user and admin
// identities, keeps the durable mirror in sync, and publishes identity
// changes to subscribers. It is created explicitly at app start and passed
// by reference; there is no package-level instance.
//
// All operations are safe for concurrent use. Overlapping calls race with
// last-response-wins semantics on the cached state; the store never retries.
type Store struct {
	api    *API
	mirror *Mirror

	mu    sync.Mutex
	auth  Snapshot
	admin AdminSnapshot

	subMu sync.Mutex
	subs  []chan IdentityEvent
}

func NewStore(api *API, mirror *Mirror) *Store {
	s := &Store{
		api:    api,
		mirror: mirror,
		auth:   Snapshot{Status: StatusIdle},
		admin:  AdminSnapshot{Status: StatusIdle},
	}
	s.rehydrate()
	return s
}

// rehydrate seeds initial state from the mirror. Stale tokens are accepted
// here; the next protected call surfaces the expiry and the caller logs out.
func (s *Store) rehydrate() {
	if s.mirror == nil {
		return
	}
	var user Account
	if ok, err := s.mirror.Get(mirrorKeyUser, &user); err == nil && ok {
		s.auth.Account = &user
	}
	var admin Account
	if ok, err := s.mirror.Get(mirrorKeyAdmin, &admin); err == nil && ok {
		s.admin.Account = &admin
	}
}

// Subscribe returns a channel receiving identity change events. The returned
// cancel func must be called when the subscriber goes away.
func (s *Store) Subscribe() (<-chan IdentityEvent, func()) {
	ch := make(chan IdentityEvent, 8)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub == ch {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

func (s *Store) publish(acct *Account) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- IdentityEvent{Account: acct}:
		default:
			// Slow subscribers drop events rather than block mutations.
		}
	}
}

// Auth returns the current auth snapshot.
func (s *Store) Auth() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth
}

// Admin returns the current admin snapshot.
func (s *Store) Admin() AdminSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

func (s *Store) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auth.Account == nil {
		return ""
	}
	return s.auth.Account.Token
}

func (s *Store) adminToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.admin.Account == nil {
		return ""
	}
	return s.admin.Account.Token
}

func (s *Store) setAuthPending() {
	s.mu.Lock()
	s.auth.Status = StatusPending
	s.auth.Message = ""
	s.mu.Unlock()
}

// settleIdentity applies a mutation outcome to the auth slice, writes the
// mirror, and publishes the change. Every identity-bearing success funnels
// through here so the cached copy and the mirror cannot diverge.
func (s *Store) settleIdentity(acct *Account, err error) error {
	s.mu.Lock()
	if err != nil {
		s.auth.Status = StatusRejected
		s.auth.Message = errorMessage(err)
		s.mu.Unlock()
		return err
	}
	// An op that returns no fresh token keeps the one already held.
	if acct.Token == "" && s.auth.Account != nil {
		acct.Token = s.auth.Account.Token
	}
	s.auth.Account = acct
	s.auth.Status = StatusFulfilled
	s.auth.Message = ""
	s.mu.Unlock()

	if s.mirror != nil {
		_ = s.mirror.Set(mirrorKeyUser, acct)
	}
	s.publish(acct)
	return nil
}

func (s *Store) Register(ctx context.Context, in RegisterInput) error {
	s.setAuthPending()
	acct, err := s.api.Register(ctx, in)
	return s.settleIdentity(acct, err)
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	s.setAuthPending()
	acct, err := s.api.Login(ctx, email, password)
	return s.settleIdentity(acct, err)
}

func (s *Store) RefreshProfile(ctx context.Context) error {
	s.setAuthPending()
	acct, err := s.api.GetProfile(ctx, s.token())
	return s.settleIdentity(acct, err)
}

// UpdateProfile sends a partial patch. The server re-issues a token on
// profile mutation, so the fresh snapshot (token included) overwrites both
// the cached identity and the mirror.
func (s *Store) UpdateProfile(ctx context.Context, in UpdateInput) error {
	s.setAuthPending()
	acct, err := s.api.UpdateProfile(ctx, s.token(), in)
	return s.settleIdentity(acct, err)
}

func (s *Store) UploadProfileImage(ctx context.Context, filename string, file io.Reader) error {
	s.setAuthPending()
	acct, err := s.api.UploadProfileImage(ctx, s.token(), filename, file)
	return s.settleIdentity(acct, err)
}

// Logout clears the user identity, its mirror entry, and notifies
// subscribers. Purely local; the token is stateless server-side.
func (s *Store) Logout() {
	s.mu.Lock()
	s.auth = Snapshot{Status: StatusIdle}
	s.mu.Unlock()

	if s.mirror != nil {
		_ = s.mirror.Delete(mirrorKeyUser)
	}
	s.publish(nil)
}

func (s *Store) AdminLogin(ctx context.Context, email, password string) error {
	s.mu.Lock()
	s.admin.Status = StatusPending
	s.admin.Message = ""
	s.mu.Unlock()

	acct, err := s.api.AdminLogin(ctx, email, password)

	s.mu.Lock()
	if err != nil {
		s.admin.Status = StatusRejected
		s.admin.Message = errorMessage(err)
		s.mu.Unlock()
		return err
	}
	s.admin.Account = acct
	s.admin.Status = StatusFulfilled
	s.admin.Message = ""
	s.mu.Unlock()

	if s.mirror != nil {
		_ = s.mirror.Set(mirrorKeyAdmin, acct)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) error {
	s.mu.Lock()
	s.admin.Status = StatusPending
	s.admin.Message = ""
	s.mu.Unlock()

	users, err := s.api.ListUsers(ctx, s.adminToken())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.admin.Status = StatusRejected
		s.admin.Message = errorMessage(err)
		return err
	}
	s.admin.Users = users
	s.admin.Status = StatusFulfilled
	return nil
}

func (s *Store) CreateUser(ctx context.Context, in CreateUserInput) error {
	_, err := s.api.CreateUser(ctx, s.adminToken(), in)
	if err != nil {
		s.setAdminRejected(err)
		return err
	}
	// Re-list so the cached table reflects the new record.
	return s.ListUsers(ctx)
}

func (s *Store) UpdateUser(ctx context.Context, id string, in UpdateInput) error {
	_, err := s.api.UpdateUser(ctx, s.adminToken(), id, in)
	if err != nil {
		s.setAdminRejected(err)
		return err
	}
	return s.ListUsers(ctx)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.api.DeleteUser(ctx, s.adminToken(), id); err != nil {
		s.setAdminRejected(err)
		return err
	}
	return s.ListUsers(ctx)
}

func (s *Store) setAdminRejected(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin.Status = StatusRejected
	s.admin.Message = errorMessage(err)
}

// AdminLogout clears the admin identity and its mirror entry.
func (s *Store) AdminLogout() {
	s.mu.Lock()
	s.admin = AdminSnapshot{Status: StatusIdle}
	s.mu.Unlock()

	if s.mirror != nil {
		_ = s.mirror.Delete(mirrorKeyAdmin)
	}
}

// Reset wipes both identities and their mirror entries.
func (s *Store) Reset() {
	s.Logout()
	s.AdminLogout()
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericErrorMessage
}
