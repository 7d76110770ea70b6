package testsupport

import (
	"context"
	"errors"
	"sync"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/services"
)

// FakeIdentity is an in-memory services.IdentityProvider
type FakeIdentity struct {
	mu        sync.Mutex
	sessions  map[string]*services.SessionUser
	deleted   []string
	DeleteErr error
	PingErr   error
}

// NewFakeIdentity returns an empty provider
func NewFakeIdentity() *FakeIdentity {
	return &FakeIdentity{sessions: make(map[string]*services.SessionUser)}
}

// AddSession registers a cookie for a user
func (f *FakeIdentity) AddSession(cookie, userID, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[cookie] = &services.SessionUser{ID: userID, Email: email}
}

// ValidateSession implements services.IdentityProvider
func (f *FakeIdentity) ValidateSession(ctx context.Context, cookie string) (*services.SessionUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.sessions[cookie]
	if !ok {
		return nil, errors.New("session is not valid")
	}
	return user, nil
}

// GetUser implements services.IdentityProvider
func (f *FakeIdentity) GetUser(ctx context.Context, id string) (*services.SessionUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.sessions {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, services.ErrIdentityUserNotFound
}

// DeleteUser implements services.IdentityProvider
func (f *FakeIdentity) DeleteUser(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.deleted = append(f.deleted, id)
	for cookie, user := range f.sessions {
		if user.ID == id {
			delete(f.sessions, cookie)
		}
	}
	return nil
}

// Ping implements services.IdentityProvider
func (f *FakeIdentity) Ping(ctx context.Context) error {
	return f.PingErr
}

// Deleted lists the ids passed to DeleteUser
func (f *FakeIdentity) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}
