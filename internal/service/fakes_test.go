package service

import (
	"context"
	"errors"
	"sync"

	"chat-demo/internal/domain"
	"chat-demo/internal/repository"
)

type fakeUserFinder struct {
	users   []domain.User
	err     error
	lookups int
}

func (f *fakeUserFinder) FindByPhone(_ context.Context, phone, country string) ([]domain.User, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.User{}
	for _, u := range f.users {
		if u.Phone == phone && u.Country == country {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]domain.Session
	createErr error
	deleteErr error
	creates   int
	deletes   []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]domain.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, session domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.creates++
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return domain.Session{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

type fakeContactRepo struct {
	created []domain.Contact
	err     error
}

func (f *fakeContactRepo) Create(_ context.Context, c domain.Contact) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, c)
	return nil
}

func (f *fakeContactRepo) GetByID(_ context.Context, id string) (domain.Contact, error) {
	for _, c := range f.created {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Contact{}, repository.ErrNotFound
}

func (f *fakeContactRepo) List(_ context.Context) ([]domain.Contact, error) {
	return f.created, nil
}

var errStoreDown = errors.New("store down")
