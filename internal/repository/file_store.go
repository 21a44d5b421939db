package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"chat-demo/internal/domain"
)

// FileStore persiste todas las colecciones en un unico archivo JSON.
// Cada escritura reescribe el archivo completo via rename atomico.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	readOnly bool
	data     domain.Snapshot
}

// NewFileStore abre (o crea vacio) el archivo indicado.
func NewFileStore(path string, readOnly bool) (*FileStore, error) {
	s := &FileStore{path: path, readOnly: readOnly}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.data = emptySnapshot()
		if !readOnly {
			if err := s.flushLocked(); err != nil {
				return nil, err
			}
		}
	case err != nil:
		return nil, fmt.Errorf("read store file: %w", err)
	default:
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("decode store file: %w", err)
		}
		normalizeSnapshot(&s.data)
	}
	return s, nil
}

func emptySnapshot() domain.Snapshot {
	return domain.Snapshot{
		Users:    []domain.User{},
		Sessions: []domain.Session{},
		Contacts: []domain.Contact{},
		Messages: []domain.Message{},
	}
}

func normalizeSnapshot(s *domain.Snapshot) {
	if s.Users == nil {
		s.Users = []domain.User{}
	}
	if s.Sessions == nil {
		s.Sessions = []domain.Session{}
	}
	if s.Contacts == nil {
		s.Contacts = []domain.Contact{}
	}
	if s.Messages == nil {
		s.Messages = []domain.Message{}
	}
}

// ReadOnly indica si el store rechaza escrituras.
func (s *FileStore) ReadOnly() bool {
	return s.readOnly
}

// Snapshot devuelve una copia de todas las colecciones.
func (s *FileStore) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{
		Users:    append([]domain.User{}, s.data.Users...),
		Sessions: append([]domain.Session{}, s.data.Sessions...),
		Contacts: append([]domain.Contact{}, s.data.Contacts...),
		Messages: append([]domain.Message{}, s.data.Messages...),
	}
}

// mutate aplica fn bajo lock exclusivo y persiste si fn no falla.
func (s *FileStore) mutate(fn func(d *domain.Snapshot) error) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data
	next := domain.Snapshot{
		Users:    append([]domain.User{}, prev.Users...),
		Sessions: append([]domain.Session{}, prev.Sessions...),
		Contacts: append([]domain.Contact{}, prev.Contacts...),
		Messages: append([]domain.Message{}, prev.Messages...),
	}
	if err := fn(&next); err != nil {
		return err
	}
	s.data = next
	if err := s.flushLocked(); err != nil {
		s.data = prev
		return err
	}
	return nil
}

func (s *FileStore) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (s *FileStore) Users() *FileUserRepository       { return &FileUserRepository{s: s} }
func (s *FileStore) Sessions() *FileSessionRepository { return &FileSessionRepository{s: s} }
func (s *FileStore) Contacts() *FileContactRepository { return &FileContactRepository{s: s} }
func (s *FileStore) Messages() *FileMessageRepository { return &FileMessageRepository{s: s} }

type FileUserRepository struct{ s *FileStore }

func (r *FileUserRepository) Create(_ context.Context, user domain.User) error {
	return r.s.mutate(func(d *domain.Snapshot) error {
		for _, u := range d.Users {
			if u.ID == user.ID {
				return fmt.Errorf("user %q already exists", user.ID)
			}
		}
		d.Users = append(d.Users, user)
		return nil
	})
}

func (r *FileUserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.data.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, ErrNotFound
}

func (r *FileUserRepository) FindByPhone(_ context.Context, phone, country string) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.User{}
	for _, u := range r.s.data.Users {
		if u.Phone == phone && u.Country == country {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *FileUserRepository) List(_ context.Context) ([]domain.User, error) {
	return r.s.Snapshot().Users, nil
}

type FileSessionRepository struct{ s *FileStore }

func (r *FileSessionRepository) Create(_ context.Context, session domain.Session) error {
	return r.s.mutate(func(d *domain.Snapshot) error {
		for _, existing := range d.Sessions {
			if existing.ID == session.ID {
				return fmt.Errorf("session %q already exists", session.ID)
			}
		}
		d.Sessions = append(d.Sessions, session)
		return nil
	})
}

func (r *FileSessionRepository) GetByID(_ context.Context, id string) (domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, s := range r.s.data.Sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Session{}, ErrNotFound
}

func (r *FileSessionRepository) Delete(_ context.Context, id string) error {
	return r.s.mutate(func(d *domain.Snapshot) error {
		for i, s := range d.Sessions {
			if s.ID == id {
				d.Sessions = append(d.Sessions[:i], d.Sessions[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

func (r *FileSessionRepository) List(_ context.Context) ([]domain.Session, error) {
	return r.s.Snapshot().Sessions, nil
}

type FileContactRepository struct{ s *FileStore }

func (r *FileContactRepository) Create(_ context.Context, contact domain.Contact) error {
	return r.s.mutate(func(d *domain.Snapshot) error {
		d.Contacts = append(d.Contacts, contact)
		return nil
	})
}

func (r *FileContactRepository) GetByID(_ context.Context, id string) (domain.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.data.Contacts {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Contact{}, ErrNotFound
}

func (r *FileContactRepository) List(_ context.Context) ([]domain.Contact, error) {
	return r.s.Snapshot().Contacts, nil
}

type FileMessageRepository struct{ s *FileStore }

func (r *FileMessageRepository) Create(_ context.Context, message domain.Message) error {
	return r.s.mutate(func(d *domain.Snapshot) error {
		d.Messages = append(d.Messages, message)
		return nil
	})
}

// List respeta el orden temporal; a igual timestamp conserva el orden de insercion.
func (r *FileMessageRepository) List(_ context.Context, filter MessageFilter) ([]domain.Message, error) {
	r.s.mu.RLock()
	out := []domain.Message{}
	for _, m := range r.s.data.Messages {
		if filter.Matches(m) {
			out = append(out, m)
		}
	}
	r.s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
