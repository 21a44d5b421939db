package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"chat-demo/internal/domain"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db.json")
	store, err := NewFileStore(path, false)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store, path
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()

	user := domain.User{ID: "u1", Phone: "5551234", Country: "US", CreatedAt: time.Now().UTC()}
	if err := store.Users().Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.Sessions().Create(ctx, domain.Session{ID: "s1", UserID: "u1"}); err != nil {
		t.Fatalf("create session: %v", err)
	}

	reopened, err := NewFileStore(path, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Users().GetByID(ctx, "u1")
	if err != nil || got.Phone != "5551234" {
		t.Fatalf("expected persisted user, got %+v, %v", got, err)
	}
	if _, err := reopened.Sessions().GetByID(ctx, "s1"); err != nil {
		t.Fatalf("expected persisted session, got %v", err)
	}
}

func TestFileStore_FindByPhoneExactMatch(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()
	_ = store.Users().Create(ctx, domain.User{ID: "u1", Phone: "5551234", Country: "US"})
	_ = store.Users().Create(ctx, domain.User{ID: "u2", Phone: "5551234", Country: "MX"})

	users, err := store.Users().FindByPhone(ctx, "5551234", "US")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(users) != 1 || users[0].ID != "u1" {
		t.Fatalf("expected exactly u1, got %+v", users)
	}
	users, _ = store.Users().FindByPhone(ctx, "5551234", "us")
	if len(users) != 0 {
		t.Fatalf("expected case-sensitive match, got %+v", users)
	}
}

func TestFileStore_SessionDelete(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()
	_ = store.Sessions().Create(ctx, domain.Session{ID: "s1"})

	if err := store.Sessions().Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Sessions().GetByID(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Sessions().Delete(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFileStore_MessagesOrderedAndFiltered(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	msgs := []domain.Message{
		{ID: "m3", ChatID: "a", Kind: domain.KindText, Timestamp: base.Add(3 * time.Second)},
		{ID: "m1", ChatID: "a", Kind: domain.KindText, Timestamp: base.Add(time.Second)},
		{ID: "m2", ChatID: "b", Kind: domain.KindVoice, Timestamp: base.Add(2 * time.Second)},
		{ID: "m4", ChatID: "a", Kind: domain.KindVoice, Timestamp: base.Add(3 * time.Second)},
	}
	for _, m := range msgs {
		if err := store.Messages().Create(ctx, m); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	out, _ := store.Messages().List(ctx, MessageFilter{ChatID: "a"})
	ids := []string{}
	for _, m := range out {
		ids = append(ids, m.ID)
	}
	if len(ids) != 3 || ids[0] != "m1" || ids[1] != "m3" || ids[2] != "m4" {
		t.Fatalf("expected [m1 m3 m4], got %v", ids)
	}

	all, _ := store.Messages().List(ctx, MessageFilter{})
	if len(all) != 4 {
		t.Fatalf("expected all messages without filter, got %d", len(all))
	}

	voice, _ := store.Messages().List(ctx, MessageFilter{Kind: domain.KindVoice})
	if len(voice) != 2 {
		t.Fatalf("expected 2 voice messages, got %d", len(voice))
	}
}

func TestFileStore_ReadOnlyRejectsWrites(t *testing.T) {
	store, path := newTestFileStore(t)
	ctx := context.Background()
	_ = store.Users().Create(ctx, domain.User{ID: "u1", Phone: "1", Country: "US"})

	ro, err := NewFileStore(path, true)
	if err != nil {
		t.Fatalf("open read-only: %v", err)
	}
	if !ro.ReadOnly() {
		t.Fatalf("expected read-only store")
	}
	if err := ro.Sessions().Create(ctx, domain.Session{ID: "s1"}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := ro.Messages().Create(ctx, domain.Message{ID: "m1"}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if users, _ := ro.Users().List(ctx); len(users) != 1 {
		t.Fatalf("expected reads to keep working, got %+v", users)
	}
}

func TestFileStore_SnapshotIsCopy(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()
	_ = store.Contacts().Create(ctx, domain.Contact{ID: "c1", FullName: "Ana"})

	snap := store.Snapshot()
	snap.Contacts[0].FullName = "changed"

	got, _ := store.Contacts().GetByID(ctx, "c1")
	if got.FullName != "Ana" {
		t.Fatalf("expected snapshot mutation not to leak, got %q", got.FullName)
	}
	if snap.Users == nil || snap.Sessions == nil || snap.Messages == nil {
		t.Fatalf("expected empty collections, not nil")
	}
}

func TestMessageFilterMatches(t *testing.T) {
	m := domain.Message{ChatID: "a", Kind: domain.KindText}
	if !(MessageFilter{}).Matches(m) {
		t.Fatalf("empty filter should match")
	}
	if (MessageFilter{ChatID: "b"}).Matches(m) {
		t.Fatalf("chat filter should reject")
	}
	if (MessageFilter{Kind: domain.KindVoice}).Matches(m) {
		t.Fatalf("kind filter should reject")
	}
}

func TestReadOnlySessions(t *testing.T) {
	store, _ := newTestFileStore(t)
	ctx := context.Background()
	_ = store.Sessions().Create(ctx, domain.Session{ID: "s1"})

	ro := ReadOnlySessions(store.Sessions())
	if err := ro.Create(ctx, domain.Session{ID: "s2"}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly on create, got %v", err)
	}
	if err := ro.Delete(ctx, "s1"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly on delete, got %v", err)
	}
	if _, err := ro.GetByID(ctx, "s1"); err != nil {
		t.Fatalf("expected reads to pass through, got %v", err)
	}
}
