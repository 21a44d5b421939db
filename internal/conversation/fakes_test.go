package conversation

import (
	"context"
	"errors"
	"sync"

	"chat-demo/internal/domain"
	"chat-demo/internal/service"
)

var errStoreDown = errors.New("store down")

type fakeStore struct {
	mu        sync.Mutex
	contacts  []domain.Contact
	messages  []domain.Message
	listCalls int
	listErrs  int
	createErr error
	gates     map[string]chan struct{}
	entered   chan string

	contactGate    chan struct{}
	contactEntered chan struct{}
}

func newFakeStore(contacts ...domain.Contact) *fakeStore {
	return &fakeStore{contacts: contacts, gates: map[string]chan struct{}{}}
}

// ListContacts bloquea la primera llamada en contactGate si esta definido.
func (f *fakeStore) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	f.mu.Lock()
	gate := f.contactGate
	f.contactGate = nil
	entered := f.contactEntered
	f.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Contact{}, f.contacts...), nil
}

func (f *fakeStore) CreateContact(_ context.Context, input service.ContactInput) (domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domain.Contact{ID: "c" + input.Phone, FirstName: input.FirstName, Phone: input.Phone}
	f.contacts = append(f.contacts, c)
	return c, nil
}

func (f *fakeStore) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	f.mu.Lock()
	f.listCalls++
	if f.listErrs > 0 {
		f.listErrs--
		f.mu.Unlock()
		return nil, errStoreDown
	}
	gate := f.gates[chatID]
	entered := f.entered
	f.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- chatID
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Message{}
	for _, m := range f.messages {
		if chatID == "" || m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, msg domain.Message) (domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Message{}, f.createErr
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeStore) CreateVoiceMessage(_ context.Context, voice domain.VoiceMessage) (domain.VoiceMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.VoiceMessage{}, f.createErr
	}
	f.messages = append(f.messages, voice.Message())
	return voice, nil
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeStore) stored() []domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Message{}, f.messages...)
}

type recordingRenderer struct {
	mu    sync.Mutex
	views []View
}

func (r *recordingRenderer) Render(view View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}

func (r *recordingRenderer) all() []View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]View{}, r.views...)
}

func (r *recordingRenderer) last() (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return View{}, false
	}
	return r.views[len(r.views)-1], true
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

// fakeMic entrega los chunks precargados y cierra el canal al cerrar la captura.
type fakeMic struct {
	chunks [][]byte
	opens  int
	err    error
}

func (m *fakeMic) Open(_ context.Context) (Capture, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.opens++
	c := &fakeCapture{ch: make(chan []byte, len(m.chunks))}
	for _, chunk := range m.chunks {
		c.ch <- chunk
	}
	return c, nil
}

type fakeCapture struct {
	ch   chan []byte
	once sync.Once
}

func (c *fakeCapture) Chunks() <-chan []byte { return c.ch }

func (c *fakeCapture) Close() error {
	c.once.Do(func() { close(c.ch) })
	return nil
}
