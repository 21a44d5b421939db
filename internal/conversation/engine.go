package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-demo/internal/domain"
	"chat-demo/internal/repository"
	"chat-demo/internal/service"
	"chat-demo/internal/storeclient"
)

const (
	DefaultPollInterval = 5 * time.Second
	bytesPerSecond      = 1000
)

var ErrNoChatSelected = errors.New("no chat selected")

type Config struct {
	LocalUserID  string
	PollInterval time.Duration
	Now          func() time.Time
	NewID        func() string
}

// State es una foto del estado de la conversacion.
type State struct {
	SelectedChatID  string
	SelectedContact *domain.Contact
	IsRecording     bool
	BufferedBytes   int
}

// Engine mantiene el chat seleccionado, la grabacion en curso y el borrador.
// Cada carga de mensajes lleva un numero de secuencia y solo la ultima se renderiza.
type Engine struct {
	logger   *zap.Logger
	store    Store
	renderer Renderer
	notifier Notifier
	mic      Microphone
	cfg      Config

	mu          sync.Mutex
	chatID      string
	contact     *domain.Contact
	draft       string
	audioBuffer [][]byte
	capture     Capture
	collected   chan struct{}

	recMu     sync.Mutex
	selectGen atomic.Uint64
	loadSeq   atomic.Uint64
	renderMu  sync.Mutex
}

func NewEngine(logger *zap.Logger, store Store, renderer Renderer, notifier Notifier, mic Microphone, cfg Config) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Engine{
		logger:   logger,
		store:    store,
		renderer: renderer,
		notifier: notifier,
		mic:      mic,
		cfg:      cfg,
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for _, chunk := range e.audioBuffer {
		total += len(chunk)
	}
	return State{
		SelectedChatID:  e.chatID,
		SelectedContact: e.contact,
		IsRecording:     e.capture != nil,
		BufferedBytes:   total,
	}
}

// Draft devuelve el texto de un envio fallido, si lo hay.
func (e *Engine) Draft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Contacts recupera la lista de contactos para mostrarla.
func (e *Engine) Contacts(ctx context.Context) ([]domain.Contact, error) {
	contacts, err := e.store.ListContacts(ctx)
	if err != nil {
		e.notifyError("could not load contacts", err)
		return nil, err
	}
	return contacts, nil
}

func (e *Engine) CreateContact(ctx context.Context, input service.ContactInput) (domain.Contact, error) {
	contact, err := e.store.CreateContact(ctx, input)
	if err != nil {
		e.notifyError("could not create contact", err)
		return domain.Contact{}, err
	}
	return contact, nil
}

// SelectContact vuelve a leer los contactos, fija el chat y carga sus mensajes.
// Un id sin contacto conocido igual queda seleccionado, sin metadatos. Si
// mientras tanto hubo otra seleccion o un Reset, esta se abandona.
func (e *Engine) SelectContact(ctx context.Context, contactID string) error {
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return ErrNoChatSelected
	}
	gen := e.selectGen.Add(1)

	contacts, err := e.store.ListContacts(ctx)
	if err != nil {
		if e.selectGen.Load() != gen {
			return nil
		}
		e.notifyError("could not load contacts", err)
		return err
	}

	var selected *domain.Contact
	for i := range contacts {
		if contacts[i].ID == contactID {
			c := contacts[i]
			selected = &c
			break
		}
	}
	if selected == nil {
		e.logger.Warn("selected chat has no contact record", zap.String("chat_id", contactID))
	}

	e.mu.Lock()
	if e.selectGen.Load() != gen {
		e.mu.Unlock()
		e.logger.Debug("discarding superseded selection", zap.String("chat_id", contactID))
		return nil
	}
	e.chatID = contactID
	e.contact = selected
	e.mu.Unlock()

	if err := e.LoadMessages(ctx); err != nil {
		e.notifyError("could not load messages", err)
		return err
	}
	return nil
}

// LoadMessages trae los mensajes del chat seleccionado, o todos si no hay
// chat, y reemplaza la vista. Una respuesta que llega despues de una carga
// mas nueva se descarta.
func (e *Engine) LoadMessages(ctx context.Context) error {
	e.mu.Lock()
	chatID, contact := e.chatID, e.contact
	seq := e.loadSeq.Add(1)
	e.mu.Unlock()

	messages, err := e.store.ListMessages(ctx, chatID)
	if err != nil {
		if e.loadSeq.Load() != seq {
			return nil
		}
		return fmt.Errorf("load messages: %w", err)
	}

	view := View{
		ChatID:   chatID,
		Contact:  contact,
		Messages: make([]RenderedMessage, 0, len(messages)),
	}
	for _, m := range messages {
		dir := DirectionReceived
		if m.SenderID == e.cfg.LocalUserID {
			dir = DirectionSent
		}
		view.Messages = append(view.Messages, RenderedMessage{Message: m, Direction: dir})
	}

	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	if e.loadSeq.Load() != seq {
		e.logger.Debug("discarding stale message load", zap.String("chat_id", chatID), zap.Uint64("seq", seq))
		return nil
	}
	if e.renderer != nil {
		e.renderer.Render(view)
	}
	return nil
}

// SendTextMessage publica content en el chat actual. Contenido en blanco o
// ningun chat seleccionado no hacen nada. Si falla, el texto queda como borrador.
func (e *Engine) SendTextMessage(ctx context.Context, content string) error {
	text := strings.TrimSpace(content)
	e.mu.Lock()
	chatID := e.chatID
	e.mu.Unlock()
	if text == "" || chatID == "" {
		return nil
	}

	msg := domain.Message{
		ID:        e.cfg.NewID(),
		ChatID:    chatID,
		SenderID:  e.cfg.LocalUserID,
		Content:   text,
		Kind:      domain.KindText,
		Timestamp: e.cfg.Now(),
	}
	if _, err := e.store.CreateMessage(ctx, msg); err != nil {
		e.mu.Lock()
		e.draft = content
		e.mu.Unlock()
		e.notifyError("message not sent", err)
		return err
	}

	e.mu.Lock()
	e.draft = ""
	e.mu.Unlock()

	if err := e.LoadMessages(ctx); err != nil {
		e.notifyError("could not refresh messages", err)
	}
	return nil
}

// ToggleRecording alterna Idle y Recording. Al salir de Recording siempre
// intenta persistir la nota de voz. Los toggles concurrentes se serializan.
func (e *Engine) ToggleRecording(ctx context.Context) error {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	e.mu.Lock()
	recording := e.capture != nil
	e.mu.Unlock()

	if !recording {
		return e.startRecording(ctx)
	}
	e.stopRecording()
	return e.CommitVoiceMessage(ctx)
}

func (e *Engine) startRecording(ctx context.Context) error {
	if e.mic == nil {
		e.notify("microphone unavailable")
		return errors.New("microphone not configured")
	}
	capture, err := e.mic.Open(ctx)
	if err != nil {
		e.notify("microphone unavailable")
		return fmt.Errorf("open microphone: %w", err)
	}

	done := make(chan struct{})
	e.mu.Lock()
	e.audioBuffer = nil
	e.capture = capture
	e.collected = done
	e.mu.Unlock()

	go func() {
		defer close(done)
		for chunk := range capture.Chunks() {
			if len(chunk) == 0 {
				continue
			}
			e.mu.Lock()
			e.audioBuffer = append(e.audioBuffer, chunk)
			e.mu.Unlock()
		}
	}()

	e.logger.Debug("recording started")
	return nil
}

// stopRecording cierra la captura y espera a que todos los chunks queden en el buffer.
func (e *Engine) stopRecording() {
	e.mu.Lock()
	capture, done := e.capture, e.collected
	e.mu.Unlock()
	if capture == nil {
		return
	}

	if err := capture.Close(); err != nil {
		e.logger.Warn("close capture failed", zap.Error(err))
	}
	<-done

	e.mu.Lock()
	e.capture = nil
	e.collected = nil
	e.mu.Unlock()
	e.logger.Debug("recording stopped")
}

// CommitVoiceMessage vacia el buffer de audio y lo persiste como nota de voz
// del chat seleccionado. La duracion es bytes totales / 1000.
func (e *Engine) CommitVoiceMessage(ctx context.Context) error {
	e.mu.Lock()
	chatID := e.chatID
	buffer := e.audioBuffer
	e.audioBuffer = nil
	e.mu.Unlock()

	if chatID == "" {
		e.logger.Debug("voice note discarded, no chat selected")
		return nil
	}

	total := 0
	for _, chunk := range buffer {
		total += len(chunk)
	}
	id := e.cfg.NewID()
	voice := domain.VoiceMessage{
		ID:        id,
		ChatID:    chatID,
		SenderID:  e.cfg.LocalUserID,
		AudioURL:  VoiceLocator(id),
		Duration:  total / bytesPerSecond,
		Timestamp: e.cfg.Now(),
	}
	if _, err := e.store.CreateVoiceMessage(ctx, voice); err != nil {
		e.notifyError("voice note not sent", err)
		return err
	}

	if err := e.LoadMessages(ctx); err != nil {
		e.notifyError("could not refresh messages", err)
	}
	return nil
}

// VoiceLocator devuelve la ruta del recurso de audio de una nota de voz.
func VoiceLocator(id string) string {
	return "/media/voice/" + id + ".webm"
}

// PollMessages recarga el chat seleccionado cada PollInterval hasta que ctx
// se cancele. Los errores se loguean y el ciclo sigue.
func (e *Engine) PollMessages(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.mu.Lock()
			selected := e.chatID != ""
			e.mu.Unlock()
			if !selected {
				continue
			}
			if err := e.LoadMessages(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				e.logger.Warn("poll messages failed", zap.Error(err))
			}
		}
	}
}

// Reset vuelve a NoChatSelected: descarta la grabacion y el borrador e
// invalida cualquier carga en vuelo.
func (e *Engine) Reset() {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	e.stopRecording()

	e.mu.Lock()
	e.chatID = ""
	e.contact = nil
	e.draft = ""
	e.audioBuffer = nil
	e.selectGen.Add(1)
	e.loadSeq.Add(1)
	e.mu.Unlock()
}

func (e *Engine) notify(msg string) {
	if e.notifier != nil {
		e.notifier.Notify(msg)
	}
}

func (e *Engine) notifyError(action string, err error) {
	switch {
	case errors.Is(err, repository.ErrReadOnly):
		e.notify(action + ": the demo is in read-only mode")
	case errors.Is(err, storeclient.ErrNetwork):
		e.notify(action + ": network error, try again")
	default:
		e.notify(action + ": " + err.Error())
	}
	e.logger.Warn(action, zap.Error(err))
}
