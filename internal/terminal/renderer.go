package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"chat-demo/internal/conversation"
	"chat-demo/internal/domain"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFDF5")).MarginBottom(1)
	sentStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5")).Background(lipgloss.Color("#25D366")).Padding(0, 1)
	receivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1F1F1F")).Background(lipgloss.Color("#E5E5EA")).Padding(0, 1)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#AFAFAF"))
	noticeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C"))
	emptyStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#AFAFAF"))
)

// Renderer dibuja la conversacion completa en cada llamada.
type Renderer struct {
	mu    sync.Mutex
	out   io.Writer
	width int
}

func NewRenderer(out io.Writer, width int) *Renderer {
	if width <= 0 {
		width = 72
	}
	return &Renderer{out: out, width: width}
}

func (r *Renderer) Render(view conversation.View) {
	var b strings.Builder
	b.WriteString(headerStyle.Render(chatTitle(view)))
	b.WriteString("\n")

	if len(view.Messages) == 0 {
		b.WriteString(emptyStyle.Render("no messages yet"))
		b.WriteString("\n")
	}
	for _, m := range view.Messages {
		b.WriteString(r.renderMessage(m))
		b.WriteString("\n")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, b.String())
}

func chatTitle(view conversation.View) string {
	if view.ChatID == "" {
		return "all messages"
	}
	if view.Contact == nil {
		return "chat " + view.ChatID
	}
	name := view.Contact.FullName
	if name == "" {
		name = view.Contact.Phone
	}
	return fmt.Sprintf("[%s] %s  %s", view.Contact.Avatar.Initials, name, view.Contact.Phone)
}

func (r *Renderer) renderMessage(m conversation.RenderedMessage) string {
	body := m.Content
	if m.Kind == domain.KindVoice {
		body = fmt.Sprintf("voice note %ds  %s", m.Duration, m.AudioURL)
	}
	meta := metaStyle.Render(m.Timestamp.Local().Format("15:04"))

	if m.Direction == conversation.DirectionSent {
		line := lipgloss.JoinHorizontal(lipgloss.Bottom, sentStyle.Render(body), " ", meta)
		return lipgloss.PlaceHorizontal(r.width, lipgloss.Right, line)
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, receivedStyle.Render(body), " ", meta)
}

// RenderContacts lista los contactos con su indice para /open.
func RenderContacts(out io.Writer, contacts []domain.Contact) {
	if len(contacts) == 0 {
		fmt.Fprintln(out, emptyStyle.Render("no contacts, create one with /new"))
		return
	}
	for i, c := range contacts {
		avatar := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Avatar.Color)).Render(c.Avatar.Initials)
		fmt.Fprintf(out, "[%d] %s %s %s\n", i+1, avatar, c.FullName, metaStyle.Render(c.Phone))
	}
}

// Notifier imprime avisos al usuario.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, noticeStyle.Render("! "+msg))
}
