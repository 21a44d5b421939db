package terminal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chat-demo/internal/conversation"
	"chat-demo/internal/domain"
)

func TestRendererRendersBothDirections(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, 60)
	contact := &domain.Contact{ID: "a", FullName: "Ana Lopez", Phone: "+15551234", Avatar: domain.Avatar{Initials: "AL"}}

	r.Render(conversation.View{
		ChatID:  "a",
		Contact: contact,
		Messages: []conversation.RenderedMessage{
			{Message: domain.Message{Content: "hola", Kind: domain.KindText, Timestamp: time.Now()}, Direction: conversation.DirectionReceived},
			{Message: domain.Message{AudioURL: "/media/voice/v.webm", Duration: 3, Kind: domain.KindVoice, Timestamp: time.Now()}, Direction: conversation.DirectionSent},
		},
	})

	got := out.String()
	for _, want := range []string{"Ana Lopez", "hola", "voice note 3s", "/media/voice/v.webm"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestRendererWithoutContact(t *testing.T) {
	var out bytes.Buffer
	NewRenderer(&out, 0).Render(conversation.View{ChatID: "ghost"})
	if !strings.Contains(out.String(), "chat ghost") || !strings.Contains(out.String(), "no messages yet") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestNotifier(t *testing.T) {
	var out bytes.Buffer
	NewNotifier(&out).Notify("network error")
	if !strings.Contains(out.String(), "network error") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func collect(t *testing.T, c conversation.Capture, wait time.Duration) int {
	t.Helper()
	total := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for chunk := range c.Chunks() {
			total += len(chunk)
		}
	}()
	time.Sleep(wait)
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	<-done
	return total
}

func TestMicrophoneSynthetic(t *testing.T) {
	c, err := Microphone{}.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if total := collect(t, c, 350*time.Millisecond); total == 0 || total%chunkSize != 0 {
		t.Fatalf("unexpected byte count %d", total)
	}
}

func TestMicrophoneFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.raw")
	if err := os.WriteFile(path, bytes.Repeat([]byte{1}, 150), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	c, err := Microphone{Source: path}.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if total := collect(t, c, 500*time.Millisecond); total < 150 {
		t.Fatalf("expected at least the file contents, got %d bytes", total)
	}

	if _, err := (Microphone{Source: filepath.Join(t.TempDir(), "missing")}).Open(context.Background()); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestRendererAllMessagesTitle(t *testing.T) {
	var out bytes.Buffer
	NewRenderer(&out, 0).Render(conversation.View{})
	if !strings.Contains(out.String(), "all messages") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
