package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"chat-demo/internal/conversation"
)

const (
	chunkSize     = 100
	chunkInterval = 100 * time.Millisecond
)

// Microphone simula una captura de audio: emite chunks de 100 bytes cada
// 100ms, leidos de Source si esta definido o silencio si no.
type Microphone struct {
	Source string
}

func (m Microphone) Open(ctx context.Context) (conversation.Capture, error) {
	var src io.ReadCloser
	if m.Source != "" {
		f, err := os.Open(m.Source)
		if err != nil {
			return nil, fmt.Errorf("open audio source: %w", err)
		}
		src = f
	}

	c := &capture{
		ch:   make(chan []byte),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go c.run(ctx, src)
	return c, nil
}

type capture struct {
	ch   chan []byte
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func (c *capture) run(ctx context.Context, src io.ReadCloser) {
	defer close(c.done)
	defer close(c.ch)
	defer func() {
		if src != nil {
			src.Close()
		}
	}()

	ticker := time.NewTicker(chunkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		chunk := make([]byte, chunkSize)
		if src != nil {
			n, err := src.Read(chunk)
			if n == 0 && err != nil {
				// fuente agotada: seguimos hasta Close con silencio
				src.Close()
				src = nil
			}
			if n > 0 {
				chunk = chunk[:n]
			}
		}

		select {
		case c.ch <- chunk:
		case <-c.stop:
			return
		}
	}
}

func (c *capture) Chunks() <-chan []byte { return c.ch }

func (c *capture) Close() error {
	c.once.Do(func() { close(c.stop) })
	<-c.done
	return nil
}
