package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sidekick/internal/engine"
)

// Scripted is a local assistant channel used when no backend is configured,
// and by tests. It streams a canned reply in cumulative chunks followed by a
// final event, mimicking the shape of a real reply stream.
type Scripted struct {
	// Replies are consumed in order; when exhausted (or empty), the channel
	// falls back to an echo of the request.
	Replies []string

	// ChunkDelay paces the stream. Zero means no artificial delay.
	ChunkDelay time.Duration

	next int
}

func NewScripted(replies ...string) *Scripted {
	return &Scripted{Replies: replies, ChunkDelay: 30 * time.Millisecond}
}

func (s *Scripted) Send(ctx context.Context, req engine.SendRequest) (<-chan engine.AssistantEvent, error) {
	reply := s.pick(req)
	out := make(chan engine.AssistantEvent, 16)

	go func() {
		defer close(out)
		words := strings.Fields(reply)
		var sofar strings.Builder
		for i, w := range words {
			if i > 0 {
				sofar.WriteByte(' ')
			}
			sofar.WriteString(w)
			// Skip intermediate chunks for very short replies.
			if len(words) > 1 && i < len(words)-1 {
				select {
				case <-ctx.Done():
					return
				case out <- engine.AssistantEvent{Kind: engine.AssistantChunk, Text: sofar.String()}:
				}
				if s.ChunkDelay > 0 {
					select {
					case <-ctx.Done():
						return
					case <-time.After(s.ChunkDelay):
					}
				}
			}
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
		case out <- engine.AssistantEvent{Kind: engine.AssistantFinal, Text: sofar.String()}:
		}
	}()

	return out, nil
}

func (s *Scripted) pick(req engine.SendRequest) string {
	if s.next < len(s.Replies) {
		r := s.Replies[s.next]
		s.next++
		return r
	}

	var b strings.Builder
	b.WriteString("You said: ")
	b.WriteString(req.Text)
	if len(req.Files) > 0 {
		paths := make([]string, len(req.Files))
		for i, f := range req.Files {
			paths[i] = f.Path
		}
		fmt.Fprintf(&b, " (files: %s)", strings.Join(paths, ", "))
	}
	if len(req.Commands) > 0 {
		fmt.Fprintf(&b, " (commands: %s)", strings.Join(req.Commands, ", "))
	}
	b.WriteString(". No assistant backend is configured.")
	return b.String()
}
