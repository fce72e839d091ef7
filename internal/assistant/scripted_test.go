package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"sidekick/internal/engine"
)

func collect(t *testing.T, ch <-chan engine.AssistantEvent) []engine.AssistantEvent {
	t.Helper()
	var evs []engine.AssistantEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return evs
			}
			evs = append(evs, ev)
		case <-timeout:
			t.Fatal("stream did not finish")
		}
	}
}

func TestScripted_StreamsCumulativeChunksThenFinal(t *testing.T) {
	s := NewScripted("one two three")
	s.ChunkDelay = 0

	ch, err := s.Send(context.Background(), engine.SendRequest{Text: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	evs := collect(t, ch)
	if len(evs) < 2 {
		t.Fatalf("expected chunks plus final, got %d events", len(evs))
	}
	last := evs[len(evs)-1]
	if last.Kind != engine.AssistantFinal || last.Text != "one two three" {
		t.Fatalf("bad final event: %+v", last)
	}
	// Each chunk carries the cumulative text, growing monotonically.
	prev := ""
	for _, ev := range evs {
		if len(ev.Text) < len(prev) {
			t.Fatalf("chunk shrank: %q after %q", ev.Text, prev)
		}
		prev = ev.Text
	}
}

func TestScripted_EchoFallbackMentionsAttachments(t *testing.T) {
	s := NewScripted()
	s.ChunkDelay = 0
	ch, err := s.Send(context.Background(), engine.SendRequest{
		Text:     "check this",
		Files:    []engine.FileRef{{Path: "utils.ts"}},
		Commands: []string{"fix"},
	})
	if err != nil {
		t.Fatal(err)
	}
	evs := collect(t, ch)
	final := evs[len(evs)-1]
	for _, want := range []string{"check this", "utils.ts", "fix"} {
		if !strings.Contains(final.Text, want) {
			t.Fatalf("final %q missing %q", final.Text, want)
		}
	}
}

func TestScripted_CancelStopsStream(t *testing.T) {
	s := NewScripted("a very long reply with many words to stream slowly indeed")
	s.ChunkDelay = 200 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Send(ctx, engine.SendRequest{Text: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	// Read one chunk, then abort.
	<-ch
	cancel()

	evs := collect(t, ch)
	for _, ev := range evs {
		if ev.Kind == engine.AssistantFinal {
			t.Fatal("final event after cancellation")
		}
	}
}
