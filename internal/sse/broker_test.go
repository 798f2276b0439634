package sse

import (
	"strings"
	"testing"
	"time"

	"github.com/bamboovfx/obsidian-image-manager/internal/models"
	"github.com/bamboovfx/obsidian-image-manager/internal/organizer"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "note.created", Data: map[string]string{"path": "a.md"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"path":"a.md"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishOrganizeReport(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	report := &organizer.Report{
		Moves:     []models.Move{{From: "cat.png", To: "attachments/T0.png"}},
		Rewritten: []string{"pets.md"},
		NextIndex: 1,
	}
	b.PublishOrganizeReport(report)

	var got []string
	timeout := time.After(time.Second)
	for len(got) < 2 {
		select {
		case msg := <-ch:
			got = append(got, string(msg))
		case <-timeout:
			t.Fatalf("timeout; received %d events", len(got))
		}
	}
	if !strings.Contains(got[0], "event: attachment.moved") || !strings.Contains(got[0], "attachments/T0.png") {
		t.Errorf("first event = %q", got[0])
	}
	if !strings.Contains(got[1], "event: organize.completed") || !strings.Contains(got[1], `"next_index":1`) {
		t.Errorf("second event = %q", got[1])
	}
}

func TestPublishNoteEvent_IndexThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event triggers index.updated; an immediate second one must not.
	b.PublishNoteEvent("created", "a.md")
	b.PublishNoteEvent("updated", "b.md")

	time.Sleep(50 * time.Millisecond)
	indexCount := 0
	noteCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "index.updated") {
				indexCount++
			} else {
				noteCount++
			}
		default:
			break loop
		}
	}
	if indexCount != 1 {
		t.Errorf("index.updated count = %d, want 1", indexCount)
	}
	if noteCount != 2 {
		t.Errorf("note event count = %d, want 2", noteCount)
	}
}

func TestPublishAfterClose(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	b.Close()
	// Must not panic or block.
	b.Publish(Event{Type: "x"})
	b.PublishNoteEvent("created", "a.md")
	if b.ClientCount() != 0 {
		t.Error("closed broker should report 0 clients")
	}
}
