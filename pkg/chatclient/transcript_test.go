package chatclient

import (
	"reflect"
	"testing"

	"github.com/haven-labs/mindhaven/backend/internal/model/chat"
)

func TestRenderIsIdempotent(t *testing.T) {
	transcript := NewTranscript()
	transcript.Append(chat.Turn{Role: chat.RoleUser, Content: "hello", Complete: true})
	id := transcript.Append(chat.Turn{Role: chat.RoleAssistant})
	transcript.AppendToken(id, "hi ")
	transcript.AppendToken(id, "there")

	first := transcript.Render()
	second := transcript.Render()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same state rendered differently:\n%+v\n%+v", first, second)
	}

	// Mutating a snapshot must not leak back into the transcript.
	first[1].Content = "tampered"
	if got := transcript.Content(id); got != "hi there" {
		t.Fatalf("snapshot mutation leaked, content now %q", got)
	}
}

func TestAppendPreservesArrivalOrder(t *testing.T) {
	transcript := NewTranscript()
	ids := []string{
		transcript.Append(chat.Turn{Role: chat.RoleUser, Content: "one"}),
		transcript.Append(chat.Turn{Role: chat.RoleAssistant, Content: "two"}),
		transcript.Append(chat.Turn{Role: chat.RoleUser, Content: "three"}),
	}

	turns := transcript.Render()
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	for i, id := range ids {
		if turns[i].ID != id {
			t.Fatalf("turn %d out of order", i)
		}
	}
}

func TestCompleteFreezesOnlyTargetTurn(t *testing.T) {
	transcript := NewTranscript()
	a := transcript.Append(chat.Turn{Role: chat.RoleAssistant})
	b := transcript.Append(chat.Turn{Role: chat.RoleAssistant})

	transcript.Complete(a)

	turns := transcript.Render()
	if !turns[0].Complete {
		t.Fatalf("expected turn %s complete", a)
	}
	if turns[1].Complete {
		t.Fatalf("turn %s must stay open", b)
	}
}
