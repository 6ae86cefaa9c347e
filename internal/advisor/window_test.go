package advisor

import (
	"fmt"
	"testing"
)

func TestWindow_AppendWithinCapacity(t *testing.T) {
	w := NewWindow(4)
	w.Append(Turn{Role: RoleUser, Text: "q1"})
	w.Append(Turn{Role: RoleAssistant, Text: "a1"})

	turns := w.Turns()
	if len(turns) != 2 {
		t.Fatalf("len = %d, want 2", len(turns))
	}
	if turns[0].Text != "q1" || turns[1].Text != "a1" {
		t.Errorf("turns out of order: %+v", turns)
	}
}

func TestWindow_FIFOEviction(t *testing.T) {
	const capacity = 4
	w := NewWindow(capacity)

	for i := 0; i < capacity+1; i++ {
		w.Append(Turn{Role: RoleUser, Text: fmt.Sprintf("t%d", i)})
	}

	turns := w.Turns()
	if len(turns) != capacity {
		t.Fatalf("len = %d, want %d", len(turns), capacity)
	}
	// The oldest turn is gone; the newest N remain in insertion order.
	for i, turn := range turns {
		want := fmt.Sprintf("t%d", i+1)
		if turn.Text != want {
			t.Errorf("turns[%d] = %q, want %q", i, turn.Text, want)
		}
	}
}

func TestWindow_Reset(t *testing.T) {
	w := NewWindow(4)
	w.Append(Turn{Role: RoleUser, Text: "remember me"})
	w.Reset()

	if len(w.Turns()) != 0 {
		t.Error("window not empty after Reset")
	}
}

func TestWindow_TurnsReturnsCopy(t *testing.T) {
	w := NewWindow(4)
	w.Append(Turn{Role: RoleUser, Text: "original"})

	turns := w.Turns()
	turns[0].Text = "mutated"

	if w.Turns()[0].Text != "original" {
		t.Error("Turns must return a copy, not the backing slice")
	}
}

func TestNewWindow_MinimumCapacity(t *testing.T) {
	w := NewWindow(0)
	w.Append(Turn{Role: RoleUser, Text: "a"})
	w.Append(Turn{Role: RoleUser, Text: "b"})

	turns := w.Turns()
	if len(turns) != 1 || turns[0].Text != "b" {
		t.Errorf("turns = %+v, want just the newest", turns)
	}
}
