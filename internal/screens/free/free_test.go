package free

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/router"
	"github.com/abhisek/easypractice/internal/session"
	"github.com/abhisek/easypractice/internal/store"
)

type keyItems []store.Item

func (k keyItems) ItemsForKey(context.Context, string) ([]store.Item, error) { return k, nil }
func (k keyItems) ItemsForSet(context.Context, string) ([]store.Item, error) { return k, nil }

type memStats struct {
	stats map[string]*store.Statistics
}

func (m *memStats) ForItems(context.Context, []string) (map[string]*store.Statistics, error) {
	return m.stats, nil
}

func (m *memStats) RecordAttempt(_ context.Context, id string, r store.Result) (*store.Statistics, error) {
	st := m.stats[id]
	if st == nil {
		st = &store.Statistics{ItemID: id}
		m.stats[id] = st
	}
	st.TotalAttempts++
	if r == store.ResultPass {
		st.PassCount++
	} else {
		st.FailCount++
	}
	return st, nil
}

func testScreen(t *testing.T, items keyItems) (*FreeScreen, *memStats) {
	t.Helper()
	stats := &memStats{stats: map[string]*store.Statistics{}}
	sel := queue.NewSelector(items, stats, rand.New(rand.NewPCG(3, 4)))
	s := newWithPractice(session.NewFreePractice(sel, stats, "addition", 2), "Addition")

	item, err := s.practice.Next(context.Background())
	s.Update(itemMsg{Item: item, Err: err})
	return s, stats
}

func enter(s *FreeScreen, text string) {
	s.input.Model.SetValue(text)
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
}

func TestFreeScreen_AnswerAndContinue(t *testing.T) {
	s, stats := testScreen(t, keyItems{
		{ID: "a", Prompt: "1 + 1", Answer: "2"},
		{ID: "b", Prompt: "1 + 2", Answer: "3"},
		{ID: "c", Prompt: "1 + 3", Answer: "4"},
	})
	first := s.practice.Current()
	if first == nil {
		t.Fatal("expected an item")
	}

	enter(s, "wrong")
	if s.answered == nil || s.pass {
		t.Fatalf("expected failing feedback, answered=%v pass=%v", s.answered, s.pass)
	}
	if got := stats.stats[first.ID]; got == nil || got.FailCount != 1 {
		t.Errorf("stats for %s = %+v", first.ID, got)
	}
	if !strings.Contains(s.View(80, 24), first.Answer) {
		t.Error("feedback should show the expected answer")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: ' ', Text: " "})
	if cmd == nil {
		t.Fatal("expected a command fetching the next item")
	}
	if s.answered != nil {
		t.Error("feedback not dismissed")
	}
	msg := cmd()
	next, ok := msg.(itemMsg)
	if !ok {
		t.Fatalf("expected itemMsg, got %T", msg)
	}
	if next.Item == nil || next.Item.ID == first.ID {
		t.Errorf("next item = %+v, want a different item", next.Item)
	}
}

func TestFreeScreen_NoItems(t *testing.T) {
	s, _ := testScreen(t, nil)
	if !strings.Contains(s.View(80, 24), "no items") {
		t.Error("expected empty-set message")
	}
}

func TestFreeScreen_ErrorGoesBack(t *testing.T) {
	s, _ := testScreen(t, keyItems{{ID: "a", Prompt: "p", Answer: "x"}})
	s.errMsg = "boom"
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
