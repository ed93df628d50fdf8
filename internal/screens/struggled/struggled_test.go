package struggled

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/easypractice/internal/catalog"
	"github.com/abhisek/easypractice/internal/locale"
	"github.com/abhisek/easypractice/internal/router"
	"github.com/abhisek/easypractice/internal/screen"
	"github.com/abhisek/easypractice/internal/store"
)

func testEnv(t *testing.T, fails map[string]int) screen.Env {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:struggled_%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	p := &catalog.Payload{Sets: []catalog.SetPayload{{
		Key:  "mul",
		Name: locale.Plain("Multiplication"),
		Items: []catalog.ItemPayload{
			{Prompt: "7 x 8", Answer: "56"},
			{Prompt: "6 x 7", Answer: "42"},
			{Prompt: "2 x 2", Answer: "4"},
		},
	}}}
	if _, err := catalog.NewImporter(st.Catalog(), nil).Import(ctx, p, catalog.ImportOptions{}); err != nil {
		t.Fatalf("import: %v", err)
	}

	for _, it := range p.Sets[0].Items {
		id := catalog.ItemID("mul", it.Prompt, it.Answer)
		for range fails[it.Prompt] {
			if _, err := st.Stats().RecordAttempt(ctx, id, store.ResultFail); err != nil {
				t.Fatalf("record: %v", err)
			}
		}
		if _, err := st.Stats().RecordAttempt(ctx, id, store.ResultPass); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	return screen.Env{Catalog: st.Catalog(), Stats: st.Stats(), Language: "en"}
}

func TestStruggled_OrdersByPriority(t *testing.T) {
	s := New(testEnv(t, map[string]int{"7 x 8": 3, "6 x 7": 1}))
	s.Update(s.Init()())

	if len(s.items) != 2 {
		t.Fatalf("items = %d, want 2", len(s.items))
	}
	if s.items[0].Item.Prompt != "7 x 8" {
		t.Errorf("first = %q, want 7 x 8", s.items[0].Item.Prompt)
	}

	view := s.View(100, 30)
	if !strings.Contains(view, "7 x 8") || !strings.Contains(view, "6 x 7") {
		t.Error("expected both struggled prompts in view")
	}
	if strings.Contains(view, "2 x 2") {
		t.Error("item without failures should not be listed")
	}
}

func TestStruggled_Empty(t *testing.T) {
	s := New(testEnv(t, nil))
	s.Update(s.Init()())
	if !strings.Contains(s.View(80, 24), "Nothing failed yet") {
		t.Error("expected empty message")
	}
}

func TestStruggled_EscPops(t *testing.T) {
	s := New(testEnv(t, nil))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
