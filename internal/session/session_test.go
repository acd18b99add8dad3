package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftcat/sift/internal/ledger"
	"github.com/siftcat/sift/internal/rules"
	"github.com/siftcat/sift/internal/taxonomy"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func foodTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax := taxonomy.New()
	require.True(t, tax.AddCategory("Groceries", "Food"))
	require.True(t, tax.AddCategory("Dining", "Food"))
	return tax
}

func newSession(t *testing.T, csv string, store *rules.Store, opts ...Option) *Session {
	t.Helper()
	led, err := ledger.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	if store == nil {
		store = rules.NewStore()
	}
	return New(foodTaxonomy(t), store, led, opts...)
}

func typeString(s *Session, text string) {
	for _, r := range text {
		s.TypeRune(r)
	}
}

const oneRow = "description,amount\nSOME GROCERY STORE,12.50\n"

const threeRows = `description,amount
SOME GROCERY STORE,12.50
NETFLIX.COM,15.99
SHELL STATION,40.00
`

func TestNew_Prefill(t *testing.T) {
	t.Run("rows without assignments start unset at defaults", func(t *testing.T) {
		s := newSession(t, oneRow, nil)
		require.Equal(t, 1, s.RowCount())
		assert.Equal(t, StatusUnset, s.RowStatus(0))
		assert.Equal(t, taxonomy.DefaultCategory, s.Row(0).Category)
		assert.Equal(t, taxonomy.DefaultGroup, s.Row(0).Group)
	})

	t.Run("rule match fills the row as suggested", func(t *testing.T) {
		store := rules.NewStore()
		store.Upsert("SOME GROCERY STORE", "Groceries", "Food")
		s := newSession(t, oneRow, store)
		assert.Equal(t, StatusSuggested, s.RowStatus(0))
		assert.Equal(t, "Groceries", s.Row(0).Category)
		assert.Equal(t, "Food", s.Row(0).Group)
	})

	t.Run("rule agreeing with source values confirms the row", func(t *testing.T) {
		store := rules.NewStore()
		store.Upsert("SAFEWAY", "Groceries", "Food")
		csv := "description,amount,category,group\nSAFEWAY,10.00,groceries,food\n"
		s := newSession(t, csv, store)
		assert.Equal(t, StatusConfirmed, s.RowStatus(0))
		assert.True(t, s.Row(0).Confirmed)
	})

	t.Run("source category known to the taxonomy is suggested", func(t *testing.T) {
		csv := "description,amount,category\nSAFEWAY,10.00,DINING\n"
		s := newSession(t, csv, nil)
		assert.Equal(t, StatusSuggested, s.RowStatus(0))
		assert.Equal(t, "Dining", s.Row(0).Category)
		assert.Equal(t, "Food", s.Row(0).Group)
	})

	t.Run("unknown source pair is adopted into the taxonomy", func(t *testing.T) {
		csv := "description,amount,category,group\nDELTA 123,400.00,Flights,Travel\n"
		s := newSession(t, csv, nil)
		assert.Equal(t, StatusSuggested, s.RowStatus(0))
		assert.True(t, s.Taxonomy().HasCategory("Flights"))
		assert.True(t, s.Taxonomy().HasGroup("Travel"))
	})

	t.Run("unknown category without a group stays on the row", func(t *testing.T) {
		csv := "description,amount,category\nDELTA 123,400.00,flights\n"
		s := newSession(t, csv, nil)
		assert.Equal(t, StatusSuggested, s.RowStatus(0))
		assert.Equal(t, "Flights", s.Row(0).Category, "the loaded value must stay visible")
		assert.Equal(t, taxonomy.DefaultGroup, s.Row(0).Group)
		assert.False(t, s.Taxonomy().HasCategory("Flights"), "nothing joins the taxonomy until a group commit")

		s.MoveField(1)
		typeString(s, "Travel")
		s.Commit()

		assert.Equal(t, StatusConfirmed, s.RowStatus(0))
		assert.Equal(t, "Flights", s.Row(0).Category)
		assert.Equal(t, "Travel", s.Row(0).Group)
		assert.True(t, s.Taxonomy().HasCategory("Flights"))
	})
}

func TestCommit_FuzzyResolvesToCanonical(t *testing.T) {
	// Typing "grocery" must land on the existing "Groceries" label, not
	// create a new "Grocery" category.
	s := newSession(t, oneRow, nil)

	typeString(s, "grocery")
	s.Commit()

	assert.Equal(t, "Groceries", s.Row(0).Category)
	assert.Equal(t, "Food", s.Row(0).Group)
	assert.Equal(t, StatusConfirmed, s.RowStatus(0))
	assert.False(t, s.Taxonomy().HasCategory("Grocery"))

	e, ok := s.Rules().Find("SOME GROCERY STORE")
	require.True(t, ok)
	assert.Equal(t, "Groceries", e.Category)
}

func TestCommit_AdvancesToNextUnconfirmed(t *testing.T) {
	s := newSession(t, threeRows, nil)
	require.Equal(t, 0, s.Cursor())

	typeString(s, "gro")
	s.Commit()

	assert.Equal(t, StatusConfirmed, s.RowStatus(0))
	assert.Equal(t, 1, s.Cursor())
	assert.Equal(t, FieldCategory, s.Field())
}

func TestCommit_NewCategoryHandsOffToGroup(t *testing.T) {
	s := newSession(t, "description,amount\nHOBBY LOBBY,20.00\n", nil)

	typeString(s, "candles")
	s.Commit()

	assert.Equal(t, "Candles", s.Row(0).Category, "no match creates a title-cased category")
	assert.Equal(t, FieldGroup, s.Field(), "focus hands off to the group column")
	assert.NotEqual(t, StatusConfirmed, s.RowStatus(0))
	assert.False(t, s.Taxonomy().HasCategory("Candles"), "category waits for its group")

	typeString(s, "hobbies")
	s.Commit()

	assert.Equal(t, "Hobbies", s.Row(0).Group)
	assert.Equal(t, StatusConfirmed, s.RowStatus(0))
	assert.True(t, s.Taxonomy().HasCategory("Candles"))
	g, ok := s.Taxonomy().GroupOf("Candles")
	require.True(t, ok)
	assert.Equal(t, "Hobbies", g)
}

func TestCommit_NewCategoryJoinsLegitimateGroup(t *testing.T) {
	store := rules.NewStore()
	store.Upsert("SOME GROCERY STORE", "Groceries", "Food")
	s := newSession(t, oneRow, store)
	require.Equal(t, "Food", s.Row(0).Group)

	typeString(s, "butchers")
	s.Commit()

	assert.Equal(t, "Butchers", s.Row(0).Category)
	assert.Equal(t, "Food", s.Row(0).Group, "new category joins the row's existing group")
	assert.Equal(t, StatusConfirmed, s.RowStatus(0))
	g, ok := s.Taxonomy().GroupOf("Butchers")
	require.True(t, ok)
	assert.Equal(t, "Food", g)
}

func TestCommit_RevalidateConfirmsSuggestion(t *testing.T) {
	store := rules.NewStore()
	store.Upsert("SOME GROCERY STORE", "Groceries", "Food")
	s := newSession(t, oneRow, store)
	require.Equal(t, StatusSuggested, s.RowStatus(0))

	s.Commit()

	assert.Equal(t, StatusConfirmed, s.RowStatus(0))
}

func TestCommit_Idempotent(t *testing.T) {
	s := newSession(t, oneRow, nil)
	typeString(s, "groceries")
	s.Commit()
	require.Equal(t, StatusConfirmed, s.RowStatus(0))
	require.Equal(t, 1, s.Rules().Len())
	before := s.Rules().Entries()

	s.Commit()

	assert.Equal(t, 1, s.Rules().Len(), "re-confirming must not duplicate the rule")
	assert.Equal(t, before, s.Rules().Entries())
}

func TestDigitSelection(t *testing.T) {
	// Display ids: 1 Uncategorized, 2 Dining, 3 Groceries.
	t.Run("selects category and its group", func(t *testing.T) {
		s := newSession(t, oneRow, nil)
		s.TypeRune('3')
		assert.Equal(t, "3", s.Digits())
		s.Commit()

		assert.Equal(t, "Groceries", s.Row(0).Category)
		assert.Equal(t, "Food", s.Row(0).Group)
		assert.Equal(t, StatusConfirmed, s.RowStatus(0))
	})

	t.Run("unknown id flashes and changes nothing", func(t *testing.T) {
		s := newSession(t, oneRow, nil)
		s.TypeRune('9')
		s.Commit()

		assert.Equal(t, taxonomy.DefaultCategory, s.Row(0).Category)
		assert.Equal(t, StatusUnset, s.RowStatus(0))
		assert.NotEmpty(t, s.TakeFlash())
	})

	t.Run("group column takes only the group", func(t *testing.T) {
		s := newSession(t, oneRow, nil)
		s.MoveField(1)
		s.TypeRune('2')
		s.Commit()

		assert.Equal(t, "Food", s.Row(0).Group)
		assert.Equal(t, taxonomy.DefaultCategory, s.Row(0).Category, "category is untouched")
		assert.NotEqual(t, StatusConfirmed, s.RowStatus(0))
	})
}

func TestDigitBufferExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := newSession(t, oneRow, nil, WithClock(clock.now))

	s.TypeRune('1')
	s.TypeRune('2')
	assert.Equal(t, "12", s.Digits())

	clock.advance(2 * time.Second)
	assert.Empty(t, s.Digits(), "the selector buffer expires after idle")
	assert.True(t, s.ExpireDigits(), "the tick handler drops the stale buffer")

	s.TypeRune('3')
	assert.Equal(t, "3", s.Digits(), "a fresh digit starts a new buffer")
}

func TestNavigationCancelsEdit(t *testing.T) {
	s := newSession(t, threeRows, nil)

	typeString(s, "gro")
	require.True(t, s.Editing())
	s.MoveRow(1)

	assert.False(t, s.Editing())
	assert.Empty(t, s.Buffer().Text)
	assert.Equal(t, 1, s.Cursor())
	assert.Equal(t, taxonomy.DefaultCategory, s.Row(0).Category, "abandoned edits never mutate the row")
}

func TestCaretEditing(t *testing.T) {
	s := newSession(t, oneRow, nil)

	typeString(s, "gr")
	s.CaretLeft()
	s.TypeRune('X')
	assert.Equal(t, "gXr", s.Buffer().Text)
	assert.Equal(t, 2, s.Buffer().Caret)

	s.Backspace()
	assert.Equal(t, "gr", s.Buffer().Text)
	assert.Equal(t, 1, s.Buffer().Caret)

	s.CaretRight()
	assert.Equal(t, 2, s.Buffer().Caret)
	s.CaretRight()
	assert.Equal(t, 2, s.Buffer().Caret, "caret clamps at the end")
}

func TestCancelEditRestoresDisplay(t *testing.T) {
	store := rules.NewStore()
	store.Upsert("SOME GROCERY STORE", "Groceries", "Food")
	s := newSession(t, oneRow, store)

	typeString(s, "zzz")
	require.True(t, s.CancelEdit())

	assert.False(t, s.Editing())
	assert.Equal(t, "Groceries", s.Row(0).Category, "cancel restores the pre-edit value")
	assert.False(t, s.CancelEdit(), "nothing left to cancel")
}

func TestGhostCompletion(t *testing.T) {
	s := newSession(t, oneRow, nil)

	assert.Empty(t, s.GhostCompletion(), "no ghost outside an edit")

	typeString(s, "gro")
	assert.Equal(t, "ceries", s.GhostCompletion())

	typeString(s, "xx")
	assert.Empty(t, s.GhostCompletion(), "ghost only when the candidate extends the text")
}

func TestClear_PrunesUnusedTaxonomy(t *testing.T) {
	// The only row using Dining is cleared; Dining must go, defaults and
	// still-used entries must stay.
	csv := "description,amount,category\nCAFE,9.00,Dining\n"
	s := newSession(t, csv, nil)
	require.Equal(t, "Dining", s.Row(0).Category)

	s.Clear()

	assert.Equal(t, taxonomy.DefaultCategory, s.Row(0).Category)
	assert.Equal(t, taxonomy.DefaultGroup, s.Row(0).Group)
	assert.Equal(t, StatusUnset, s.RowStatus(0))
	assert.False(t, s.Taxonomy().HasCategory("Dining"))
	assert.True(t, s.Taxonomy().HasCategory("Groceries"), "other categories survive")
	assert.True(t, s.Taxonomy().HasGroup("Food"), "group still owns Groceries")
	assert.True(t, s.Taxonomy().HasCategory(taxonomy.DefaultCategory))
}

func TestClear_KeepsCategoryUsedElsewhere(t *testing.T) {
	csv := "description,amount,category\nCAFE,9.00,Dining\nDINER,15.00,Dining\n"
	s := newSession(t, csv, nil)

	s.Clear()

	assert.True(t, s.Taxonomy().HasCategory("Dining"), "still referenced by the second row")
	assert.Equal(t, "Dining", s.Row(1).Category)
}

func TestClear_RemovesEmptiedGroup(t *testing.T) {
	csv := "description,amount,category,group\nDELTA,400.00,Flights,Travel\n"
	s := newSession(t, csv, nil)
	require.True(t, s.Taxonomy().HasGroup("Travel"))

	s.Clear()

	assert.False(t, s.Taxonomy().HasCategory("Flights"))
	assert.False(t, s.Taxonomy().HasGroup("Travel"), "a group with no categories and no rows goes too")
	assert.True(t, s.Taxonomy().HasGroup(taxonomy.DefaultGroup))
}

func TestSave_RejectedWhileUnconfirmed(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Taxonomy: filepath.Join(dir, "groups.txt"),
		Rules:    filepath.Join(dir, "rules.json"),
		Ledger:   filepath.Join(dir, "ledger.csv"),
	}
	s := newSession(t, threeRows, nil, WithPaths(paths))

	typeString(s, "gro")
	s.Commit()
	require.Equal(t, StatusConfirmed, s.RowStatus(0))

	err := s.Save()
	require.ErrorIs(t, err, ErrUnconfirmed)

	for _, p := range []string{paths.Taxonomy, paths.Rules, paths.Ledger} {
		_, statErr := os.Stat(p)
		assert.True(t, os.IsNotExist(statErr), "no file may be touched by a rejected save")
	}
}

func TestSave_WritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Taxonomy: filepath.Join(dir, "groups.txt"),
		Rules:    filepath.Join(dir, "rules.json"),
		Ledger:   filepath.Join(dir, "ledger.csv"),
	}
	s := newSession(t, oneRow, nil, WithPaths(paths))

	typeString(s, "groceries")
	s.Commit()
	require.True(t, s.AllConfirmed())

	require.NoError(t, s.Save())

	tax := taxonomy.Load(paths.Taxonomy)
	assert.True(t, tax.HasCategory("Groceries"))

	store := rules.Load(paths.Rules)
	e, ok := store.Find("SOME GROCERY STORE")
	require.True(t, ok)
	assert.Equal(t, "Groceries", e.Category)

	led, err := ledger.Load(paths.Ledger)
	require.NoError(t, err)
	require.Equal(t, 1, led.Len())
	assert.Equal(t, "Groceries", led.Rows[0].Category)
	assert.Equal(t, "Food", led.Rows[0].Group)
}

func TestQuitConfirmation(t *testing.T) {
	s := newSession(t, oneRow, nil)

	assert.True(t, s.RequestQuit(), "no changes yet, quit freely")

	typeString(s, "gro")
	s.Commit()
	assert.False(t, s.RequestQuit(), "unsaved changes need confirmation")
	assert.True(t, s.QuitPrompt())

	s.DismissQuit()
	assert.False(t, s.QuitPrompt())
}

func TestQuitAfterSaveNeedsNoConfirmation(t *testing.T) {
	dir := t.TempDir()
	s := newSession(t, oneRow, nil, WithPaths(Paths{
		Taxonomy: filepath.Join(dir, "groups.txt"),
		Rules:    filepath.Join(dir, "rules.json"),
		Ledger:   filepath.Join(dir, "ledger.csv"),
	}))

	typeString(s, "groceries")
	s.Commit()
	require.NoError(t, s.Save())

	assert.True(t, s.RequestQuit())
}

func TestAllConfirmed(t *testing.T) {
	s := newSession(t, threeRows, nil)
	assert.False(t, s.AllConfirmed())

	for !s.AllConfirmed() {
		typeString(s, "groceries")
		s.Commit()
	}
	assert.True(t, s.AllConfirmed())
	assert.Equal(t, 3, s.Rules().Len(), "three descriptions, three rules")
}
