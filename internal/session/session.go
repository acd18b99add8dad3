// Package session implements the interactive categorization state machine.
// It owns the taxonomy, rule store, and ledger for the life of a run and is
// deliberately terminal-free so every transition can be exercised in tests.
package session

import (
	"errors"
	"time"

	"github.com/siftcat/sift/internal/ledger"
	"github.com/siftcat/sift/internal/match"
	"github.com/siftcat/sift/internal/rules"
	"github.com/siftcat/sift/internal/taxonomy"
)

// ErrUnconfirmed is returned by Save while any row is not confirmed.
var ErrUnconfirmed = errors.New("not all rows are confirmed")

// Status tracks how a row's assignment came to be.
type Status int

const (
	// StatusUnset means the row has no usable category or group.
	StatusUnset Status = iota
	// StatusSuggested means a rule or the source file filled the row but
	// the user has not approved it.
	StatusSuggested
	// StatusConfirmed means the user explicitly approved the assignment.
	StatusConfirmed
)

// Field identifies which column of the focused row receives input.
type Field int

const (
	// FieldCategory focuses the category column.
	FieldCategory Field = iota
	// FieldGroup focuses the group column.
	FieldGroup
)

// EditBuffer is a pure text-plus-caret value. Rendering concerns such as
// the ghost completion are computed from it on demand, never stored.
type EditBuffer struct {
	Text  string
	Caret int
}

// Paths names the three artifacts a save writes together.
type Paths struct {
	Taxonomy string
	Rules    string
	Ledger   string
}

// DefaultDigitTimeout is how long the numeric selector buffer survives
// between keystrokes.
const DefaultDigitTimeout = 1200 * time.Millisecond

// Session is the single owner of all in-memory state for one run.
type Session struct {
	tax   *taxonomy.Taxonomy
	rules *rules.Store
	led   *ledger.Ledger

	statuses []Status

	catEngine  *match.Engine
	grpEngine  *match.Engine
	engineOpts []match.Option

	cursor int
	field  Field

	editing bool
	buffer  EditBuffer

	digits      string
	digitExpire time.Time

	now          func() time.Time
	digitTimeout time.Duration

	paths Paths

	flash      string
	quitPrompt bool
	dirty      bool
}

// Option configures a Session.
type Option func(*Session)

// WithClock injects a time source so digit-buffer expiry is testable.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithDigitTimeout overrides the numeric selector idle timeout.
func WithDigitTimeout(d time.Duration) Option {
	return func(s *Session) { s.digitTimeout = d }
}

// WithPaths sets the save destinations for taxonomy, rules, and ledger.
func WithPaths(p Paths) Option {
	return func(s *Session) { s.paths = p }
}

// WithMatchOptions passes engine options through to both autocomplete
// engines, for tuning read from config.
func WithMatchOptions(opts ...match.Option) Option {
	return func(s *Session) { s.engineOpts = opts }
}

// New builds a session over the loaded artifacts and pre-fills rows from
// the rule store. The session works on the structures it is given; callers
// pass clones when they want an unsaved quit to discard changes.
func New(tax *taxonomy.Taxonomy, store *rules.Store, led *ledger.Ledger, opts ...Option) *Session {
	s := &Session{
		tax:          tax,
		rules:        store,
		led:          led,
		statuses:     make([]Status, len(led.Rows)),
		now:          time.Now,
		digitTimeout: DefaultDigitTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.prefill()
	s.rebuild()
	s.cursor = s.nextUnconfirmed(-1)
	if s.cursor < 0 {
		s.cursor = 0
	}
	return s
}

// prefill applies rule matches and source-file assignments to every row.
// A rule that agrees with values already present confirms the row; any
// other fill is only a suggestion.
func (s *Session) prefill() {
	for i := range s.led.Rows {
		row := &s.led.Rows[i]
		if e, ok := s.rules.Find(row.Description); ok {
			if cat, grp, ok := s.resolve(e.Category, e.Group); ok {
				agrees := taxonomy.NormKey(row.Category) == taxonomy.NormKey(cat) &&
					taxonomy.NormKey(row.Group) == taxonomy.NormKey(grp)
				row.Category, row.Group = cat, grp
				if agrees {
					row.Confirmed = true
					s.statuses[i] = StatusConfirmed
				} else {
					s.statuses[i] = StatusSuggested
				}
				continue
			}
		}

		if cat, grp, ok := s.resolve(row.Category, row.Group); ok {
			row.Category, row.Group = cat, grp
			s.statuses[i] = StatusSuggested
			continue
		}

		// A loaded category the taxonomy cannot place stays visible on
		// the row, like a freshly typed one, until a group commit
		// resolves it.
		if cat := taxonomy.TitleCase(row.Category); cat != "" &&
			taxonomy.NormKey(cat) != taxonomy.NormKey(taxonomy.DefaultCategory) {
			row.Category = cat
			row.Group = taxonomy.DefaultGroup
			s.statuses[i] = StatusSuggested
			continue
		}

		row.Category = taxonomy.DefaultCategory
		row.Group = taxonomy.DefaultGroup
		s.statuses[i] = StatusUnset
	}
}

// resolve canonicalizes a category/group pair, adopting it into the
// taxonomy when it names a category the snapshot did not carry. It fails
// for empty or default-only values.
func (s *Session) resolve(category, group string) (cat, grp string, ok bool) {
	if category == "" || taxonomy.NormKey(category) == taxonomy.NormKey(taxonomy.DefaultCategory) {
		return "", "", false
	}
	s.adopt(category, group)
	cat, found := s.tax.CanonicalCategory(category)
	if !found {
		return "", "", false
	}
	grp, _ = s.tax.GroupOf(cat)
	return cat, grp, true
}

// adopt makes sure a category/group pair referenced from outside the
// taxonomy snapshot actually exists in it.
func (s *Session) adopt(category, group string) {
	if s.tax.HasCategory(category) {
		return
	}
	if group == "" || taxonomy.NormKey(group) == taxonomy.NormKey(taxonomy.DefaultGroup) {
		return
	}
	s.tax.AddCategory(category, group)
}

// rebuild refreshes both autocomplete engines. Called eagerly after every
// taxonomy mutation.
func (s *Session) rebuild() {
	if s.catEngine == nil {
		s.catEngine = match.NewEngine(match.CategoryItems(s.tax), s.engineOpts...)
		s.grpEngine = match.NewEngine(match.GroupItems(s.tax), s.engineOpts...)
		return
	}
	s.catEngine.SetItems(match.CategoryItems(s.tax))
	s.grpEngine.SetItems(match.GroupItems(s.tax))
}

// nextUnconfirmed returns the first row after `from` (wrapping) that is not
// confirmed, or -1 when every row is.
func (s *Session) nextUnconfirmed(from int) int {
	n := len(s.led.Rows)
	if n == 0 {
		return -1
	}
	for off := 1; off <= n; off++ {
		i := ((from+off)%n + n) % n
		if s.statuses[i] != StatusConfirmed {
			return i
		}
	}
	return -1
}

// Taxonomy exposes the live taxonomy for rendering.
func (s *Session) Taxonomy() *taxonomy.Taxonomy { return s.tax }

// Rules exposes the live rule store.
func (s *Session) Rules() *rules.Store { return s.rules }

// RowCount reports the number of ledger rows.
func (s *Session) RowCount() int { return len(s.led.Rows) }

// Row returns a copy of the i-th row.
func (s *Session) Row(i int) ledger.Row { return s.led.Rows[i] }

// RowStatus returns the i-th row's confirmation status.
func (s *Session) RowStatus(i int) Status { return s.statuses[i] }

// Cursor returns the focused row index.
func (s *Session) Cursor() int { return s.cursor }

// Field returns the focused column.
func (s *Session) Field() Field { return s.field }

// Editing reports whether a free-text edit is in progress.
func (s *Session) Editing() bool { return s.editing }

// Buffer returns the current edit buffer.
func (s *Session) Buffer() EditBuffer { return s.buffer }

// CategoryMatches returns the ranked autocomplete results for a query.
func (s *Session) CategoryMatches(query string, limit int) []match.Result {
	return s.catEngine.Search(query, limit)
}

// DigitTimeout returns the selector idle timeout in effect.
func (s *Session) DigitTimeout() time.Duration { return s.digitTimeout }

// QuitPrompt reports whether the quit confirmation overlay is active.
func (s *Session) QuitPrompt() bool { return s.quitPrompt }

// AllConfirmed reports whether every row has been explicitly confirmed.
func (s *Session) AllConfirmed() bool {
	if len(s.statuses) == 0 {
		return false
	}
	for _, st := range s.statuses {
		if st != StatusConfirmed {
			return false
		}
	}
	return true
}

// TakeFlash returns the pending status message and clears it.
func (s *Session) TakeFlash() string {
	f := s.flash
	s.flash = ""
	return f
}
