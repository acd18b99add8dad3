package session

import (
	"strings"
	"unicode"
)

// MoveRow moves the cursor up or down, clamped to the ledger. Navigation
// never mutates assignments; it discards any in-progress edit and the
// digit buffer.
func (s *Session) MoveRow(delta int) {
	if s.RowCount() == 0 {
		return
	}
	s.CancelEdit()
	next := s.cursor + delta
	if next < 0 {
		next = 0
	}
	if next >= s.RowCount() {
		next = s.RowCount() - 1
	}
	s.cursor = next
}

// MoveField switches focus between the category and group columns,
// discarding any in-progress edit.
func (s *Session) MoveField(delta int) {
	s.CancelEdit()
	if delta < 0 {
		s.field = FieldCategory
	} else if delta > 0 {
		s.field = FieldGroup
	}
}

// TypeRune feeds one printable character into the session. Digits outside
// an active edit accumulate in the numeric selector; anything else starts
// or extends a free-text edit at the caret.
func (s *Session) TypeRune(r rune) {
	if s.RowCount() == 0 || !unicode.IsPrint(r) {
		return
	}
	if !s.editing && unicode.IsDigit(r) {
		s.pushDigit(r)
		return
	}
	if !s.editing {
		s.editing = true
		s.buffer = EditBuffer{}
		s.digits = ""
	}
	runes := []rune(s.buffer.Text)
	runes = append(runes[:s.buffer.Caret], append([]rune{r}, runes[s.buffer.Caret:]...)...)
	s.buffer.Text = string(runes)
	s.buffer.Caret++
}

// Backspace deletes the rune before the caret of an active edit.
func (s *Session) Backspace() {
	if !s.editing || s.buffer.Caret == 0 {
		return
	}
	runes := []rune(s.buffer.Text)
	runes = append(runes[:s.buffer.Caret-1], runes[s.buffer.Caret:]...)
	s.buffer.Text = string(runes)
	s.buffer.Caret--
}

// CaretLeft moves the caret one rune left within an active edit.
func (s *Session) CaretLeft() {
	if s.editing && s.buffer.Caret > 0 {
		s.buffer.Caret--
	}
}

// CaretRight moves the caret one rune right within an active edit.
func (s *Session) CaretRight() {
	if s.editing && s.buffer.Caret < len([]rune(s.buffer.Text)) {
		s.buffer.Caret++
	}
}

// CancelEdit abandons any in-progress edit and the digit buffer without
// touching row state. It reports whether there was anything to cancel.
func (s *Session) CancelEdit() bool {
	had := s.editing || s.digits != ""
	s.editing = false
	s.buffer = EditBuffer{}
	s.digits = ""
	return had
}

func (s *Session) pushDigit(r rune) {
	now := s.now()
	if s.digits != "" && now.After(s.digitExpire) {
		s.digits = ""
	}
	s.digits += string(r)
	s.digitExpire = now.Add(s.digitTimeout)
}

// Digits returns the live numeric selector buffer, empty once expired.
func (s *Session) Digits() string {
	if s.digits != "" && s.now().After(s.digitExpire) {
		return ""
	}
	return s.digits
}

// ExpireDigits drops the selector buffer once its idle timeout has
// passed. The TUI calls this from a tick; it reports whether anything
// was dropped so the caller knows to redraw.
func (s *Session) ExpireDigits() bool {
	if s.digits != "" && s.now().After(s.digitExpire) {
		s.digits = ""
		return true
	}
	return false
}

// GhostCompletion returns the suffix the top-ranked autocomplete candidate
// would append to the edit buffer, or "" when the candidate does not
// extend the typed text. It is a pure function of buffer and taxonomy.
func (s *Session) GhostCompletion() string {
	if !s.editing || s.buffer.Text == "" {
		return ""
	}
	engine := s.catEngine
	if s.field == FieldGroup {
		engine = s.grpEngine
	}
	item, ok := engine.Best(s.buffer.Text)
	if !ok {
		return ""
	}
	text := s.buffer.Text
	if len(item.Label) <= len(text) {
		return ""
	}
	if !strings.EqualFold(item.Label[:len(text)], text) {
		return ""
	}
	return item.Label[len(text):]
}
