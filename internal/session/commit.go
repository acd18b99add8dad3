package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/siftcat/sift/internal/ledger"
	"github.com/siftcat/sift/internal/persist"
	"github.com/siftcat/sift/internal/taxonomy"
)

// Commit resolves pending input for the focused row, in priority order:
// the numeric selector buffer, then an active free-text edit, then a
// revalidation of the values already on the row. A row whose category and
// group both resolve to legitimate values becomes confirmed, the rule
// store learns the description, and the cursor advances.
func (s *Session) Commit() {
	if s.RowCount() == 0 {
		return
	}
	row := &s.led.Rows[s.cursor]

	if d := s.Digits(); d != "" {
		s.digits = ""
		s.commitDigits(row, d)
		return
	}

	if s.editing {
		text := strings.TrimSpace(s.buffer.Text)
		s.CancelEdit()
		if text == "" {
			return
		}
		if s.field == FieldCategory {
			s.commitCategoryText(row, text)
		} else {
			s.commitGroupText(row, text)
		}
		return
	}

	s.finish(row)
}

// commitDigits jumps to a category by display id. On the category column
// the whole pair is taken; on the group column only the group.
func (s *Session) commitDigits(row *ledger.Row, digits string) {
	id, err := strconv.Atoi(digits)
	if err != nil {
		return
	}
	var hit *taxonomy.DisplayID
	for _, d := range s.tax.DisplayIDs() {
		if d.ID == id {
			hit = &d
			break
		}
	}
	if hit == nil {
		s.flash = fmt.Sprintf("no category %d", id)
		return
	}

	s.dirty = true
	if s.field == FieldCategory {
		row.Category = hit.Category
		row.Group = hit.Group
	} else {
		s.applyGroup(row, hit.Group)
	}
	s.unconfirm(s.cursor)
	s.finish(row)
}

// commitCategoryText resolves a typed category: the top autocomplete
// candidate when one matches, otherwise a new category. A new category
// joins the row's current group when that group is legitimate; until a
// group is chosen it lives only on the row.
func (s *Session) commitCategoryText(row *ledger.Row, text string) {
	s.dirty = true
	if item, ok := s.catEngine.Best(text); ok {
		row.Category = item.Label
		row.Group = item.Group
		s.unconfirm(s.cursor)
		s.finish(row)
		return
	}

	name := taxonomy.TitleCase(text)
	if taxonomy.NormKey(name) == taxonomy.NormKey(taxonomy.DefaultCategory) {
		s.flash = "cannot assign the reserved category"
		return
	}
	if s.groupLegit(row.Group) {
		if !s.tax.AddCategory(name, row.Group) {
			s.flash = fmt.Sprintf("could not add category %q", name)
			return
		}
		s.rebuild()
		row.Category, _ = s.tax.CanonicalCategory(name)
		row.Group, _ = s.tax.GroupOf(row.Category)
	} else {
		// No usable group yet; the category is created once one is
		// committed on the group column.
		row.Category = name
	}
	s.unconfirm(s.cursor)
	s.finish(row)
}

// commitGroupText resolves a typed group, creating it when nothing
// matches, then reconciles the row's category into it.
func (s *Session) commitGroupText(row *ledger.Row, text string) {
	s.dirty = true
	group := ""
	if item, ok := s.grpEngine.Best(text); ok {
		group = item.Label
	} else {
		name := taxonomy.TitleCase(text)
		if !s.tax.AddGroup(name) {
			s.flash = fmt.Sprintf("could not add group %q", name)
			return
		}
		s.rebuild()
		group, _ = s.tax.CanonicalGroup(name)
	}

	s.applyGroup(row, group)
	s.unconfirm(s.cursor)
	s.finish(row)
}

// applyGroup sets the row's group and keeps the taxonomy consistent with
// it: a category new to the taxonomy is created in the group, an existing
// one is moved there.
func (s *Session) applyGroup(row *ledger.Row, group string) {
	g, ok := s.tax.CanonicalGroup(group)
	if !ok {
		return
	}
	row.Group = g
	if !s.categorySet(row) || taxonomy.NormKey(g) == taxonomy.NormKey(taxonomy.DefaultGroup) {
		return
	}
	if s.tax.HasCategory(row.Category) {
		if cur, _ := s.tax.GroupOf(row.Category); taxonomy.NormKey(cur) != taxonomy.NormKey(g) {
			if s.tax.MoveCategory(row.Category, g) {
				s.rebuild()
			}
		}
	} else if s.tax.AddCategory(row.Category, g) {
		s.rebuild()
	}
	row.Category, _ = s.tax.CanonicalCategory(row.Category)
}

// finish confirms the row when both fields are legitimate, or hands focus
// to the group column when only the category resolved.
func (s *Session) finish(row *ledger.Row) {
	if s.legitimate(row) {
		s.confirmRow(s.cursor)
		return
	}
	if s.categorySet(row) && !s.groupLegit(row.Group) {
		s.field = FieldGroup
	}
}

// confirmRow marks a row confirmed, teaches the rule store its
// description, and advances to the next unconfirmed row.
func (s *Session) confirmRow(i int) {
	row := &s.led.Rows[i]
	row.Confirmed = true
	s.statuses[i] = StatusConfirmed
	s.rules.Upsert(row.Description, row.Category, row.Group)
	s.dirty = true

	if next := s.nextUnconfirmed(i); next >= 0 {
		s.cursor = next
		s.field = FieldCategory
	}
}

func (s *Session) unconfirm(i int) {
	if s.statuses[i] == StatusConfirmed {
		s.statuses[i] = StatusSuggested
		s.led.Rows[i].Confirmed = false
	}
}

// legitimate reports whether the row's category and group are both set to
// non-default values that exist in the taxonomy and agree with each other.
func (s *Session) legitimate(row *ledger.Row) bool {
	if !s.categorySet(row) || !s.groupLegit(row.Group) {
		return false
	}
	if !s.tax.HasCategory(row.Category) {
		return false
	}
	g, _ := s.tax.GroupOf(row.Category)
	return taxonomy.NormKey(g) == taxonomy.NormKey(row.Group)
}

func (s *Session) categorySet(row *ledger.Row) bool {
	return row.Category != "" &&
		taxonomy.NormKey(row.Category) != taxonomy.NormKey(taxonomy.DefaultCategory)
}

func (s *Session) groupLegit(group string) bool {
	return group != "" &&
		taxonomy.NormKey(group) != taxonomy.NormKey(taxonomy.DefaultGroup) &&
		s.tax.HasGroup(group)
}

// Clear resets the focused field to its default, un-confirms the row, and
// prunes taxonomy entries no remaining row references. Defaults are never
// pruned.
func (s *Session) Clear() {
	if s.RowCount() == 0 {
		return
	}
	s.CancelEdit()
	row := &s.led.Rows[s.cursor]

	oldCat, oldGroup := row.Category, row.Group
	if s.field == FieldCategory {
		row.Category = taxonomy.DefaultCategory
		row.Group = taxonomy.DefaultGroup
		s.pruneCategory(oldCat)
	} else {
		row.Group = taxonomy.DefaultGroup
	}
	s.pruneGroup(oldGroup)

	row.Confirmed = false
	s.statuses[s.cursor] = StatusUnset
	s.dirty = true
}

// pruneCategory removes a category no remaining row uses.
func (s *Session) pruneCategory(category string) {
	if s.tax.RemoveCategoryIfUnused(category, s.categoriesInUse()) {
		s.rebuild()
	}
}

// pruneGroup removes a group once it owns no categories and no remaining
// row uses it.
func (s *Session) pruneGroup(group string) {
	canon, ok := s.tax.CanonicalGroup(group)
	if !ok || len(s.tax.GroupCats[canon]) > 0 {
		return
	}
	if s.tax.RemoveGroupIfUnused(canon, s.groupsInUse()) {
		s.rebuild()
	}
}

func (s *Session) categoriesInUse() []string {
	out := make([]string, 0, s.RowCount())
	for i := range s.led.Rows {
		out = append(out, s.led.Rows[i].Category)
	}
	return out
}

func (s *Session) groupsInUse() []string {
	out := make([]string, 0, s.RowCount())
	for i := range s.led.Rows {
		out = append(out, s.led.Rows[i].Group)
	}
	return out
}

// RequestQuit asks to leave the session. It reports true when quitting can
// proceed immediately; with unsaved changes it raises the confirmation
// prompt instead.
func (s *Session) RequestQuit() bool {
	if !s.dirty {
		return true
	}
	s.quitPrompt = true
	return false
}

// DismissQuit cancels the quit confirmation prompt.
func (s *Session) DismissQuit() { s.quitPrompt = false }

// Save writes taxonomy, rules, and ledger together. It is rejected while
// any row is unconfirmed, and a failure writing any artifact leaves all
// three untouched on disk.
func (s *Session) Save() error {
	if !s.AllConfirmed() {
		return ErrUnconfirmed
	}

	rulesOut, err := s.rules.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	ledgerOut, err := s.led.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	st := persist.NewStage()
	st.Add(s.paths.Taxonomy, s.tax.EncodeGroups())
	st.Add(s.paths.Rules, rulesOut)
	st.Add(s.paths.Ledger, ledgerOut)
	if err := st.Commit(); err != nil {
		return err
	}

	s.dirty = false
	s.quitPrompt = false
	return nil
}
