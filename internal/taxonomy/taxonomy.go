// Package taxonomy owns the groups and categories a transaction can be
// assigned to, and enforces their uniqueness and ownership invariants.
package taxonomy

import (
	"fmt"
	"sort"
)

// Reserved names. The default group always exists and contains exactly the
// default category; neither can be removed.
const (
	DefaultGroup    = "Aaa"
	DefaultCategory = "Uncategorized"
)

// Taxonomy is the set of groups and the categories assigned to them.
// Groups holds display names in render order (default group first after
// SortAlpha); GroupCats maps a group display name to its category display
// names.
type Taxonomy struct {
	GroupCats map[string][]string
	Groups    []string
}

// New returns a taxonomy containing only the reserved defaults.
func New() *Taxonomy {
	t := &Taxonomy{GroupCats: make(map[string][]string)}
	t.EnsureDefaults()
	return t
}

// EnsureDefaults guarantees the default group exists, is canonically named,
// and contains only the default category.
func (t *Taxonomy) EnsureDefaults() {
	if t.GroupCats == nil {
		t.GroupCats = make(map[string][]string)
	}

	found := false
	for i, g := range t.Groups {
		if NormKey(g) == NormKey(DefaultGroup) {
			if g != DefaultGroup {
				t.Groups[i] = DefaultGroup
				t.GroupCats[DefaultGroup] = t.GroupCats[g]
				delete(t.GroupCats, g)
			}
			found = true
			break
		}
	}
	if !found {
		t.Groups = append([]string{DefaultGroup}, t.Groups...)
	}
	t.GroupCats[DefaultGroup] = []string{DefaultCategory}
}

// SortAlpha re-sorts groups (default first, rest alphabetical by normalized
// key) and categories within each group (alphabetical), then re-asserts the
// defaults. Called after every mutation so display order is deterministic.
func (t *Taxonomy) SortAlpha() {
	rest := make([]string, 0, len(t.Groups))
	for _, g := range t.Groups {
		if NormKey(g) != NormKey(DefaultGroup) {
			rest = append(rest, g)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return NormKey(rest[i]) < NormKey(rest[j]) })
	t.Groups = append([]string{DefaultGroup}, rest...)

	for g, cats := range t.GroupCats {
		if NormKey(g) == NormKey(DefaultGroup) {
			continue
		}
		kept := make([]string, 0, len(cats))
		for _, c := range cats {
			if NormKey(c) != NormKey(DefaultCategory) {
				kept = append(kept, c)
			}
		}
		sort.Slice(kept, func(i, j int) bool { return NormKey(kept[i]) < NormKey(kept[j]) })
		t.GroupCats[g] = kept
	}
	t.EnsureDefaults()
}

// NormalizeDisplay rewrites group and category names with display
// title-casing, preserving the reserved names exactly.
func (t *Taxonomy) NormalizeDisplay() {
	newGroups := make([]string, 0, len(t.Groups))
	newMap := make(map[string][]string, len(t.GroupCats))
	renamed := make(map[string]string, len(t.Groups))

	for _, g := range t.Groups {
		g2 := TitleCase(g)
		if NormKey(g2) == NormKey(DefaultGroup) {
			g2 = DefaultGroup
		}
		newGroups = append(newGroups, g2)
		renamed[NormKey(g)] = g2
	}
	for g, cats := range t.GroupCats {
		ng, ok := renamed[NormKey(g)]
		if !ok {
			ng = TitleCase(g)
		}
		for _, c := range cats {
			c2 := TitleCase(c)
			if NormKey(c2) == NormKey(DefaultCategory) {
				c2 = DefaultCategory
			}
			newMap[ng] = append(newMap[ng], c2)
		}
		if _, ok := newMap[ng]; !ok {
			newMap[ng] = nil
		}
	}

	t.Groups = newGroups
	t.GroupCats = newMap
	t.EnsureDefaults()
	t.SortAlpha()
}

// AddGroup adds a group by display name. It reports false when the name is
// empty or already exists (case-insensitively), including the default group.
func (t *Taxonomy) AddGroup(name string) bool {
	name = TitleCase(name)
	if name == "" {
		return false
	}
	if NormKey(name) == NormKey(DefaultGroup) {
		return false
	}
	for _, g := range t.Groups {
		if NormKey(g) == NormKey(name) {
			return false
		}
	}
	t.Groups = append(t.Groups, name)
	t.GroupCats[name] = nil
	t.SortAlpha()
	return true
}

// AddCategory adds a category to the named group, creating the group when
// needed. It reports false when either name is empty, the category is the
// reserved default or already exists anywhere in the taxonomy, or the
// group is the reserved default, which holds only the default category.
func (t *Taxonomy) AddCategory(name, group string) bool {
	name = TitleCase(name)
	group = TitleCase(group)
	if name == "" || group == "" {
		return false
	}
	if NormKey(name) == NormKey(DefaultCategory) {
		return false
	}
	if NormKey(group) == NormKey(DefaultGroup) {
		return false
	}
	if t.HasCategory(name) {
		return false
	}
	if canon, ok := t.CanonicalGroup(group); ok {
		group = canon
	} else if !t.AddGroup(group) {
		return false
	}
	t.GroupCats[group] = append(t.GroupCats[group], name)
	t.SortAlpha()
	return true
}

// MoveCategory reassigns an existing category to another group, creating
// the group when needed. The default category never moves and nothing can
// move into the default group. It reports whether the category changed
// groups.
func (t *Taxonomy) MoveCategory(category, group string) bool {
	canon, ok := t.CanonicalCategory(category)
	if !ok || NormKey(canon) == NormKey(DefaultCategory) {
		return false
	}
	if NormKey(group) == NormKey(DefaultGroup) {
		return false
	}
	if g, ok := t.CanonicalGroup(group); ok {
		group = g
	} else {
		group = TitleCase(group)
		if !t.AddGroup(group) {
			return false
		}
	}
	cur, _ := t.GroupOf(canon)
	if NormKey(cur) == NormKey(group) {
		return false
	}
	kept := t.GroupCats[cur][:0]
	for _, c := range t.GroupCats[cur] {
		if NormKey(c) == NormKey(canon) {
			continue
		}
		kept = append(kept, c)
	}
	t.GroupCats[cur] = kept
	t.GroupCats[group] = append(t.GroupCats[group], canon)
	t.SortAlpha()
	return true
}

// HasCategory reports whether the category exists in any group,
// case-insensitively.
func (t *Taxonomy) HasCategory(name string) bool {
	k := NormKey(name)
	if k == NormKey(DefaultCategory) {
		return true
	}
	for _, cats := range t.GroupCats {
		for _, c := range cats {
			if NormKey(c) == k {
				return true
			}
		}
	}
	return false
}

// HasGroup reports whether the group exists, case-insensitively.
func (t *Taxonomy) HasGroup(name string) bool {
	k := NormKey(name)
	for _, g := range t.Groups {
		if NormKey(g) == k {
			return true
		}
	}
	return false
}

// GroupOf returns the display name of the group owning the category.
func (t *Taxonomy) GroupOf(category string) (string, bool) {
	k := NormKey(category)
	if k == NormKey(DefaultCategory) {
		return DefaultGroup, true
	}
	for g, cats := range t.GroupCats {
		for _, c := range cats {
			if NormKey(c) == k {
				return g, true
			}
		}
	}
	return "", false
}

// CanonicalCategory returns the stored display spelling of a category name.
func (t *Taxonomy) CanonicalCategory(name string) (string, bool) {
	k := NormKey(name)
	if k == NormKey(DefaultCategory) {
		return DefaultCategory, true
	}
	for _, cats := range t.GroupCats {
		for _, c := range cats {
			if NormKey(c) == k {
				return c, true
			}
		}
	}
	return "", false
}

// CanonicalGroup returns the stored display spelling of a group name.
func (t *Taxonomy) CanonicalGroup(name string) (string, bool) {
	k := NormKey(name)
	for _, g := range t.Groups {
		if NormKey(g) == k {
			return g, true
		}
	}
	return "", false
}

// RemoveCategoryIfUnused removes the category unless it is the default or
// any entry of stillInUse references it. It reports whether a removal
// happened.
func (t *Taxonomy) RemoveCategoryIfUnused(category string, stillInUse []string) bool {
	k := NormKey(category)
	if k == "" || k == NormKey(DefaultCategory) {
		return false
	}
	for _, u := range stillInUse {
		if u != "" && NormKey(u) == k {
			return false
		}
	}
	removed := false
	for g, cats := range t.GroupCats {
		kept := cats[:0]
		for _, c := range cats {
			if NormKey(c) == k {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		t.GroupCats[g] = kept
	}
	if removed {
		t.SortAlpha()
	}
	return removed
}

// RemoveGroupIfUnused removes the group and its categories unless it is the
// default or any entry of stillInUse references it.
func (t *Taxonomy) RemoveGroupIfUnused(group string, stillInUse []string) bool {
	k := NormKey(group)
	if k == "" || k == NormKey(DefaultGroup) {
		return false
	}
	for _, u := range stillInUse {
		if u != "" && NormKey(u) == k {
			return false
		}
	}
	removed := false
	kept := t.Groups[:0]
	for _, g := range t.Groups {
		if NormKey(g) == k {
			delete(t.GroupCats, g)
			removed = true
			continue
		}
		kept = append(kept, g)
	}
	t.Groups = kept
	if removed {
		t.SortAlpha()
	}
	return removed
}

// CategoryToGroup returns a lookup from normalized category key to group
// display name. The default category is omitted; it is always the default
// group's.
func (t *Taxonomy) CategoryToGroup() map[string]string {
	m := make(map[string]string)
	for g, cats := range t.GroupCats {
		for _, c := range cats {
			if NormKey(c) == NormKey(DefaultCategory) {
				continue
			}
			m[NormKey(c)] = g
		}
	}
	return m
}

// DisplayID is a transient numeric handle for quick category selection.
// IDs are recomputed on every taxonomy change and never persisted.
type DisplayID struct {
	Category string
	Group    string
	ID       int
}

// DisplayIDs numbers every category deterministically: the default category
// is fixed at 1, the rest follow in group order then alphabetical order
// within the group.
func (t *Taxonomy) DisplayIDs() []DisplayID {
	items := []DisplayID{{ID: 1, Category: DefaultCategory, Group: DefaultGroup}}
	id := 2
	for _, g := range t.Groups {
		if NormKey(g) == NormKey(DefaultGroup) {
			continue
		}
		for _, c := range t.GroupCats[g] {
			if NormKey(c) == NormKey(DefaultCategory) {
				continue
			}
			items = append(items, DisplayID{ID: id, Category: c, Group: g})
			id++
		}
	}
	return items
}

// ValidateUnique returns an error when a category name appears in more than
// one group.
func (t *Taxonomy) ValidateUnique() error {
	seen := make(map[string]string)
	for g, cats := range t.GroupCats {
		for _, c := range cats {
			k := NormKey(c)
			if k == NormKey(DefaultCategory) {
				if NormKey(g) != NormKey(DefaultGroup) {
					return fmt.Errorf("category %q is reserved for group %q", DefaultCategory, DefaultGroup)
				}
				continue
			}
			if prev, ok := seen[k]; ok {
				return fmt.Errorf("category name must be unique across groups: %q duplicates %q", c, prev)
			}
			seen[k] = c
		}
	}
	return nil
}

// Clone returns a deep copy. The session mutates a clone so an unsaved quit
// can discard every change.
func (t *Taxonomy) Clone() *Taxonomy {
	c := &Taxonomy{
		Groups:    append([]string(nil), t.Groups...),
		GroupCats: make(map[string][]string, len(t.GroupCats)),
	}
	for g, cats := range t.GroupCats {
		c.GroupCats[g] = append([]string(nil), cats...)
	}
	return c
}
