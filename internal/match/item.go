package match

import (
	"strings"

	"github.com/siftcat/sift/internal/taxonomy"
)

// Item is the autocomplete projection of a taxonomy entry: a stable slug
// id, the display label, its normalized form, token list, and optional
// aliases. Items are recomputed whenever the taxonomy changes.
type Item struct {
	ID      string
	Label   string
	Norm    string
	Group   string
	Tokens  []string
	Aliases []string
}

// NewItem builds an Item from a display label.
func NewItem(label string, aliases ...string) Item {
	n := Normalize(label)
	var tokens []string
	if n != "" {
		tokens = strings.Split(n, " ")
	}
	return Item{
		ID:      Slugify(label),
		Label:   label,
		Norm:    n,
		Tokens:  tokens,
		Aliases: aliases,
	}
}

// CategoryItems projects every non-default category of the taxonomy, in
// display-id order. The default category is excluded: typing never resolves
// to it.
func CategoryItems(t *taxonomy.Taxonomy) []Item {
	var items []Item
	for _, d := range t.DisplayIDs() {
		if taxonomy.NormKey(d.Category) == taxonomy.NormKey(taxonomy.DefaultCategory) {
			continue
		}
		it := NewItem(d.Category)
		it.Group = d.Group
		items = append(items, it)
	}
	return items
}

// GroupItems projects every non-default group of the taxonomy.
func GroupItems(t *taxonomy.Taxonomy) []Item {
	var items []Item
	for _, g := range t.Groups {
		if taxonomy.NormKey(g) == taxonomy.NormKey(taxonomy.DefaultGroup) {
			continue
		}
		items = append(items, NewItem(g))
	}
	return items
}
