package taxonomy

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Load reads a taxonomy from a groups file. Lines starting with "*" open a
// group; subsequent lines are its categories. Blank lines and "#" comments
// are skipped. A missing or unreadable file is not fatal: the session starts
// from the defaults.
func Load(path string) *Taxonomy {
	t := New()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("taxonomy file unreadable, starting from defaults", "path", path, "error", err)
		}
		return t
	}

	current := ""
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "*") {
			current = strings.TrimSpace(strings.TrimLeft(line, "*"))
			t.AddGroup(current)
			continue
		}
		if current == "" {
			// Ungrouped category line; park it so it is not lost.
			current = "Unsorted"
		}
		t.AddCategory(line, current)
	}

	t.NormalizeDisplay()
	t.SortAlpha()
	return t
}

// EncodeGroups renders the taxonomy in the groups-file format: the default
// group first, one "*Group" header per group followed by its categories,
// groups separated by a blank line.
func (t *Taxonomy) EncodeGroups() []byte {
	var b strings.Builder
	for _, g := range t.Groups {
		fmt.Fprintf(&b, "*%s\n", g)
		if NormKey(g) == NormKey(DefaultGroup) {
			b.WriteString(DefaultCategory + "\n")
		} else {
			for _, c := range t.GroupCats[g] {
				b.WriteString(c + "\n")
			}
		}
		b.WriteString("\n")
	}
	return []byte(strings.TrimRight(b.String(), "\n") + "\n")
}

// EncodeCategories renders the flat category listing, excluding the
// reserved default, in group-then-alphabetical order.
func (t *Taxonomy) EncodeCategories() []byte {
	var b strings.Builder
	for _, item := range t.DisplayIDs() {
		if item.ID == 1 {
			continue
		}
		b.WriteString(item.Category + "\n")
	}
	return []byte(b.String())
}
