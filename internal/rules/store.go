// Package rules persists description-to-category mappings and applies them
// to incoming transactions. Two on-disk shapes are supported and preserved
// through save: an ordered list of records, or a keyed map with pattern
// rules.
package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/siftcat/sift/internal/taxonomy"
)

// Shape identifies which on-disk representation a store was loaded from.
type Shape int

const (
	// ShapeList is a bare JSON array of {description, category, group}
	// records, kept in stored order.
	ShapeList Shape = iota
	// ShapeMap is a JSON object keyed by normalized description, with an
	// ordered pattern-rule list evaluated before exact lookup.
	ShapeMap
)

// Entry is one literal rule: a description resolving to a category/group.
type Entry struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Group       string `json:"group"`
}

// PatternRule matches descriptions by regular expression. Pattern rules are
// evaluated in stored order before any exact lookup.
type PatternRule struct {
	re       *regexp.Regexp
	Pattern  string `json:"pattern"`
	Flags    string `json:"flags,omitempty"`
	Category string `json:"category"`
	Group    string `json:"group"`
}

// RejectedPattern records a pattern that failed to compile at load time.
// Rejected patterns are diagnostics, never fatal, and are skipped during
// matching. The original rule is kept so it survives a save untouched.
type RejectedPattern struct {
	Rule   PatternRule
	Reason string
}

// Store holds the rule set for a session.
type Store struct {
	entries  map[string]Entry
	order    []string
	patterns []PatternRule
	rejected []RejectedPattern
	shape    Shape
}

// NewStore returns an empty store in the list shape.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Shape reports which on-disk shape the store round-trips to.
func (s *Store) Shape() Shape { return s.shape }

// Len reports the number of literal entries.
func (s *Store) Len() int { return len(s.order) }

// Entries returns the literal rules in stored order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.entries[k])
	}
	return out
}

// Patterns returns the compiled pattern rules in evaluation order.
// Rejected patterns are excluded; see Rejected.
func (s *Store) Patterns() []PatternRule {
	out := make([]PatternRule, 0, len(s.patterns))
	for _, p := range s.patterns {
		if p.re != nil {
			out = append(out, p)
		}
	}
	return out
}

// Rejected returns the patterns that failed to compile at load time.
func (s *Store) Rejected() []RejectedPattern {
	return append([]RejectedPattern(nil), s.rejected...)
}

// Find resolves a description: pattern rules first, in stored order,
// first match wins; otherwise an exact normalized lookup.
func (s *Store) Find(description string) (Entry, bool) {
	for _, p := range s.patterns {
		if p.re == nil {
			continue
		}
		if p.re.MatchString(description) {
			return Entry{Description: description, Category: p.Category, Group: p.Group}, true
		}
	}
	e, ok := s.entries[taxonomy.NormKey(description)]
	return e, ok
}

// Upsert adds or updates the literal rule for a description. It reports
// whether anything changed; re-applying identical values is a no-op.
func (s *Store) Upsert(description, category, group string) bool {
	key := taxonomy.NormKey(description)
	if key == "" {
		return false
	}
	if prev, ok := s.entries[key]; ok {
		if prev.Category == category && prev.Group == group {
			return false
		}
		prev.Category = category
		prev.Group = group
		s.entries[key] = prev
		return true
	}
	s.entries[key] = Entry{Description: description, Category: category, Group: group}
	s.order = append(s.order, key)
	return true
}

// Clone returns a deep copy. The session mutates a clone so an unsaved quit
// can discard rule changes.
func (s *Store) Clone() *Store {
	c := &Store{
		entries:  make(map[string]Entry, len(s.entries)),
		order:    append([]string(nil), s.order...),
		patterns: append([]PatternRule(nil), s.patterns...),
		rejected: append([]RejectedPattern(nil), s.rejected...),
		shape:    s.shape,
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	return c
}

// mapFile is the ShapeMap on-disk layout.
type mapFile struct {
	Rules    map[string]mapEntry `json:"rules"`
	Patterns []PatternRule       `json:"patterns,omitempty"`
	Version  int                 `json:"version"`
}

type mapEntry struct {
	Category string `json:"category"`
	Group    string `json:"group"`
}

// Load reads a rule store from disk. A missing or unreadable file yields an
// empty store; the session must still start.
func Load(path string) *Store {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("rules file unreadable, starting empty", "path", path, "error", err)
		}
		return NewStore()
	}
	s, err := Parse(data)
	if err != nil {
		slog.Warn("rules file malformed, starting empty", "path", path, "error", err)
		return NewStore()
	}
	return s
}

// Parse decodes either supported shape, detected from the leading token.
func Parse(data []byte) (*Store, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return NewStore(), nil
	}

	switch trimmed[0] {
	case '[':
		return parseList([]byte(trimmed))
	case '{':
		return parseMap([]byte(trimmed))
	default:
		return nil, fmt.Errorf("rules data is neither a JSON array nor an object")
	}
}

func parseList(data []byte) (*Store, error) {
	var recs []Entry
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to parse rule list: %w", err)
	}
	s := NewStore()
	s.shape = ShapeList
	for _, r := range recs {
		s.Upsert(r.Description, r.Category, r.Group)
	}
	return s, nil
}

func parseMap(data []byte) (*Store, error) {
	var f mapFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rule map: %w", err)
	}
	s := NewStore()
	s.shape = ShapeMap
	for desc, e := range f.Rules {
		s.Upsert(desc, e.Category, e.Group)
	}
	// Keys come back in map iteration order; keep the listing stable.
	sort.Strings(s.order)

	// Compile once at load. Bad patterns are recorded and skipped during
	// matching, never recompiled per row and never fatal. They stay in the
	// pattern list at their original position so a save is order-faithful.
	for _, p := range f.Patterns {
		expr := p.Pattern
		if strings.Contains(p.Flags, "i") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			s.rejected = append(s.rejected, RejectedPattern{Rule: p, Reason: err.Error()})
		} else {
			p.re = re
		}
		s.patterns = append(s.patterns, p)
	}
	return s, nil
}

// Encode renders the store in the same shape it was loaded from.
func (s *Store) Encode() ([]byte, error) {
	switch s.shape {
	case ShapeMap:
		f := mapFile{
			Version: 1,
			Rules:   make(map[string]mapEntry, len(s.entries)),
		}
		for k, e := range s.entries {
			f.Rules[k] = mapEntry{Category: e.Category, Group: e.Group}
		}
		// Rejected patterns ride along at their loaded position so a
		// later fix is possible; they just never match.
		f.Patterns = append(f.Patterns, s.patterns...)
		out, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule map: %w", err)
		}
		return append(out, '\n'), nil
	default:
		out, err := json.MarshalIndent(s.Entries(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule list: %w", err)
		}
		return append(out, '\n'), nil
	}
}
