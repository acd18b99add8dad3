package match

import (
	"testing"

	"github.com/siftcat/sift/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemsFromLabels(labels ...string) []Item {
	items := make([]Item, 0, len(labels))
	for _, l := range labels {
		items = append(items, NewItem(l))
	}
	return items
}

func labelsOf(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Item.Label)
	}
	return out
}

func TestSearch_ExactAlwaysFirst(t *testing.T) {
	engine := NewEngine(itemsFromLabels("Groceries", "Grocery Delivery", "Gross Income"))

	res := engine.Search("groceries", 0)
	require.NotEmpty(t, res)
	assert.Equal(t, "Groceries", res[0].Item.Label)
	assert.Equal(t, scoreExact, res[0].Score)
}

func TestSearch_PrefixBeatsFuzzy(t *testing.T) {
	// Scenario: "gro" must rank Groceries above anything that only
	// matches through edit distance.
	tax := taxonomy.New()
	require.True(t, tax.AddCategory("Groceries", "Food"))
	require.True(t, tax.AddCategory("Dining", "Food"))
	engine := NewEngine(CategoryItems(tax))

	res := engine.Search("gro", 0)
	require.NotEmpty(t, res)
	assert.Equal(t, "Groceries", res[0].Item.Label)
}

func TestSearch_FuzzyResolvesNearMiss(t *testing.T) {
	engine := NewEngine(itemsFromLabels("Groceries", "Dining", "Rent"))

	res := engine.Search("grocery", 0)
	require.NotEmpty(t, res)
	assert.Equal(t, "Groceries", res[0].Item.Label)
}

func TestSearch_FuzzyNeverOutranksStructural(t *testing.T) {
	engine := NewEngine(itemsFromLabels("Dining", "Diving"))

	res := engine.Search("dining", 0)
	require.Len(t, res, 2)
	assert.Equal(t, "Dining", res[0].Item.Label)
	assert.Greater(t, res[0].Score, res[1].Score)
}

func TestSearch_EmptyQueryListsAlphabetically(t *testing.T) {
	engine := NewEngine(itemsFromLabels("Rent", "Dining", "Groceries"))

	res := engine.Search("", 0)
	assert.Equal(t, []string{"Dining", "Groceries", "Rent"}, labelsOf(res))
	for _, r := range res {
		assert.Zero(t, r.Score)
	}
}

func TestSearch_NoMatchReturnsEmpty(t *testing.T) {
	engine := NewEngine(itemsFromLabels("Groceries", "Dining"))

	res := engine.Search("xylophone lessons", 0)
	assert.Empty(t, res)
}

func TestSearch_Deterministic(t *testing.T) {
	items := itemsFromLabels("Dining", "Dining Out", "Diner", "Dinner Parties")
	engine := NewEngine(items)

	first := labelsOf(engine.Search("din", 0))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, labelsOf(engine.Search("din", 0)))
	}
}

func TestSearch_TieBreakPrefersShorterThenAlphabetical(t *testing.T) {
	engine := NewEngine(itemsFromLabels("Diner", "Dines"))

	res := engine.Search("dine", 0)
	require.Len(t, res, 2)
	// Equal length and score; alphabetical order decides.
	assert.Equal(t, []string{"Diner", "Dines"}, labelsOf(res))
}

func TestSearch_IndexMatchesFullScan(t *testing.T) {
	labels := []string{
		"Groceries", "Dining Out", "Gas & Electric", "Rent", "Insurance",
		"Car Payments", "Streaming Services", "Gym Membership", "Gifts",
	}
	indexed := NewEngine(itemsFromLabels(labels...))
	scanned := NewEngine(itemsFromLabels(labels...), WithoutIndex())

	for _, q := range []string{"g", "gro", "gas el", "dining out", "rent", "str", "gym mem"} {
		assert.Equal(t, labelsOf(scanned.Search(q, 0)), labelsOf(indexed.Search(q, 0)), "query %q", q)
	}
}

func TestSearch_MultiTokenCoverage(t *testing.T) {
	engine := NewEngine(itemsFromLabels("Gas & Electric", "Gasoline", "Electric Scooters"))

	res := engine.Search("gas el", 0)
	require.NotEmpty(t, res)
	assert.Equal(t, "Gas & Electric", res[0].Item.Label)
	assert.Equal(t, 2, res[0].Coverage)
}

func TestSearch_Limit(t *testing.T) {
	engine := NewEngine(itemsFromLabels("Dining", "Diner", "Dinghies", "Dinners"))

	res := engine.Search("din", 2)
	assert.Len(t, res, 2)
}

func TestSearch_AliasScoresWithPenalty(t *testing.T) {
	item := NewItem("Transportation", "car", "commute")
	engine := NewEngine([]Item{item, NewItem("Groceries")})

	res := engine.Search("commute", 0)
	require.NotEmpty(t, res)
	assert.Equal(t, "Transportation", res[0].Item.Label)
	assert.Less(t, res[0].Score, scoreExact)
}

func TestSetItems_RebuildsIndex(t *testing.T) {
	engine := NewEngine(itemsFromLabels("Groceries"))
	assert.Empty(t, engine.Search("din", 0))

	engine.SetItems(itemsFromLabels("Dining"))
	res := engine.Search("din", 0)
	require.NotEmpty(t, res)
	assert.Equal(t, "Dining", res[0].Item.Label)

	_, ok := engine.Best("zzz qqq")
	assert.False(t, ok)
}

func TestCategoryItems_ExcludesDefault(t *testing.T) {
	tax := taxonomy.New()
	require.True(t, tax.AddCategory("Groceries", "Food"))

	items := CategoryItems(tax)
	require.Len(t, items, 1)
	assert.Equal(t, "Groceries", items[0].Label)
	assert.Equal(t, "Food", items[0].Group)
}

func TestGroupItems_ExcludesDefault(t *testing.T) {
	tax := taxonomy.New()
	require.True(t, tax.AddGroup("Food"))

	items := GroupItems(tax)
	require.Len(t, items, 1)
	assert.Equal(t, "Food", items[0].Label)
}
