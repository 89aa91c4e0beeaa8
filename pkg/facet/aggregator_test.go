package facet

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matst80/slask-catalog/pkg/types"
)

func testSchema() *types.Schema {
	return &types.Schema{
		Type: types.Course,
		Facets: []types.FacetSpec{
			{Id: "category", Title: "Category"},
			{Id: "delivery", Title: "Delivery", Options: []string{"Online", "Classroom"}},
			{Id: "domain", Title: "Domain"},
			{Id: "subdomain", Title: "Subdomain", Parent: "domain"},
			{Id: "duration", Title: "Duration", Kind: types.RangeFacet},
			{Id: "internal", Title: "Internal", Hide: true},
		},
	}
}

func course(id int, category, delivery, domain, subdomain string, minutes int) types.CatalogItem {
	return types.CatalogItem{
		Id:    fmt.Sprint(id),
		Type:  types.Course,
		Title: fmt.Sprintf("course %d", id),
		Attributes: types.Attributes{
			"category":  {category},
			"delivery":  {delivery},
			"domain":    {domain},
			"subdomain": {subdomain},
			"duration":  {fmt.Sprint(minutes)},
		},
	}
}

func testItems() []types.CatalogItem {
	return []types.CatalogItem{
		course(1, "Finance", "Online", "Money", "Budgeting", 30),
		course(2, "Finance", "Online", "Money", "Budgeting", 60),
		course(3, "Finance", "Online", "Money", "Accounting", 90),
		course(4, "Finance", "Online", "Money", "Accounting", 45),
		course(5, "Finance", "Classroom", "Money", "Budgeting", 240),
		course(6, "Finance", "Classroom", "Money", "Accounting", 120),
		course(7, "IT", "Online", "Tech", "Security", 20),
		course(8, "IT", "Classroom", "Tech", "Security", 180),
		course(9, "IT", "Classroom", "Tech", "Networks", 60),
	}
}

func facetById(t *testing.T, res *Result, id string) types.FacetDefinition {
	t.Helper()
	for _, f := range res.Facets {
		if f.Id == id {
			return f
		}
	}
	require.Failf(t, "facet missing", "no facet %s", id)
	return types.FacetDefinition{}
}

func count(opts []types.FacetOption, id string) int {
	for _, o := range opts {
		if o.Id == id {
			return o.Count
		}
	}
	return -1
}

func TestCountsWithoutActiveSelection(t *testing.T) {
	res := Compute(context.Background(), testSchema(), testItems(), types.NewFilterSelection())
	category := facetById(t, res, "category")
	assert.Equal(t, 6, count(category.Options, "Finance"))
	assert.Equal(t, 3, count(category.Options, "IT"))
	assert.Equal(t, "Finance", category.Options[0].Id)
	assert.Nil(t, category.Selected)

	duration := facetById(t, res, "duration")
	assert.Equal(t, &types.RangeValue{Min: "20", Max: "240"}, duration.Extent)

	for _, f := range res.Facets {
		assert.NotEqual(t, "internal", f.Id)
	}
}

func TestCountsExcludeOwnSelection(t *testing.T) {
	sel := types.NewFilterSelection().With("delivery", "Online")
	res := Compute(context.Background(), testSchema(), testItems(), sel)

	category := facetById(t, res, "category")
	assert.Equal(t, 4, count(category.Options, "Finance"))
	assert.Equal(t, 1, count(category.Options, "IT"))

	delivery := facetById(t, res, "delivery")
	assert.Equal(t, []types.FacetOption{
		{Id: "Online", Label: "Online", Count: 5},
		{Id: "Classroom", Label: "Classroom", Count: 4},
	}, delivery.Options)
	assert.Equal(t, []string{"Online"}, delivery.Selected)
}

func TestRangeSelectionRestrictsOtherFacets(t *testing.T) {
	sel := types.NewFilterSelection().WithRange("duration", types.RangeValue{Max: "60"})
	res := Compute(context.Background(), testSchema(), testItems(), sel)
	category := facetById(t, res, "category")
	assert.Equal(t, 3, count(category.Options, "Finance"))
	assert.Equal(t, 2, count(category.Options, "IT"))

	duration := facetById(t, res, "duration")
	assert.Equal(t, "240", duration.Extent.Max)
}

func TestTreeFacetShowsAllowedParentsOnly(t *testing.T) {
	res := Compute(context.Background(), testSchema(), testItems(), types.NewFilterSelection())
	sub := facetById(t, res, "subdomain")
	require.Len(t, sub.Groups, 2)
	assert.ElementsMatch(t, []string{"Budgeting", "Accounting", "Security", "Networks"}, res.Allowed["subdomain"])

	sel := types.NewFilterSelection().With("domain", "Money")
	res = Compute(context.Background(), testSchema(), testItems(), sel)
	sub = facetById(t, res, "subdomain")
	require.Len(t, sub.Groups, 1)
	assert.Equal(t, "Money", sub.Groups[0].Id)
	assert.Equal(t, 6, sub.Groups[0].Count)
	assert.Equal(t, 3, count(sub.Groups[0].Options, "Budgeting"))
	assert.Equal(t, []string{"Budgeting", "Accounting"}, res.Allowed["subdomain"])
}

func TestTaxonomyAddsKnownChildren(t *testing.T) {
	schema := testSchema()
	schema.Taxonomy = map[string][]string{"Money": {"Tax"}}
	sel := types.NewFilterSelection().With("domain", "Money")
	res := Compute(context.Background(), schema, testItems(), sel)
	assert.Equal(t, []string{"Tax", "Budgeting", "Accounting"}, res.Allowed["subdomain"])
	sub := facetById(t, res, "subdomain")
	assert.Equal(t, 0, count(sub.Groups[0].Options, "Tax"))
}

func TestPrune(t *testing.T) {
	schema := testSchema()
	sel := types.NewFilterSelection().With("domain", "Money").With("subdomain", "Security", "Budgeting")
	res := Compute(context.Background(), schema, testItems(), sel)

	pruned, changed := Prune(schema, sel, res.Allowed)
	assert.True(t, changed)
	assert.Equal(t, []string{"Budgeting"}, pruned.Values["subdomain"])
	assert.Equal(t, []string{"Security", "Budgeting"}, sel.Values["subdomain"], "input is not mutated")

	_, changed = Prune(schema, pruned, res.Allowed)
	assert.False(t, changed)

	orphan := types.NewFilterSelection().With("subdomain", "Anything")
	_, changed = Prune(schema, orphan, res.Allowed)
	assert.False(t, changed, "no parent selected")
}

func TestMatchingWithoutSelectionIsEverything(t *testing.T) {
	ix := NewIndex(testSchema(), testItems())
	all := ix.Matching(context.Background(), types.NewFilterSelection())
	assert.Equal(t, 9, all.Len())

	sel := types.NewFilterSelection().With("category", "IT").With("delivery", "Classroom")
	assert.Equal(t, 2, ix.Matching(context.Background(), sel).Len())
	assert.Equal(t, 3, ix.Matching(context.Background(), sel, "delivery").Len())
}
