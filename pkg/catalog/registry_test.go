package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matst80/slask-catalog/pkg/reconcile"
	"github.com/matst80/slask-catalog/pkg/sources/static"
	"github.com/matst80/slask-catalog/pkg/types"
)

var now = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func TestLookup(t *testing.T) {
	r := NewRegistry(Options{Source: static.NewTables()})
	for _, ct := range types.ContentTypes {
		def, err := r.Lookup(ct)
		require.NoError(t, err)
		assert.Equal(t, ct, def.Schema.Type)
		assert.Equal(t, ct, def.Runner.Type)
		assert.True(t, def.Schema.HasSort(def.Schema.DefaultSort))
	}
	_, err := r.Lookup("podcast")
	assert.ErrorIs(t, err, types.ErrUnknownContentType)
	assert.Equal(t, types.ContentTypes, r.Types())
}

func TestCompileIsDeterministic(t *testing.T) {
	r := NewRegistry(Options{})
	for _, ct := range r.Types() {
		def, _ := r.Lookup(ct)
		sel := types.NewFilterSelection().With("category", "Finance", "IT").With("status", "Current")
		sel.Query = "budget"
		page := types.PageState{Page: 2, PageSize: def.Schema.DefaultPageSize}
		assert.Equal(t, def.Compiler.Compile(sel, page), def.Compiler.Compile(sel, page), ct.String())
	}
}

func TestServiceSearchIsDeferred(t *testing.T) {
	tables := static.NewTables().Put("service_catalog",
		types.Row{"id": "1", "name": "Budget advisory", "category": "Finance", "status": "Available"},
		types.Row{"id": "2", "name": "Payroll", "category": "Finance", "status": "Available"},
		types.Row{"id": "3", "name": "Laptop refresh", "category": "IT", "status": "Available"},
	)
	r := NewRegistry(Options{Source: tables, Now: func() time.Time { return now }})
	def, err := r.Lookup(types.Service)
	require.NoError(t, err)

	sel := types.NewFilterSelection()
	sel.Query = "budget"
	q := def.Compiler.Compile(sel, types.PageState{Page: 1, PageSize: 12})
	assert.True(t, q.DeferSearch)
	assert.True(t, q.ClientPaged)

	res, err := def.Runner.Run(context.Background(), q, types.AccessPolicy{})
	require.NoError(t, err)
	items := reconcile.Apply(def.Schema, res.Items, sel, reconcile.FromResult(res))
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].Id)
}

func TestEventCascadeFallsThroughToLegacyListings(t *testing.T) {
	tables := static.NewTables().
		Put("upcoming_events").
		Deny("upcoming_events").
		Put("event_listings",
			types.Row{"id": "l1", "name": "Pension clinic", "dept": "HR", "venue": "Room 4", "event_date": "2026-11-02", "event_time": "13:00"},
			types.Row{"id": "l2", "name": "Old party", "dept": "HR", "venue": "Hall", "event_date": "2026-09-01", "event_time": "18:00"},
			types.Row{"id": "l3", "name": "Finance forum", "dept": "Finance", "venue": "Room 1", "event_date": "2026-10-25", "event_time": "09:30"},
		)
	fallback := static.NewProvider()
	r := NewRegistry(Options{Source: tables, Fallback: fallback, Now: func() time.Time { return now }})
	def, _ := r.Lookup(types.Event)

	sel := types.NewFilterSelection().With("department", "HR").WithRange("date", types.RangeValue{Min: "2026-11-01", Max: "2026-11-30"})
	q := def.Compiler.Compile(sel, types.PageState{Page: 1, PageSize: 9})
	res, err := def.Runner.Run(context.Background(), q, types.AccessPolicy{})
	require.NoError(t, err)

	assert.Equal(t, types.SourceTag{Stage: 3, Name: "event_listings"}, res.Source)
	assert.Equal(t, []string{"date"}, res.Deferred)
	assert.True(t, res.ClientPaged)
	items := reconcile.Apply(def.Schema, res.Items, sel, reconcile.FromResult(res))
	require.Len(t, items, 1)
	assert.Equal(t, "Pension clinic", items[0].Title)
	assert.Equal(t, time.Date(2026, 11, 2, 13, 0, 0, 0, time.UTC), items[0].Timestamp)
	assert.Equal(t, time.Date(2026, 11, 2, 14, 0, 0, 0, time.UTC), *items[0].EndTime)
}

func TestEventContentStageUsesAccessPolicy(t *testing.T) {
	tables := static.NewTables().Put("content",
		types.Row{"id": "c1", "title": "Open day", "content_type": "event", "visibility": "public", "event_at": "2026-11-10T10:00:00Z"},
		types.Row{"id": "c2", "title": "Finance offsite", "content_type": "event", "visibility": "Finance", "event_at": "2026-11-11T10:00:00Z"},
		types.Row{"id": "c3", "title": "Blog post", "content_type": "article", "visibility": "public", "event_at": "2026-11-12T10:00:00Z"},
	)
	r := NewRegistry(Options{Source: tables, Now: func() time.Time { return now }})
	def, _ := r.Lookup(types.Event)
	q := def.Compiler.Compile(types.NewFilterSelection(), types.PageState{Page: 1, PageSize: 9})

	res, err := def.Runner.Run(context.Background(), q, types.AccessPolicy{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Source.Stage)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "c1", res.Items[0].Id)

	res, err = def.Runner.Run(context.Background(), q, types.AccessPolicy{Subject: "u1", Departments: []string{"Finance"}})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

func TestSampleQueryKeepsOnlySearch(t *testing.T) {
	r := NewRegistry(Options{SampleWindow: 200})
	def, _ := r.Lookup(types.Course)
	sel := types.NewFilterSelection().With("category", "Finance")
	sel.Query = "excel"
	q := def.SampleQuery(sel)
	assert.Empty(t, q.FacetIds())
	assert.Equal(t, "excel", q.Search)
	assert.Equal(t, types.Window{Offset: 0, Limit: 200}, q.Window)
	assert.True(t, q.ClientPaged)
}

func itemIds(items []types.CatalogItem) []string {
	ret := make([]string, 0, len(items))
	for _, i := range items {
		ret = append(ret, i.Id)
	}
	return ret
}

func TestSearchMatchesSameItemsLiveAndOffline(t *testing.T) {
	cases := []struct {
		ct    types.ContentType
		table string
		query string
		rows  []types.Row
		want  []string
	}{
		{
			ct:    types.Course,
			table: "courses",
			query: "planning budget",
			rows: []types.Row{
				{"id": "c1", "title": "Budget planning", "description": "Annual process", "status": "published"},
				{"id": "c2", "title": "Planning workshop", "description": "Review the BUDGET with your team", "status": "published"},
				{"id": "c3", "title": "Budget basics", "description": "Intro", "status": "published"},
				{"id": "c4", "title": "Project planning", "description": "Timelines", "status": "published"},
			},
			want: []string{"c1", "c2"},
		},
		{
			ct:    types.Event,
			table: "events",
			query: "finance room",
			rows: []types.Row{
				{"id": "e1", "title": "Finance forum", "description": "Quarterly update", "location": "Room 1", "starts_at": "2026-11-02T09:00:00Z", "status": "published"},
				{"id": "e2", "title": "Pension clinic", "description": "Finance advice", "location": "Room 4", "starts_at": "2026-11-03T09:00:00Z", "status": "published"},
				{"id": "e3", "title": "Finance drinks", "description": "Social", "location": "Hall", "starts_at": "2026-11-04T09:00:00Z", "status": "published"},
			},
			want: []string{"e1", "e2"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.ct.String(), func(t *testing.T) {
			sel := types.NewFilterSelection()
			sel.Query = tc.query
			page := types.PageState{Page: 1, PageSize: 9}

			live := NewRegistry(Options{Source: static.NewTables().Put(tc.table, tc.rows...), Now: func() time.Time { return now }})
			def, err := live.Lookup(tc.ct)
			require.NoError(t, err)
			q := def.Compiler.Compile(sel, page)
			require.False(t, q.DeferSearch)
			res, err := def.Runner.Run(context.Background(), q, types.AccessPolicy{})
			require.NoError(t, err)
			require.Equal(t, 1, res.Source.Stage)
			assert.False(t, res.DeferSearch)
			served := itemIds(reconcile.Apply(def.Schema, res.Items, sel, reconcile.FromResult(res)))

			items := make([]types.CatalogItem, 0, len(tc.rows))
			for _, row := range tc.rows {
				item, ok := def.Runner.Stages[0].Normalize(row)
				require.True(t, ok)
				items = append(items, item)
			}
			fallback := static.NewProvider()
			fallback.Set(tc.ct, items)
			offline := NewRegistry(Options{Fallback: fallback, Now: func() time.Time { return now }})
			def, err = offline.Lookup(tc.ct)
			require.NoError(t, err)
			res, err = def.Runner.Run(context.Background(), def.Compiler.Compile(sel, page), types.AccessPolicy{})
			require.NoError(t, err)
			require.True(t, res.Source.Fallback)
			reconciled := itemIds(reconcile.Apply(def.Schema, res.Items, sel, reconcile.FromResult(res)))

			assert.ElementsMatch(t, tc.want, served)
			assert.ElementsMatch(t, served, reconciled)
		})
	}
}
