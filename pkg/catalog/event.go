package catalog

import (
	"time"

	"github.com/matst80/slask-catalog/pkg/cascade"
	"github.com/matst80/slask-catalog/pkg/compiler"
	"github.com/matst80/slask-catalog/pkg/types"
)

// EventDuration is assumed for sources that only store a start.
const EventDuration = time.Hour

var EventSchema = types.Schema{
	Type: types.Event,
	Facets: []types.FacetSpec{
		{Id: "department", Title: "Department", Attribute: types.AttrDepartment},
		{Id: "location", Title: "Location", Attribute: types.AttrLocation},
		{Id: "delivery", Title: "Format", Attribute: types.AttrDelivery, Options: []string{"Online", "In person", "Hybrid"}},
		{Id: "date", Title: "Date", Kind: types.RangeFacet, Range: types.DateRange},
	},
	Sorts:           []string{"upcoming", "title"},
	DefaultSort:     "upcoming",
	DefaultPageSize: 9,
	SearchFields:    []string{"title", "summary", types.AttrLocation},
}

// Event predicates are compiled against logical fields, every stage renames them
// onto its own columns.
var eventColumns = map[string]compiler.Column{
	"department": {Name: "department"},
	"location":   {Name: "location"},
	"delivery":   {Name: "delivery"},
	"date":       {Name: "starts_at"},
}

func upcoming(column string) func(time.Time, types.AccessPolicy) []types.Predicate {
	return func(now time.Time, _ types.AccessPolicy) []types.Predicate {
		return []types.Predicate{{Field: column, Op: types.OpGte, Value: now.UTC().Format(time.RFC3339)}}
	}
}

func eventStages(opts *Options) []cascade.Stage {
	return []cascade.Stage{
		{
			Name:   "events",
			Source: opts.source("events"),
			Table:  "events",
			Columns: map[string]string{
				"department": "department",
				"location":   "location",
				"delivery":   "delivery_mode",
				"starts_at":  "starts_at",
				"title":      "title",
				"summary":    "description",
				"id":         "id",
			},
			Fixed: func(now time.Time, policy types.AccessPolicy) []types.Predicate {
				return append(published("status")(now, policy), upcoming("starts_at")(now, policy)...)
			},
			Sort: []types.SortSpec{{Field: "starts_at"}},
			Normalize: cascade.FieldMap{
				Id:      "id",
				Title:   []string{"title"},
				Summary: []string{"description"},
				Start:   []string{"starts_at"},
				End:     []string{"ends_at"},
				Attributes: map[string]string{
					types.AttrDepartment: "department",
					types.AttrLocation:   "location",
					types.AttrDelivery:   "delivery_mode",
				},
				Duration: EventDuration,
			}.Normalizer(types.Event),
		},
		{
			Name:   "upcoming_events",
			Source: opts.source("upcoming_events"),
			Table:  "upcoming_events",
			Columns: map[string]string{
				"department": "department",
				"location":   "location",
				"delivery":   "delivery",
				"starts_at":  "start_time",
				"title":      "title",
				"summary":    "description",
				"id":         "id",
			},
			Sort: []types.SortSpec{{Field: "start_time"}},
			Normalize: cascade.FieldMap{
				Id:      "id",
				Title:   []string{"title"},
				Summary: []string{"description"},
				Start:   []string{"start_time"},
				End:     []string{"end_time"},
				Attributes: map[string]string{
					types.AttrDepartment: "department",
					types.AttrLocation:   "location",
					types.AttrDelivery:   "delivery",
				},
				Duration: EventDuration,
			}.Normalizer(types.Event),
		},
		{
			// Legacy listings keep date and time as strings and have no delivery column.
			Name:   "event_listings",
			Source: opts.source("event_listings"),
			Table:  "event_listings",
			Columns: map[string]string{
				"department": "dept",
				"location":   "venue",
				"title":      "name",
				"summary":    "details",
				"id":         "id",
			},
			Fixed: func(now time.Time, _ types.AccessPolicy) []types.Predicate {
				return []types.Predicate{{Field: "event_date", Op: types.OpGte, Value: now.UTC().Format(time.DateOnly)}}
			},
			Sort: []types.SortSpec{{Field: "event_date"}, {Field: "event_time"}},
			Normalize: cascade.FieldMap{
				Id:       "id",
				Title:    []string{"name"},
				Summary:  []string{"details"},
				Date:     "event_date",
				Clock:    "event_time",
				Duration: EventDuration,
				Attributes: map[string]string{
					types.AttrDepartment: "dept",
					types.AttrLocation:   "venue",
				},
			}.Normalizer(types.Event),
		},
		{
			// General content rows carry no location column.
			Name:   "content",
			Source: opts.source("content"),
			Table:  "content",
			Columns: map[string]string{
				"department": "department",
				"delivery":   "delivery_mode",
				"starts_at":  "event_at",
				"title":      "title",
				"summary":    "body",
				"id":         "id",
			},
			Fixed: func(now time.Time, policy types.AccessPolicy) []types.Predicate {
				return []types.Predicate{
					{Field: "content_type", Op: types.OpEq, Value: "event"},
					{Field: "visibility", Op: types.OpIn, Values: policy.Visibility()},
					{Field: "event_at", Op: types.OpGte, Value: now.UTC().Format(time.RFC3339)},
				}
			},
			Sort: []types.SortSpec{{Field: "event_at"}},
			Normalize: cascade.FieldMap{
				Id:       "id",
				Title:    []string{"title"},
				Summary:  []string{"excerpt", "body"},
				Start:    []string{"event_at"},
				Duration: EventDuration,
				Attributes: map[string]string{
					types.AttrDepartment: "department",
					types.AttrDelivery:   "delivery_mode",
				},
			}.Normalizer(types.Event),
		},
	}
}

func eventDefinition(opts *Options) *Definition {
	schema := EventSchema
	return &Definition{
		Schema: &schema,
		Compiler: &compiler.TableCompiler{
			Schema:        &schema,
			Columns:       eventColumns,
			SearchColumns: map[string]string{"title": "title", "summary": "summary", "location": "location"},
			Sorts: map[string][]types.SortSpec{
				"upcoming": {{Field: "starts_at"}, {Field: "id"}},
				"title":    {{Field: "title"}, {Field: "id"}},
			},
			ClientWindow: opts.ClientWindow,
		},
		Runner: &cascade.Runner{
			Stages:     eventStages(opts),
			SortFields: map[string]string{"starts_at": types.FieldTimestamp},
		},
	}
}
