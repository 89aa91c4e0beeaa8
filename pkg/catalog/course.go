package catalog

import (
	"github.com/matst80/slask-catalog/pkg/cascade"
	"github.com/matst80/slask-catalog/pkg/compiler"
	"github.com/matst80/slask-catalog/pkg/types"
)

var CourseSchema = types.Schema{
	Type: types.Course,
	Facets: []types.FacetSpec{
		{Id: "category", Title: "Category", Attribute: types.AttrCategory},
		{Id: "delivery", Title: "Delivery", Attribute: types.AttrDelivery, Options: []string{"Online", "Classroom", "Blended"}},
		{Id: "level", Title: "Level", Attribute: types.AttrLevel, Options: []string{"Beginner", "Intermediate", "Advanced"}},
		{Id: "duration", Title: "Duration (minutes)", Attribute: types.AttrDuration, Kind: types.RangeFacet, Range: types.NumberRange},
		{Id: "domain", Title: "Domain", Attribute: types.AttrDomain},
		{Id: "subdomain", Title: "Subdomain", Attribute: types.AttrSubdomain, Parent: "domain"},
		{Id: "tags", Title: "Tags", Attribute: types.AttrTags},
	},
	Sorts:           []string{"relevance", "updated", "title", "editorsPick"},
	DefaultSort:     "relevance",
	DefaultPageSize: 9,
	SearchFields:    []string{"title", "summary"},
}

var courseFields = cascade.FieldMap{
	Id:      "id",
	Title:   []string{"title"},
	Summary: []string{"description"},
	Start:   []string{"updated_at", "created_at"},
	Attributes: map[string]string{
		types.AttrCategory:  "category",
		types.AttrDelivery:  "delivery_mode",
		types.AttrLevel:     "level",
		types.AttrDuration:  "duration_minutes",
		types.AttrDomain:    "domain",
		types.AttrSubdomain: "subdomain",
		types.AttrTags:      "tags",
		types.AttrPick:      "editors_pick",
	},
}

func courseDefinition(opts *Options) *Definition {
	schema := CourseSchema
	return &Definition{
		Schema: &schema,
		Compiler: &compiler.TableCompiler{
			Schema: &schema,
			Columns: map[string]compiler.Column{
				"category":  {Name: "category"},
				"delivery":  {Name: "delivery_mode"},
				"level":     {Name: "level"},
				"duration":  {Name: "duration_minutes"},
				"domain":    {Name: "domain"},
				"subdomain": {Name: "subdomain"},
				"tags":      {Name: "tags", Op: types.OpOverlaps},
			},
			SearchColumns: map[string]string{"title": "title", "summary": "description"},
			Sorts: map[string][]types.SortSpec{
				"relevance":   {{Field: "priority", Desc: true}, {Field: "updated_at", Desc: true}, {Field: "id"}},
				"updated":     {{Field: "updated_at", Desc: true}, {Field: "id"}},
				"title":       {{Field: "title"}, {Field: "id"}},
				"editorsPick": {{Field: "editors_pick", Desc: true}, {Field: "updated_at", Desc: true}, {Field: "id"}},
			},
			ClientWindow: opts.ClientWindow,
		},
		Runner: &cascade.Runner{
			SortFields: map[string]string{
				"updated_at":   types.FieldTimestamp,
				"editors_pick": types.AttrPick,
			},
			Stages: []cascade.Stage{{
				Name:      "courses",
				Source:    opts.source("courses"),
				Table:     "courses",
				Fixed:     published("status"),
				Normalize: courseFields.Normalizer(types.Course),
			}},
		},
	}
}
