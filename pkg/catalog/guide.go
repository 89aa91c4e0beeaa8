package catalog

import (
	"github.com/matst80/slask-catalog/pkg/cascade"
	"github.com/matst80/slask-catalog/pkg/compiler"
	"github.com/matst80/slask-catalog/pkg/types"
)

// Audience is free text in the guides table, so it is matched by substring on
// the client.
var GuideSchema = types.Schema{
	Type: types.Guide,
	Facets: []types.FacetSpec{
		{Id: "category", Title: "Category", Attribute: types.AttrCategory},
		{Id: "audience", Title: "Audience", Attribute: types.AttrAudience, Match: types.MatchSubstring},
		{Id: "status", Title: "Status", Attribute: types.AttrStatus, Kind: types.ExclusiveFacet, Options: []string{"Current", "Under review", "Archived"}},
		{Id: "tags", Title: "Tags", Attribute: types.AttrTags},
	},
	Sorts:           []string{"relevance", "updated", "downloads"},
	DefaultSort:     "relevance",
	DefaultPageSize: 12,
	SearchFields:    []string{"title", "summary"},
}

var guideFields = cascade.FieldMap{
	Id:      "id",
	Title:   []string{"title"},
	Summary: []string{"summary", "body"},
	Start:   []string{"updated_at", "created_at"},
	Attributes: map[string]string{
		types.AttrCategory:  "category",
		types.AttrAudience:  "audience",
		types.AttrStatus:    "document_status",
		types.AttrTags:      "tags",
		types.AttrDownloads: "download_count",
	},
}

func guideDefinition(opts *Options) *Definition {
	schema := GuideSchema
	return &Definition{
		Schema: &schema,
		Compiler: &compiler.TableCompiler{
			Schema: &schema,
			Columns: map[string]compiler.Column{
				"category": {Name: "category"},
				"status":   {Name: "document_status"},
				"tags":     {Name: "tags", Op: types.OpOverlaps},
			},
			SearchColumns: map[string]string{"title": "title", "summary": "summary"},
			Sorts: map[string][]types.SortSpec{
				"relevance": {{Field: "updated_at", Desc: true}, {Field: "id"}},
				"updated":   {{Field: "updated_at", Desc: true}, {Field: "id"}},
				"downloads": {{Field: "download_count", Desc: true}, {Field: "id"}},
			},
			ClientWindow: opts.ClientWindow,
		},
		Runner: &cascade.Runner{
			SortFields: map[string]string{
				"updated_at":     types.FieldTimestamp,
				"download_count": types.AttrDownloads,
			},
			Stages: []cascade.Stage{{
				Name:      "guides",
				Source:    opts.source("guides"),
				Table:     "guides",
				Fixed:     published("publish_state"),
				Normalize: guideFields.Normalizer(types.Guide),
			}},
		},
	}
}
