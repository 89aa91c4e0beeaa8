package catalog

import (
	"github.com/matst80/slask-catalog/pkg/cascade"
	"github.com/matst80/slask-catalog/pkg/compiler"
	"github.com/matst80/slask-catalog/pkg/types"
)

var ServiceSchema = types.Schema{
	Type: types.Service,
	Facets: []types.FacetSpec{
		{Id: "category", Title: "Category", Attribute: types.AttrCategory},
		{Id: "domain", Title: "Domain", Attribute: types.AttrDomain},
		{Id: "subdomain", Title: "Subdomain", Attribute: types.AttrSubdomain, Parent: "domain"},
		{Id: "status", Title: "Status", Attribute: types.AttrStatus, Kind: types.ExclusiveFacet, Options: []string{"Available", "Limited", "Retired"}},
	},
	Sorts:           []string{"relevance", "title"},
	DefaultSort:     "relevance",
	DefaultPageSize: 12,
	SearchFields:    []string{"title", "summary", types.AttrCategory},
}

var serviceFields = cascade.FieldMap{
	Id:      "id",
	Title:   []string{"name", "title"},
	Summary: []string{"description"},
	Start:   []string{"updated_at"},
	Attributes: map[string]string{
		types.AttrCategory:  "category",
		types.AttrDomain:    "domain",
		types.AttrSubdomain: "subdomain",
		types.AttrStatus:    "status",
	},
}

// The services catalog is served from a view without text search, so free text
// is always matched on the client.
func serviceDefinition(opts *Options) *Definition {
	schema := ServiceSchema
	return &Definition{
		Schema: &schema,
		Compiler: &compiler.TableCompiler{
			Schema: &schema,
			Columns: map[string]compiler.Column{
				"category":  {Name: "category"},
				"domain":    {Name: "domain"},
				"subdomain": {Name: "subdomain"},
				"status":    {Name: "status"},
			},
			Sorts: map[string][]types.SortSpec{
				"relevance": {{Field: "sort_order"}, {Field: "name"}},
				"title":     {{Field: "name"}},
			},
			ClientWindow: opts.ClientWindow,
		},
		Runner: &cascade.Runner{
			SortFields: map[string]string{"name": "title"},
			Stages: []cascade.Stage{{
				Name:      "services",
				Source:    opts.source("service_catalog"),
				Table:     "service_catalog",
				Normalize: serviceFields.Normalizer(types.Service),
			}},
		},
	}
}
