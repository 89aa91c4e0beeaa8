// Package catalog is the strategy table: one schema, compiler and retrieval
// cascade per content type, selected by a single lookup.
package catalog

import (
	"fmt"
	"time"

	"github.com/matst80/slask-catalog/pkg/cascade"
	"github.com/matst80/slask-catalog/pkg/compiler"
	"github.com/matst80/slask-catalog/pkg/types"
)

const DefaultSampleWindow = 500

type Options struct {
	// Source answers every table unless Sources names a specific one.
	Source       types.Source
	Sources      map[string]types.Source
	Fallback     types.FallbackProvider
	StageTimeout time.Duration
	ClientWindow int
	SampleWindow int
	Now          func() time.Time
}

func (o *Options) source(table string) types.Source {
	if s, ok := o.Sources[table]; ok {
		return s
	}
	return o.Source
}

func (o *Options) sampleWindow() int {
	if o.SampleWindow > 0 {
		return o.SampleWindow
	}
	return DefaultSampleWindow
}

type Definition struct {
	Schema   *types.Schema
	Compiler compiler.Compiler
	Runner   *cascade.Runner
	// SampleWindow bounds the facet sample read.
	SampleWindow int
}

// SampleQuery compiles the facet sample read. It keeps only the free text so
// counts reflect everything the other selections could still reach.
func (d *Definition) SampleQuery(sel types.FilterSelection) types.QueryDescription {
	sample := types.NewFilterSelection()
	sample.Query = sel.Query
	sample.Sort = sel.Sort
	q := d.Compiler.Compile(sample, types.PageState{Page: 1, PageSize: d.SampleWindow})
	q.ClientPaged = true
	q.Window = types.Window{Offset: 0, Limit: d.SampleWindow}
	return q
}

type Registry struct {
	defs  map[types.ContentType]*Definition
	order []types.ContentType
}

type builder func(opts *Options) *Definition

var builders = map[types.ContentType]builder{
	types.Course:  courseDefinition,
	types.Guide:   guideDefinition,
	types.Event:   eventDefinition,
	types.Service: serviceDefinition,
}

func NewRegistry(opts Options) *Registry {
	r := &Registry{defs: map[types.ContentType]*Definition{}}
	for _, ct := range types.ContentTypes {
		def := builders[ct](&opts)
		def.SampleWindow = opts.sampleWindow()
		def.Runner.Type = ct
		def.Runner.Fallback = opts.Fallback
		def.Runner.StageTimeout = opts.StageTimeout
		def.Runner.ClientWindow = opts.ClientWindow
		def.Runner.Now = opts.Now
		r.defs[ct] = def
		r.order = append(r.order, ct)
	}
	return r
}

func (r *Registry) Lookup(ct types.ContentType) (*Definition, error) {
	def, ok := r.defs[ct]
	if !ok {
		return nil, fmt.Errorf("%q: %w", ct, types.ErrUnknownContentType)
	}
	return def, nil
}

func (r *Registry) Types() []types.ContentType {
	return r.order
}

func published(column string) func(time.Time, types.AccessPolicy) []types.Predicate {
	return func(time.Time, types.AccessPolicy) []types.Predicate {
		return []types.Predicate{{Field: column, Op: types.OpEq, Value: "published"}}
	}
}
