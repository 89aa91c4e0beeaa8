// Package view owns the current view of one content type for one session: the
// desired state, the cycle that retrieves it and the last applied snapshot.
package view

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/codec"
	"github.com/matst80/slask-catalog/pkg/facet"
	"github.com/matst80/slask-catalog/pkg/pager"
	"github.com/matst80/slask-catalog/pkg/persistance"
	"github.com/matst80/slask-catalog/pkg/reconcile"
	"github.com/matst80/slask-catalog/pkg/tracking"
	"github.com/matst80/slask-catalog/pkg/types"
)

// Snapshot is everything the presentation layer renders.
type Snapshot struct {
	Type      types.ContentType       `json:"type"`
	State     types.ViewState         `json:"state"`
	Query     string                  `json:"query"`
	Items     []types.CatalogItem     `json:"items"`
	Page      pager.Info              `json:"page"`
	Facets    []types.FacetDefinition `json:"facets"`
	Source    types.SourceTag         `json:"source"`
	Empty     bool                    `json:"empty"`
	Signature string                  `json:"-"`
}

type View struct {
	mu      sync.Mutex
	def     *catalog.Definition
	codec   *codec.Codec
	store   persistance.StateStore
	tracker tracking.Tracker
	session string
	policy  types.AccessPolicy

	desired types.ViewState
	base    url.Values
	allowed map[string][]string
	current *Snapshot
	cycles  []*cycle
}

// cycle is one in flight refresh.
type cycle struct {
	sig    string
	cancel context.CancelFunc
}

type Options struct {
	Store   persistance.StateStore
	Tracker tracking.Tracker
	Session string
	Policy  types.AccessPolicy
}

func New(def *catalog.Definition, opts Options) *View {
	c := codec.New(def.Schema)
	tracker := opts.Tracker
	if tracker == nil {
		tracker = tracking.NoopTracker{}
	}
	return &View{
		def:     def,
		codec:   c,
		store:   opts.Store,
		tracker: tracker,
		session: opts.Session,
		policy:  opts.Policy,
		desired: c.Decode(url.Values{}),
		base:    url.Values{},
	}
}

func (v *View) SetPolicy(policy types.AccessPolicy) {
	v.mu.Lock()
	v.policy = policy
	v.mu.Unlock()
}

// Load sets the desired state from a URL query. An empty query restores the
// state saved for the session instead.
func (v *View) Load(ctx context.Context, query url.Values) {
	if len(query) == 0 && v.store != nil {
		if saved, err := v.store.Load(ctx, v.session, v.def.Schema.Type); err == nil {
			if parsed, err := url.ParseQuery(saved); err == nil {
				query = parsed
			}
		} else if !errors.Is(err, persistance.ErrNotFound) {
			log.Warnf("could not load view state: %v", err)
		}
	}
	state := v.codec.Decode(query)
	v.mu.Lock()
	v.desired = state
	v.base = query
	v.mu.Unlock()
}

// Desired is the state the next cycle will retrieve.
func (v *View) Desired() types.ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.desired
}

// QueryString is the canonical URL query of the desired state.
func (v *View) QueryString() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.codec.String(v.desired, v.base)
}

func (v *View) Current() *Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Apply changes the desired state and runs a cycle for it.
func (v *View) Apply(ctx context.Context, ev Event) (*Snapshot, error) {
	v.mu.Lock()
	next := ev.apply(v.desired)
	// A round trip through the codec repairs whatever the event broke.
	next = v.codec.Decode(v.codec.Encode(next, nil))
	if pruned, changed := facet.Prune(v.def.Schema, next.Selection, v.allowed); changed {
		prunedSelections.WithLabelValues(string(v.def.Schema.Type)).Inc()
		next.Selection = pruned
	}
	v.desired = next
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Refresh runs one cycle for the desired state. A change to a different state
// cancels it and a result for an outdated state is discarded with ErrStale.
// Concurrent cycles for the same state all complete.
func (v *View) Refresh(ctx context.Context) (*Snapshot, error) {
	v.mu.Lock()
	state := v.desired
	base := v.base
	policy := v.policy
	sig := state.Signature()
	cycleCtx, cancel := context.WithCancel(ctx)
	c := &cycle{sig: sig, cancel: cancel}
	for _, other := range v.cycles {
		if other.sig != sig {
			other.cancel()
		}
	}
	v.cycles = append(v.cycles, c)
	v.mu.Unlock()
	defer v.finish(c)

	v.save(ctx, v.codec.String(state, base))
	cyclesTotal.WithLabelValues(string(v.def.Schema.Type)).Inc()

	snap, allowed, err := v.run(cycleCtx, state, policy)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return nil, v.discard(sig)
		}
		return nil, err
	}
	snap.Signature = sig
	snap.Query = v.codec.String(snap.State, base)

	committed, err := v.commit(snap, allowed)
	if err != nil {
		return nil, err
	}
	if committed != snap {
		return committed, nil
	}
	if snap.State.Signature() != sig {
		v.save(ctx, snap.Query)
	}
	v.track(snap)
	return snap, nil
}

func (v *View) finish(c *cycle) {
	c.cancel()
	v.mu.Lock()
	v.cycles = slices.DeleteFunc(v.cycles, func(o *cycle) bool { return o == c })
	v.mu.Unlock()
}

func (v *View) discard(sig string) error {
	staleDiscards.WithLabelValues(string(v.def.Schema.Type)).Inc()
	log.WithFields(log.Fields{"type": v.def.Schema.Type, "session": v.session}).Debug("discarding stale cycle")
	return types.ErrStale
}

// commit applies a snapshot only while its signature is still the desired one.
// Pruning and page clamping done by the cycle become the new desired state. A
// cycle that lost the race to an identical one gets the committed snapshot.
func (v *View) commit(snap *Snapshot, allowed map[string][]string) (*Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.desired.Signature() != snap.Signature {
		if v.current != nil && v.current.Signature == snap.Signature && v.desired.Signature() == v.current.State.Signature() {
			return v.current, nil
		}
		return nil, v.discard(snap.Signature)
	}
	v.desired = snap.State
	v.current = snap
	if allowed != nil {
		v.allowed = allowed
	}
	return snap, nil
}

func (v *View) save(ctx context.Context, query string) {
	if v.store == nil || v.session == "" {
		return
	}
	if err := v.store.Save(ctx, v.session, v.def.Schema.Type, query); err != nil {
		log.Warnf("could not save view state: %v", err)
	}
}

func (v *View) track(snap *Snapshot) {
	v.tracker.TrackSearch(tracking.SearchEvent{
		Session:  v.session,
		Type:     snap.Type,
		Query:    snap.State.Selection.Query,
		Sort:     snap.State.Selection.Sort,
		Values:   snap.State.Selection.Values,
		Ranges:   snap.State.Selection.Ranges,
		Page:     snap.Page.Page,
		Hits:     snap.Page.TotalCount,
		Stage:    snap.Source.Name,
		Fallback: snap.Source.Fallback,
	})
}

func (v *View) retrieve(ctx context.Context, state types.ViewState, policy types.AccessPolicy) (*types.RetrievalResult, error) {
	q := v.def.Compiler.Compile(state.Selection, state.Page)
	return v.def.Runner.Run(ctx, q, policy)
}

func (v *View) run(ctx context.Context, state types.ViewState, policy types.AccessPolicy) (*Snapshot, map[string][]string, error) {
	schema := v.def.Schema
	var res, sample *types.RetrievalResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res, err = v.retrieve(gctx, state, policy)
		return err
	})
	g.Go(func() error {
		var err error
		sample, err = v.def.Runner.Run(gctx, v.def.SampleQuery(state.Selection), policy)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sampleItems := reconcile.Apply(schema, sample.Items, state.Selection, reconcile.Deferral{Search: sample.DeferSearch})
	agg := facet.Compute(ctx, schema, sampleItems, state.Selection)
	var allowed map[string][]string
	if len(sampleItems) > 0 {
		allowed = agg.Allowed
		if pruned, changed := facet.Prune(schema, state.Selection, agg.Allowed); changed {
			prunedSelections.WithLabelValues(string(schema.Type)).Inc()
			state.Selection = pruned
			state.Page.Page = 1
			var err error
			if res, err = v.retrieve(ctx, state, policy); err != nil {
				return nil, nil, err
			}
			agg = facet.Compute(ctx, schema, sampleItems, state.Selection)
		}
	}

	items, info := v.paginate(res, &state)
	if info.Page != state.Page.Page {
		// Out of range on a server paged source, fetch the last page instead.
		state.Page.Page = info.Page
		var err error
		if res, err = v.retrieve(ctx, state, policy); err != nil {
			return nil, nil, err
		}
		items, info = v.paginate(res, &state)
	}

	return &Snapshot{
		Type:   schema.Type,
		State:  state,
		Items:  items,
		Page:   info,
		Facets: agg.Facets,
		Source: res.Source,
		Empty:  info.TotalCount == 0,
	}, allowed, nil
}

// paginate reconciles the result and cuts the current page. Client paged
// results are clamped in place, so a changed page is only returned for server
// paged results.
func (v *View) paginate(res *types.RetrievalResult, state *types.ViewState) ([]types.CatalogItem, pager.Info) {
	items := reconcile.Apply(v.def.Schema, res.Items, state.Selection, reconcile.FromResult(res))
	if res.ClientPaged {
		info := pager.Resolve(state.Page, len(items))
		state.Page.Page = info.Page
		return pager.Slice(items, info.Page, info.PageSize), info
	}
	total := max(res.Total, len(items))
	return items, pager.Resolve(state.Page, total)
}
