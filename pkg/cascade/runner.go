// Package cascade retrieves a compiled query through an ordered list of sources,
// falling back to a static dataset when every live source fails or is empty.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/matst80/slask-catalog/pkg/types"
)

const (
	DefaultStageTimeout = 5 * time.Second
	DefaultClientWindow = 500
	FallbackStageName   = "static"
)

type Runner struct {
	Type         types.ContentType
	Stages       []Stage
	Fallback     types.FallbackProvider
	StageTimeout time.Duration
	ClientWindow int
	Now          func() time.Time
	// SortFields maps compiled sort columns onto item fields when ordering the
	// fallback dataset. Unlisted columns are looked up by their own name.
	SortFields map[string]string
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) stageTimeout() time.Duration {
	if r.StageTimeout > 0 {
		return r.StageTimeout
	}
	return DefaultStageTimeout
}

func (r *Runner) clientWindow() int {
	if r.ClientWindow > 0 {
		return r.ClientWindow
	}
	return DefaultClientWindow
}

// Run tries each stage in order. A stage that errors, times out or yields no
// usable rows advances the cascade. The only error returned is the caller's
// context being done.
func (r *Runner) Run(ctx context.Context, q types.QueryDescription, policy types.AccessPolicy) (*types.RetrievalResult, error) {
	now := r.now()
	for i := range r.Stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stage := &r.Stages[i]
		p := stage.prepare(&q, now, policy, r.clientWindow())

		resp, err := r.attempt(ctx, stage, p.req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			r.logFailure(i, stage, err)
			continue
		}
		items := stage.normalize(resp.Rows)
		// A counted source with matches beyond the requested page is not empty.
		outOfRange := !p.clientPaged && resp.Total > 0
		if len(items) == 0 && !outOfRange {
			r.logFailure(i, stage, types.ErrEmptyResult)
			continue
		}

		total := resp.Total
		if p.clientPaged {
			total = len(items)
		} else if total < 0 {
			total = p.req.Window.Offset + len(items)
		}
		stageServed.WithLabelValues(string(r.Type), stage.Name).Inc()
		log.WithFields(log.Fields{"type": r.Type, "stage": stage.Name, "rows": len(items)}).Debug("cascade stage served")

		deferred := slices.Clone(q.Deferred)
		for _, id := range p.deferred {
			if !slices.Contains(deferred, id) {
				deferred = append(deferred, id)
			}
		}
		return &types.RetrievalResult{
			Items:       items,
			Total:       total,
			Source:      types.SourceTag{Stage: i + 1, Name: stage.Name},
			Deferred:    deferred,
			DeferSearch: q.DeferSearch || p.deferSearch,
			ClientPaged: p.clientPaged,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.fallback(&q), nil
}

type attemptResult struct {
	resp *types.SourceResponse
	err  error
}

func (r *Runner) attempt(ctx context.Context, stage *Stage, req types.SourceRequest) (*types.SourceResponse, error) {
	if stage.Source == nil {
		return nil, fmt.Errorf("stage %s has no source: %w", stage.Name, types.ErrSourceUnavailable)
	}
	stageCtx, cancel := context.WithTimeout(ctx, r.stageTimeout())
	defer cancel()

	ch := make(chan attemptResult, 1)
	go func() {
		resp, err := stage.Source.Query(stageCtx, req)
		ch <- attemptResult{resp: resp, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		if res.resp == nil {
			return nil, types.ErrEmptyResult
		}
		return res.resp, nil
	case <-stageCtx.Done():
		return nil, fmt.Errorf("stage %s: %w", stage.Name, stageCtx.Err())
	}
}

func (r *Runner) logFailure(idx int, stage *Stage, err error) {
	kind := types.FailureKind(err)
	stageFailures.WithLabelValues(string(r.Type), stage.Name, kind).Inc()
	entry := log.WithFields(log.Fields{
		"type":  r.Type,
		"stage": stage.Name,
		"index": idx + 1,
		"kind":  kind,
	})
	switch {
	case errors.Is(err, types.ErrPermissionDenied):
		entry.Warnf("stage rejected by access policy, check source grants: %v", err)
	case errors.Is(err, types.ErrEmptyResult):
		entry.Info("stage returned no rows")
	default:
		entry.Warnf("stage failed: %v", err)
	}
}

// fallback never fails. Nothing was filtered at the source so every facet and the
// search text are left to the reconciler.
func (r *Runner) fallback(q *types.QueryDescription) *types.RetrievalResult {
	items := make([]types.CatalogItem, 0)
	if r.Fallback != nil {
		items = append(items, r.Fallback.Fallback(r.Type)...)
	}
	r.sortFallback(items, q.Sort)
	fallbackServed.WithLabelValues(string(r.Type)).Inc()
	log.WithFields(log.Fields{"type": r.Type, "items": len(items)}).Warn("serving static fallback dataset")
	return &types.RetrievalResult{
		Items:       items,
		Total:       len(items),
		Source:      types.SourceTag{Stage: len(r.Stages) + 1, Name: FallbackStageName, Fallback: true},
		Deferred:    q.FacetIds(),
		DeferSearch: q.Search != "",
		ClientPaged: true,
	}
}

func (r *Runner) sortFallback(items []types.CatalogItem, sort []types.SortSpec) {
	if len(sort) == 0 {
		return
	}
	fields := make([]string, len(sort))
	for i, s := range sort {
		fields[i] = s.Field
		if f, ok := r.SortFields[s.Field]; ok {
			fields[i] = f
		}
	}
	slices.SortStableFunc(items, func(a, b types.CatalogItem) int {
		for i, s := range sort {
			c := types.CompareValues(a.Field(fields[i]), b.Field(fields[i]))
			if s.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}
