package types

import (
	"context"
	"sync"
)

// Intersection combines the match sets of several facet selections computed
// concurrently. A nil set means the selection does not restrict anything.
type Intersection struct {
	ctx    context.Context
	wg     sync.WaitGroup
	mu     sync.Mutex
	seeded bool
	result ItemList
}

func NewIntersection(ctx context.Context) *Intersection {
	return &Intersection{ctx: ctx, result: ItemList{}}
}

func (in *Intersection) Add(match func(ctx context.Context) *ItemList) {
	in.wg.Go(func() {
		ids := match(in.ctx)
		if ids == nil {
			return
		}
		in.mu.Lock()
		defer in.mu.Unlock()
		if !in.seeded {
			in.result.Merge(ids)
			in.seeded = true
			return
		}
		in.result.Intersect(*ids)
	})
}

// Wait returns the intersection and whether any selection restricted it.
func (in *Intersection) Wait() (*ItemList, bool) {
	in.wg.Wait()
	return &in.result, in.seeded
}
