// Package static holds the built in fallback datasets and an in memory table source.
package static

import (
	"embed"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/matst80/slask-catalog/pkg/types"
)

//go:embed data/*.json
var data embed.FS

// Provider serves a fixed dataset per content type. It never fails, a type
// without data yields an empty slice.
type Provider struct {
	mu    sync.RWMutex
	items map[types.ContentType][]types.CatalogItem
}

func NewProvider() *Provider {
	return &Provider{items: map[types.ContentType][]types.CatalogItem{}}
}

// UpcomingLead is how far ahead of load time the first fallback event starts.
const UpcomingLead = 7 * 24 * time.Hour

// LoadEmbedded reads the datasets compiled into the binary. Event dates in the
// files only fix spacing and time of day, they are moved forward relative to now.
func LoadEmbedded(now time.Time) (*Provider, error) {
	p := NewProvider()
	for _, ct := range types.ContentTypes {
		raw, err := data.ReadFile(fmt.Sprintf("data/%s.json", ct))
		if err != nil {
			continue
		}
		var items []types.CatalogItem
		if err := sonic.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode fallback %s: %w", ct, err)
		}
		if ct == types.Event {
			Rebase(items, now.Add(UpcomingLead))
		}
		p.Set(ct, items)
		log.Debugf("loaded %d fallback items for %s", len(items), ct)
	}
	return p, nil
}

func (p *Provider) Set(ct types.ContentType, items []types.CatalogItem) {
	for i := range items {
		items[i].Type = ct
	}
	p.mu.Lock()
	p.items[ct] = items
	p.mu.Unlock()
}

// Fallback returns a copy so callers may reorder freely.
func (p *Provider) Fallback(ct types.ContentType) []types.CatalogItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.items[ct])
}

// Rebase shifts items by whole days so the earliest one starts on the day of
// from. Time of day and the spacing between items are kept.
func Rebase(items []types.CatalogItem, from time.Time) {
	if len(items) == 0 {
		return
	}
	earliest := items[0].Timestamp
	for _, item := range items[1:] {
		if item.Timestamp.Before(earliest) {
			earliest = item.Timestamp
		}
	}
	day := func(t time.Time) time.Time {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	days := int(day(from).Sub(day(earliest)).Hours() / 24)
	for i := range items {
		items[i].Timestamp = items[i].Timestamp.AddDate(0, 0, days)
		if items[i].EndTime != nil {
			end := items[i].EndTime.AddDate(0, 0, days)
			items[i].EndTime = &end
		}
	}
}
