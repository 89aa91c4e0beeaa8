package types

import (
	"slices"
	"strings"
	"time"
)

const (
	AttrCategory   = "category"
	AttrDelivery   = "delivery"
	AttrDuration   = "duration"
	AttrLevel      = "level"
	AttrLocation   = "location"
	AttrAudience   = "audience"
	AttrStatus     = "status"
	AttrTags       = "tags"
	AttrDepartment = "department"
	AttrDomain     = "domain"
	AttrSubdomain  = "subdomain"
	AttrDownloads  = "downloads"
	AttrPick       = "editorsPick"

	// FieldTimestamp addresses the item's start or last update time.
	FieldTimestamp = "timestamp"
)

// Attributes is the type specific bag used for faceting. Every attribute may hold several values.
type Attributes map[string][]string

func (a Attributes) Get(key string) []string {
	if a == nil {
		return nil
	}
	return a[key]
}

func (a Attributes) First(key string) string {
	if v := a.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (a Attributes) Has(key, value string) bool {
	return slices.Contains(a.Get(key), value)
}

func (a Attributes) Add(key string, values ...string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(a[key], v) {
			continue
		}
		a[key] = append(a[key], v)
	}
}

type CatalogItem struct {
	Id         string      `json:"id"`
	Type       ContentType `json:"type"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	EndTime    *time.Time  `json:"endTime,omitempty"`
	Attributes Attributes  `json:"attributes,omitempty"`
}

// Field resolves a logical field name to its values, falling back to the attribute bag.
func (i *CatalogItem) Field(name string) []string {
	switch name {
	case "id":
		return []string{i.Id}
	case "title":
		return []string{i.Title}
	case "summary":
		return []string{i.Summary}
	case FieldTimestamp:
		if i.Timestamp.IsZero() {
			return nil
		}
		return []string{i.Timestamp.UTC().Format(time.RFC3339)}
	}
	return i.Attributes.Get(name)
}
