package cascade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matst80/slask-catalog/pkg/types"
)

func TestNormalizeTimeRange(t *testing.T) {
	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)
	n := FieldMap{
		Id:         "id",
		Title:      []string{"title"},
		Summary:    []string{"description"},
		Start:      []string{"starts_at"},
		End:        []string{"ends_at"},
		Attributes: map[string]string{types.AttrDepartment: "department", types.AttrTags: "tags"},
	}.Normalizer(types.Event)

	item, ok := n(types.Row{
		"id":          [16]byte{1},
		"title":       "Town hall",
		"description": "Quarterly update",
		"starts_at":   start,
		"ends_at":     "2026-11-02T10:30:00Z",
		"department":  "HR",
		"tags":        []any{"all-hands", " ", "q4"},
	})
	require.True(t, ok)
	assert.Equal(t, "01000000-0000-0000-0000-000000000000", item.Id)
	assert.Equal(t, start, item.Timestamp)
	require.NotNil(t, item.EndTime)
	assert.Equal(t, start.Add(90*time.Minute), *item.EndTime)
	assert.Equal(t, []string{"HR"}, item.Attributes.Get(types.AttrDepartment))
	assert.Equal(t, []string{"all-hands", "q4"}, item.Attributes.Get(types.AttrTags))
}

func TestNormalizeDateAndClock(t *testing.T) {
	n := FieldMap{
		Id:       "id",
		Title:    []string{"name"},
		Date:     "event_date",
		Clock:    "event_time",
		Duration: time.Hour,
	}.Normalizer(types.Event)

	item, ok := n(types.Row{"id": int64(7), "name": "Fika", "event_date": "2026-11-03", "event_time": "14:30"})
	require.True(t, ok)
	assert.Equal(t, "7", item.Id)
	assert.Equal(t, time.Date(2026, 11, 3, 14, 30, 0, 0, time.UTC), item.Timestamp)
	require.NotNil(t, item.EndTime)
	assert.Equal(t, time.Date(2026, 11, 3, 15, 30, 0, 0, time.UTC), *item.EndTime)
}

func TestNormalizeSingleTimestamp(t *testing.T) {
	n := FieldMap{
		Id:       "id",
		Title:    []string{"title"},
		Start:    []string{"event_at", "published_at"},
		Duration: time.Hour,
		Constant: map[string]string{types.AttrStatus: "published"},
	}.Normalizer(types.Event)

	item, ok := n(types.Row{"id": "c1", "title": "Workshop", "published_at": "2026-11-04 08:00:00"})
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 11, 4, 8, 0, 0, 0, time.UTC), item.Timestamp)
	assert.Equal(t, time.Date(2026, 11, 4, 9, 0, 0, 0, time.UTC), *item.EndTime)
	assert.Equal(t, "published", item.Attributes.First(types.AttrStatus))
}

func TestNormalizeSkipsRowsWithoutIdentity(t *testing.T) {
	n := simpleFields.Normalizer(types.Guide)
	_, ok := n(types.Row{"title": "orphan"})
	assert.False(t, ok)
	_, ok = n(types.Row{"id": "1"})
	assert.False(t, ok)
}

func TestRowStringsSplitsLegacyLists(t *testing.T) {
	assert.Equal(t, []string{"HR", "Finance"}, RowStrings(types.Row{"dept": "HR; Finance;"}, "dept"))
	assert.Nil(t, RowStrings(types.Row{}, "dept"))
}
