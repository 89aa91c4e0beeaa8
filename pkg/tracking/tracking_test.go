package tracking

import (
	"context"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/matst80/slask-catalog/pkg/types"
)

type recordingChannel struct {
	mu   sync.Mutex
	msgs []amqp.Publishing
	keys []string
}

func (r *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	r.keys = append(r.keys, exchange+"/"+key)
	return nil
}

func TestRabbitTrackingPublishesOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	ch := &recordingChannel{}
	rt := newRabbitTracking(ch)
	rt.TrackSearch(SearchEvent{Session: "s1", Type: types.Course, Query: "budget", Hits: 1, Stage: "courses"})
	rt.TrackSearch(SearchEvent{Session: "s1", Type: types.Event, Hits: 0, Stage: "static", Fallback: true})
	require.NoError(t, rt.Close())

	require.Len(t, ch.msgs, 2)
	assert.Equal(t, "global_catalog_search/global_catalog_search", ch.keys[0])
	assert.Equal(t, "application/json", ch.msgs[0].ContentType)

	var ev SearchEvent
	require.NoError(t, sonic.Unmarshal(ch.msgs[0].Body, &ev))
	assert.Equal(t, "budget", ev.Query)
	assert.Equal(t, types.Course, ev.Type)
}
