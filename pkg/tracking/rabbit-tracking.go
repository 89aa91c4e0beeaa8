package tracking

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/messaging"
)

const prefix = "global"

// RabbitTracking publishes search events in batches from a background queue so
// request handling never waits on the broker.
type RabbitTracking struct {
	connection *amqp.Connection
	channel    messaging.Publisher
	queue      *common.QueueHandler[SearchEvent]
}

func NewRabbitTracking(url string) (*RabbitTracking, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := messaging.DefineTopic(ch, prefix, messaging.SearchTracked); err != nil {
		conn.Close()
		return nil, err
	}
	rt := newRabbitTracking(ch)
	rt.connection = conn
	return rt, nil
}

func newRabbitTracking(ch messaging.Publisher) *RabbitTracking {
	rt := &RabbitTracking{channel: ch}
	rt.queue = common.NewQueueHandler(rt.publish, 50, time.Second)
	return rt
}

func (rt *RabbitTracking) publish(events []SearchEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, ev := range events {
		if err := messaging.Send(ctx, rt.channel, prefix, messaging.SearchTracked, ev); err != nil {
			log.Warnf("error sending search event: %v", err)
		}
	}
}

func (rt *RabbitTracking) TrackSearch(event SearchEvent) {
	rt.queue.Add(event)
}

// Close flushes queued events before closing the connection.
func (rt *RabbitTracking) Close() error {
	rt.queue.Close()
	if rt.connection != nil {
		return rt.connection.Close()
	}
	return nil
}
