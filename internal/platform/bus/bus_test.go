package bus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cadence/internal/platform/bus"
)

type payload struct {
	Lines int
}

func TestPublishReachesSubscribersInOrder(t *testing.T) {
	t.Parallel()
	topic := bus.NewTopic[payload]()
	var got []string
	topic.Subscribe(func(p payload) { got = append(got, "a") })
	topic.Subscribe(func(p payload) { got = append(got, "b") })

	topic.Publish(payload{Lines: 2})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()
	topic := bus.NewTopic[payload]()
	calls := 0
	unsubscribe := topic.Subscribe(func(payload) { calls++ })
	topic.Publish(payload{})
	unsubscribe()
	unsubscribe()
	topic.Publish(payload{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, topic.Len())
}

func TestHandlerMayUnsubscribeDuringPublish(t *testing.T) {
	t.Parallel()
	topic := bus.NewTopic[payload]()
	var unsubscribe func()
	seen := 0
	unsubscribe = topic.Subscribe(func(payload) {
		seen++
		unsubscribe()
	})
	topic.Publish(payload{})
	topic.Publish(payload{})
	assert.Equal(t, 1, seen)
}
