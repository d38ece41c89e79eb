// internal/lists/bus.go
package lists

import (
	"context"

	"github.com/redis/go-redis/v9"

	"homecare-admin/internal/common/logger"
)

// RefreshChannel is the pub/sub channel list invalidations travel over. A
// mutation in one view publishes its list name; any subscribed view
// refetches from scratch. This stands in for shared state management, and
// keeps multiple console instances coherent as well.
const RefreshChannel = "admin:lists:refresh"

// TopicAll forces every subscribed list to refetch.
const TopicAll = "all"

type Bus struct {
	rdb *redis.Client
	log logger.Logger
}

func NewBus(rdb *redis.Client, log logger.Logger) *Bus {
	return &Bus{
		rdb: rdb,
		log: log.WithFields(map[string]interface{}{"component": "refresh-bus"}),
	}
}

// Publish broadcasts an invalidation for one list topic.
func (b *Bus) Publish(ctx context.Context, topic string) error {
	if err := b.rdb.Publish(ctx, RefreshChannel, topic).Err(); err != nil {
		b.log.Warn("publish failed", map[string]interface{}{"topic": topic, "error": err.Error()})
		return err
	}
	return nil
}

// Subscribe invokes handler for every invalidation until ctx is done.
func (b *Bus) Subscribe(ctx context.Context, handler func(topic string)) {
	sub := b.rdb.Subscribe(ctx, RefreshChannel)

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler(msg.Payload)
			}
		}
	}()
}
