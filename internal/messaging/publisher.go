// Package messaging 把领域事件发布到消息总线
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"community-forum/internal/model"
	"community-forum/internal/service"
)

// Publisher 在 service.EventPublisher 的基础上增加关闭
type Publisher interface {
	service.EventPublisher
	Close() error
}

// NoopPublisher 丢弃所有事件
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, model.Event) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// Options 是构建发布者需要的连接参数
type Options struct {
	Bus          string
	NATSURL      string
	KafkaBrokers []string
	KafkaTopic   string
}

// New 根据 Bus 选择发布者：none、nats 或 kafka
func New(opts Options) (Publisher, error) {
	switch opts.Bus {
	case "", "none":
		return NoopPublisher{}, nil
	case "nats":
		return NewNATSPublisher(opts.NATSURL)
	case "kafka":
		return NewKafkaPublisher(opts.KafkaBrokers, opts.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown event bus %q", opts.Bus)
	}
}

func encode(event model.Event) ([]byte, error) {
	return json.Marshal(event)
}
