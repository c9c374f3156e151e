package messaging

import (
	"context"

	"community-forum/internal/model"
	"community-forum/internal/util"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSPublisher 以事件类型作为主题发布，例如 post.created
type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("community-forum"))
	if err != nil {
		return nil, err
	}
	util.Logger.Info("NATS 连接成功", zap.String("url", url))
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, event model.Event) error {
	data, err := encode(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(event.Type, data)
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
