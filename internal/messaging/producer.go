package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/events"

	"github.com/nats-io/nats.go"
)

// Producer publishes submission events to NATS. Typed events go to
// <prefix>.<event type>, anything else to the bare prefix.
type Producer struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

func NewProducer(url string, subjectPrefix string, logger *slog.Logger) (*Producer, error) {
	nc, err := nats.Connect(url,
		nats.Name("site-submissions"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject_prefix", subjectPrefix)

	return &Producer{
		conn:   nc,
		prefix: subjectPrefix,
		logger: logger,
	}, nil
}

func (p *Producer) Subject(value interface{}) string {
	if t := events.TypeOf(value); t != "" {
		return p.prefix + "." + t
	}
	return p.prefix
}

func (p *Producer) SendMessage(ctx context.Context, key string, value interface{}) error {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal message", "error", err)
		return err
	}

	msg := nats.NewMsg(p.Subject(value))
	msg.Data = valueBytes
	msg.Header.Set(nats.MsgIdHdr, key)

	if err := p.conn.PublishMsg(msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to send message to NATS", "error", err)
		return err
	}

	p.logger.InfoContext(ctx, "message sent to NATS", "subject", msg.Subject, "key", key)
	return nil
}

func (p *Producer) Close() error {
	return p.conn.Drain()
}
