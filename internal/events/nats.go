package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/segmentio/encoding/json"
)

// DefaultSubjectPrefix is prepended to the event type.
const DefaultSubjectPrefix = "gopherpay.events."

type conn interface {
	Publish(subj string, data []byte) error
}

// NatsPublisher sends each event as JSON to <prefix><type>.
type NatsPublisher struct {
	nc     conn
	closer *nats.Conn
	prefix string
}

func NewNatsPublisher(url string, opts ...nats.Option) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NatsPublisher{nc: nc, closer: nc, prefix: DefaultSubjectPrefix}, nil
}

func (p *NatsPublisher) Publish(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.prefix+ev.Type, payload)
}

// Close flushes pending messages before closing the connection.
func (p *NatsPublisher) Close() error {
	if p.closer != nil {
		_ = p.closer.Drain()
		p.closer.Close()
	}
	return nil
}
