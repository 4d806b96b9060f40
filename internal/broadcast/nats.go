package broadcast

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/obsim/order-book-simulator/internal/types"
)

// NATSPublisher mirrors every trade to a NATS subject for out-of-process
// consumers. Messages on one connection are delivered in publish order, and
// Publish runs inside the serialized submission path, so subject order
// matches trade generation order.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	log     zerolog.Logger
}

func NewNATSPublisher(url, subject string, log zerolog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("order-book-simulator"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: subject, log: log}, nil
}

func (p *NATSPublisher) Publish(trades []*types.Trade) {
	for _, tr := range trades {
		data, err := json.Marshal(tr)
		if err != nil {
			p.log.Error().Err(err).Str("trade_id", tr.ID.String()).Msg("marshal trade for nats")
			continue
		}
		if err := p.conn.Publish(p.subject, data); err != nil {
			// Non-fatal: the in-process feed and the trade store remain the
			// authoritative record.
			p.log.Warn().Err(err).Str("trade_id", tr.ID.String()).Msg("nats publish failed")
		}
	}
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn().Err(err).Msg("nats drain failed")
	}
}
