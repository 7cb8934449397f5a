package client

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"arbscan/internal/domain/entity"
	"arbscan/pkg/contextx"
	"arbscan/pkg/logx"
	"arbscan/pkg/rest"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type updateSink interface {
	ApplyUpdates(ctx context.Context, updates []entity.PriceUpdate)
}

// Feed is one live-update websocket connection.
type Feed struct {
	conn *websocket.Conn
}

func DialFeed(ctx context.Context, wsURL string) (*Feed, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket.Dial: %w", err)
	}

	return &Feed{conn: conn}, nil
}

// SetUpdatePeriod asks the server to restart this connection's broadcast
// timer with a new period.
func (f *Feed) SetUpdatePeriod(seconds int) error {
	payload, err := json.Marshal(rest.WSMessage{
		Type:   rest.WSTypeSetUpdatePeriod,
		Period: seconds,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	return f.conn.WriteMessage(websocket.TextMessage, payload)
}

// Listen forwards every price_updates batch to the sink, in arrival order,
// until the connection drops or the context is cancelled.
func (f *Feed) Listen(ctx context.Context, sink updateSink) error {
	go func() {
		<-ctx.Done()
		f.conn.Close()
	}()

	for {
		_, message, err := f.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("conn.ReadMessage: %w", err)
		}

		var msg rest.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger(ctx).Warn("malformed feed message", logx.Error(err))
			continue
		}

		if msg.Type != rest.WSTypePriceUpdates {
			continue
		}

		updates := make([]entity.PriceUpdate, 0, len(msg.Data))
		for _, u := range msg.Data {
			updates = append(updates, entity.PriceUpdate{
				Pair:      u.Pair,
				Exchange:  u.Exchange,
				Price:     u.Price,
				Timestamp: time.UnixMilli(u.Timestamp),
			})
		}

		sink.ApplyUpdates(ctx, updates)
	}
}

func (f *Feed) Close() error {
	return f.conn.Close()
}
