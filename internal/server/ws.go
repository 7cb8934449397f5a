package server

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/xid"

	"arbscan/internal/broadcast"
	"arbscan/internal/domain/entity"
	"arbscan/internal/metrics"
	"arbscan/pkg/contextx"
	"arbscan/pkg/logx"
	"arbscan/pkg/lox"
	"arbscan/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// StreamServer upgrades /ws requests and hands every connection its own
// broadcast streamer.
type StreamServer struct {
	assets    []entity.Asset
	exchanges []string
	period    time.Duration
	upgrader  websocket.Upgrader
}

func NewStreamServer(assets []entity.Asset, exchanges []string, period time.Duration) StreamServer {
	return StreamServer{
		assets:    assets,
		exchanges: exchanges,
		period:    period,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (s StreamServer) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger(ctx).Error("upgrader.Upgrade", logx.Error(err))
		return
	}

	log := logger(ctx).With(slog.String("connection-id", xid.New().String()))
	ctx = contextx.WithLogger(ctx, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer conn.Close()

	metrics.StreamConnections.Inc()
	defer metrics.StreamConnections.Dec()

	streamer := broadcast.NewStreamer(
		s.assets,
		s.exchanges,
		&wsSink{conn: conn},
		rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // synthetic data
	).WithPeriod(s.period)

	go s.readLoop(ctx, cancel, conn, streamer)

	log.Info("stream connected")

	// A dead connection surfaces as a sink error; both paths end with the
	// same teardown, no timer survives the connection.
	if err := streamer.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("streamer stopped", logx.Error(err))
	}

	log.Info("stream disconnected")
}

// readLoop consumes client control messages until the connection closes.
func (s StreamServer) readLoop(
	ctx context.Context,
	cancel context.CancelFunc,
	conn *websocket.Conn,
	streamer *broadcast.Streamer,
) {
	defer cancel()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg rest.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger(ctx).Warn("malformed control message", logx.Error(err))
			continue
		}

		if msg.Type != rest.WSTypeSetUpdatePeriod {
			continue
		}

		if err := streamer.SetPeriod(msg.Period); err != nil {
			logger(ctx).Warn("streamer.SetPeriod", logx.Error(err))
			continue
		}

		logger(ctx).Info("update period changed", slog.Int("seconds", msg.Period))
	}
}

type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) SendPriceUpdates(_ context.Context, updates []entity.PriceUpdate) error {
	payload, err := json.Marshal(rest.WSMessage{
		Type: rest.WSTypePriceUpdates,
		Data: lox.Map(updates, newRESTPriceUpdate),
	})
	if err != nil {
		return err
	}

	return s.conn.WriteMessage(websocket.TextMessage, payload)
}
