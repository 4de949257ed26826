package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"

	"github.com/rpreen/xcsf/telemetry"
	"github.com/rpreen/xcsf/xlog"
)

var upgrader = websocket.Upgrader{}

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Not read by handleTelemetry, which drops a client whose last pong is
	// older than two ping periods.
	pongWait = 60 * time.Second
	// Send pings to the peer with this period.
	pingResolution = 500 * time.Millisecond
	// Time to wait before force-closing the connection.
	closeGracePeriod = 10 * time.Second
)

// handleTelemetry upgrades to a websocket and streams population snapshots
// to a single client, one connection per upgrade. Liveness is tracked with
// a ping/pong heartbeat: the server pings on pingResolution, and drops the
// connection if no pong has arrived within two ping periods.
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		xlog.Warn("telemetry: upgrade failed: %v", err)
		return
	}
	defer closeWebsocket(ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots := telemetry.StreamSnapshots(ctx, s.x.Engine(), 200*time.Millisecond)
	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()

	pong := make(chan struct{})
	defer close(pong)
	ws.SetPongHandler(func(string) error {
		pong <- struct{}{}
		return nil
	})

	// A blocking read is required so the gorilla/websocket library's pong
	// handler actually runs; any read error ends the stream.
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-pinger:
			if time.Since(lastPong) > pingResolution*2 {
				xlog.Warn("telemetry: client pong timeout, closing")
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-pong:
			lastPong = time.Now()
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			view := telemetry.ToPopulationView(snap)
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteJSON(view); err != nil {
				if isUnexpectedClose(err) {
					xlog.Warn("telemetry: write failed: %v", err)
				}
				return
			}
		}
	}
}

func isUnexpectedClose(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	_ = ws.Close()
}
