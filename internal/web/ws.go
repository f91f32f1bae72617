package web

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 30 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	// The stream is read-only navigation data served on a local network.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// navStreamHandler pushes every published navigation snapshot to the client
// as a JSON text message. Slow clients skip snapshots.
func navStreamHandler(nav NavSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web ws upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		id, ch := nav.Subscribe(8)
		defer nav.Unsubscribe(id)

		// Reader: handles pongs and notices the client going away.
		closed := make(chan struct{})
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						log.Printf("web ws read: %v", err)
					}
					return
				}
			}
		}()

		ping := time.NewTicker(wsPingPeriod)
		defer ping.Stop()
		for {
			select {
			case <-closed:
				return
			case <-r.Context().Done():
				return
			case snap, ok := <-ch:
				if !ok {
					msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
					_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(snap); err != nil {
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	})
}
