package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const websocketWriteTimeout = 5 * time.Second

// createWebsocketHandler streams the events of one table as JSON messages
// until the client goes away or the table is deleted.
func createWebsocketHandler(tables *Tables) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := tables.Get(chi.URLParam(r, "name"))
		if err != nil {
			respondErr(w, err)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Err(err).Msg("Websocket upgrade failed")
			return
		}
		defer c.Close(websocket.StatusInternalError, "the sky is falling")

		unsub, ch := s.Subscribe()
		defer unsub()

		// Nothing is read from clients; CloseRead notices when they leave.
		ctx := c.CloseRead(r.Context())

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-ch:
				if !ok {
					c.Close(websocket.StatusGoingAway, "table closed")
					return
				}

				if err := writeTimeout(ctx, websocketWriteTimeout, c, ev); err != nil {
					if !errors.Is(err, context.Canceled) {
						log.Err(err).Str("table", s.Name()).Msg("Websocket write failed")
					}
					return
				}
			}
		}
	}
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return wsjson.Write(ctx, c, msg)
}
