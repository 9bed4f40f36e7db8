package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.tether/internal/model"
)

type Notifier interface {
	Subscribe(userID model.UserID) chan model.Event
	Unsubscribe(userID model.UserID, ch chan model.Event)
}

// StreamEvents is the caller's live connection, a server-sent event
// stream of pairing, star, streak and reveal notifications.
func StreamEvents(hub Notifier) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := actingUser(c)

		response := c.Response()
		response.Header().Set(echo.HeaderContentType, "text/event-stream")
		response.Header().Set("Cache-Control", "no-cache")
		response.Header().Set("Connection", "keep-alive")
		response.WriteHeader(http.StatusOK)
		response.Flush()

		ch := hub.Subscribe(userID)
		defer hub.Unsubscribe(userID, ch)

		for {
			select {
			case <-c.Request().Context().Done():
				return nil
			case event, ok := <-ch:
				if !ok {
					return nil
				}
				data, err := json.Marshal(event)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(response, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
					return nil
				}
				response.Flush()
			}
		}
	}
}
