package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/nathanchance/op5/internal/events"
)

// EventAcceptedResponse acknowledges an injected event. Injected events
// travel the same bus as hardware events, so delivery is asynchronous.
type EventAcceptedResponse struct {
	Body struct {
		Status string `json:"status" example:"accepted" doc:"Always 'accepted'"`
		Event  string `json:"event" example:"touch-start" doc:"Name of the published event"`
	}
}

// TouchEventRequest injects a synthetic display touch transition.
type TouchEventRequest struct {
	Body struct {
		Action string `json:"action" enum:"start,stop" example:"start" doc:"Touch transition: start or stop"`
	}
}

// ButtonEventRequest injects a synthetic touch-key button press.
type ButtonEventRequest struct {
	Body struct {
		Code int    `json:"code,omitempty" example:"158" doc:"Input event key code, optional"`
		Name string `json:"name,omitempty" example:"KEY_BACK" doc:"Key name, optional"`
	}
}

// DisplayEventRequest injects a synthetic display power transition.
type DisplayEventRequest struct {
	Body struct {
		Unblanked bool `json:"unblanked" example:"true" doc:"True for screen on, false for screen off"`
	}
}

// registerEventRoutes registers the SSE stream and the synthetic event
// injection endpoints.
func (s *Server) registerEventRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time event stream for touch, button, display and backlight activity",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"touch-start":   events.TouchStartEvent{},
		"touch-stop":    events.TouchStopEvent{},
		"button-press":  events.ButtonPressEvent{},
		"display-blank": events.DisplayBlankEvent{},
		"backlight-set": events.BacklightSetEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		// Create event channel for this connection
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.TouchStartEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.TouchStopEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.ButtonPressEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.DisplayBlankEvent](s.bus, eventCh),
			events.SubscribeToChannel[events.BacklightSetEvent](s.bus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Keep connection alive and forward events
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					// Connection failed, clean up and exit
					return
				}
			}
		}
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "inject-touch-event",
		Method:      http.MethodPost,
		Path:        "/api/events/touch",
		Summary:     "Inject Touch Event",
		Description: "Publish a synthetic display touch transition on the event bus, as if it came from the touch panel",
		Tags:        []string{"events"},
		Errors:      []int{401, 422},
		Security:    withAuth(),
	}, func(_ context.Context, input *TouchEventRequest) (*EventAcceptedResponse, error) {
		now := time.Now().Format(time.RFC3339)
		resp := &EventAcceptedResponse{}
		resp.Body.Status = "accepted"
		if input.Body.Action == "start" {
			s.bus.Publish(events.TouchStartEvent{Timestamp: now})
			resp.Body.Event = "touch-start"
		} else {
			s.bus.Publish(events.TouchStopEvent{Timestamp: now})
			resp.Body.Event = "touch-stop"
		}
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "inject-button-event",
		Method:      http.MethodPost,
		Path:        "/api/events/button",
		Summary:     "Inject Button Event",
		Description: "Publish a synthetic touch-key button press on the event bus, as if it came from the capacitive keys",
		Tags:        []string{"events"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, input *ButtonEventRequest) (*EventAcceptedResponse, error) {
		s.bus.Publish(events.ButtonPressEvent{
			Code:      input.Body.Code,
			Name:      input.Body.Name,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		resp := &EventAcceptedResponse{}
		resp.Body.Status = "accepted"
		resp.Body.Event = "button-press"
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "inject-display-event",
		Method:      http.MethodPost,
		Path:        "/api/events/display",
		Summary:     "Inject Display Event",
		Description: "Publish a synthetic display power transition on the event bus, as if it came from the panel backlight",
		Tags:        []string{"events"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, input *DisplayEventRequest) (*EventAcceptedResponse, error) {
		s.bus.Publish(events.DisplayBlankEvent{
			Unblanked: input.Body.Unblanked,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		resp := &EventAcceptedResponse{}
		resp.Body.Status = "accepted"
		resp.Body.Event = "display-blank"
		return resp, nil
	})
}
