package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nathanchance/op5/internal/systemd"
)

// SystemStatusResponse reports the daemon's systemd unit state.
type SystemStatusResponse struct {
	Body struct {
		Unit        string `json:"unit" example:"touchkeyd.service" doc:"Systemd unit name"`
		ActiveState string `json:"active_state" example:"active" doc:"Systemd ActiveState property"`
	}
}

// registerSystemRoutes registers systemd introspection endpoints. Skipped
// entirely when no systemd connection is available.
func (s *Server) registerSystemRoutes() {
	if s.options.SystemdManager == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-system-status",
		Method:      http.MethodGet,
		Path:        "/api/system/status",
		Summary:     "System Status",
		Description: "Get the daemon's systemd unit state",
		Tags:        []string{"system"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*SystemStatusResponse, error) {
		state, err := s.options.SystemdManager.Status(ctx, systemd.Unit)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to get unit status", err)
		}
		resp := &SystemStatusResponse{}
		resp.Body.Unit = systemd.Unit
		resp.Body.ActiveState = state
		return resp, nil
	})
}
