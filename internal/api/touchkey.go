package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nathanchance/op5/internal/metrics"
	"github.com/nathanchance/op5/internal/touchkey"
	"github.com/nathanchance/op5/internal/version"
)

// ModeResponse reports the active backlight mode.
type ModeResponse struct {
	Body ModeData
}

// ModeData is the mode payload.
type ModeData struct {
	Mode int    `json:"mode" example:"1" doc:"Backlight mode (0=touchkey and display, 1=touchkey only, 2=off)"`
	Name string `json:"name" example:"touchkey_only" doc:"Human readable mode name"`
}

// ModeRequest sets the backlight mode.
type ModeRequest struct {
	Body struct {
		Mode int `json:"mode" example:"1" doc:"Backlight mode (0=touchkey and display, 1=touchkey only, 2=off)"`
	}
}

// TimeoutResponse reports the auto-off timeout.
type TimeoutResponse struct {
	Body TimeoutData
}

// TimeoutData is the timeout payload.
type TimeoutData struct {
	TimeoutMs int `json:"timeout_ms" example:"8000" doc:"Auto-off timeout in milliseconds, 0 disables the timer"`
}

// TimeoutRequest sets the auto-off timeout.
type TimeoutRequest struct {
	Body struct {
		TimeoutMs int `json:"timeout_ms" example:"8000" doc:"Auto-off timeout in milliseconds. 0 disables, 1-30 are legacy seconds, otherwise 1000-30000."`
	}
}

// BacklightRequest is a hardware-originated backlight write asking to
// pass through.
type BacklightRequest struct {
	Body struct {
		On bool `json:"on" example:"true" doc:"Requested backlight state"`
	}
}

// BacklightRequestResponse reports the arbitration result.
type BacklightRequestResponse struct {
	Body struct {
		Allowed bool `json:"allowed" example:"true" doc:"Whether the daemon allows the hardware to drive the backlight"`
		On      bool `json:"on" example:"true" doc:"The state the hardware may apply"`
	}
}

// VersionResponse reports build information.
type VersionResponse struct {
	Body VersionData
}

// VersionData is the version payload.
type VersionData struct {
	Version   string `json:"version" example:"1.3.1" doc:"Application version"`
	GitCommit string `json:"git_commit,omitempty" example:"abc123" doc:"Git commit hash"`
	BuildDate string `json:"build_date,omitempty" example:"2026-01-15T10:00:00Z" doc:"Build date"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go version used to build"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

// registerTouchkeyRoutes registers mode, timeout, version and backlight
// arbitration endpoints.
func (s *Server) registerTouchkeyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-mode",
		Method:      http.MethodGet,
		Path:        "/api/mode",
		Summary:     "Get Mode",
		Description: "Get the active backlight mode",
		Tags:        []string{"touchkey"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*ModeResponse, error) {
		return s.modeResponse(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-mode",
		Method:      http.MethodPut,
		Path:        "/api/mode",
		Summary:     "Set Mode",
		Description: "Set the backlight mode. Any accepted write turns the backlight off and cancels a pending auto-off timer.",
		Tags:        []string{"touchkey"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(_ context.Context, input *ModeRequest) (*ModeResponse, error) {
		if err := s.controller.SetMode(touchkey.Mode(input.Body.Mode)); err != nil {
			return nil, mapControllerError(err)
		}
		metrics.SetMode(input.Body.Mode)
		return s.modeResponse(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-timeout",
		Method:      http.MethodGet,
		Path:        "/api/timeout",
		Summary:     "Get Timeout",
		Description: "Get the auto-off timeout in milliseconds",
		Tags:        []string{"touchkey"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(_ context.Context, _ *struct{}) (*TimeoutResponse, error) {
		return s.timeoutResponse(), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-timeout",
		Method:      http.MethodPut,
		Path:        "/api/timeout",
		Summary:     "Set Timeout",
		Description: "Set the auto-off timeout. Values 1-30 are treated as legacy seconds and converted to milliseconds. Any accepted write turns the backlight off and cancels a pending auto-off timer.",
		Tags:        []string{"touchkey"},
		Errors:      []int{400, 401},
		Security:    withAuth(),
	}, func(_ context.Context, input *TimeoutRequest) (*TimeoutResponse, error) {
		if err := s.controller.SetTimeout(input.Body.TimeoutMs); err != nil {
			return nil, mapControllerError(err)
		}
		resp := s.timeoutResponse()
		metrics.SetTimeoutMs(resp.Body.TimeoutMs)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "request-backlight",
		Method:      http.MethodPost,
		Path:        "/api/backlight/request",
		Summary:     "Request Backlight Passthrough",
		Description: "Ask whether a hardware-originated backlight write may pass through. Allowed only in touchkey-only mode with the timeout disabled.",
		Tags:        []string{"touchkey"},
		Errors:      []int{401, 403},
		Security:    withAuth(),
	}, func(_ context.Context, input *BacklightRequest) (*BacklightRequestResponse, error) {
		on, err := s.controller.HardwareRequest(input.Body.On)
		if err != nil {
			return nil, mapControllerError(err)
		}
		resp := &BacklightRequestResponse{}
		resp.Body.Allowed = true
		resp.Body.On = on
		return resp, nil
	})

	// Version endpoint - no auth required
	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{}, // Empty security = no auth required
	}, func(_ context.Context, _ *struct{}) (*VersionResponse, error) {
		info := version.Get()
		return &VersionResponse{
			Body: VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				GoVersion: info.GoVersion,
				Platform:  info.Platform,
			},
		}, nil
	})
}

func (s *Server) modeResponse() *ModeResponse {
	mode := s.controller.Mode()
	return &ModeResponse{
		Body: ModeData{
			Mode: int(mode),
			Name: mode.String(),
		},
	}
}

func (s *Server) timeoutResponse() *TimeoutResponse {
	return &TimeoutResponse{
		Body: TimeoutData{
			TimeoutMs: int(s.controller.Timeout() / time.Millisecond),
		},
	}
}

// mapControllerError converts controller errors to Huma HTTP errors.
func mapControllerError(err error) error {
	var validationErr *touchkey.ValidationError
	if errors.As(err, &validationErr) {
		return huma.Error400BadRequest(validationErr.Error())
	}
	if errors.Is(err, touchkey.ErrPermissionDenied) {
		return huma.Error403Forbidden(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}
