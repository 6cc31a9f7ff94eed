package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nathanchance/op5/internal/updater"
)

// UpdateCheckResponse reports whether a newer release exists.
type UpdateCheckResponse struct {
	Body struct {
		CurrentVersion  string    `json:"current_version" example:"1.3.1" doc:"Running version"`
		LatestVersion   string    `json:"latest_version" example:"1.4.0" doc:"Latest released version"`
		ReleaseNotes    string    `json:"release_notes,omitempty" doc:"Release notes for the latest version"`
		ReleaseURL      string    `json:"release_url,omitempty" doc:"Release page URL"`
		PublishedAt     time.Time `json:"published_at" doc:"When the release was published"`
		AssetSize       int       `json:"asset_size,omitempty" example:"8388608" doc:"Release asset size in bytes"`
		UpdateAvailable bool      `json:"update_available" example:"true" doc:"Whether an update is available"`
	}
}

// UpdateStatusResponse reports the updater state machine.
type UpdateStatusResponse struct {
	Body struct {
		State           string     `json:"state" example:"idle" doc:"Update state"`
		CurrentVersion  string     `json:"current_version" example:"1.3.1" doc:"Running version"`
		TargetVersion   string     `json:"target_version,omitempty" example:"1.4.0" doc:"Version being applied"`
		Error           string     `json:"error,omitempty" doc:"Last error message"`
		LastChecked     *time.Time `json:"last_checked,omitempty" doc:"Time of the last update check"`
		BackupAvailable bool       `json:"backup_available" example:"true" doc:"Whether a rollback backup exists"`
		BackupVersion   string     `json:"backup_version,omitempty" example:"1.3.0" doc:"Version of the backup binary"`
	}
}

// UpdateMessageResponse is a simple status message.
type UpdateMessageResponse struct {
	Body struct {
		Message string `json:"message" example:"Update applied, restarting..." doc:"Status message"`
	}
}

func updateMessage(msg string) *UpdateMessageResponse {
	resp := &UpdateMessageResponse{}
	resp.Body.Message = msg
	return resp
}

// registerUpdateRoutes registers all update-related endpoints.
func (s *Server) registerUpdateRoutes() {
	if s.options.UpdateService == nil {
		return
	}

	svc := s.options.UpdateService

	// Check if service is disabled
	if !svc.IsEnabled() {
		s.registerDisabledUpdateRoutes(svc.DisabledReason())
		return
	}

	// Check for updates
	huma.Register(s.api, huma.Operation{
		OperationID: "check-updates",
		Method:      http.MethodGet,
		Path:        "/api/update/check",
		Summary:     "Check for Updates",
		Description: "Check if a newer version is available without downloading",
		Tags:        []string{"update"},
		Errors:      []int{401, 409, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*UpdateCheckResponse, error) {
		info, err := svc.CheckForUpdate(ctx)
		if err != nil {
			return nil, mapUpdateError(err)
		}
		resp := &UpdateCheckResponse{}
		resp.Body.CurrentVersion = info.CurrentVersion
		resp.Body.LatestVersion = info.LatestVersion
		resp.Body.ReleaseNotes = info.ReleaseNotes
		resp.Body.ReleaseURL = info.ReleaseURL
		resp.Body.PublishedAt = info.PublishedAt
		resp.Body.AssetSize = info.AssetSize
		resp.Body.UpdateAvailable = info.UpdateAvailable
		return resp, nil
	})

	// Get update status
	huma.Register(s.api, huma.Operation{
		OperationID: "get-update-status",
		Method:      http.MethodGet,
		Path:        "/api/update/status",
		Summary:     "Get Update Status",
		Description: "Get the current update state",
		Tags:        []string{"update"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*UpdateStatusResponse, error) {
		status := svc.GetStatus(ctx)
		resp := &UpdateStatusResponse{}
		resp.Body.State = string(status.State)
		resp.Body.CurrentVersion = status.CurrentVersion
		resp.Body.TargetVersion = status.TargetVersion
		resp.Body.Error = status.Error
		resp.Body.LastChecked = status.LastChecked
		resp.Body.BackupAvailable = status.BackupAvailable
		resp.Body.BackupVersion = status.BackupVersion
		return resp, nil
	})

	// Apply update
	huma.Register(s.api, huma.Operation{
		OperationID: "apply-update",
		Method:      http.MethodPost,
		Path:        "/api/update/apply",
		Summary:     "Apply Update",
		Description: "Download and apply the available update. Will trigger a restart.",
		Tags:        []string{"update"},
		Errors:      []int{400, 401, 409, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*UpdateMessageResponse, error) {
		if err := svc.ApplyUpdate(ctx); err != nil {
			return nil, mapUpdateError(err)
		}
		return updateMessage("Update applied, restarting..."), nil
	})

	// Apply latest dev build
	huma.Register(s.api, huma.Operation{
		OperationID: "apply-dev-build",
		Method:      http.MethodPost,
		Path:        "/api/update/dev",
		Summary:     "Apply Dev Build",
		Description: "Download and apply the latest build from the rolling dev release, skipping version comparison. Will trigger a restart.",
		Tags:        []string{"update"},
		Errors:      []int{401, 404, 409, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*UpdateMessageResponse, error) {
		if err := svc.ApplyDevBuild(ctx); err != nil {
			return nil, mapUpdateError(err)
		}
		return updateMessage("Dev build applied, restarting..."), nil
	})

	// Rollback to previous version
	huma.Register(s.api, huma.Operation{
		OperationID: "rollback-update",
		Method:      http.MethodPost,
		Path:        "/api/update/rollback",
		Summary:     "Rollback Update",
		Description: "Revert to the previously backed up version. Will trigger a restart.",
		Tags:        []string{"update"},
		Errors:      []int{400, 401, 404, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*UpdateMessageResponse, error) {
		if err := svc.Rollback(ctx); err != nil {
			return nil, mapUpdateError(err)
		}
		return updateMessage("Rollback complete, restarting..."), nil
	})

	// Restart service
	huma.Register(s.api, huma.Operation{
		OperationID: "restart-service",
		Method:      http.MethodPost,
		Path:        "/api/update/restart",
		Summary:     "Restart Service",
		Description: "Trigger a service restart.",
		Tags:        []string{"update"},
		Errors:      []int{401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*UpdateMessageResponse, error) {
		if err := svc.Restart(ctx); err != nil {
			return nil, huma.Error500InternalServerError(err.Error())
		}
		return updateMessage("Restarting..."), nil
	})
}

// registerDisabledUpdateRoutes registers endpoints that return 503 when update is disabled.
func (s *Server) registerDisabledUpdateRoutes(reason string) {
	disabledHandler := func(_ context.Context, _ *struct{}) (*struct{}, error) {
		return nil, huma.Error503ServiceUnavailable("Update service disabled: " + reason)
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "check-updates",
		Method:      http.MethodGet,
		Path:        "/api/update/check",
		Summary:     "Check for Updates",
		Description: "Check if a newer version is available (disabled)",
		Tags:        []string{"update"},
		Errors:      []int{503},
		Security:    withAuth(),
	}, disabledHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-update-status",
		Method:      http.MethodGet,
		Path:        "/api/update/status",
		Summary:     "Get Update Status",
		Description: "Get the current update state (disabled)",
		Tags:        []string{"update"},
		Errors:      []int{503},
		Security:    withAuth(),
	}, disabledHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "apply-update",
		Method:      http.MethodPost,
		Path:        "/api/update/apply",
		Summary:     "Apply Update",
		Description: "Apply update (disabled)",
		Tags:        []string{"update"},
		Errors:      []int{503},
		Security:    withAuth(),
	}, disabledHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "rollback-update",
		Method:      http.MethodPost,
		Path:        "/api/update/rollback",
		Summary:     "Rollback Update",
		Description: "Rollback update (disabled)",
		Tags:        []string{"update"},
		Errors:      []int{503},
		Security:    withAuth(),
	}, disabledHandler)
}

// mapUpdateError converts updater errors to Huma HTTP errors.
func mapUpdateError(err error) error {
	var updateErr *updater.Error
	if errors.As(err, &updateErr) {
		switch updateErr.Code {
		case updater.ErrCodeInvalidState:
			return huma.Error409Conflict(updateErr.Message)
		case updater.ErrCodeNoUpdate:
			return huma.Error400BadRequest(updateErr.Message)
		case updater.ErrCodeNotFound:
			return huma.Error404NotFound(updateErr.Message)
		case updater.ErrCodeNoBackup:
			return huma.Error404NotFound(updateErr.Message)
		case updater.ErrCodeDisabled:
			return huma.Error503ServiceUnavailable(updateErr.Message)
		default:
			return huma.Error500InternalServerError(updateErr.Message)
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
