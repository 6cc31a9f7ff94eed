package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nathanchance/op5/internal/logging"
)

// LogsRequest selects how many recent entries to return.
type LogsRequest struct {
	Limit int `query:"limit" default:"100" example:"100" doc:"Maximum number of entries to return, newest last. 0 returns everything buffered."`
}

// LogsResponse carries recent log entries from the in-memory ring buffer.
type LogsResponse struct {
	Body struct {
		Entries []logging.LogEntry `json:"entries" doc:"Buffered log entries in chronological order"`
		Count   int                `json:"count" example:"42" doc:"Number of entries returned"`
	}
}

// LogLevelRequest changes one module's log level at runtime.
type LogLevelRequest struct {
	Body struct {
		Module string `json:"module" example:"touchkey" doc:"Module name as used by the loggers"`
		Level  string `json:"level" example:"debug" doc:"New minimum level: debug, info, warn or error"`
	}
}

// LogLevelResponse confirms a runtime log level change.
type LogLevelResponse struct {
	Body struct {
		Module string `json:"module" example:"touchkey" doc:"Module name"`
		Level  string `json:"level" example:"debug" doc:"Applied minimum level"`
	}
}

// registerLogRoutes registers log inspection endpoints backed by the
// logging ring buffer.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Recent Logs",
		Description: "Get recent log entries from the in-memory ring buffer",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, input *LogsRequest) (*LogsResponse, error) {
		var entries []logging.LogEntry
		if buffer := logging.GetBuffer(); buffer != nil {
			if input.Limit > 0 {
				entries = buffer.Last(input.Limit)
			} else {
				entries = buffer.All()
			}
		}
		resp := &LogsResponse{}
		resp.Body.Entries = entries
		resp.Body.Count = len(entries)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-log-level",
		Method:      http.MethodPut,
		Path:        "/api/logs/level",
		Summary:     "Set Log Level",
		Description: "Change one module's minimum log level at runtime",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, func(_ context.Context, input *LogLevelRequest) (*LogLevelResponse, error) {
		if !logging.SetModuleLevel(input.Body.Module, input.Body.Level) {
			return nil, huma.Error400BadRequest("unknown log level: " + input.Body.Level)
		}
		resp := &LogLevelResponse{}
		resp.Body.Module = input.Body.Module
		resp.Body.Level = input.Body.Level
		return resp, nil
	})
}
