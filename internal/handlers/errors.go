package handlers

import (
	"log/slog"
	"net/http"

	"ticket-exchange/internal/status"

	"github.com/pocketbase/pocketbase/apis"
)

// toAPIError translates service errors into HTTP responses. Internal
// details are logged, never leaked to the client.
func toAPIError(err error) error {
	msg := status.MessageOf(err)

	switch status.KindOf(err) {
	case status.KindValidation:
		return apis.NewBadRequestError(msg, nil)
	case status.KindNotFound:
		return apis.NewNotFoundError(msg, nil)
	case status.KindConflict:
		return apis.NewApiError(http.StatusConflict, msg, nil)
	default:
		slog.Error("request failed", "error", err)
		return apis.NewApiError(http.StatusInternalServerError, msg, nil)
	}
}
