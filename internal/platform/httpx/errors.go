package httpx

import (
	"log/slog"
	"net/http"

	"github.com/devcamper/devcamper-api/internal/shared"
)

const serverErrorMessage = "Server Error"

// StatusOf maps the outermost error kind to its HTTP status code.
func StatusOf(err error) int {
	switch shared.KindOf(err) {
	case shared.ErrValidation, shared.ErrInvalidToken:
		return http.StatusBadRequest
	case shared.ErrUnauthorized:
		return http.StatusUnauthorized
	case shared.ErrForbidden:
		return http.StatusForbidden
	case shared.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondError translates err into {success:false, error}. Errors without a
// known kind are reported with a generic message.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	msg := serverErrorMessage
	if !isUnclassified(err) {
		msg = shared.Message(err)
	}
	JSON(w, status, ErrorBody{Success: false, Error: msg})
}

func isUnclassified(err error) bool {
	return shared.KindOf(err) == nil
}

// Fail logs server-side failures of op and writes the error response.
func Fail(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if StatusOf(err) >= http.StatusInternalServerError {
		logger.Error(op+" failed", slog.Any("error", err))
	}
	RespondError(w, err)
}
