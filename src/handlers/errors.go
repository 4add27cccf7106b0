package handlers

import (
	"errors"
	"net/http"

	"github.com/username/gstfolio/src/logger"
	"github.com/username/gstfolio/src/services"
	"github.com/username/gstfolio/src/utils"
)

// writeServiceError maps service errors to HTTP responses. Unknown errors are
// logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	log := logger.FromContext(r.Context())
	switch {
	case errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrClientNotFound):
		log.Warn("Resource not found", "action", action, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrInvalidAccountTable),
		errors.Is(err, services.ErrUnknownBank),
		errors.Is(err, services.ErrNoFiles),
		errors.Is(err, services.ErrParsingFailed):
		log.Warn("Rejected request", "action", action, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNoTransactions):
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrStateSaveFailed):
		log.Error("Settings could not be saved", "action", action, "error", err)
		utils.SendJSONError(w, "Your change could not be saved and was undone. Please try again.", http.StatusServiceUnavailable)
	default:
		log.Error("Internal error", "action", action, "error", err)
		utils.SendJSONError(w, "An internal error occurred. Please try again later.", http.StatusInternalServerError)
	}
}

func sessionKeyOrFail(w http.ResponseWriter, r *http.Request) (services.SessionKey, bool) {
	key, ok := GetSessionKeyFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "account identity not found in request context", http.StatusUnauthorized)
	}
	return key, ok
}
