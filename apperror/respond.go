// Response helpers shared by every handler package. Keeping them here avoids
// the import cycle that would arise from handlers importing each other for a
// writeJSON helper.
package apperror

import (
	"encoding/json"
	"net/http"
)

// developmentMode controls whether error responses include the underlying
// error detail. Set once at startup from the loaded configuration, before
// the server starts accepting requests.
var developmentMode bool

// SetDevelopmentMode enables or disables error detail in responses.
func SetDevelopmentMode(enabled bool) {
	developmentMode = enabled
}

// WriteJSON serializes data to the response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"message":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// WriteError translates any error into a standardized JSON error response.
// Errors that are not AppErrors are wrapped as internal errors so that the
// client never sees a bare Go error.
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := FromError(err)
	if !ok {
		appErr = NewInternalError("an unexpected error occurred", err)
	}
	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse(developmentMode))
}
