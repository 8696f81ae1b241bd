package httpapi

import (
	"encoding/json"
	"net/http"

	"textclassd/internal/predictor"
	"textclassd/internal/registry"
	"textclassd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeServiceError maps well-known domain errors to HTTP status codes.
// A model that is not loaded is a temporary service condition (503); bad
// input is the client's fault (400); unknown versions are 404; anything else
// is a generic 500 with a short message and no internal detail.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case predictor.IsNotLoaded(err):
		writeJSONError(w, http.StatusServiceUnavailable, "model not loaded")
	case predictor.IsTokenization(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case registry.IsVersionNotFound(err), registry.IsNoModels(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case predictor.IsInference(err):
		writeJSONError(w, http.StatusInternalServerError, "inference failed")
	default:
		if he, ok := err.(HTTPError); ok {
			writeJSONError(w, he.StatusCode(), he.Error())
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}
