package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ThiagoRGoveia/plan-fact/internal/database"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// writeStoreError translates database errors into client responses. Anything
// unexpected is logged and hidden behind a generic 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *database.NotFoundError
	switch {
	case errors.As(err, &notFound):
		writeError(w, r, http.StatusNotFound, notFound.Error())
	case errors.Is(err, database.ErrInvalidReference):
		writeError(w, r, http.StatusNotFound, "referenced project or file version not found")
	case errors.Is(err, database.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "resource already exists")
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
