package main

import (
	"log/slog"
	"net/http"
	"strconv"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", slog.Any("error", err))
	app.render(w, r, http.StatusInternalServerError, "error", nil)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusNotFound, "not-found", newBaseTemplateData(r))
}

// redirect detects if the request is originating from a fetch API call or a top-level navigation and points the user
// to the correct URL.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Sec-Fetch-Dest") == "empty" {
		w.Header().Set("Content-Location", path)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, path, http.StatusSeeOther)
}

// parseEntryIDParam parses the "entryID" path parameter from the request URL.
// Returns the entry ID and true if present, or empty string and false on failure.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseEntryIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	entryID := r.PathValue("entryID")
	if entryID == "" {
		http.NotFound(w, r)
		return "", false
	}
	return entryID, true
}

// parseMovementIDParam parses the "movementID" path parameter from the request URL.
// Returns the parsed movement ID and true if successful, or zero and false if parsing fails.
// On failure, sends HTTP 404 response automatically.
func (app *application) parseMovementIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	movementIDStr := r.PathValue("movementID")
	movementID, err := strconv.Atoi(movementIDStr)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return movementID, true
}
