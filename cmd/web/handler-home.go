package main

import (
	"net/http"

	"github.com/myrjola/dailywod/internal/pool"
)

type homeTemplateData struct {
	BaseTemplateData
	// Suggestion is today's suggested workout. Nil when no entry is eligible.
	Suggestion *pool.Entry
	// Movements resolves the suggested prescriptions to catalog movements.
	Movements map[int]pool.Movement
	// PoolEmpty indicates that no entry satisfied the current filters.
	PoolEmpty bool
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Suggestion:       nil,
		Movements:        nil,
		PoolEmpty:        app.sessionManager.PopBool(r.Context(), sessionKeyPoolEmpty),
	}

	entryID := app.sessionManager.GetString(r.Context(), sessionKeySuggestedEntry)
	if entryID != "" {
		entry, err := app.poolService.GetEntry(r.Context(), entryID)
		if err == nil {
			data.Suggestion = &entry
			movements, movErr := app.movementsForEntry(r.Context(), entry)
			if movErr != nil {
				app.serverError(w, r, movErr)
				return
			}
			data.Movements = movements
		}
	}

	app.render(w, r, http.StatusOK, "home", data)
}
