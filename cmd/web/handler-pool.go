package main

import (
	"net/http"

	"github.com/myrjola/dailywod/internal/errors"
	"github.com/myrjola/dailywod/internal/pool"
)

type poolTemplateData struct {
	BaseTemplateData
	Entries []pool.Entry
}

// poolGET lists every entry in the workout pool, including disabled ones.
func (app *application) poolGET(w http.ResponseWriter, r *http.Request) {
	entries, err := app.poolService.ListEntries(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := poolTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Entries:          entries,
	}

	app.render(w, r, http.StatusOK, "pool", data)
}

// poolTogglePOST flips the enabled flag of a pool entry.
func (app *application) poolTogglePOST(w http.ResponseWriter, r *http.Request) {
	entryID, ok := app.parseEntryIDParam(w, r)
	if !ok {
		return
	}

	entry, err := app.poolService.GetEntry(r.Context(), entryID)
	if err != nil {
		if errors.Is(err, pool.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	if err = app.poolService.SetEntryEnabled(r.Context(), entryID, !entry.Enabled); err != nil {
		app.serverError(w, r, err)
		return
	}

	redirect(w, r, "/pool")
}
