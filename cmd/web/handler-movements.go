package main

import (
	"net/http"
	"strconv"

	"github.com/myrjola/dailywod/internal/errors"
	"github.com/myrjola/dailywod/internal/pool"
)

type movementsTemplateData struct {
	BaseTemplateData
	Movements []pool.Movement
}

// movementsGET lists the movement catalog.
func (app *application) movementsGET(w http.ResponseWriter, r *http.Request) {
	movements, err := app.poolService.ListMovements(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := movementsTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Movements:        movements,
	}

	app.render(w, r, http.StatusOK, "movements", data)
}

type movementTemplateData struct {
	BaseTemplateData
	Movement pool.Movement
	Cadence  pool.CadenceRecord
}

// movementGET shows a single movement with its cadence settings.
func (app *application) movementGET(w http.ResponseWriter, r *http.Request) {
	movementID, ok := app.parseMovementIDParam(w, r)
	if !ok {
		return
	}

	movement, err := app.poolService.GetMovement(r.Context(), movementID)
	if err != nil {
		if errors.Is(err, pool.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	cadence, err := app.poolService.GetMovementCadence(r.Context(), movementID)
	if err != nil {
		if !errors.Is(err, pool.ErrNotFound) {
			app.serverError(w, r, err)
			return
		}
		// No record yet means never performed with no minimum rest.
		cadence = pool.CadenceRecord{}
	}

	data := movementTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Movement:         movement,
		Cadence:          cadence,
	}

	app.render(w, r, http.StatusOK, "movement", data)
}

// movementCadencePOST overrides the minimum rest interval of a movement.
func (app *application) movementCadencePOST(w http.ResponseWriter, r *http.Request) {
	movementID, ok := app.parseMovementIDParam(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		app.serverError(w, r, err)
		return
	}

	intervalDays, err := strconv.Atoi(r.PostForm.Get("interval_days"))
	if err != nil || intervalDays < 0 {
		http.Error(w, "interval_days must be a non-negative integer", http.StatusBadRequest)
		return
	}

	if err = app.poolService.SetMovementCadence(r.Context(), movementID, intervalDays); err != nil {
		app.serverError(w, r, err)
		return
	}

	redirect(w, r, "/movements/"+strconv.Itoa(movementID))
}
