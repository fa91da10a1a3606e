package main

import (
	"context"
	"net/http"
	"time"

	"github.com/myrjola/dailywod/internal/errors"
	"github.com/myrjola/dailywod/internal/pool"
)

// Session keys for the suggestion flow.
const (
	sessionKeySuggestedEntry = "suggestedEntry"
	sessionKeyPoolEmpty      = "poolEmpty"
)

type workoutTemplateData struct {
	BaseTemplateData
	Entry     pool.Entry
	Movements map[int]pool.Movement
}

// movementsForEntry resolves the movements prescribed by an entry.
func (app *application) movementsForEntry(ctx context.Context, entry pool.Entry) (map[int]pool.Movement, error) {
	movements := make(map[int]pool.Movement, len(entry.Movements))
	for _, prescription := range entry.Movements {
		if _, ok := movements[prescription.MovementID]; ok {
			continue
		}
		movement, err := app.poolService.GetMovement(ctx, prescription.MovementID)
		if err != nil {
			return nil, errors.Wrap(err, "get movement")
		}
		movements[prescription.MovementID] = movement
	}
	return movements, nil
}

// workoutSelectPOST picks a workout from the pool using the preferences
// stored in the session and redirects to it.
func (app *application) workoutSelectPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts := app.selectionOptionsFromSession(ctx)
	entry, err := app.poolService.SelectWorkout(ctx, time.Now(), opts)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if entry == nil {
		app.sessionManager.Put(ctx, sessionKeyPoolEmpty, true)
		app.sessionManager.Remove(ctx, sessionKeySuggestedEntry)
		redirect(w, r, "/")
		return
	}

	app.sessionManager.Put(ctx, sessionKeySuggestedEntry, entry.ID)
	redirect(w, r, "/workouts/"+entry.ID)
}

// workoutGET shows a single workout with its movement prescriptions.
func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
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

	movements, err := app.movementsForEntry(r.Context(), entry)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := workoutTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Entry:            entry,
		Movements:        movements,
	}

	app.render(w, r, http.StatusOK, "workout", data)
}

// workoutCompletePOST marks the workout as performed and returns to the home page.
func (app *application) workoutCompletePOST(w http.ResponseWriter, r *http.Request) {
	entryID, ok := app.parseEntryIDParam(w, r)
	if !ok {
		return
	}

	if err := app.poolService.MarkPerformed(r.Context(), entryID, time.Now()); err != nil {
		if errors.Is(err, pool.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.sessionManager.Remove(r.Context(), sessionKeySuggestedEntry)
	redirect(w, r, "/")
}
