package main

import (
	"fmt"
	"net/http"
)

func (app *application) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	var (
		noSession = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next))))))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
					commonContext(app.timeout(next))))))))
		}
	)

	mux.Handle("POST /workouts/select", session(http.HandlerFunc(app.workoutSelectPOST)))
	mux.Handle("GET /workouts/{entryID}", session(http.HandlerFunc(app.workoutGET)))
	mux.Handle("POST /workouts/{entryID}/complete", session(http.HandlerFunc(app.workoutCompletePOST)))

	mux.Handle("GET /movements", session(http.HandlerFunc(app.movementsGET)))
	mux.Handle("GET /movements/{movementID}", session(http.HandlerFunc(app.movementGET)))
	mux.Handle("POST /movements/{movementID}/cadence", session(http.HandlerFunc(app.movementCadencePOST)))

	mux.Handle("GET /pool", session(http.HandlerFunc(app.poolGET)))
	mux.Handle("POST /pool/{entryID}/toggle", session(http.HandlerFunc(app.poolTogglePOST)))

	mux.Handle("GET /preferences", session(http.HandlerFunc(app.preferencesGET)))
	mux.Handle("POST /preferences", session(http.HandlerFunc(app.preferencesPOST)))

	mux.Handle("GET /api/healthy", noSession(http.HandlerFunc(app.healthy)))
	mux.Handle("GET /api/test/timeout", noSession(http.HandlerFunc(app.testTimeout)))

	// Home route (most specific)
	mux.Handle("GET /{$}", session(http.HandlerFunc(app.home)))

	// File server with custom 404 handling
	fileServerHandler, err := app.fileServerHandler()
	if err != nil {
		return nil, fmt.Errorf("fileServerHandler: %w", err)
	}
	mux.Handle("/", fileServerHandler)

	return mux, nil
}
