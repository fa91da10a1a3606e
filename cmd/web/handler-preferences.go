package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/myrjola/dailywod/internal/pool"
	"github.com/myrjola/dailywod/internal/ptr"
)

// Session keys for the selection preferences.
const (
	sessionKeyEquipmentConstrained = "preferences.equipmentConstrained"
	sessionKeyEquipment            = "preferences.equipment"
	sessionKeyIntensity            = "preferences.intensity"
	sessionKeyFormat               = "preferences.format"
)

// equipmentSeparator joins equipment names for session storage. Equipment
// names in the catalog never contain semicolons.
const equipmentSeparator = ";"

// selectionOptionsFromSession rebuilds the selection options from the session.
func (app *application) selectionOptionsFromSession(ctx context.Context) pool.SelectionOptions {
	opts := pool.SelectionOptions{
		AvailableEquipment: nil,
		PreferredIntensity: nil,
		PreferredFormat:    nil,
	}

	if app.sessionManager.GetBool(ctx, sessionKeyEquipmentConstrained) {
		joined := app.sessionManager.GetString(ctx, sessionKeyEquipment)
		if joined == "" {
			opts.AvailableEquipment = []string{}
		} else {
			opts.AvailableEquipment = strings.Split(joined, equipmentSeparator)
		}
	}

	if intensity, err := pool.ParseIntensity(app.sessionManager.GetString(ctx, sessionKeyIntensity)); err == nil {
		opts.PreferredIntensity = ptr.Ref(intensity)
	}
	if format, err := pool.ParseFormat(app.sessionManager.GetString(ctx, sessionKeyFormat)); err == nil {
		opts.PreferredFormat = ptr.Ref(format)
	}

	return opts
}

type preferencesTemplateData struct {
	BaseTemplateData
	// Equipment lists every equipment name in the catalog.
	Equipment []string
	// Selected tells for each equipment name whether it is available.
	Selected map[string]bool
	// EquipmentConstrained is false when any equipment may be used.
	EquipmentConstrained bool
	Intensity            string
	Format               string
	Intensities          []pool.Intensity
	Formats              []pool.Format
}

func (app *application) preferencesGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	equipment, err := app.poolService.ListEquipment(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	selected := make(map[string]bool, len(equipment))
	constrained := app.sessionManager.GetBool(ctx, sessionKeyEquipmentConstrained)
	available := strings.Split(app.sessionManager.GetString(ctx, sessionKeyEquipment), equipmentSeparator)
	for _, name := range equipment {
		if !constrained {
			selected[name] = true
			continue
		}
		for _, have := range available {
			if have == name {
				selected[name] = true
			}
		}
	}

	data := preferencesTemplateData{
		BaseTemplateData:     newBaseTemplateData(r),
		Equipment:            equipment,
		Selected:             selected,
		EquipmentConstrained: constrained,
		Intensity:            app.sessionManager.GetString(ctx, sessionKeyIntensity),
		Format:               app.sessionManager.GetString(ctx, sessionKeyFormat),
		Intensities:          []pool.Intensity{pool.IntensityLow, pool.IntensityMedium, pool.IntensityHigh},
		Formats: []pool.Format{
			pool.FormatEMOM,
			pool.FormatAMRAP,
			pool.FormatRoundsForTime,
			pool.FormatForTime,
			pool.FormatForReps,
			pool.FormatInterval,
			pool.FormatSteadyState,
		},
	}

	app.render(w, r, http.StatusOK, "preferences", data)
}

func (app *application) preferencesPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		app.serverError(w, r, err)
		return
	}

	if r.PostForm.Get("any_equipment") == "true" {
		app.sessionManager.Put(ctx, sessionKeyEquipmentConstrained, false)
		app.sessionManager.Remove(ctx, sessionKeyEquipment)
	} else {
		app.sessionManager.Put(ctx, sessionKeyEquipmentConstrained, true)
		app.sessionManager.Put(ctx, sessionKeyEquipment,
			strings.Join(r.PostForm["equipment"], equipmentSeparator))
	}

	// Invalid or empty values clear the preference.
	if intensity, err := pool.ParseIntensity(r.PostForm.Get("intensity")); err == nil {
		app.sessionManager.Put(ctx, sessionKeyIntensity, string(intensity))
	} else {
		app.sessionManager.Remove(ctx, sessionKeyIntensity)
	}
	if format, err := pool.ParseFormat(r.PostForm.Get("format")); err == nil {
		app.sessionManager.Put(ctx, sessionKeyFormat, string(format))
	} else {
		app.sessionManager.Remove(ctx, sessionKeyFormat)
	}

	redirect(w, r, "/preferences")
}
