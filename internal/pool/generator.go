// Package pool implements the workout pool: generating predefined workout
// entries from the movement catalog, tracking per-movement and per-entry
// cadences, and selecting a workout for a given day.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/dailywod/internal/ptr"
)

// Template family cadences in days. Each generated entry inherits the
// cadence of the family it came from.
const (
	cadenceStrengthPair  = 7
	cadenceOlympicEMOM   = 3
	cadenceMetCon        = 4
	cadenceEMOMSingle    = 3
	cadenceAMRAP         = 3
	cadenceBodyweight    = 1
	cadenceCardioWork    = 2
	cadenceHybrid        = 5
	cadenceSpecialtySlog = 30
)

// Generation bounds. Templates combine at most the first few movements per
// group so the pool stays small instead of exploding into a cross product.
const (
	maxStrengthLiftsPerGroup = 2
	maxOlympicLifts          = 3
	maxMetConPerGroup        = 2
	maxEMOMSingles           = 3
	maxAMRAPPairs            = 4
	maxBodyweightSingles     = 4
	maxCardioMachines        = 3
	maxHybridPairs           = 3
)

// generator expands the movement catalog into workout pool entries.
type generator struct {
	// catalog contains every movement known at generation time.
	catalog []Movement
	// byGroup indexes the catalog per functional group, sorted by movement ID
	// so generation stays deterministic.
	byGroup map[Group][]Movement
	logger  *slog.Logger
}

// newGenerator constructs a pool generator over the given catalog.
func newGenerator(catalog []Movement, logger *slog.Logger) *generator {
	byGroup := make(map[Group][]Movement)
	for _, m := range catalog {
		for _, g := range classifyMovement(m) {
			byGroup[g] = append(byGroup[g], m)
		}
	}
	for g := range byGroup {
		sort.Slice(byGroup[g], func(i, j int) bool {
			return byGroup[g][i].ID < byGroup[g][j].ID
		})
	}

	return &generator{
		catalog: catalog,
		byGroup: byGroup,
		logger:  logger,
	}
}

// classifyMovement resolves the functional groups of a movement once, from
// its declared groups supplemented with name keywords. Catalogs imported
// from external sources sometimes carry sparse group tags, so the keywords
// close the gap.
func classifyMovement(m Movement) []Group {
	seen := make(map[Group]bool, len(m.Groups))
	groups := make([]Group, 0, len(m.Groups))
	add := func(g Group) {
		if !seen[g] {
			seen[g] = true
			groups = append(groups, g)
		}
	}

	for _, g := range m.Groups {
		add(g)
	}

	name := strings.ToLower(m.Name)
	for keyword, g := range nameKeywords {
		if strings.Contains(name, keyword) {
			add(g)
		}
	}

	return groups
}

// nameKeywords maps name substrings to the functional group they imply.
var nameKeywords = map[string]Group{
	"deadlift":   GroupDeadlift,
	"squat":      GroupSquat,
	"press":      GroupPress,
	"jerk":       GroupOlympic,
	"clean":      GroupOlympic,
	"snatch":     GroupOlympic,
	"pull-up":    GroupPull,
	"kettlebell": GroupKettlebell,
	"swing":      GroupKettlebell,
	"ring":       GroupGymnastic,
	"handstand":  GroupGymnastic,
	"plank":      GroupCore,
	"hollow":     GroupCore,
	"sit-up":     GroupCore,
	"burpee":     GroupBodyweight,
	"push-up":    GroupBodyweight,
	"lunge":      GroupBodyweight,
	"run":        GroupCardio,
	"bike":       GroupCardio,
	"erg":        GroupCardio,
}

// Generate expands the catalog into a bounded set of pool entries. An empty
// catalog yields zero entries with a warning, never an error, since an empty
// pool is a valid degenerate state.
func (g *generator) Generate(ctx context.Context, now time.Time) []Entry {
	if len(g.catalog) == 0 {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "movement catalog is empty, generating no pool entries")
		return nil
	}

	var entries []Entry
	entries = append(entries, g.strengthPairs(now)...)
	entries = append(entries, g.olympicEMOMs(now)...)
	entries = append(entries, g.metConTriples(now)...)
	entries = append(entries, g.emomSingles(now)...)
	entries = append(entries, g.amrapPairs(now)...)
	entries = append(entries, g.bodyweightSingles(now)...)
	entries = append(entries, g.cardioIntervals(now)...)
	entries = append(entries, g.hybridPairs(now)...)
	entries = append(entries, g.specialtySlogs(now)...)

	g.logger.LogAttrs(ctx, slog.LevelInfo, "generated workout pool",
		slog.Int("entries", len(entries)),
		slog.Int("catalog_size", len(g.catalog)))

	return entries
}

// take returns up to n movements of the given group.
func (g *generator) take(group Group, n int) []Movement {
	movements := g.byGroup[group]
	if len(movements) > n {
		movements = movements[:n]
	}
	return movements
}

// sharesSingleGroup reports whether every movement in the combination belongs
// to one common functional group. Such combinations make degenerate
// single-category workouts and are rejected.
func sharesSingleGroup(movements ...Movement) bool {
	if len(movements) < 2 {
		return false
	}
	for _, g := range classifyMovement(movements[0]) {
		shared := true
		for _, m := range movements[1:] {
			if !movementInGroup(m, g) {
				shared = false
				break
			}
		}
		if shared {
			return true
		}
	}
	return false
}

func movementInGroup(m Movement, g Group) bool {
	for _, group := range classifyMovement(m) {
		if group == g {
			return true
		}
	}
	return false
}

// newEntry fills the fields shared by every template family.
func newEntry(name, description string, format Format, intensity Intensity, now time.Time) Entry {
	return Entry{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Format:      format,
		Intensity:   intensity,
		Enabled:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// strengthPairs builds weekly heavy sessions pairing a main lift with a pull.
func (g *generator) strengthPairs(now time.Time) []Entry {
	pulls := g.take(GroupPull, maxStrengthLiftsPerGroup)
	if len(pulls) == 0 {
		return nil
	}

	var entries []Entry
	for _, mainGroup := range []Group{GroupDeadlift, GroupSquat, GroupPress} {
		for _, lift := range g.take(mainGroup, maxStrengthLiftsPerGroup) {
			if !lift.IsMainMovement {
				continue
			}
			pull := pulls[len(entries)%len(pulls)]
			if sharesSingleGroup(lift, pull) {
				continue
			}

			entry := newEntry(
				fmt.Sprintf("Heavy Pair: %s + %s", lift.Name, pull.Name),
				fmt.Sprintf("Work up to a heavy set of 5 on **%s**, superset each set with 8 reps of %s. "+
					"Rest as needed between rounds.", lift.Name, pull.Name),
				FormatForReps, IntensityMedium, now)
			entry.DurationMinutes = 35
			entry.Rounds = ptr.Ref(5)
			entry.CadenceDays = cadenceStrengthPair
			entry.Movements = []Prescription{
				{MovementID: lift.ID, Reps: 5},
				{MovementID: pull.ID, Reps: 8},
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// olympicEMOMs builds short technique EMOMs around a single olympic lift.
func (g *generator) olympicEMOMs(now time.Time) []Entry {
	var entries []Entry
	for _, lift := range g.take(GroupOlympic, maxOlympicLifts) {
		cfg, err := NewEMOMConfig(60, 12)
		if err != nil {
			continue
		}

		entry := newEntry(
			fmt.Sprintf("EMOM 12: %s", lift.Name),
			fmt.Sprintf("Every minute on the minute for %d minutes: 2 %s at a crisp, technical load.",
				cfg.TotalMinutes, lift.Name),
			FormatEMOM, IntensityHigh, now)
		entry.DurationMinutes = cfg.TotalMinutes
		entry.CadenceDays = cadenceOlympicEMOM
		entry.Movements = []Prescription{
			{MovementID: lift.ID, Reps: 2},
		}
		entries = append(entries, entry)
	}
	return entries
}

// metConTriples builds rounds-for-time conditioning triples spanning at least
// two functional groups.
func (g *generator) metConTriples(now time.Time) []Entry {
	cardio := g.take(GroupCardio, maxMetConPerGroup)
	kettlebell := g.take(GroupKettlebell, maxMetConPerGroup)
	bodyweight := g.take(GroupBodyweight, maxMetConPerGroup)
	if len(cardio) == 0 || len(kettlebell) == 0 || len(bodyweight) == 0 {
		return nil
	}

	var entries []Entry
	for i, engine := range cardio {
		bell := kettlebell[i%len(kettlebell)]
		body := bodyweight[i%len(bodyweight)]
		if engine.ID == bell.ID || engine.ID == body.ID || bell.ID == body.ID {
			continue
		}
		if sharesSingleGroup(engine, bell, body) {
			continue
		}

		entry := newEntry(
			fmt.Sprintf("MetCon: %s / %s / %s", engine.Name, bell.Name, body.Name),
			fmt.Sprintf("3 rounds for time:\n\n- 15 %s\n- 15 %s\n- 15 %s",
				engine.Name, bell.Name, body.Name),
			FormatRoundsForTime, IntensityHigh, now)
		entry.DurationMinutes = 20
		entry.Rounds = ptr.Ref(3)
		entry.CadenceDays = cadenceMetCon
		entry.Movements = []Prescription{
			{MovementID: engine.ID, Reps: 15},
			{MovementID: bell.ID, Reps: 15},
			{MovementID: body.ID, Reps: 15},
		}
		entries = append(entries, entry)
	}
	return entries
}

// emomSingles builds single-movement EMOMs from kettlebell and gymnastic work.
func (g *generator) emomSingles(now time.Time) []Entry {
	var entries []Entry
	for _, group := range []Group{GroupKettlebell, GroupGymnastic} {
		for _, m := range g.take(group, maxEMOMSingles) {
			cfg, err := NewEMOMConfig(60, 10)
			if err != nil {
				continue
			}

			entry := newEntry(
				fmt.Sprintf("EMOM 10: %s", m.Name),
				fmt.Sprintf("Every minute on the minute for %d minutes: 8 %s. "+
					"Cut the reps before the movement breaks down.", cfg.TotalMinutes, m.Name),
				FormatEMOM, IntensityMedium, now)
			entry.DurationMinutes = cfg.TotalMinutes
			entry.CadenceDays = cadenceEMOMSingle
			entry.Movements = []Prescription{
				{MovementID: m.ID, Reps: 8},
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// amrapPairs builds AMRAP couplets mixing bodyweight work with core work.
func (g *generator) amrapPairs(now time.Time) []Entry {
	bodyweight := g.take(GroupBodyweight, maxAMRAPPairs)
	core := g.take(GroupCore, maxAMRAPPairs)
	if len(bodyweight) == 0 || len(core) == 0 {
		return nil
	}

	var entries []Entry
	for i, body := range bodyweight {
		abs := core[i%len(core)]
		if body.ID == abs.ID || sharesSingleGroup(body, abs) {
			continue
		}
		cfg, err := NewAMRAPConfig(12)
		if err != nil {
			continue
		}

		entry := newEntry(
			fmt.Sprintf("AMRAP %d: %s + %s", cfg.WindowMinutes, body.Name, abs.Name),
			fmt.Sprintf("As many rounds as possible in %d minutes:\n\n- 10 %s\n- 15 %s",
				cfg.WindowMinutes, body.Name, abs.Name),
			FormatAMRAP, IntensityMedium, now)
		entry.DurationMinutes = cfg.WindowMinutes
		entry.CadenceDays = cadenceAMRAP
		entry.Movements = []Prescription{
			{MovementID: body.ID, Reps: 10},
			{MovementID: abs.ID, Reps: 15},
		}
		entries = append(entries, entry)
	}
	return entries
}

// bodyweightSingles builds daily single-focus bodyweight sessions.
func (g *generator) bodyweightSingles(now time.Time) []Entry {
	var entries []Entry
	for _, m := range g.take(GroupBodyweight, maxBodyweightSingles) {
		entry := newEntry(
			fmt.Sprintf("Daily %s", m.Name),
			fmt.Sprintf("Accumulate 100 quality reps of %s, broken up however you like.", m.Name),
			FormatForReps, IntensityLow, now)
		entry.DurationMinutes = 15
		entry.CadenceDays = cadenceBodyweight
		entry.Movements = []Prescription{
			{MovementID: m.ID, Reps: 100},
		}
		entries = append(entries, entry)
	}
	return entries
}

// cardioIntervals builds 1:1 work/rest interval sessions per cardio machine.
func (g *generator) cardioIntervals(now time.Time) []Entry {
	var entries []Entry
	for _, m := range g.take(GroupCardio, maxCardioMachines) {
		cfg, err := NewIntervalConfig(60, 60, 10)
		if err != nil {
			continue
		}

		entry := newEntry(
			fmt.Sprintf("Intervals: %s", m.Name),
			fmt.Sprintf("%d rounds of %ds hard / %ds easy on the %s. Hold a repeatable pace.",
				cfg.Rounds, cfg.WorkSeconds, cfg.RestSeconds, m.Name),
			FormatInterval, IntensityHigh, now)
		entry.DurationMinutes = cfg.TotalMinutes()
		entry.Rounds = ptr.Ref(cfg.Rounds)
		entry.CadenceDays = cadenceCardioWork
		entry.Movements = []Prescription{
			{MovementID: m.ID, Reps: 1, TimeSeconds: ptr.Ref(cfg.WorkSeconds)},
		}
		entries = append(entries, entry)
	}
	return entries
}

// hybridPairs builds strength-plus-engine combos performed for time.
func (g *generator) hybridPairs(now time.Time) []Entry {
	cardio := g.take(GroupCardio, maxHybridPairs)
	if len(cardio) == 0 {
		return nil
	}

	var entries []Entry
	for _, liftGroup := range []Group{GroupDeadlift, GroupSquat} {
		for i, lift := range g.take(liftGroup, 1) {
			engine := cardio[i%len(cardio)]
			if sharesSingleGroup(lift, engine) {
				continue
			}

			entry := newEntry(
				fmt.Sprintf("Hybrid: %s + %s", lift.Name, engine.Name),
				fmt.Sprintf("5 rounds for time:\n\n- 5 heavy %s\n- 60s hard %s", lift.Name, engine.Name),
				FormatForTime, IntensityHigh, now)
			entry.DurationMinutes = 25
			entry.Rounds = ptr.Ref(5)
			entry.CadenceDays = cadenceHybrid
			entry.Movements = []Prescription{
				{MovementID: lift.ID, Reps: 5},
				{MovementID: engine.ID, Reps: 1, TimeSeconds: ptr.Ref(60)},
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// specialtySlogs builds long monthly steady-state sessions.
func (g *generator) specialtySlogs(now time.Time) []Entry {
	var entries []Entry
	for _, m := range g.take(GroupCardio, 1) {
		entry := newEntry(
			fmt.Sprintf("Long Slog: %s", m.Name),
			fmt.Sprintf("40 minutes of continuous easy %s. Conversational pace throughout.", m.Name),
			FormatSteadyState, IntensityLow, now)
		entry.DurationMinutes = 40
		entry.CadenceDays = cadenceSpecialtySlog
		entry.Movements = []Prescription{
			{MovementID: m.ID, Reps: 1, TimeSeconds: ptr.Ref(2400)},
		}
		entries = append(entries, entry)
	}
	return entries
}
