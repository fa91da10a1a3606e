package pool

import (
	"fmt"
	"time"
)

// Group is a functional bucket a movement belongs to. A movement may belong
// to several groups, e.g. an overhead squat is both a squat and an olympic lift.
type Group string

// Functional group constants.
const (
	GroupDeadlift   Group = "deadlift"
	GroupSquat      Group = "squat"
	GroupPress      Group = "press"
	GroupPull       Group = "pull"
	GroupOlympic    Group = "olympic"
	GroupBodyweight Group = "bodyweight"
	GroupCardio     Group = "cardio"
	GroupKettlebell Group = "kettlebell"
	GroupGymnastic  Group = "gymnastic"
	GroupAccessory  Group = "accessory"
	GroupCore       Group = "core"
)

// Groups lists every functional group in a stable order.
var Groups = []Group{
	GroupDeadlift,
	GroupSquat,
	GroupPress,
	GroupPull,
	GroupOlympic,
	GroupBodyweight,
	GroupCardio,
	GroupKettlebell,
	GroupGymnastic,
	GroupAccessory,
	GroupCore,
}

// Difficulty is an ordinal skill requirement for a movement.
type Difficulty string

// Difficulty constants.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Format is the scheme a workout entry is performed under.
type Format string

// Workout format constants.
const (
	FormatEMOM          Format = "emom"
	FormatAMRAP         Format = "amrap"
	FormatRoundsForTime Format = "rounds_for_time"
	FormatForTime       Format = "for_time"
	FormatForReps       Format = "for_reps"
	FormatInterval      Format = "interval"
	FormatSteadyState   Format = "steady_state"
)

// ParseFormat converts user input into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatEMOM, FormatAMRAP, FormatRoundsForTime, FormatForTime,
		FormatForReps, FormatInterval, FormatSteadyState:
		return f, nil
	default:
		return "", fmt.Errorf("unknown workout format: %q", s)
	}
}

// Intensity describes how hard an entry is meant to feel.
type Intensity string

// Intensity constants.
const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// ParseIntensity converts user input into an Intensity.
func ParseIntensity(s string) (Intensity, error) {
	switch i := Intensity(s); i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return i, nil
	default:
		return "", fmt.Errorf("unknown intensity: %q", s)
	}
}

// Movement is an immutable catalog record. The engine never mutates it.
type Movement struct {
	ID                  int
	Name                string
	Groups              []Group
	RequiredEquipment   []string
	Difficulty          Difficulty
	IsMainMovement      bool
	DescriptionMarkdown string
}

// InGroup reports whether the movement belongs to the given functional group.
func (m Movement) InGroup(g Group) bool {
	for _, group := range m.Groups {
		if group == g {
			return true
		}
	}
	return false
}

// Prescription is one movement inside an entry with its dose.
type Prescription struct {
	MovementID  int
	Reps        int
	TimeSeconds *int
	WeightKg    *float64
}

// Entry is a predefined workout in the pool. Entries are created in bulk by
// the generator and afterwards mutated only through enable/disable toggles
// and mark-performed events. Disabling is the soft-delete mechanism; entries
// are never deleted.
type Entry struct {
	ID              string
	Name            string
	Description     string
	Format          Format
	Intensity       Intensity
	Movements       []Prescription
	DurationMinutes int
	Rounds          *int
	CadenceDays     int
	Enabled         bool
	LastPerformed   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CadenceRecord tracks when a movement or entry was last performed and how
// many days must pass before it becomes eligible again. MinIntervalDays of
// zero means always eligible.
type CadenceRecord struct {
	EntityID        string
	MinIntervalDays int
	LastPerformedAt *time.Time
}

// EMOMConfig holds the timing parameters for an EMOM entry.
type EMOMConfig struct {
	IntervalSeconds int
	TotalMinutes    int
}

// NewEMOMConfig validates and constructs an EMOM configuration.
func NewEMOMConfig(intervalSeconds, totalMinutes int) (EMOMConfig, error) {
	if intervalSeconds <= 0 {
		return EMOMConfig{}, fmt.Errorf("interval must be positive, got %d", intervalSeconds)
	}
	if totalMinutes <= 0 {
		return EMOMConfig{}, fmt.Errorf("total minutes must be positive, got %d", totalMinutes)
	}
	if totalMinutes*60%intervalSeconds != 0 {
		return EMOMConfig{}, fmt.Errorf("interval %ds does not divide %dmin evenly", intervalSeconds, totalMinutes)
	}
	return EMOMConfig{IntervalSeconds: intervalSeconds, TotalMinutes: totalMinutes}, nil
}

// AMRAPConfig holds the time window for an AMRAP entry.
type AMRAPConfig struct {
	WindowMinutes int
}

// NewAMRAPConfig validates and constructs an AMRAP configuration.
func NewAMRAPConfig(windowMinutes int) (AMRAPConfig, error) {
	if windowMinutes <= 0 {
		return AMRAPConfig{}, fmt.Errorf("window must be positive, got %d", windowMinutes)
	}
	return AMRAPConfig{WindowMinutes: windowMinutes}, nil
}

// IntervalConfig holds work/rest timing for an interval cardio entry.
type IntervalConfig struct {
	WorkSeconds int
	RestSeconds int
	Rounds      int
}

// NewIntervalConfig validates and constructs an interval configuration.
func NewIntervalConfig(workSeconds, restSeconds, rounds int) (IntervalConfig, error) {
	if workSeconds <= 0 {
		return IntervalConfig{}, fmt.Errorf("work seconds must be positive, got %d", workSeconds)
	}
	if restSeconds < 0 {
		return IntervalConfig{}, fmt.Errorf("rest seconds must not be negative, got %d", restSeconds)
	}
	if rounds <= 0 {
		return IntervalConfig{}, fmt.Errorf("rounds must be positive, got %d", rounds)
	}
	return IntervalConfig{WorkSeconds: workSeconds, RestSeconds: restSeconds, Rounds: rounds}, nil
}

// TotalMinutes returns the full duration of the interval block rounded up.
func (c IntervalConfig) TotalMinutes() int {
	totalSeconds := (c.WorkSeconds + c.RestSeconds) * c.Rounds
	return (totalSeconds + 59) / 60
}

// movementEntityID derives the cadence-record key for a movement.
func movementEntityID(movementID int) string {
	return fmt.Sprintf("movement:%d", movementID)
}
