package pool

import (
	"math"
	"math/rand/v2"
	"sort"
	"time"
)

// Scoring weights. Entries rest-day debt grows twice as fast as calendar
// days, cadence overrun counts triple, and never-performed items get a large
// head start so they surface early.
const (
	recencyWeight            = 2.0
	overrunWeight            = 3.0
	neverPerformedEntryScore = 100.0
	neverPerformedMoveScore  = 50.0
	jitterMax                = 5.0
	topBracketMinSize        = 3
	topBracketFraction       = 0.25
)

// selector scores eligible entries and picks one with bounded randomness.
type selector struct {
	// rng drives jitter and the top-bracket pick. A nil rng degrades to a
	// deterministic pick of the highest-scoring entry.
	rng *rand.Rand
}

func newSelector(rng *rand.Rand) *selector {
	return &selector{rng: rng}
}

// scoredEntry pairs an entry with its selection score.
type scoredEntry struct {
	entry Entry
	score float64
}

// filterEligible keeps enabled entries whose own cadence and every referenced
// movement's cadence allow performing them on asOf, and whose combined
// equipment needs fit within the available equipment.
func filterEligible(
	entries []Entry,
	movements map[int]Movement,
	records map[string]CadenceRecord,
	available []string,
	asOf time.Time,
) []Entry {
	var availableSet map[string]bool
	if available != nil {
		availableSet = make(map[string]bool, len(available))
		for _, eq := range available {
			availableSet[eq] = true
		}
	}

	var eligible []Entry
	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}
		if !isAvailable(entry.CadenceDays, entry.LastPerformed, asOf) {
			continue
		}
		if !entryMovementsEligible(entry, movements, records, availableSet, asOf) {
			continue
		}
		eligible = append(eligible, entry)
	}
	return eligible
}

// entryMovementsEligible checks every movement an entry references: it must
// exist in the catalog, satisfy its own cadence, and require only available
// equipment.
func entryMovementsEligible(
	entry Entry,
	movements map[int]Movement,
	records map[string]CadenceRecord,
	availableSet map[string]bool,
	asOf time.Time,
) bool {
	for _, rx := range entry.Movements {
		movement, ok := movements[rx.MovementID]
		if !ok {
			return false
		}

		if availableSet != nil {
			for _, eq := range movement.RequiredEquipment {
				if !availableSet[eq] {
					return false
				}
			}
		}

		if record, ok := records[movementEntityID(movement.ID)]; ok {
			if !isAvailable(record.MinIntervalDays, record.LastPerformedAt, asOf) {
				return false
			}
		}
	}
	return true
}

// applyPreferences narrows candidates by intensity and format. Preferences
// are soft: when the narrowed set is empty the full candidate set is kept so
// a preference mismatch never hides an otherwise-available workout.
func applyPreferences(candidates []Entry, intensity *Intensity, format *Format) []Entry {
	if intensity == nil && format == nil {
		return candidates
	}

	var preferred []Entry
	for _, entry := range candidates {
		if intensity != nil && entry.Intensity != *intensity {
			continue
		}
		if format != nil && entry.Format != *format {
			continue
		}
		preferred = append(preferred, entry)
	}

	if len(preferred) == 0 {
		return candidates
	}
	return preferred
}

// score computes the selection score of an entry on asOf. Higher means the
// entry is better rested and more overdue.
func (s *selector) score(entry Entry, records map[string]CadenceRecord, asOf time.Time) float64 {
	score := 0.0

	if entry.LastPerformed == nil {
		score += neverPerformedEntryScore
	} else {
		days := daysBetween(*entry.LastPerformed, asOf)
		score += recencyWeight * float64(days)
		if days >= entry.CadenceDays {
			score += overrunWeight * float64(days-entry.CadenceDays)
		}
	}

	score += s.movementVariety(entry, records, asOf)
	score += s.jitter()

	return score
}

// movementVariety averages how long ago each referenced movement was done.
func (s *selector) movementVariety(entry Entry, records map[string]CadenceRecord, asOf time.Time) float64 {
	if len(entry.Movements) == 0 {
		return 0
	}

	total := 0.0
	for _, rx := range entry.Movements {
		record, ok := records[movementEntityID(rx.MovementID)]
		if !ok || record.LastPerformedAt == nil {
			total += neverPerformedMoveScore
			continue
		}
		total += float64(daysBetween(*record.LastPerformedAt, asOf))
	}
	return total / float64(len(entry.Movements))
}

func (s *selector) jitter() float64 {
	if s.rng == nil {
		return 0
	}
	return s.rng.Float64() * jitterMax
}

// pick scores the candidates and chooses uniformly at random among the top
// bracket of max(3, ceil(N/4)) entries. Without a random source the highest
// scorer wins outright.
func (s *selector) pick(candidates []Entry, records map[string]CadenceRecord, asOf time.Time) (Entry, bool) {
	if len(candidates) == 0 {
		return Entry{}, false
	}

	scored := make([]scoredEntry, 0, len(candidates))
	for _, entry := range candidates {
		scored = append(scored, scoredEntry{entry: entry, score: s.score(entry, records, asOf)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if s.rng == nil {
		return scored[0].entry, true
	}

	bracket := int(math.Ceil(topBracketFraction * float64(len(scored))))
	if bracket < topBracketMinSize {
		bracket = topBracketMinSize
	}
	if bracket > len(scored) {
		bracket = len(scored)
	}

	return scored[s.rng.IntN(bracket)].entry, true
}
