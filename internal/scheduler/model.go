package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// model is the per-call constraint encoding: one boolean variable per
// candidate slot, forced-zero sets for hard exclusions, pairwise
// at-most-one constraints for slots closer than the recovery interval,
// and an exact-count target. A model is built fresh for every solve and
// never shared across calls.
type model struct {
	slots       []models.ScheduleSlot
	times       []time.Time
	scores      []float64
	forced      []bool
	conflicts   [][]int
	count       int
	diagnostics []string
}

type modelParams struct {
	Recovery      time.Duration
	SessionLength time.Duration
	Weights       Weights
	Excluded      map[int64]struct{}
	Count         int
}

// buildModel encodes the scheduling context into a solvable model.
// Variables are ordered by slot id so runs are deterministic.
func buildModel(ctx Context, p modelParams) *model {
	slots := make([]models.ScheduleSlot, len(ctx.Slots))
	copy(slots, ctx.Slots)
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })

	m := &model{
		slots:     slots,
		times:     make([]time.Time, len(slots)),
		scores:    make([]float64, len(slots)),
		forced:    make([]bool, len(slots)),
		conflicts: make([][]int, len(slots)),
		count:     p.Count,
	}

	for i, slot := range slots {
		m.times[i] = resolveSlotTime(slot, ctx.WindowStart, ctx.Now)
	}

	pastCount := m.forcePastSlots(ctx.Now)
	m.diagnostics = append(m.diagnostics,
		fmt.Sprintf("Current time constraint: excluded %d past time slots", pastCount))

	recoveryCount := m.forceRecoveryConflicts(ctx, p)
	m.diagnostics = append(m.diagnostics,
		fmt.Sprintf("Recovery constraint: %dh minimum between sessions, excluded %d conflicting slots",
			int(p.Recovery.Hours()), recoveryCount))

	if excludedCount := m.forceExcluded(p.Excluded); excludedCount > 0 {
		m.diagnostics = append(m.diagnostics,
			fmt.Sprintf("Re-suggestion constraint: excluded %d previously suggested time slots", excludedCount))
	}

	m.addPairwiseRecovery(p.Recovery)
	m.scoreSlots(ctx, p.Weights)

	return m
}

// forcePastSlots zeroes every variable whose resolved occurrence is not
// strictly in the future.
func (m *model) forcePastSlots(now time.Time) int {
	count := 0
	for i := range m.slots {
		if m.forced[i] {
			continue
		}
		if !m.times[i].After(now) {
			m.forced[i] = true
			count++
		}
	}
	return count
}

// forceRecoveryConflicts zeroes variables that fall inside the forbidden
// window around any recent non-cancelled booking. Bookings older than
// seven days no longer constrain new sessions.
func (m *model) forceRecoveryConflicts(ctx Context, p modelParams) int {
	count := 0
	for _, booking := range ctx.Bookings {
		if booking.Status == models.BookingCancelled {
			continue
		}
		if ctx.Now.Sub(booking.SessionDate) > 7*24*time.Hour {
			continue
		}
		forbiddenStart := booking.SessionDate.Add(-p.Recovery)
		forbiddenEnd := booking.SessionDate.Add(p.SessionLength).Add(p.Recovery)
		for i := range m.slots {
			if m.forced[i] {
				continue
			}
			t := m.times[i]
			if !t.Before(forbiddenStart) && !t.After(forbiddenEnd) {
				m.forced[i] = true
				count++
			}
		}
	}
	return count
}

// forceExcluded zeroes caller-excluded slot ids (re-suggestion history).
func (m *model) forceExcluded(excluded map[int64]struct{}) int {
	if len(excluded) == 0 {
		return 0
	}
	count := 0
	for i, slot := range m.slots {
		if m.forced[i] {
			continue
		}
		if _, ok := excluded[slot.ID]; ok {
			m.forced[i] = true
			count++
		}
	}
	return count
}

// addPairwiseRecovery links every pair of live variables whose resolved
// occurrences are closer than the recovery interval: at most one of the
// pair may be chosen.
func (m *model) addPairwiseRecovery(recovery time.Duration) {
	for i := range m.slots {
		if m.forced[i] {
			continue
		}
		for j := i + 1; j < len(m.slots); j++ {
			if m.forced[j] {
				continue
			}
			diff := m.times[j].Sub(m.times[i])
			if diff < 0 {
				diff = -diff
			}
			if diff < recovery {
				m.conflicts[i] = append(m.conflicts[i], j)
				m.conflicts[j] = append(m.conflicts[j], i)
			}
		}
	}
}

// scoreSlots assigns each variable its weighted objective contribution:
// preference match (full inside the window, half one hour adjacent),
// load balancing toward below-average coaches, and earliness over a
// seven-day horizon.
func (m *model) scoreSlots(ctx Context, w Weights) {
	var avgWorkload float64
	if len(ctx.CoachWorkload) > 0 {
		var total float64
		for _, load := range ctx.CoachWorkload {
			total += load
		}
		avgWorkload = total / float64(len(ctx.CoachWorkload))
	}

	windowDate := time.Date(ctx.WindowStart.Year(), ctx.WindowStart.Month(), ctx.WindowStart.Day(),
		0, 0, 0, 0, ctx.WindowStart.Location())

	for i, slot := range m.slots {
		var score float64

		if pref := ctx.Preference; pref != nil {
			switch {
			case pref.PreferredStartHour <= slot.StartHour && slot.StartHour <= pref.PreferredEndHour:
				score += w.PreferenceMatch * 100
			case slot.StartHour == pref.PreferredStartHour-1 || slot.StartHour == pref.PreferredEndHour+1:
				score += w.PreferenceMatch * 50
			}
		}

		if load, ok := ctx.CoachWorkload[slot.CoachID]; ok {
			if diff := avgWorkload - load; diff > 0 {
				score += w.CoachLoadBalance * diff * 10
			}
		}

		daysFromStart := int(m.times[i].Sub(windowDate).Hours() / 24)
		if earliness := 7 - daysFromStart; earliness > 0 {
			score += float64(earliness) * 20
		}

		m.scores[i] = score
	}
}

// liveCount returns how many variables are still free to be selected.
func (m *model) liveCount() int {
	count := 0
	for _, f := range m.forced {
		if !f {
			count++
		}
	}
	return count
}
