package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// Config governs engine behaviour. Zero values fall back to defaults.
type Config struct {
	Weights        Weights
	RecoveryHours  int
	SessionLength  time.Duration
	SolverBudget   time.Duration
	MaxSuggestions int
}

// Engine runs the constraint-based suggestion pipeline: context in,
// immutable result out. It holds no per-call state and is safe for
// concurrent use; every solve builds a fresh model.
type Engine struct {
	weights        Weights
	recovery       time.Duration
	sessionLength  time.Duration
	budget         time.Duration
	maxSuggestions int
	clock          func() time.Time
}

// New builds an engine from config.
func New(cfg Config) *Engine {
	if !cfg.Weights.Valid() || cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.RecoveryHours <= 0 {
		cfg.RecoveryHours = 24
	}
	if cfg.SessionLength <= 0 {
		cfg.SessionLength = time.Hour
	}
	if cfg.SolverBudget <= 0 {
		cfg.SolverBudget = 10 * time.Second
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 5
	}
	return &Engine{
		weights:        cfg.Weights,
		recovery:       time.Duration(cfg.RecoveryHours) * time.Hour,
		sessionLength:  cfg.SessionLength,
		budget:         cfg.SolverBudget,
		maxSuggestions: cfg.MaxSuggestions,
		clock:          time.Now,
	}
}

// WithClock overrides the wall clock used for solve timing. Intended for
// deterministic tests.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// Suggest computes up to numSessions future slot occurrences for the
// client described by ctx, honouring recovery, quota, and exclusion
// constraints, degrading to smaller counts when the full request is
// infeasible. It never returns an error: every failure mode is a result
// state with diagnostics.
func (e *Engine) Suggest(ctx Context, numSessions int, excluded map[int64]struct{}) Result {
	started := e.clock()

	if numSessions <= 0 || ctx.Plan.SessionsPerWeek <= 0 {
		return Result{
			ClientID:  ctx.ClientID,
			Status:    StatusInvalid,
			Requested: numSessions,
			SolveTime: e.clock().Sub(started),
			Diagnostics: []string{
				fmt.Sprintf("Invalid request: %d sessions requested against a plan allowing %d per week",
					numSessions, ctx.Plan.SessionsPerWeek),
			},
			Reasons: []string{ReasonOnlyOption},
		}
	}

	currentWeek, nextWeek := e.weekQuotas(ctx)

	if len(ctx.Slots) == 0 {
		return Result{
			ClientID:    ctx.ClientID,
			Status:      StatusNoAvailability,
			Requested:   numSessions,
			SolveTime:   e.clock().Sub(started),
			Diagnostics: []string{"No available time slots found for your assigned coach"},
			Reasons:     []string{ReasonOnlyOption},
			CurrentWeek: currentWeek,
			NextWeek:    nextWeek,
		}
	}

	if currentWeek.Remaining <= 0 {
		return Result{
			ClientID:  ctx.ClientID,
			Status:    StatusQuotaExceeded,
			Requested: numSessions,
			SolveTime: e.clock().Sub(started),
			Diagnostics: []string{
				"Cannot book more sessions this week. " + weekStatusMessage(currentWeek, nextWeek),
			},
			Reasons:     []string{ReasonOnlyOption},
			CurrentWeek: currentWeek,
			NextWeek:    nextWeek,
		}
	}

	diagnostics := []string{weekStatusMessage(currentWeek, nextWeek)}
	requested := numSessions
	if numSessions > currentWeek.Remaining {
		numSessions = currentWeek.Remaining
		diagnostics = append(diagnostics,
			fmt.Sprintf("Requested %d sessions exceeds remaining weekly quota, reduced to %d", requested, numSessions))
	}

	m := buildModel(ctx, modelParams{
		Recovery:      e.recovery,
		SessionLength: e.sessionLength,
		Weights:       e.weights,
		Excluded:      excluded,
		Count:         numSessions,
	})
	diagnostics = append(diagnostics, m.diagnostics...)

	sol := newSolver(m, e.clock).solve(e.budget)

	if sol.Status == StatusNoSolution {
		return e.degrade(ctx, started, excluded, requested, numSessions, diagnostics, currentWeek, nextWeek)
	}

	result := Result{
		ClientID:    ctx.ClientID,
		Status:      sol.Status,
		Requested:   requested,
		SolveTime:   e.clock().Sub(started),
		Confidence:  confidenceFor(sol.Status),
		Diagnostics: diagnostics,
		CurrentWeek: currentWeek,
		NextWeek:    nextWeek,
	}
	result.Suggestions = e.extract(ctx, m, sol, result.Confidence)
	result.Total = len(result.Suggestions)
	result.Found = result.Total
	result.Reasons = deriveReasons(result.Suggestions, ctx.Preference)
	if sol.Status == StatusTimeout {
		result.Diagnostics = append(result.Diagnostics,
			"Solver time budget exhausted without a definitive answer; retry with fewer sessions or more flexibility")
	}
	return result
}

// degrade retries with decreasing counts and, when even a single session
// is infeasible, produces the detailed failure analysis.
func (e *Engine) degrade(
	ctx Context,
	started time.Time,
	excluded map[int64]struct{},
	requested, attempted int,
	diagnostics []string,
	currentWeek, nextWeek WeekQuota,
) Result {
	for n := attempted - 1; n >= 1; n-- {
		m := buildModel(ctx, modelParams{
			Recovery:      e.recovery,
			SessionLength: e.sessionLength,
			Weights:       e.weights,
			Excluded:      excluded,
			Count:         n,
		})
		sol := newSolver(m, e.clock).solve(e.budget)
		if sol.Status != StatusOptimal && sol.Status != StatusFeasible {
			continue
		}

		confidence := confidenceFor(sol.Status) * float64(n) / float64(requested)
		warning := fmt.Sprintf("Could only find %d session(s) instead of %d. %s",
			n, requested, e.analyzeShortfall(ctx, requested))

		result := Result{
			ClientID:    ctx.ClientID,
			Status:      PartialStatus(n),
			Requested:   requested,
			SolveTime:   e.clock().Sub(started),
			Confidence:  confidence,
			Diagnostics: append([]string{warning}, diagnostics...),
			CurrentWeek: currentWeek,
			NextWeek:    nextWeek,
		}
		result.Suggestions = e.extract(ctx, m, sol, confidence)
		result.Total = len(result.Suggestions)
		result.Found = result.Total
		result.Reasons = deriveReasons(result.Suggestions, ctx.Preference)
		return result
	}

	return e.failureAnalysis(ctx, started, requested, diagnostics, currentWeek, nextWeek)
}

// failureAnalysis explains, in priority order, why not even one session
// could be placed: availability, quota, recovery, then preference overlap.
func (e *Engine) failureAnalysis(
	ctx Context,
	started time.Time,
	requested int,
	diagnostics []string,
	currentWeek, nextWeek WeekQuota,
) Result {
	var messages []string

	if len(ctx.Slots) == 0 {
		messages = append(messages, "No available time slots found for your assigned coach")
	}

	switch {
	case currentWeek.Booked >= currentWeek.Allowed:
		messages = append(messages, "Weekly quota reached. "+weekStatusMessage(currentWeek, nextWeek))
	case currentWeek.Booked+requested > currentWeek.Allowed:
		messages = append(messages, "Weekly quota would be exceeded. "+weekStatusMessage(currentWeek, nextWeek))
	default:
		if earliest, count := earliestRecentBooking(ctx); count > 0 {
			nextEligible := earliest.Add(e.recovery).Add(e.sessionLength)
			messages = append(messages, fmt.Sprintf(
				"Recovery constraint: you have %d recent booking(s). Next available time: %s (%d-hour recovery required)",
				count, nextEligible.Format("2006-01-02 15:04"), int(e.recovery.Hours())))
		}
	}

	if msg := preferenceMismatch(ctx, requested); msg != "" {
		messages = append(messages, msg)
	}

	if len(messages) == 0 {
		messages = append(messages,
			fmt.Sprintf("Cannot find %d sessions that satisfy all scheduling constraints", requested))
	}

	return Result{
		ClientID:    ctx.ClientID,
		Status:      StatusNoSolutionDetailed,
		Requested:   requested,
		SolveTime:   e.clock().Sub(started),
		Diagnostics: append(messages, diagnostics...),
		Reasons:     []string{ReasonOnlyOption},
		CurrentWeek: currentWeek,
		NextWeek:    nextWeek,
	}
}

// analyzeShortfall names the constraints most likely limiting a partial
// solution.
func (e *Engine) analyzeShortfall(ctx Context, requested int) string {
	var reasons []string

	if _, count := earliestRecentBooking(ctx); count > 0 {
		reasons = append(reasons, fmt.Sprintf("recovery constraints from %d existing booking(s)", count))
	}

	if pref := ctx.Preference; pref != nil {
		matching := 0
		for _, slot := range ctx.Slots {
			if pref.IsFlexible {
				if pref.PreferredStartHour-1 <= slot.StartHour && slot.StartHour <= pref.PreferredEndHour+1 {
					matching++
				}
			} else if pref.PreferredStartHour <= slot.StartHour && slot.StartHour <= pref.PreferredEndHour {
				matching++
			}
		}
		if matching < requested {
			mode := "strict"
			if pref.IsFlexible {
				mode = "flexible"
			}
			reasons = append(reasons, fmt.Sprintf("preference constraints (%s hours %d-%d): only %d matching slots",
				mode, pref.PreferredStartHour, pref.PreferredEndHour, matching))
		}
	}

	if len(reasons) == 0 {
		return "Multiple constraints are limiting available combinations."
	}
	out := "Reasons: " + reasons[0]
	for _, r := range reasons[1:] {
		out += "; " + r
	}
	return out + "."
}

// extract converts the selected variables into presentation-ready
// suggestion records, sorted by (hour, day) and capped.
func (e *Engine) extract(ctx Context, m *model, sol solution, confidence float64) []models.Suggestion {
	suggestions := make([]models.Suggestion, 0, len(sol.Selected))
	for _, idx := range sol.Selected {
		slot := m.slots[idx]
		name := ctx.CoachNames[slot.CoachID]
		if name == "" {
			name = "Unknown Coach"
		}
		suggestions = append(suggestions, models.Suggestion{
			SlotID:     slot.ID,
			CoachID:    slot.CoachID,
			CoachName:  name,
			DayOfWeek:  slot.DayOfWeek,
			StartHour:  slot.StartHour,
			Date:       m.times[idx].Format("2006-01-02"),
			Confidence: confidence * 100,
			Capacity:   slot.Capacity,
			Score:      sol.Objective,
		})
	}
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].StartHour == suggestions[j].StartHour {
			return suggestions[i].DayOfWeek < suggestions[j].DayOfWeek
		}
		return suggestions[i].StartHour < suggestions[j].StartHour
	})
	if len(suggestions) > e.maxSuggestions {
		suggestions = suggestions[:e.maxSuggestions]
	}
	return suggestions
}

// weekQuotas computes current- and next-week booking counts against the
// plan's weekly limit. Weeks run Monday to Monday.
func (e *Engine) weekQuotas(ctx Context) (WeekQuota, WeekQuota) {
	limit := ctx.Plan.SessionsPerWeek
	start := weekStart(ctx.WindowStart)
	nextStart := start.AddDate(0, 0, 7)
	nextEnd := nextStart.AddDate(0, 0, 7)

	current := countBookingsBetween(ctx.Bookings, start, nextStart)
	next := countBookingsBetween(ctx.Bookings, nextStart, nextEnd)

	return WeekQuota{Booked: current, Allowed: limit, Remaining: limit - current},
		WeekQuota{Booked: next, Allowed: limit, Remaining: limit - next}
}

// weekStatusMessage renders the always-attached quota summary for the
// current and following calendar week.
func weekStatusMessage(current, next WeekQuota) string {
	var currentMsg string
	if current.Remaining > 0 {
		currentMsg = fmt.Sprintf("This week: you have %d session(s) left to reach your weekly goal.", current.Remaining)
	} else {
		currentMsg = fmt.Sprintf("This week: complete, you've booked all %d/%d sessions.", current.Allowed, current.Allowed)
	}

	var nextMsg string
	switch {
	case next.Booked == 0:
		nextMsg = fmt.Sprintf("Next week: available, you can book up to %d sessions.", next.Allowed)
	case next.Remaining > 0:
		nextMsg = fmt.Sprintf("Next week: %d/%d sessions booked, %d slot(s) remaining.", next.Booked, next.Allowed, next.Remaining)
	default:
		nextMsg = fmt.Sprintf("Next week: full, you already booked all %d/%d sessions.", next.Allowed, next.Allowed)
	}

	return currentMsg + " " + nextMsg
}

// deriveReasons builds the de-duplicated qualitative justification list.
func deriveReasons(suggestions []models.Suggestion, pref *models.ClientPreference) []string {
	if len(suggestions) == 0 {
		return []string{ReasonOnlyOption}
	}

	var reasons []string
	for _, sg := range suggestions {
		if pref != nil {
			switch {
			case pref.PreferredStartHour <= sg.StartHour && sg.StartHour <= pref.PreferredEndHour:
				reasons = append(reasons, ReasonPerfectPreferenceMatch)
			case sg.StartHour == pref.PreferredStartHour-1 || sg.StartHour == pref.PreferredEndHour+1:
				reasons = append(reasons, ReasonGoodPreferenceMatch)
			}
		}
		reasons = append(reasons, ReasonCoachAvailability, ReasonCapacityAvailable)
	}

	seen := make(map[string]struct{}, len(reasons))
	unique := reasons[:0]
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}

// earliestRecentBooking finds the earliest non-cancelled booking within
// the seven-day lookback, and how many such bookings exist.
func earliestRecentBooking(ctx Context) (time.Time, int) {
	var earliest time.Time
	count := 0
	for _, b := range ctx.Bookings {
		if b.Status == models.BookingCancelled {
			continue
		}
		if ctx.Now.Sub(b.SessionDate) > 7*24*time.Hour {
			continue
		}
		if count == 0 || b.SessionDate.Before(earliest) {
			earliest = b.SessionDate
		}
		count++
	}
	return earliest, count
}

// preferenceMismatch reports a strict-preference overlap problem with the
// coach's working hours, if any.
func preferenceMismatch(ctx Context, requested int) string {
	pref := ctx.Preference
	if pref == nil || pref.IsFlexible || len(ctx.Slots) == 0 {
		return ""
	}

	minHour, maxHour := ctx.Slots[0].StartHour, ctx.Slots[0].StartHour
	for _, slot := range ctx.Slots[1:] {
		if slot.StartHour < minHour {
			minHour = slot.StartHour
		}
		if slot.StartHour > maxHour {
			maxHour = slot.StartHour
		}
	}

	if pref.PreferredEndHour < minHour || pref.PreferredStartHour > maxHour {
		return fmt.Sprintf(
			"Preference mismatch: your preferred hours (%d-%d) don't overlap with your coach's working hours (%d-%d). Consider making your preferences flexible",
			pref.PreferredStartHour, pref.PreferredEndHour, minHour, maxHour)
	}

	overlapStart := pref.PreferredStartHour
	if minHour > overlapStart {
		overlapStart = minHour
	}
	overlapEnd := pref.PreferredEndHour
	if maxHour < overlapEnd {
		overlapEnd = maxHour
	}
	if overlapEnd-overlapStart < requested {
		return fmt.Sprintf(
			"Insufficient overlap: your strict preferences (%d-%d) have limited overlap with coach hours (%d-%d). Consider flexible preferences",
			pref.PreferredStartHour, pref.PreferredEndHour, minHour, maxHour)
	}
	return ""
}

// confidenceFor maps a solver status to its base confidence.
func confidenceFor(status Status) float64 {
	switch status {
	case StatusOptimal:
		return 1.0
	case StatusFeasible:
		return 0.8
	default:
		return 0
	}
}
