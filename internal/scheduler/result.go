package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// Status enumerates solver and engine outcomes.
type Status string

const (
	StatusOptimal            Status = "OPTIMAL"
	StatusFeasible           Status = "FEASIBLE"
	StatusNoSolution         Status = "NO_SOLUTION"
	StatusTimeout            Status = "TIMEOUT"
	StatusInvalid            Status = "INVALID"
	StatusNoAvailability     Status = "NO_AVAILABILITY"
	StatusQuotaExceeded      Status = "WEEKLY_QUOTA_EXCEEDED"
	StatusNoSolutionDetailed Status = "NO_SOLUTION_DETAILED"
)

// PartialStatus names a degraded outcome where only n of the requested
// sessions could be placed.
func PartialStatus(n int) Status {
	return Status(fmt.Sprintf("PARTIAL_SOLUTION_%d", n))
}

// IsPartial reports whether the status is a degraded partial solution.
func (s Status) IsPartial() bool {
	return strings.HasPrefix(string(s), "PARTIAL_SOLUTION_")
}

// Qualitative justifications attached to suggestions.
const (
	ReasonPerfectPreferenceMatch = "Perfect match with your preferred time"
	ReasonGoodPreferenceMatch    = "Close to your preferred time"
	ReasonCoachAvailability      = "Your assigned coach is available"
	ReasonCapacityAvailable      = "Slot has available capacity"
	ReasonRecoveryCompliant      = "Appropriate recovery time from last session"
	ReasonLoadBalancing          = "Helps balance coach workload"
	ReasonOnlyOption             = "Limited availability - best option found"
)

// WeekQuota summarises booked versus allowed sessions for one calendar week.
type WeekQuota struct {
	Booked    int
	Allowed   int
	Remaining int
}

// Result is the immutable outcome of one suggestion run. Soft failures
// (no availability, quota exceeded, timeout) are states here, never errors.
type Result struct {
	ClientID    int64
	Suggestions []models.Suggestion
	Total       int
	Status      Status
	Requested   int
	Found       int
	SolveTime   time.Duration
	Confidence  float64
	Diagnostics []string
	Reasons     []string
	CurrentWeek WeekQuota
	NextWeek    WeekQuota
}

// Solved reports whether the run produced at least one suggestion.
func (r Result) Solved() bool {
	return len(r.Suggestions) > 0
}
