package scheduler

import (
	"sort"
	"time"
)

// deadlineCheckInterval is how many search nodes pass between wall-clock
// deadline checks.
const deadlineCheckInterval = 256

// solution carries the outcome of one bounded search.
type solution struct {
	Status    Status
	Selected  []int
	Objective float64
}

// solver runs a deterministic branch-and-bound search over the model's
// boolean variables: maximize the summed slot scores subject to the
// exact-count constraint and the pairwise exclusions. Variables are
// explored in descending score order (id as tie-break) so identical
// inputs always yield identical answers.
type solver struct {
	model *model
	clock func() time.Time

	order     []int
	blocked   []int
	selected  []int
	best      []int
	bestScore float64
	found     bool

	deadline time.Time
	expired  bool
	nodes    int
}

func newSolver(m *model, clock func() time.Time) *solver {
	if clock == nil {
		clock = time.Now
	}
	return &solver{model: m, clock: clock}
}

// solve searches within the wall-clock budget. OPTIMAL means the search
// space was exhausted; FEASIBLE means the budget expired with an
// incumbent in hand; TIMEOUT means the budget expired empty-handed.
func (s *solver) solve(budget time.Duration) solution {
	m := s.model
	if m.count < 0 {
		return solution{Status: StatusInvalid}
	}
	if m.count == 0 {
		return solution{Status: StatusOptimal}
	}
	if m.liveCount() < m.count {
		return solution{Status: StatusNoSolution}
	}

	s.order = s.order[:0]
	for i := range m.slots {
		if !m.forced[i] {
			s.order = append(s.order, i)
		}
	}
	sort.Slice(s.order, func(a, b int) bool {
		ia, ib := s.order[a], s.order[b]
		if m.scores[ia] != m.scores[ib] {
			return m.scores[ia] > m.scores[ib]
		}
		return m.slots[ia].ID < m.slots[ib].ID
	})

	s.blocked = make([]int, len(m.slots))
	s.selected = s.selected[:0]
	s.best = nil
	s.bestScore = 0
	s.found = false
	s.expired = false
	s.nodes = 0
	s.deadline = s.clock().Add(budget)

	s.search(0, 0)

	switch {
	case s.expired && s.found:
		return solution{Status: StatusFeasible, Selected: s.best, Objective: s.bestScore}
	case s.expired:
		return solution{Status: StatusTimeout}
	case s.found:
		return solution{Status: StatusOptimal, Selected: s.best, Objective: s.bestScore}
	default:
		return solution{Status: StatusNoSolution}
	}
}

func (s *solver) search(pos int, score float64) {
	if s.expired {
		return
	}
	s.nodes++
	if s.nodes%deadlineCheckInterval == 0 && s.clock().After(s.deadline) {
		s.expired = true
		return
	}

	m := s.model
	if len(s.selected) == m.count {
		if !s.found || score > s.bestScore {
			s.found = true
			s.bestScore = score
			s.best = append(s.best[:0], s.selected...)
		}
		return
	}
	remaining := len(s.order) - pos
	needed := m.count - len(s.selected)
	if remaining < needed {
		return
	}
	if s.found && score+s.upperBound(pos, needed) <= s.bestScore {
		return
	}

	idx := s.order[pos]
	if s.blocked[idx] == 0 {
		s.selected = append(s.selected, idx)
		for _, other := range m.conflicts[idx] {
			s.blocked[other]++
		}
		s.search(pos+1, score+m.scores[idx])
		for _, other := range m.conflicts[idx] {
			s.blocked[other]--
		}
		s.selected = s.selected[:len(s.selected)-1]
		if s.expired {
			return
		}
	}

	s.search(pos+1, score)
}

// upperBound sums the highest-scoring `needed` variables at or after pos.
// The order slice is score-descending, so the first `needed` entries are
// an admissible optimistic bound.
func (s *solver) upperBound(pos, needed int) float64 {
	var bound float64
	for i := pos; i < len(s.order) && needed > 0; i++ {
		bound += s.model.scores[s.order[i]]
		needed--
	}
	return bound
}
