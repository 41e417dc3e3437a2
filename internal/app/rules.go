package app

// DefaultTimerSeconds is the answer window for each question.
const DefaultTimerSeconds = 30

// DefaultSingleWagerFloor lets low-point players on single-question days
// wager up to this amount regardless of their balance.
const DefaultSingleWagerFloor = 1000

// Rules holds the tunable game parameters.
type Rules struct {
	TimerSeconds     int
	SingleWagerFloor int
}

func (r Rules) withDefaults() Rules {
	if r.TimerSeconds <= 0 {
		r.TimerSeconds = DefaultTimerSeconds
	}
	if r.SingleWagerFloor <= 0 {
		r.SingleWagerFloor = DefaultSingleWagerFloor
	}
	return r
}

// WagerBounds returns the inclusive wager range for question i of an
// n-question day with the given budget and previously locked wagers.
//
// Single-question days allow 0..max(budget, floor). Multi-question days
// require at least 1 and hold back 1 point for every question still to come,
// so the locked total never exceeds the budget. A budget smaller than n is
// raised to n so each question keeps a wager of 1.
func (r Rules) WagerBounds(budget int, locked []int, i, n int) (lo, hi int) {
	if n <= 1 {
		return 0, max(budget, r.SingleWagerFloor)
	}
	budget = max(budget, n)
	spent := 0
	for j := 0; j < i && j < len(locked); j++ {
		spent += locked[j]
	}
	reserve := n - 1 - i
	return 1, budget - spent - reserve
}
