package session

// arbiter tracks the buzz queue and the currently answering team for the
// active question. Policy is immediate promotion: the first buzz becomes
// the answering team right away; later buzzes queue FIFO behind it and are
// drained one at a time as each answerer is resolved.
//
// The arbiter holds no lock of its own; the session mutex guards it.
type arbiter struct {
	answering string   // team currently inside its answer window, "" if none
	queue     []string // teams waiting for a turn, FIFO
}

// register appends the team to the buzz queue. It reports whether this was
// the first buzz for the question (nobody answering, empty queue), which
// tells the caller to promote immediately.
func (a *arbiter) register(team string) (first bool, err error) {
	if team == a.answering || a.queued(team) {
		return false, ErrAlreadyBuzzed
	}
	first = a.answering == "" && len(a.queue) == 0
	a.queue = append(a.queue, team)
	return first, nil
}

// promoteNext pops the queue head into the answering slot. When the queue
// is exhausted it clears the answering team and returns ok=false so the
// session can resolve the question.
func (a *arbiter) promoteNext() (team string, ok bool) {
	if len(a.queue) == 0 {
		a.answering = ""
		return "", false
	}
	team = a.queue[0]
	a.queue = a.queue[1:]
	a.answering = team
	return team, true
}

// reset clears all buzz state for a new question.
func (a *arbiter) reset() {
	a.answering = ""
	a.queue = nil
}

func (a *arbiter) queued(team string) bool {
	for _, t := range a.queue {
		if t == team {
			return true
		}
	}
	return false
}
