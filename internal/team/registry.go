package team

import (
	"errors"
	"sort"

	"github.com/mdevans/quizbuzz/internal/quiz"
)

var (
	// ErrTeamExists is returned when creating a team whose name is taken.
	ErrTeamExists = errors.New("team already exists")
	// ErrTeamNotFound is returned when joining a team that does not exist.
	ErrTeamNotFound = errors.New("team not found")
	// ErrNotInTeam is returned when an action requires team membership.
	ErrNotInTeam = errors.New("user is not in a team")
)

// Registry tracks teams, their members and their scores for one quiz
// session. It is not safe for concurrent use on its own; the session
// controller serializes all access behind its own mutex.
type Registry struct {
	teams  map[string]*quiz.Team
	byUser map[string]string // user -> team name
}

// NewRegistry creates an empty team registry.
func NewRegistry() *Registry {
	return &Registry{
		teams:  make(map[string]*quiz.Team),
		byUser: make(map[string]string),
	}
}

// Create makes a new team with the creator as its sole member and a zero
// score. The creator is moved out of any team they were on before.
func (r *Registry) Create(name, creator string) (*quiz.Team, error) {
	if _, ok := r.teams[name]; ok {
		return nil, ErrTeamExists
	}
	r.remove(creator)
	t := &quiz.Team{Name: name, Members: []string{creator}}
	r.teams[name] = t
	r.byUser[creator] = name
	return t, nil
}

// Join moves the user onto an existing team. Membership is exclusive: the
// user is removed from any other team first. Joining a team the user is
// already on is a no-op.
func (r *Registry) Join(user, name string) (*quiz.Team, error) {
	t, ok := r.teams[name]
	if !ok {
		return nil, ErrTeamNotFound
	}
	if r.byUser[user] == name {
		return t, nil
	}
	r.remove(user)
	t.Members = append(t.Members, user)
	r.byUser[user] = name
	return t, nil
}

// Leave removes the user from whichever team they belong to and returns it.
func (r *Registry) Leave(user string) (*quiz.Team, error) {
	name, ok := r.byUser[user]
	if !ok {
		return nil, ErrNotInTeam
	}
	t := r.teams[name]
	r.remove(user)
	return t, nil
}

// TeamOf returns the team the user belongs to, or nil.
func (r *Registry) TeamOf(user string) *quiz.Team {
	name, ok := r.byUser[user]
	if !ok {
		return nil
	}
	return r.teams[name]
}

// Get returns the named team, or ErrTeamNotFound.
func (r *Registry) Get(name string) (*quiz.Team, error) {
	t, ok := r.teams[name]
	if !ok {
		return nil, ErrTeamNotFound
	}
	return t, nil
}

// AdjustScore adds delta to the named team's score. Scores are signed and
// may go negative; penalties are expected.
func (r *Registry) AdjustScore(name string, delta int) (int, error) {
	t, ok := r.teams[name]
	if !ok {
		return 0, ErrTeamNotFound
	}
	t.Score += delta
	return t.Score, nil
}

// ResetScores sets every team's score back to zero, preserving membership.
func (r *Registry) ResetScores() {
	for _, t := range r.teams {
		t.Score = 0
	}
}

// List returns all teams sorted by name so broadcasts are deterministic.
func (r *Registry) List() []*quiz.Team {
	out := make([]*quiz.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered teams.
func (r *Registry) Len() int { return len(r.teams) }

func (r *Registry) remove(user string) {
	name, ok := r.byUser[user]
	if !ok {
		return
	}
	t := r.teams[name]
	for i, m := range t.Members {
		if m == user {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			break
		}
	}
	delete(r.byUser, user)
}
