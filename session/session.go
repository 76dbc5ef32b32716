// Package session carries the identity of the authenticated actor and
// broadcasts sign-in/sign-out changes to the components that depend on them.
package session

import (
	"errors"
	"sort"
	"sync"
)

// ErrNoActor is returned when an operation requires an authenticated actor but none is present
var ErrNoActor = errors.New("no authenticated actor")

// Actor is the authenticated user on whose behalf an operation executes
type Actor struct {
	ID string
}

// IsZero reports whether no actor identity is present
func (a Actor) IsZero() bool {
	return a.ID == ""
}

// Change is emitted whenever an actor signs in or out
type Change struct {
	Actor    Actor
	SignedIn bool
}

// Tracker records which actors currently hold a live session. An actor may
// hold several sessions at once; it is signed out when the last one ends.
type Tracker struct {
	mu      sync.Mutex
	active  map[string]int
	subs    map[int]chan Change
	nextSub int
}

// NewTracker creates an empty session tracker
func NewTracker() *Tracker {
	return &Tracker{
		active: make(map[string]int),
		subs:   make(map[int]chan Change),
	}
}

// SignIn opens a session for the actor. Subscribers are notified only for
// the actor's first concurrent session.
func (t *Tracker) SignIn(actor Actor) {
	if actor.IsZero() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active[actor.ID]++
	if t.active[actor.ID] == 1 {
		t.publish(Change{Actor: actor, SignedIn: true})
	}
}

// SignOut closes one session for the actor
func (t *Tracker) SignOut(actor Actor) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.active[actor.ID]
	if !ok {
		return
	}
	if n > 1 {
		t.active[actor.ID] = n - 1
		return
	}
	delete(t.active, actor.ID)
	t.publish(Change{Actor: actor, SignedIn: false})
}

// Active returns the actors with at least one live session, sorted by ID
func (t *Tracker) Active() []Actor {
	t.mu.Lock()
	defer t.mu.Unlock()

	actors := make([]Actor, 0, len(t.active))
	for id := range t.active {
		actors = append(actors, Actor{ID: id})
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].ID < actors[j].ID })
	return actors
}

// Subscribe returns a channel receiving session changes and a function that
// cancels the subscription. Changes are dropped for a subscriber whose buffer is full.
func (t *Tracker) Subscribe(buffer int) (<-chan Change, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan Change, buffer)
	t.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publish must be called with t.mu held
func (t *Tracker) publish(change Change) {
	for _, ch := range t.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
