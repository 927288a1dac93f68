// Package reserve tracks logical exclusivity over shared world objects:
// building occupancy, provisional sleep reservations, construction crew
// slots, and exclusive point-claims on harvestable objects.
//
// Execution is single-threaded; the ledger enforces logical exclusivity, not
// thread safety. All mutation goes through named acquire/release methods so
// the capacity invariants hold by construction.
package reserve

import "log"

type Ledger struct {
	// Building occupancy, by building ID.
	occupants  map[string]map[string]bool // building -> agents inside
	occupantBy map[string]string          // agent -> building

	// Provisional sleep reservations, counted against capacity so a second
	// agent cannot out-walk the holder and steal the slot.
	sleep   map[string]map[string]bool // building -> reserving agents
	sleepBy map[string]string          // agent -> building

	// Construction crew slots, at most one per agent.
	crew   map[string]map[string]bool // site -> crew agents
	crewBy map[string]string          // agent -> site

	// Exclusive point-claims: one holder per object.
	points   map[string]string          // resource -> holding agent
	pointsBy map[string]map[string]bool // agent -> resources

	logf func(format string, args ...any)
}

func NewLedger() *Ledger {
	return &Ledger{
		occupants:  map[string]map[string]bool{},
		occupantBy: map[string]string{},
		sleep:      map[string]map[string]bool{},
		sleepBy:    map[string]string{},
		crew:       map[string]map[string]bool{},
		crewBy:     map[string]string{},
		points:     map[string]string{},
		pointsBy:   map[string]map[string]bool{},
		logf:       log.Printf,
	}
}

// SetLogf overrides where invariant violations are reported. Tests use this
// to assert on (or silence) the loud path.
func (l *Ledger) SetLogf(f func(format string, args ...any)) {
	if f == nil {
		f = func(string, ...any) {}
	}
	l.logf = f
}

// Occupancy ------------------------------------------------------------------

func (l *Ledger) Occupants(buildingID string) int {
	return len(l.occupants[buildingID])
}

func (l *Ledger) PendingSleep(buildingID string) int {
	return len(l.sleep[buildingID])
}

// Enter admits the agent into the building if occupancy plus pending sleep
// reservations stays within capacity. An agent holding a sleep reservation on
// this building consumes its own reservation, so the move never fails for it.
func (l *Ledger) Enter(agentID, buildingID string, capacity int) bool {
	if cur := l.occupantBy[agentID]; cur == buildingID && cur != "" {
		return true
	}
	used := len(l.occupants[buildingID]) + len(l.sleep[buildingID])
	if l.sleep[buildingID][agentID] {
		used-- // own reservation converts, it does not double-count
	}
	if used >= capacity {
		return false
	}
	l.Leave(agentID)
	l.ReleaseSleep(agentID)
	set := l.occupants[buildingID]
	if set == nil {
		set = map[string]bool{}
		l.occupants[buildingID] = set
	}
	set[agentID] = true
	l.occupantBy[agentID] = buildingID
	return true
}

func (l *Ledger) Leave(agentID string) {
	b := l.occupantBy[agentID]
	if b == "" {
		return
	}
	delete(l.occupants[b], agentID)
	if len(l.occupants[b]) == 0 {
		delete(l.occupants, b)
	}
	delete(l.occupantBy, agentID)
}

// Sleep reservations ---------------------------------------------------------

// ReserveSleep places a provisional claim on a bed building before the agent
// physically arrives. Counted against capacity.
func (l *Ledger) ReserveSleep(agentID, buildingID string, capacity int) bool {
	if l.sleepBy[agentID] == buildingID {
		return true
	}
	if len(l.occupants[buildingID])+len(l.sleep[buildingID]) >= capacity {
		return false
	}
	l.ReleaseSleep(agentID)
	set := l.sleep[buildingID]
	if set == nil {
		set = map[string]bool{}
		l.sleep[buildingID] = set
	}
	set[agentID] = true
	l.sleepBy[agentID] = buildingID
	return true
}

func (l *Ledger) ReleaseSleep(agentID string) {
	b := l.sleepBy[agentID]
	if b == "" {
		return
	}
	delete(l.sleep[b], agentID)
	if len(l.sleep[b]) == 0 {
		delete(l.sleep, b)
	}
	delete(l.sleepBy, agentID)
}

func (l *Ledger) SleepReservation(agentID string) (buildingID string, ok bool) {
	b := l.sleepBy[agentID]
	return b, b != ""
}

// Crew slots ------------------------------------------------------------------

func (l *Ledger) CrewSize(siteID string) int {
	return len(l.crew[siteID])
}

// ReserveCrew claims a build-crew slot. An agent holds at most one; claiming a
// new site releases the old slot first.
func (l *Ledger) ReserveCrew(agentID, siteID string, crewCap int) bool {
	if l.crewBy[agentID] == siteID {
		return true
	}
	if len(l.crew[siteID]) >= crewCap {
		return false
	}
	l.ReleaseCrew(agentID)
	set := l.crew[siteID]
	if set == nil {
		set = map[string]bool{}
		l.crew[siteID] = set
	}
	set[agentID] = true
	l.crewBy[agentID] = siteID
	return true
}

func (l *Ledger) ReleaseCrew(agentID string) {
	s := l.crewBy[agentID]
	if s == "" {
		return
	}
	delete(l.crew[s], agentID)
	if len(l.crew[s]) == 0 {
		delete(l.crew, s)
	}
	delete(l.crewBy, agentID)
}

func (l *Ledger) CrewAssignment(agentID string) (siteID string, ok bool) {
	s := l.crewBy[agentID]
	return s, s != ""
}

// Point claims ----------------------------------------------------------------

// ClaimPoint takes the exclusive claim on a harvestable object. Fails if any
// other agent holds it; re-claiming one's own is a no-op success.
func (l *Ledger) ClaimPoint(agentID, resourceID string) bool {
	holder, held := l.points[resourceID]
	if held {
		return holder == agentID
	}
	l.points[resourceID] = agentID
	set := l.pointsBy[agentID]
	if set == nil {
		set = map[string]bool{}
		l.pointsBy[agentID] = set
	}
	set[resourceID] = true
	return true
}

func (l *Ledger) ReleasePoint(agentID, resourceID string) {
	holder, held := l.points[resourceID]
	if !held {
		return
	}
	if holder != agentID {
		l.logf("reserve: %s released point %s held by %s", agentID, resourceID, holder)
		return
	}
	delete(l.points, resourceID)
	delete(l.pointsBy[agentID], resourceID)
	if len(l.pointsBy[agentID]) == 0 {
		delete(l.pointsBy, agentID)
	}
}

func (l *Ledger) PointHolder(resourceID string) (agentID string, held bool) {
	a, ok := l.points[resourceID]
	return a, ok
}

// Global release --------------------------------------------------------------

// ReleaseAllFor frees everything the agent holds: occupancy, sleep
// reservation, crew slot, and all point-claims. Idempotent; used by task
// changes and death. Release must always precede acquisition within a tick.
func (l *Ledger) ReleaseAllFor(agentID string) {
	l.Leave(agentID)
	l.ReleaseSleep(agentID)
	l.ReleaseCrew(agentID)
	for resourceID := range l.pointsBy[agentID] {
		delete(l.points, resourceID)
	}
	delete(l.pointsBy, agentID)
}

// DropTarget clears every claim referencing a destroyed object: point-claims
// on it, crew slots for it, sleep reservations and occupancy in it.
func (l *Ledger) DropTarget(id string) {
	if holder, held := l.points[id]; held {
		delete(l.points, id)
		delete(l.pointsBy[holder], id)
		if len(l.pointsBy[holder]) == 0 {
			delete(l.pointsBy, holder)
		}
	}
	for agentID := range l.crew[id] {
		delete(l.crewBy, agentID)
	}
	delete(l.crew, id)
	for agentID := range l.sleep[id] {
		delete(l.sleepBy, agentID)
	}
	delete(l.sleep, id)
	for agentID := range l.occupants[id] {
		delete(l.occupantBy, agentID)
	}
	delete(l.occupants, id)
}
