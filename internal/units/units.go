// Package units tracks units on the battle map: where they are, who they
// target and which waypoints they are walking.
package units

import (
	"fmt"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"hex-planner/internal/timer"
)

// arriveEpsilon is how close a unit must get to a waypoint to count as there.
const arriveEpsilon = 0.01

// Faction is the side a unit fights for.
type Faction int

const (
	Ally Faction = iota
	Enemy
)

// Opponent returns the faction f fights against.
func (f Faction) Opponent() Faction {
	if f == Ally {
		return Enemy
	}
	return Ally
}

func (f Faction) String() string {
	if f == Enemy {
		return "enemy"
	}
	return "ally"
}

// ParseFaction maps "ally" or "enemy" to a Faction.
func ParseFaction(s string) (Faction, error) {
	switch s {
	case "ally":
		return Ally, nil
	case "enemy":
		return Enemy, nil
	}
	return 0, fmt.Errorf("units: unknown faction %q", s)
}

// Unit is a single agent on the map.
type Unit struct {
	ID       int
	Faction  Faction
	Range    float64
	Speed    float64 // world units per second
	Position orb.Point
	Target   *Unit

	waypoints []orb.Point
	retarget  *timer.Timer
}

// Follow replaces the unit's route.
func (u *Unit) Follow(waypoints []orb.Point) {
	u.waypoints = append([]orb.Point(nil), waypoints...)
}

// Waypoints returns the remaining route.
func (u *Unit) Waypoints() []orb.Point { return u.waypoints }

// RetargetIn returns the simulated time until u next reacquires a target.
func (u *Unit) RetargetIn() time.Duration { return u.retarget.Remaining() }

// Moving reports whether the unit still has somewhere to go.
func (u *Unit) Moving() bool { return len(u.waypoints) > 0 }

// Step moves the unit toward its waypoints for dt at its speed. Waypoints
// reached during the step are consumed and the leftover distance carries on
// to the next one.
func (u *Unit) Step(dt time.Duration) {
	budget := u.Speed * dt.Seconds()
	for len(u.waypoints) > 0 {
		dest := u.waypoints[0]
		dist := planar.Distance(u.Position, dest)
		if dist <= arriveEpsilon {
			u.Position = dest
			u.waypoints = u.waypoints[1:]
			continue
		}
		if budget <= 0 {
			return
		}
		if budget >= dist {
			budget -= dist
			u.Position = dest
			u.waypoints = u.waypoints[1:]
			continue
		}
		ratio := budget / dist
		u.Position = orb.Point{
			u.Position[0] + (dest[0]-u.Position[0])*ratio,
			u.Position[1] + (dest[1]-u.Position[1])*ratio,
		}
		return
	}
}

// Registry owns all units and their retarget timers.
type Registry struct {
	units         map[int]*Unit
	timers        *timer.Registry
	owners        map[*timer.Timer]*Unit
	retargetEvery time.Duration
	nextID        int
}

// NewRegistry creates an empty registry. Each unit reacquires its target
// every retargetEvery of simulated time.
func NewRegistry(timers *timer.Registry, retargetEvery time.Duration) *Registry {
	return &Registry{
		units:         make(map[int]*Unit),
		timers:        timers,
		owners:        make(map[*timer.Timer]*Unit),
		retargetEvery: retargetEvery,
	}
}

// Spawn places a new unit and starts its retarget timer.
func (r *Registry) Spawn(f Faction, pos orb.Point, rng, speed float64) *Unit {
	r.nextID++
	u := &Unit{ID: r.nextID, Faction: f, Range: rng, Speed: speed, Position: pos}
	u.retarget = r.timers.Make(r.retargetEvery).Start()
	r.owners[u.retarget] = u
	r.units[u.ID] = u
	return u
}

// Get returns the unit with the given ID.
func (r *Registry) Get(id int) (*Unit, bool) {
	u, ok := r.units[id]
	return u, ok
}

// Remove deletes a unit and its timer. Other units stop targeting it.
func (r *Registry) Remove(id int) {
	u, ok := r.units[id]
	if !ok {
		return
	}
	delete(r.units, id)
	delete(r.owners, u.retarget)
	u.retarget.Delete()
	for _, other := range r.units {
		if other.Target == u {
			other.Target = nil
		}
	}
}

// Len returns the number of units.
func (r *Registry) Len() int { return len(r.units) }

// Units returns every unit ordered by ID.
func (r *Registry) Units() []*Unit {
	all := make([]*Unit, 0, len(r.units))
	for _, u := range r.units {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// FindTarget returns the nearest unit of the faction opposing f whose
// distance from pos is within rng, or nil.
func (r *Registry) FindTarget(f Faction, pos orb.Point, rng float64) *Unit {
	var best *Unit
	bestDist := 0.0
	for _, u := range r.Units() {
		if u.Faction != f.Opponent() {
			continue
		}
		d := planar.DistanceSquared(u.Position, pos)
		if best == nil || d < bestDist {
			best, bestDist = u, d
		}
	}
	if best == nil || bestDist > rng*rng {
		return nil
	}
	return best
}

// Acquire points u at its nearest opponent in range and restarts its
// retarget countdown.
func (r *Registry) Acquire(u *Unit) *Unit {
	u.Target = r.FindTarget(u.Faction, u.Position, u.Range)
	u.retarget.Reset()
	u.retarget.Start()
	return u.Target
}

// Tick advances the simulation by dt: units move along their routes, then
// every unit whose retarget timer ran out reacquires a target and restarts
// the timer. It returns the units that retargeted.
func (r *Registry) Tick(dt time.Duration) []*Unit {
	for _, u := range r.Units() {
		u.Step(dt)
	}
	var retargeted []*Unit
	for _, t := range r.timers.Tick(dt) {
		u, ok := r.owners[t]
		if !ok {
			continue
		}
		r.Acquire(u)
		retargeted = append(retargeted, u)
	}
	return retargeted
}
