package graph

import "gonum.org/v1/gonum/spatial/r2"

// Phase is the simulation lifecycle state.
type Phase int

const (
	// PhaseIdle is the state after construction, before the first step
	PhaseIdle Phase = iota
	// PhaseRunning means temperature is above the settle floor and nodes move
	PhaseRunning
	// PhaseSettled means ticking has stopped; positions are frozen until a
	// perturbation re-heats the simulation
	PhaseSettled
	// PhasePerturbed is entered by drag or a node-set change and re-enters
	// PhaseRunning on the next step
	PhasePerturbed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseSettled:
		return "settled"
	case PhasePerturbed:
		return "perturbed"
	default:
		return "unknown"
	}
}

// Temperature schedule. One temperature scalar drives all force magnitudes;
// it decays geometrically each step and the simulation settles once it
// crosses the floor.
const (
	// StartTemp is the build temperature used for pre-settling
	StartTemp = 1.0
	// AmbientTemp is the low temperature left after pre-settling
	AmbientTemp = 0.3
	// ReheatTemp is the floor a perturbation raises the temperature to
	ReheatTemp = 0.8
	// settleTemp is the decay floor below which the simulation settles
	settleTemp = 0.02
	// coolRate is the per-step geometric decay
	coolRate = 0.95
	// maxStep caps the clamped force displacement per node per step
	maxStep = 30.0
)

// DefaultSettleTicks is the bounded pre-settle iteration count run before
// the first paint.
const DefaultSettleTicks = 100

// Sim owns one view's physics: the scene, the temperature, and the phase.
// It is driven cooperatively by the render loop; every step runs to
// completion before the next step or input callback, so no step is ever
// observed half-applied.
type Sim struct {
	scene  *Scene
	store  *PositionStore
	temp   float64
	phase  Phase
	closed bool
}

// NewSim wraps a freshly built scene. The store must be the same one the
// scene was built against.
func NewSim(scene *Scene, store *PositionStore) *Sim {
	return &Sim{
		scene: scene,
		store: store,
		temp:  StartTemp,
		phase: PhaseIdle,
	}
}

func (sim *Sim) Scene() *Scene        { return sim.scene }
func (sim *Sim) Phase() Phase         { return sim.phase }
func (sim *Sim) Temperature() float64 { return sim.temp }

// Active reports whether further steps can still move nodes.
func (sim *Sim) Active() bool {
	return !sim.closed && sim.phase != PhaseSettled
}

// Step advances the simulation one tick: sums the composed forces into one
// displacement per free node, applies it, commits every free node to the
// position store, then cools. Returns false once settled or closed.
//
// Pinned nodes are snapped to their pin and never moved by forces; the
// anchor is permanently pinned at the scene center. A node whose position
// goes non-finite is reset to its last stored value instead of rendering a
// NaN.
func (sim *Sim) Step() bool {
	if sim.closed {
		return false
	}
	switch sim.phase {
	case PhaseSettled:
		return false
	case PhaseIdle, PhasePerturbed:
		sim.phase = PhaseRunning
	}

	s := sim.scene
	disp := make([]Vec, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.Pinned {
			continue
		}
		var f Vec
		for _, force := range defaultForces {
			f = r2.Add(f, force(i, s, sim.temp))
		}
		if l := vecLen(f); l > maxStep {
			f = r2.Scale(maxStep/l, f)
		}
		// Collision resolution is not clamped or temperature-scaled, so a
		// cold layout still separates overlapping nodes.
		disp[i] = r2.Add(f, collideForce(i, s, sim.temp))
	}

	for i, n := range s.Nodes {
		if n.Pinned {
			n.Pos = n.Pin
			continue
		}
		next := r2.Add(n.Pos, disp[i])
		if !isFinite(next) {
			if last, ok := sim.store.Get(n.ID); ok && isFinite(last) {
				next = last
			} else {
				next = s.Center
			}
		}
		n.Pos = next
		sim.store.Set(n.ID, next)
	}

	sim.temp *= coolRate
	if sim.temp < settleTemp {
		sim.phase = PhaseSettled
		return false
	}
	return true
}

// Settle runs up to n steps synchronously so the first paint shows a relaxed
// layout instead of nodes flying in from their seeds, then drops the
// temperature to ambient for the normal animation schedule.
func (sim *Sim) Settle(n int) {
	for i := 0; i < n; i++ {
		if !sim.Step() {
			break
		}
	}
	if sim.closed {
		return
	}
	sim.temp = AmbientTemp
	sim.phase = PhaseRunning
}

// Perturb re-heats the simulation, raising the temperature to at least
// ReheatTemp. Used on drag start and whenever the node set changes.
func (sim *Sim) Perturb() {
	if sim.closed {
		return
	}
	if sim.temp < ReheatTemp {
		sim.temp = ReheatTemp
	}
	sim.phase = PhasePerturbed
}

// Pin fixes a member at pos until Unpin. The pinned position is committed
// to the store immediately so a release keeps the node where it was left.
// The anchor cannot be re-pinned.
func (sim *Sim) Pin(id string, pos Vec) {
	if sim.closed {
		return
	}
	n := sim.scene.NodeByID(id)
	if n == nil || n.Kind == KindAnchor {
		return
	}
	if !isFinite(pos) {
		return
	}
	n.Pinned = true
	n.Pin = pos
	n.Pos = pos
	sim.store.Set(id, pos)
	sim.Perturb()
}

// Unpin releases a dragged member back to the forces. The anchor stays
// pinned.
func (sim *Sim) Unpin(id string) {
	if sim.closed {
		return
	}
	n := sim.scene.NodeByID(id)
	if n == nil || n.Kind == KindAnchor {
		return
	}
	n.Pinned = false
}

// Rebuild swaps in a freshly built scene (new data, new viewport) and
// re-heats so the layout relaxes into the new geometry. Stored positions
// were already consumed as seeds by the build.
func (sim *Sim) Rebuild(scene *Scene) {
	if sim.closed {
		return
	}
	sim.scene = scene
	sim.Perturb()
}

// Close stops the simulation permanently. Steps after Close are no-ops and
// never write to the store, so a tick that fires after its view is torn
// down cannot corrupt a successor's state.
func (sim *Sim) Close() {
	sim.closed = true
}

// Closed reports whether Close has been called.
func (sim *Sim) Closed() bool { return sim.closed }
