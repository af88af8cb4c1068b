// Package deform drives vertex moves from local input.
//
// The engine reports hover and grab events plus the controlling input's world
// position every tick while a grab is active; Controller turns them into
// vertex position writes, visual refreshes and outbound sync updates.
package deform

import (
	"errors"
	"fmt"
	"log"

	"meshsync/internal/mesh"
)

var (
	ErrUnknownVertex = errors.New("deform: unknown vertex")
	ErrNotHeld       = errors.New("deform: vertex is not held")
	ErrHeldByRemote  = errors.New("deform: vertex is held by a remote participant")
)

type State int

const (
	Idle State = iota
	Hovered
	Held
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Hovered:
		return "hovered"
	case Held:
		return "held"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Cue is the selection highlight shown on a vertex object.
type Cue int

const (
	CueUnselected Cue = iota
	CueHovered
	CueSelected
)

type CueSink interface {
	SetCue(vertex int, cue Cue)
}

type Refresher interface {
	Refresh(vertex int) int
}

// Sender broadcasts a vertex move to the other participants. Delivery is
// fire-and-forget.
type Sender interface {
	SendVertexUpdate(vertex int, position mesh.Vec3, final bool) error
}

type Options struct {
	// RejectRemoteHeld refuses local grabs of a vertex another participant is
	// dragging. Off by default: both participants may drag the same vertex and
	// the last update applied wins.
	RejectRemoteHeld bool
	Logger           *log.Logger
}

// Deps are the collaborators a Controller writes through.
type Deps struct {
	Registry Refresher
	Sender   Sender
	Space    SpaceProvider
	Cues     CueSink
}

// Controller holds the Idle/Hovered/Held state of every vertex. It is not
// safe for concurrent use; all calls belong on the session's tick.
type Controller struct {
	topo     *mesh.Topology
	deps     Deps
	opts     Options
	logger   *log.Logger
	states   []State
	snapshot []mesh.Vec3
}

func NewController(topo *mesh.Topology, deps Deps, opts Options) *Controller {
	if deps.Space == nil {
		deps.Space = StaticSpace(IdentitySpace())
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		topo:   topo,
		deps:   deps,
		opts:   opts,
		logger: logger,
		states: make([]State, len(topo.Vertices)),
	}
}

// State returns the state of a vertex; unknown vertices read as Idle.
func (c *Controller) State(vertex int) State {
	if vertex < 0 || vertex >= len(c.states) {
		return Idle
	}
	return c.states[vertex]
}

// Snapshot returns the positions captured when the most recent hover began.
func (c *Controller) Snapshot() []mesh.Vec3 {
	return append([]mesh.Vec3(nil), c.snapshot...)
}

func (c *Controller) OnHoverEnter(vertex int) error {
	if _, err := c.vertex(vertex); err != nil {
		return err
	}
	if c.states[vertex] != Idle {
		return nil
	}
	c.snapshot = c.topo.Positions()
	c.states[vertex] = Hovered
	c.cue(vertex, CueHovered)
	return nil
}

// OnHoverExit drops a hover. A held vertex stays held until the grab ends.
func (c *Controller) OnHoverExit(vertex int) error {
	if _, err := c.vertex(vertex); err != nil {
		return err
	}
	if c.states[vertex] != Hovered {
		return nil
	}
	c.states[vertex] = Idle
	c.cue(vertex, CueUnselected)
	return nil
}

// OnGrabStart begins a drag. Grabbing without a prior hover is accepted and
// takes the snapshot the hover would have.
func (c *Controller) OnGrabStart(vertex int) error {
	v, err := c.vertex(vertex)
	if err != nil {
		return err
	}
	if v.HeldByRemote {
		if c.opts.RejectRemoteHeld {
			return fmt.Errorf("grab vertex %d: %w", vertex, ErrHeldByRemote)
		}
		c.logger.Printf("deform: vertex %d grabbed while held by a remote participant", vertex)
	}
	switch c.states[vertex] {
	case Held:
		return nil
	case Idle:
		c.snapshot = c.topo.Positions()
	}
	c.states[vertex] = Held
	c.cue(vertex, CueSelected)
	return nil
}

// OnGrabTick moves a held vertex to the controlling input's world position,
// expressed in the parent space, and sends a non-final update.
func (c *Controller) OnGrabTick(vertex int, world mesh.Vec3) error {
	v, err := c.vertex(vertex)
	if err != nil {
		return err
	}
	if c.states[vertex] != Held {
		return fmt.Errorf("tick vertex %d: %w", vertex, ErrNotHeld)
	}
	v.Position = c.deps.Space.EditingSpace().ToLocal(world)
	if c.deps.Registry != nil {
		c.deps.Registry.Refresh(vertex)
	}
	c.cue(vertex, CueSelected)
	c.send(v, false)
	return nil
}

// OnGrabEnd releases a held vertex and sends the final update.
func (c *Controller) OnGrabEnd(vertex int) error {
	v, err := c.vertex(vertex)
	if err != nil {
		return err
	}
	if c.states[vertex] != Held {
		return fmt.Errorf("release vertex %d: %w", vertex, ErrNotHeld)
	}
	c.states[vertex] = Idle
	c.cue(vertex, CueUnselected)
	c.send(v, true)
	return nil
}

func (c *Controller) vertex(id int) (*mesh.Vertex, error) {
	v := c.topo.Vertex(id)
	if v == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVertex, id)
	}
	return v, nil
}

func (c *Controller) cue(vertex int, cue Cue) {
	if c.deps.Cues != nil {
		c.deps.Cues.SetCue(vertex, cue)
	}
}

func (c *Controller) send(v *mesh.Vertex, final bool) {
	if c.deps.Sender == nil {
		return
	}
	if err := c.deps.Sender.SendVertexUpdate(v.ID, v.Position, final); err != nil {
		c.logger.Printf("deform: send vertex %d update (final=%t): %v", v.ID, final, err)
	}
}
