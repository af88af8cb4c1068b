package deform

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshsync/internal/mesh"
	"meshsync/internal/tester"
	"meshsync/internal/visual"
)

type cueLog map[int][]Cue

func (l cueLog) SetCue(vertex int, cue Cue) {
	l[vertex] = append(l[vertex], cue)
}

type fixture struct {
	topo     *mesh.Topology
	registry *visual.Registry
	sender   *tester.Sender
	cues     cueLog
	ctrl     *Controller
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, space Space, opts Options) *fixture {
	t.Helper()
	topo, err := mesh.FromRaw(tester.Cube())
	require.NoError(t, err)
	f := &fixture{
		topo:     topo,
		registry: visual.NewRegistry(topo, visual.NopSink{}, visual.Options{}),
		sender:   &tester.Sender{},
		cues:     cueLog{},
		logs:     &bytes.Buffer{},
	}
	opts.Logger = log.New(f.logs, "", 0)
	f.ctrl = NewController(topo, Deps{
		Registry: f.registry,
		Sender:   f.sender,
		Space:    StaticSpace(space),
		Cues:     f.cues,
	}, opts)
	return f
}

func TestControllerStateMachine(t *testing.T) {
	f := newFixture(t, IdentitySpace(), Options{})

	require.NoError(t, f.ctrl.OnHoverEnter(0))
	assert.Equal(t, Hovered, f.ctrl.State(0))
	assert.Empty(t, f.sender.Sent, "hover must not sync")

	require.NoError(t, f.ctrl.OnHoverExit(0))
	assert.Equal(t, Idle, f.ctrl.State(0))

	require.NoError(t, f.ctrl.OnHoverEnter(0))
	require.NoError(t, f.ctrl.OnGrabStart(0))
	assert.Equal(t, Held, f.ctrl.State(0))

	// Leaving hover while dragging keeps the hold.
	require.NoError(t, f.ctrl.OnHoverExit(0))
	assert.Equal(t, Held, f.ctrl.State(0))

	require.NoError(t, f.ctrl.OnGrabEnd(0))
	assert.Equal(t, Idle, f.ctrl.State(0))

	assert.Equal(t, []Cue{CueHovered, CueUnselected, CueHovered, CueSelected, CueUnselected}, f.cues[0])
}

func TestControllerMoveUpdatesIncidentEdgesAndSyncs(t *testing.T) {
	f := newFixture(t, IdentitySpace(), Options{})

	before := make([]visual.Transform, len(f.topo.Edges))
	for i := range before {
		before[i], _ = f.registry.Transform(i)
	}

	require.NoError(t, f.ctrl.OnHoverEnter(0))
	require.NoError(t, f.ctrl.OnGrabStart(0))
	require.NoError(t, f.ctrl.OnGrabTick(0, mesh.Vec3{1, 0, 0}))

	assert.Equal(t, mesh.Vec3{1, 0, 0}, f.topo.Vertices[0].Position)
	for _, e := range f.topo.Edges {
		after, _ := f.registry.Transform(e.ID)
		if e.Touches(0) {
			assert.NotEqual(t, before[e.ID], after, "edge %d", e.ID)
		} else {
			assert.Equal(t, before[e.ID], after, "edge %d", e.ID)
		}
	}

	last, ok := f.sender.Last()
	require.True(t, ok)
	assert.Equal(t, tester.SentUpdate{Vertex: 0, Position: mesh.Vec3{1, 0, 0}, Final: false}, last)

	require.NoError(t, f.ctrl.OnGrabEnd(0))
	last, _ = f.sender.Last()
	assert.Equal(t, tester.SentUpdate{Vertex: 0, Position: mesh.Vec3{1, 0, 0}, Final: true}, last)
	assert.Len(t, f.sender.Sent, 2)
}

func TestControllerSnapshotTakenOnHover(t *testing.T) {
	f := newFixture(t, IdentitySpace(), Options{})
	require.NoError(t, f.ctrl.OnHoverEnter(2))
	want := f.topo.Positions()

	require.NoError(t, f.ctrl.OnGrabStart(2))
	require.NoError(t, f.ctrl.OnGrabTick(2, mesh.Vec3{5, 5, 5}))
	assert.Equal(t, want, f.ctrl.Snapshot())
}

func TestControllerAppliesParentSpace(t *testing.T) {
	space := Space{
		Position: mesh.Vec3{10, 0, 0},
		Rotation: mgl32.QuatRotate(mgl32.DegToRad(90), mesh.Vec3{0, 1, 0}),
		Scale:    mesh.Vec3{2, 2, 2},
	}
	f := newFixture(t, space, Options{})
	require.NoError(t, f.ctrl.OnGrabStart(1))

	// Local (1,0,0) rotated 90 degrees about Y lands on (0,0,-1); scaled by 2
	// and offset by the parent translation.
	require.NoError(t, f.ctrl.OnGrabTick(1, mesh.Vec3{10, 0, -2}))
	got := f.topo.Vertices[1].Position
	assert.True(t, got.ApproxEqualThreshold(mesh.Vec3{1, 0, 0}, 1e-5), "got %v", got)
}

func TestSpaceToLocalOrder(t *testing.T) {
	s := Space{
		Position: mesh.Vec3{1, 2, 3},
		Rotation: mgl32.QuatRotate(mgl32.DegToRad(180), mesh.Vec3{0, 0, 1}),
		Scale:    mesh.Vec3{2, 4, 1},
	}
	got := s.ToLocal(mesh.Vec3{3, 6, 4})
	// (3,6,4)-(1,2,3) = (2,4,1); /scale = (1,1,1); inverse 180 about Z = (-1,-1,1).
	assert.True(t, got.ApproxEqualThreshold(mesh.Vec3{-1, -1, 1}, 1e-5), "got %v", got)

	zero := Space{Scale: mesh.Vec3{0, 1, 1}}
	assert.Equal(t, mesh.Vec3{3, 6, 4}, zero.ToLocal(mesh.Vec3{3, 6, 4}))
}

func TestControllerErrors(t *testing.T) {
	f := newFixture(t, IdentitySpace(), Options{})

	assert.True(t, errors.Is(f.ctrl.OnHoverEnter(42), ErrUnknownVertex))
	assert.True(t, errors.Is(f.ctrl.OnGrabStart(-1), ErrUnknownVertex))
	assert.True(t, errors.Is(f.ctrl.OnGrabTick(0, mesh.Vec3{}), ErrNotHeld))
	assert.True(t, errors.Is(f.ctrl.OnGrabEnd(0), ErrNotHeld))
	assert.Equal(t, Idle, f.ctrl.State(42))
	assert.Empty(t, f.sender.Sent)
}

func TestControllerRemoteHeldIsPermissiveByDefault(t *testing.T) {
	f := newFixture(t, IdentitySpace(), Options{})
	f.topo.Vertices[0].HeldByRemote = true

	require.NoError(t, f.ctrl.OnGrabStart(0))
	assert.Equal(t, Held, f.ctrl.State(0))
	assert.Contains(t, f.logs.String(), "held by a remote participant")
}

func TestControllerRejectRemoteHeld(t *testing.T) {
	f := newFixture(t, IdentitySpace(), Options{RejectRemoteHeld: true})
	f.topo.Vertices[0].HeldByRemote = true

	err := f.ctrl.OnGrabStart(0)
	assert.True(t, errors.Is(err, ErrHeldByRemote))
	assert.Equal(t, Idle, f.ctrl.State(0))
}

func TestControllerLogsSendFailure(t *testing.T) {
	f := newFixture(t, IdentitySpace(), Options{})
	f.sender.Err = errors.New("socket closed")

	require.NoError(t, f.ctrl.OnGrabStart(4))
	require.NoError(t, f.ctrl.OnGrabTick(4, mesh.Vec3{0, 0, 2}))
	assert.Contains(t, f.logs.String(), "socket closed")
	assert.Equal(t, mesh.Vec3{0, 0, 2}, f.topo.Vertices[4].Position)
}
