package vertexsync

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshsync/internal/mesh"
	"meshsync/internal/tester"
	"meshsync/internal/visual"
)

func newAdapter(t *testing.T) (*mesh.Topology, *visual.Registry, *Adapter, *bytes.Buffer) {
	t.Helper()
	topo, err := mesh.FromRaw(tester.Cube())
	require.NoError(t, err)
	reg := visual.NewRegistry(topo, visual.NopSink{}, visual.Options{})
	logs := &bytes.Buffer{}
	return topo, reg, NewAdapter(topo, reg, log.New(logs, "", 0)), logs
}

func TestApplyTracksRemoteHold(t *testing.T) {
	topo, _, a, _ := newAdapter(t)

	require.NoError(t, a.Apply(Update{Vertex: 5, Position: mesh.Vec3{0, 2, 1}, Final: false}))
	assert.True(t, topo.Vertices[5].HeldByRemote)
	assert.Equal(t, mesh.Vec3{0, 2, 1}, topo.Vertices[5].Position)

	require.NoError(t, a.Apply(Update{Vertex: 5, Position: mesh.Vec3{0, 3, 1}, Final: true}))
	assert.False(t, topo.Vertices[5].HeldByRemote)
	assert.Equal(t, mesh.Vec3{0, 3, 1}, topo.Vertices[5].Position)
}

func TestApplyRefreshesEdges(t *testing.T) {
	topo, reg, a, _ := newAdapter(t)
	require.NoError(t, a.Apply(Update{Vertex: 0, Position: mesh.Vec3{-1, -1, -1}, Final: true}))

	for _, e := range topo.Vertices[0].ConnectedEdges {
		got, _ := reg.Transform(e.ID)
		want := visual.EdgeTransform(topo.Vertices[e.Vert1].Position, topo.Vertices[e.Vert2].Position, visual.DefaultEdgeThickness)
		assert.Equal(t, want, got)
	}
}

func TestApplyRejectsOutOfRange(t *testing.T) {
	topo, _, a, _ := newAdapter(t)
	before := topo.Positions()

	err := a.Apply(Update{Vertex: 8, Position: mesh.Vec3{1, 1, 1}})
	assert.True(t, errors.Is(err, ErrProtocol))
	assert.Equal(t, before, topo.Positions())
}

func TestHandlePayloadRoundTrip(t *testing.T) {
	topo, _, a, _ := newAdapter(t)
	raw, err := Encode(Update{Vertex: 3, Position: mesh.Vec3{0.5, 0.25, -4}, Final: false}, "peer-a")
	require.NoError(t, err)

	assert.True(t, a.HandlePayload(raw))
	assert.Equal(t, mesh.Vec3{0.5, 0.25, -4}, topo.Vertices[3].Position)
	assert.True(t, topo.Vertices[3].HeldByRemote)
}

func TestHandlePayloadDiscardsMalformed(t *testing.T) {
	cases := map[string]string{
		"NotJSON":         `vertex 3`,
		"WrongType":       `{"type":"chat","vertex":1,"position":[0,0,0],"final":true}`,
		"MissingVertex":   `{"type":"vertex_update","position":[0,0,0],"final":true}`,
		"MissingPosition": `{"type":"vertex_update","vertex":1,"final":true}`,
		"MissingFinal":    `{"type":"vertex_update","vertex":1,"position":[0,0,0]}`,
		"ShortPosition":   `{"type":"vertex_update","vertex":1,"position":[0,0],"final":true}`,
		"StringVertex":    `{"type":"vertex_update","vertex":"1","position":[0,0,0],"final":true}`,
		"NegativeVertex":  `{"type":"vertex_update","vertex":-2,"position":[0,0,0],"final":true}`,
		"OutOfRange":      `{"type":"vertex_update","vertex":100,"position":[0,0,0],"final":true}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			topo, _, a, logs := newAdapter(t)
			before := topo.Positions()

			assert.False(t, a.HandlePayload([]byte(payload)))
			assert.Equal(t, before, topo.Positions())
			for _, v := range topo.Vertices {
				assert.False(t, v.HeldByRemote)
			}
			assert.Contains(t, logs.String(), "discard payload")
		})
	}
}

func TestDecodeErrorsAreProtocolErrors(t *testing.T) {
	_, _, err := Decode([]byte(`{"type":"vertex_update"}`))
	var perr *ProtocolError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "vertex is required", perr.Reason)
	assert.True(t, errors.Is(err, ErrProtocol))
}
