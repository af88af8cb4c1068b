package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshsync/internal/deform"
	"meshsync/internal/mesh"
	"meshsync/internal/mesh/importer"
	"meshsync/internal/meshstore"
	"meshsync/internal/tester"
	"meshsync/internal/visual"
)

func TestParseVec3(t *testing.T) {
	v, err := parseVec3(" 1, -2.5 ,3")
	require.NoError(t, err)
	assert.Equal(t, mesh.Vec3{1, -2.5, 3}, v)

	_, err = parseVec3("1,2")
	assert.Error(t, err)
	_, err = parseVec3("1,b,3")
	assert.Error(t, err)
}

func TestDragScriptSendsInterimThenFinal(t *testing.T) {
	topo, err := mesh.FromRaw(tester.Cube())
	require.NoError(t, err)
	sender := &tester.Sender{}
	ctrl := deform.NewController(topo, deform.Deps{
		Registry: visual.NewRegistry(topo, visual.NopSink{}, visual.Options{}),
		Sender:   sender,
	}, deform.Options{})

	script := newDragScript(0, mesh.Vec3{0, 0, -2}, 4)
	for !script.done() {
		require.NoError(t, script.step(ctrl, topo))
	}

	require.Len(t, sender.Sent, 5)
	for _, u := range sender.Sent[:4] {
		assert.False(t, u.Final)
	}
	last := sender.Sent[4]
	assert.True(t, last.Final)
	assert.Equal(t, mesh.Vec3{0, 0, -2}, last.Position)
	assert.Equal(t, mesh.Vec3{0, 0, -2}, topo.Vertices[0].Position)
	assert.Equal(t, deform.Idle, ctrl.State(0))
}

func TestSaveMeshPublishesLivePositions(t *testing.T) {
	ctx := context.Background()
	store := meshstore.NewDiskStore(t.TempDir())
	topo, err := mesh.FromRaw(tester.Cube())
	require.NoError(t, err)
	topo.Vertices[0].Position = mesh.Vec3{-1, -1, -1}

	require.NoError(t, saveMesh(ctx, store, "edited.json", topo))

	data, err := store.Get(ctx, "edited.json")
	require.NoError(t, err)
	saved, err := importer.Decode("edited.json", data)
	require.NoError(t, err)
	assert.Len(t, saved.Vertices, 8)
	assert.Equal(t, mesh.Vec3{-1, -1, -1}, saved.Vertices[0])
	assert.Equal(t, topo.Triangles, saved.Triangles)

	assert.Error(t, saveMesh(ctx, store, "edited.obj", topo))
}
