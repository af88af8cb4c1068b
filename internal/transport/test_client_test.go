package transport

import (
	"bytes"
	"context"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshsync/internal/mesh"
	"meshsync/internal/relay"
	"meshsync/internal/vertexsync"
)

func startRelay(t *testing.T) (*relay.Hub, string) {
	t.Helper()
	hub := relay.NewHub(log.New(&bytes.Buffer{}, "", 0))
	srv := httptest.NewServer(httpHandler(hub))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialAndRun(t *testing.T, ctx context.Context, url, participant string) (*Client, chan []byte) {
	t.Helper()
	c, err := Dial(ctx, Config{URL: url, Room: "studio", Participant: participant, Logger: log.New(&bytes.Buffer{}, "", 0)})
	require.NoError(t, err)
	inbox := make(chan []byte, 16)
	go func() { _ = c.Run(ctx, func(raw []byte) { inbox <- raw }) }()
	t.Cleanup(func() { _ = c.Close() })
	return c, inbox
}

func waitForParticipants(t *testing.T, hub *relay.Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		rooms := hub.Rooms()
		return len(rooms) == 1 && len(rooms[0].Participants) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientsExchangeUpdatesThroughRelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub, url := startRelay(t)

	alice, aliceInbox := dialAndRun(t, ctx, url, "alice")
	_, bobInbox := dialAndRun(t, ctx, url, "bob")
	waitForParticipants(t, hub, 2)

	require.NoError(t, alice.SendVertexUpdate(4, mesh.Vec3{1, 2, 3}, false))

	select {
	case raw := <-bobInbox:
		u, msg, err := vertexsync.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, vertexsync.Update{Vertex: 4, Position: mesh.Vec3{1, 2, 3}, Final: false}, u)
		assert.Equal(t, "alice", msg.Sender)
	case <-time.After(2 * time.Second):
		t.Fatalf("bob did not receive the update")
	}

	select {
	case raw := <-aliceInbox:
		t.Fatalf("sender received its own update: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendAfterCloseFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, url := startRelay(t)

	c, _ := dialAndRun(t, ctx, url, "carol")
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.SendVertexUpdate(0, mesh.Vec3{}, true), ErrClosed)
}

func TestDialURL(t *testing.T) {
	got, err := dialURL(Config{URL: "http://relay:8090/ws", Room: "a b", Participant: "dave"})
	require.NoError(t, err)
	assert.Equal(t, "ws://relay:8090/ws?participant=dave&room=a+b", got)

	_, err = dialURL(Config{URL: "ftp://relay/ws", Room: "x"})
	assert.Error(t, err)
	_, err = dialURL(Config{URL: "ws://relay/ws"})
	assert.Error(t, err)
}
