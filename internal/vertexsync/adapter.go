// Package vertexsync applies vertex moves received from other participants.
//
// There is no ordering or conflict resolution beyond arrival order: the last
// update applied to a vertex wins, whether it came from the network or from
// the local controller.
package vertexsync

import (
	"fmt"
	"log"

	"meshsync/internal/mesh"
)

type Refresher interface {
	Refresh(vertex int) int
}

type Adapter struct {
	topo     *mesh.Topology
	registry Refresher
	logger   *log.Logger
}

func NewAdapter(topo *mesh.Topology, registry Refresher, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{topo: topo, registry: registry, logger: logger}
}

// Apply writes the remote position, marks the vertex held until a final
// update arrives and refreshes its edges. Out of range vertices are rejected
// without touching state.
func (a *Adapter) Apply(u Update) error {
	v := a.topo.Vertex(u.Vertex)
	if v == nil {
		return &ProtocolError{Reason: fmt.Sprintf("vertex %d out of range [0, %d)", u.Vertex, len(a.topo.Vertices))}
	}
	v.Position = u.Position
	v.HeldByRemote = !u.Final
	if a.registry != nil {
		a.registry.Refresh(u.Vertex)
	}
	return nil
}

// HandlePayload decodes and applies one inbound message. Bad payloads are
// logged and dropped so a single message cannot take the session down.
func (a *Adapter) HandlePayload(raw []byte) bool {
	u, msg, err := Decode(raw)
	if err == nil {
		err = a.Apply(u)
	}
	if err != nil {
		a.logger.Printf("vertexsync: discard payload from %q: %v", msg.Sender, err)
		return false
	}
	return true
}
