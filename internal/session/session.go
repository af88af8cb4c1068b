// Package session wires one participant's editing state together: topology,
// visual registry, local controller and remote adapter, all sharing a single
// mesh and a single mutation thread.
package session

import (
	"fmt"
	"log"
	"sync"

	"meshsync/internal/deform"
	"meshsync/internal/mesh"
	"meshsync/internal/vertexsync"
	"meshsync/internal/visual"
)

type Deps struct {
	Sink   visual.Sink
	Cues   deform.CueSink
	Sender deform.Sender
	Space  deform.SpaceProvider
	Logger *log.Logger
}

type Options struct {
	EdgeThickness    float32
	RejectRemoteHeld bool
}

// Session is driven from the engine tick. Controller calls and Pump must run
// on that tick; Enqueue is the only method safe to call from other
// goroutines.
type Session struct {
	topo       *mesh.Topology
	registry   *visual.Registry
	controller *deform.Controller
	adapter    *vertexsync.Adapter
	logger     *log.Logger

	// pending holds inbound payloads between transport callbacks and the
	// next Pump.
	mu      sync.Mutex
	pending [][]byte
}

func New(topo *mesh.Topology, deps Deps, opts Options) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	registry := visual.NewRegistry(topo, deps.Sink, visual.Options{EdgeThickness: opts.EdgeThickness})
	return &Session{
		topo:     topo,
		registry: registry,
		controller: deform.NewController(topo, deform.Deps{
			Registry: registry,
			Sender:   deps.Sender,
			Space:    deps.Space,
			Cues:     deps.Cues,
		}, deform.Options{
			RejectRemoteHeld: opts.RejectRemoteHeld,
			Logger:           logger,
		}),
		adapter: vertexsync.NewAdapter(topo, registry, logger),
		logger:  logger,
	}
}

// Load canonicalizes an imported mesh and builds a session on it. A
// malformed mesh aborts before any visual is created.
func Load(raw mesh.Mesh, deps Deps, opts Options) (*Session, error) {
	topo, err := mesh.FromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("build topology: %w", err)
	}
	s := New(topo, deps, opts)
	s.logger.Printf("session: mesh loaded raw_vertices=%d vertices=%d triangles=%d edges=%d",
		len(raw.Vertices), len(topo.Vertices), len(topo.Triangles)/3, len(topo.Edges))
	return s, nil
}

func (s *Session) Topology() *mesh.Topology { return s.topo }
func (s *Session) Registry() *visual.Registry { return s.registry }
func (s *Session) Controller() *deform.Controller { return s.controller }
func (s *Session) Adapter() *vertexsync.Adapter { return s.adapter }

// Enqueue stores an inbound payload for the next Pump. It is the
// onVertexUpdate callback handed to the transport.
func (s *Session) Enqueue(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, raw)
}

// Pump applies queued remote updates in arrival order and returns how many
// were applied. Discarded payloads are not counted.
func (s *Session) Pump() int {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	applied := 0
	for _, raw := range batch {
		if s.adapter.HandlePayload(raw) {
			applied++
		}
	}
	return applied
}
