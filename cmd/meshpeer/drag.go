package main

import (
	"fmt"
	"strconv"
	"strings"

	"meshsync/internal/deform"
	"meshsync/internal/mesh"
)

// dragScript replays a hover, grab, linear drag and release on one vertex,
// one step per tick.
type dragScript struct {
	vertex int
	target mesh.Vec3
	ticks  int

	tick  int
	start mesh.Vec3
}

func newDragScript(vertex int, target mesh.Vec3, ticks int) *dragScript {
	if ticks < 1 {
		ticks = 1
	}
	return &dragScript{vertex: vertex, target: target, ticks: ticks}
}

func (d *dragScript) done() bool {
	return d.tick > d.ticks+1
}

func (d *dragScript) step(ctrl *deform.Controller, topo *mesh.Topology) error {
	defer func() { d.tick++ }()
	switch {
	case d.tick == 0:
		v := topo.Vertex(d.vertex)
		if v == nil {
			return fmt.Errorf("%w: %d", deform.ErrUnknownVertex, d.vertex)
		}
		d.start = v.Position
		if err := ctrl.OnHoverEnter(d.vertex); err != nil {
			return err
		}
		return ctrl.OnGrabStart(d.vertex)
	case d.tick <= d.ticks:
		t := float32(d.tick) / float32(d.ticks)
		return ctrl.OnGrabTick(d.vertex, d.start.Add(d.target.Sub(d.start).Mul(t)))
	case d.tick == d.ticks+1:
		if err := ctrl.OnGrabEnd(d.vertex); err != nil {
			return err
		}
		return ctrl.OnHoverExit(d.vertex)
	}
	return nil
}

func parseVec3(s string) (mesh.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mesh.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v mesh.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mesh.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
