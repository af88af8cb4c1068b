package vertexsync

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"meshsync/internal/mesh"
)

const TypeVertexUpdate = "vertex_update"

var ErrProtocol = errors.New("vertexsync: protocol error")

// ProtocolError describes an inbound payload that could not be applied.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vertexsync: protocol error: %s: %v", e.Reason, e.Err)
	}
	return "vertexsync: protocol error: " + e.Reason
}

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

func (e *ProtocolError) Unwrap() error { return e.Err }

// Update is one vertex move: interim while a drag is in progress, final on
// release.
type Update struct {
	Vertex   int
	Position mesh.Vec3
	Final    bool
}

// Message is the wire envelope. Pointer and slice fields distinguish a
// missing field from its zero value.
type Message struct {
	Type     string    `json:"type"`
	Sender   string    `json:"sender,omitempty"`
	Vertex   *int      `json:"vertex"`
	Position []float32 `json:"position"`
	Final    *bool     `json:"final"`
}

func Encode(u Update, sender string) ([]byte, error) {
	vertex := u.Vertex
	final := u.Final
	return json.Marshal(Message{
		Type:     TypeVertexUpdate,
		Sender:   sender,
		Vertex:   &vertex,
		Position: []float32{u.Position[0], u.Position[1], u.Position[2]},
		Final:    &final,
	})
}

// Decode parses and validates a vertex update envelope. The vertex index is
// only checked for sign here; range checks need the topology.
func Decode(raw []byte) (Update, Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Update{}, Message{}, &ProtocolError{Reason: "malformed json", Err: err}
	}
	if t := strings.TrimSpace(msg.Type); t != TypeVertexUpdate {
		return Update{}, msg, &ProtocolError{Reason: fmt.Sprintf("unsupported type %q", t)}
	}
	switch {
	case msg.Vertex == nil:
		return Update{}, msg, &ProtocolError{Reason: "vertex is required"}
	case msg.Position == nil:
		return Update{}, msg, &ProtocolError{Reason: "position is required"}
	case len(msg.Position) != 3:
		return Update{}, msg, &ProtocolError{Reason: fmt.Sprintf("position has %d components, want 3", len(msg.Position))}
	case msg.Final == nil:
		return Update{}, msg, &ProtocolError{Reason: "final is required"}
	case *msg.Vertex < 0:
		return Update{}, msg, &ProtocolError{Reason: fmt.Sprintf("negative vertex %d", *msg.Vertex)}
	}
	for i, c := range msg.Position {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return Update{}, msg, &ProtocolError{Reason: fmt.Sprintf("position component %d is not finite", i)}
		}
	}
	return Update{
		Vertex:   *msg.Vertex,
		Position: mesh.Vec3{msg.Position[0], msg.Position[1], msg.Position[2]},
		Final:    *msg.Final,
	}, msg, nil
}
