// Package mesh turns an imported triangle mesh into the fixed topology an
// editing session works on.
//
// Import pipelines (STL in particular) emit one vertex per triangle corner, so
// the same corner position shows up several times. Canonicalize collapses those
// exact duplicates and rewrites the triangle list against the surviving
// vertices. Build then derives every unique undirected vertex-to-vertex edge
// and the vertex -> incident edges map.
//
// After Build the topology never changes: vertices and edges are neither added
// nor removed for the lifetime of a session. Only Vertex.Position and
// Vertex.HeldByRemote mutate, and only from the session's mutation thread.
package mesh
