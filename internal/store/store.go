// Package store provides the in-memory graph storage behind the pipeline graph.
package store

import (
	"slices"
	"sync"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// OrderedStore is a graph.Store that remembers the order vertices were added in.
type OrderedStore[K comparable, T any] interface {
	graph.Store[K, T]
	// UpdateVertex applies options to the properties of an existing vertex.
	UpdateVertex(k K, options ...func(*graph.VertexProperties)) error
	// Index returns the insertion index of a vertex, or -1.
	Index(k K) int
}

type vertex[T any] struct {
	value T
	props graph.VertexProperties
}

type adjacency[K comparable] map[K]map[K]graph.Edge[K]

func (a adjacency[K]) set(from, to K, edge graph.Edge[K]) {
	if a[from] == nil {
		a[from] = make(map[K]graph.Edge[K])
	}
	a[from][to] = edge
}

// MemoryStore keeps vertices and edges in maps, plus a slice recording the vertex insertion order.
// Listing operations follow that order so callers iterating the graph get reproducible results.
type MemoryStore[K comparable, T any] struct {
	mu       sync.RWMutex
	vertices map[K]*vertex[T]
	order    []K
	out      adjacency[K] // source -> target
	in       adjacency[K] // target -> source
}

// NewMemoryStore creates an empty store.
func NewMemoryStore[K comparable, T any]() OrderedStore[K, T] {
	return &MemoryStore[K, T]{
		vertices: make(map[K]*vertex[T]),
		out:      make(adjacency[K]),
		in:       make(adjacency[K]),
	}
}

func (s *MemoryStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}

	s.vertices[k] = &vertex[T]{value: t, props: p}
	s.order = append(s.order, k)

	return nil
}

// ListVertices returns the vertex hashes in insertion order.
func (s *MemoryStore[K, T]) ListVertices() ([]K, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.order), nil
}

func (s *MemoryStore[K, T]) VertexCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order), nil
}

func (s *MemoryStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		var zero T

		return zero, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v.value, v.props, nil
}

func (s *MemoryStore[K, T]) Index(k K) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Index(s.order, k)
}

// RemoveVertex fails with graph.ErrVertexHasEdges while an edge still touches the vertex.
func (s *MemoryStore[K, T]) RemoveVertex(k K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}

	if len(s.in[k]) > 0 || len(s.out[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.in, k)
	delete(s.out, k)
	delete(s.vertices, k)

	if i := slices.Index(s.order, k); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}

	return nil
}

func (s *MemoryStore[K, T]) UpdateVertex(k K, options ...func(*graph.VertexProperties)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vertices[k]
	if !ok {
		return graph.ErrVertexNotFound
	}

	for _, opt := range options {
		opt(&v.props)
	}

	return nil
}

func (s *MemoryStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.out.set(sourceHash, targetHash, edge)
	s.in.set(targetHash, sourceHash, edge)

	return nil
}

func (s *MemoryStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.out[sourceHash][targetHash]; !ok {
		return graph.ErrEdgeNotFound
	}

	s.out.set(sourceHash, targetHash, edge)
	s.in.set(targetHash, sourceHash, edge)

	return nil
}

func (s *MemoryStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.out[sourceHash], targetHash)
	delete(s.in[targetHash], sourceHash)

	return nil
}

func (s *MemoryStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edge, ok := s.out[sourceHash][targetHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

// ListEdges returns the edges ordered by source, then by target, both in vertex insertion order.
func (s *MemoryStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]graph.Edge[K], 0)
	for _, source := range s.order {
		if len(s.out[source]) == 0 {
			continue
		}

		for _, target := range s.order {
			if edge, ok := s.out[source][target]; ok {
				res = append(res, edge)
			}
		}
	}

	return res, nil
}

// CreatesCycle reports whether an edge from source to target would close a cycle, that is whether source can be
// reached from target. It walks the adjacency maps in place instead of building the predecessor map the generic
// graph.CreatesCycle needs.
func (s *MemoryStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, k := range []K{source, target} {
		if _, ok := s.vertices[k]; !ok {
			return false, errors.Wrapf(graph.ErrVertexNotFound, "could not get vertex with hash %v", k)
		}
	}

	if source == target {
		return true, nil
	}

	visited := map[K]struct{}{target: {}}
	stack := []K{target}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for next := range s.out[current] {
			if next == source {
				return true, nil
			}

			if _, ok := visited[next]; !ok {
				visited[next] = struct{}{}
				stack = append(stack, next)
			}
		}
	}

	return false, nil
}

var _ OrderedStore[string, string] = (*MemoryStore[string, string])(nil)
