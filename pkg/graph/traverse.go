package graph

import "github.com/papercomputeco/minutes/pkg/model"

// Neighbors returns the edges adjacent to id in the given direction,
// optionally filtered by relation (empty relation matches all). Edges are
// returned in insertion order.
func (s *Store) Neighbors(id string, dir Direction, relation model.Relation) []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var adjacent []Edge
	if dir == Downstream {
		adjacent = s.out[id]
	} else {
		adjacent = s.in[id]
	}

	edges := make([]Edge, 0, len(adjacent))
	for _, e := range adjacent {
		if relation != "" && e.Relation != relation {
			continue
		}
		edges = append(edges, e)
	}
	return edges
}

// Traverse walks the graph breadth-first from id in the given direction, up
// to maxDepth hops inclusive. Each node is visited at most once at its
// first-reached depth, with ties broken by edge insertion order. The start
// node is excluded from the result.
//
// Downstream traversal discovers dependents (ripple analysis); upstream
// traversal traces provenance.
func (s *Store) Traverse(id string, dir Direction, maxDepth int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type frame struct {
		id    string
		depth int
	}

	visited := map[string]bool{id: true}
	queue := []frame{{id: id, depth: 0}}
	var reached []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		var adjacent []Edge
		if dir == Downstream {
			adjacent = s.out[current.id]
		} else {
			adjacent = s.in[current.id]
		}

		for _, e := range adjacent {
			next := e.To
			if dir == Upstream {
				next = e.From
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			reached = append(reached, next)
			queue = append(queue, frame{id: next, depth: current.depth + 1})
		}
	}

	return reached
}
