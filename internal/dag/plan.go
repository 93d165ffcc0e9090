package dag

import "sort"

// Plan returns the subgraph needed to run targets: each target plus every
// task it transitively depends on. Excluded tasks stay in the subgraph so
// their dependents keep their edges, but their own prerequisites are only
// pulled in when something else needs them.
func Plan(g *Graph, targets, excluded []string) (*Graph, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	skip := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		if _, ok := g.nodes[id]; !ok {
			return nil, &GraphError{Task: id, Reason: "task not found"}
		}
		skip[id] = true
	}

	keep := make(map[string]bool)
	var visit func(n *node)
	visit = func(n *node) {
		if keep[n.id] {
			return
		}
		keep[n.id] = true
		if skip[n.id] {
			return
		}
		for _, id := range sortedIDs(n.deps) {
			visit(n.deps[id])
		}
	}
	for _, id := range targets {
		n, ok := g.nodes[id]
		if !ok {
			return nil, &GraphError{Task: id, Reason: "task not found"}
		}
		visit(n)
	}

	ids := make([]string, 0, len(keep))
	for id := range keep {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sub := New()
	for _, id := range ids {
		sub.AddNode(id)
	}
	for _, id := range ids {
		for depID := range g.nodes[id].deps {
			if !keep[depID] {
				continue
			}
			if err := sub.AddEdge(depID, id); err != nil {
				return nil, err
			}
		}
	}
	return sub, nil
}
