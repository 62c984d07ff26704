package node

// Registry tracks every connected node, named and unnamed, in
// insertion order. It has no internal locking: spec.md §5 requires a
// single-threaded cooperative model, and the orchestrator's run loop
// is the Registry's sole caller.
type Registry struct {
	order []*Node
	byTok map[string]*Node
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byTok: make(map[string]*Node)}
}

// Add inserts a freshly accepted (unnamed) node.
func (r *Registry) Add(n *Node) {
	r.order = append(r.order, n)
	r.byTok[n.Token] = n
}

// Remove drops n from the registry, e.g. on disconnect (spec.md §4.2).
func (r *Registry) Remove(n *Node) {
	delete(r.byTok, n.Token)
	for i, cur := range r.order {
		if cur == n {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// FindByName returns the registered node with the given name, or nil
// if none exists — used to enforce I5 (unique non-empty names) before
// a Register call is accepted.
func (r *Registry) FindByName(name string) *Node {
	if name == "" {
		return nil
	}
	for _, n := range r.order {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Each calls fn for every node currently in the registry, named and
// unnamed, in the order they connected.
func (r *Registry) Each(fn func(*Node)) {
	for _, n := range r.order {
		fn(n)
	}
}

// Named returns every currently-registered (named) node, in
// connection order.
func (r *Registry) Named() []*Node {
	out := make([]*Node, 0, len(r.order))
	for _, n := range r.order {
		if n.Registered() {
			out = append(out, n)
		}
	}
	return out
}

// All returns every currently connected node, named and unnamed alike,
// in connection order — the set IsolateAll/DrainAll fan out to,
// matching orch.c's job_isolate_all (orch.c:374-394), which walks
// orch->nodes with LIST_FOREACH and no registration check.
func (r *Registry) All() []*Node {
	out := make([]*Node, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the total number of tracked connections, named and
// unnamed.
func (r *Registry) Len() int {
	return len(r.order)
}
