package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddFindRemove(t *testing.T) {
	r := NewRegistry()

	n1 := &Node{Token: "t1"}
	n2 := &Node{Token: "t2"}
	r.Add(n1)
	r.Add(n2)
	assert.Equal(t, 2, r.Len())

	n1.Register("alpha")
	found := r.FindByName("alpha")
	require.NotNil(t, found)
	assert.Same(t, n1, found)

	assert.Nil(t, r.FindByName("missing"))

	r.Remove(n1)
	assert.Equal(t, 1, r.Len())
	assert.Nil(t, r.FindByName("alpha"))
}

func TestRegistryNamedExcludesUnregistered(t *testing.T) {
	r := NewRegistry()

	unnamed := &Node{Token: "t1"}
	named := &Node{Token: "t2"}
	named.Register("beta")

	r.Add(unnamed)
	r.Add(named)

	got := r.Named()
	require.Len(t, got, 1)
	assert.Equal(t, "beta", got[0].Name)
}

func TestRegistryEachPreservesConnectionOrder(t *testing.T) {
	r := NewRegistry()
	a := &Node{Token: "a"}
	b := &Node{Token: "b"}
	c := &Node{Token: "c"}
	r.Add(a)
	r.Add(b)
	r.Add(c)

	var order []string
	r.Each(func(n *Node) { order = append(order, n.Token) })

	assert.Equal(t, []string{"a", "b", "c"}, order)
}
