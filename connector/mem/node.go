package mem

import (
	"github.com/signadot/itemscript/locator"
	"github.com/signadot/itemscript/value"
)

// node is one path segment of the tree. Its item is mounted at key seg
// in the parent node's item, unless the item has been emptied by a
// replacement of the parent's value.
type node struct {
	seg      string
	parent   *node
	item     *value.Item
	children map[string]*node
	order    []string
}

func newNode(parent *node, seg string, opts ...value.ItemOption) *node {
	n := &node{seg: seg, parent: parent, children: map[string]*node{}}
	n.item, _ = value.NewItem(n.url().String(), nil, opts...)
	return n
}

func (n *node) path() []string {
	var res []string
	for cur := n; cur.parent != nil; cur = cur.parent {
		res = append(res, cur.seg)
	}
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res
}

func (n *node) url() *locator.URL {
	return &locator.URL{Scheme: Scheme, Path: n.path(), Absolute: true}
}

func (n *node) child(seg string) *node {
	return n.children[seg]
}

func (n *node) addChild(c *node) {
	n.children[c.seg] = c
	n.order = append(n.order, c.seg)
}

func (n *node) removeChild(seg string) {
	delete(n.children, seg)
	for i, s := range n.order {
		if s == seg {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

func (n *node) count() int {
	res := 1
	for _, c := range n.children {
		res += c.count()
	}
	return res
}
