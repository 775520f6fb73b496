// Package tree implements an insert-only cover tree with exact kNN search.
package tree

// Adapted from github.com/viant/gds/tree/cover.

import (
	"container/heap"
	"math"
	"sort"
)

const defaultBase = 1.3

type node struct {
	level    int32
	point    *Point
	children []*node
	// radius bounds the distance from point to every descendant.
	radius float32
}

// Tree is a cover tree keyed by insertion position. It holds no lock;
// Search never mutates the tree, so concurrent searches are safe as long as
// no Insert runs alongside them.
type Tree struct {
	root   *node
	base   float32
	points []*Point
}

// New constructs a tree with the provided expansion base; values <= 1 fall
// back to 1.3.
func New(base float32) *Tree {
	if base <= 1 {
		base = defaultBase
	}
	return &Tree{base: base}
}

// Len returns the number of stored points.
func (t *Tree) Len() int { return len(t.points) }

// Point returns the point stored at position.
func (t *Tree) Point(position int) (*Point, bool) {
	if position < 0 || position >= len(t.points) {
		return nil, false
	}
	return t.points[position], true
}

// Insert adds vector and returns its position.
func (t *Tree) Insert(vector []float32) int {
	point := &Point{Position: len(t.points), Vector: vector}
	t.points = append(t.points, point)
	if t.root == nil {
		t.root = &node{point: point}
		return point.Position
	}
	t.insert(point)
	return point.Position
}

func (t *Tree) scale(level int32) float32 {
	return float32(math.Pow(float64(t.base), float64(level)))
}

func (t *Tree) insert(point *Point) {
	current := t.root
	level := int32(0)
	path := []*node{current}
	for {
		cover := t.scale(level)
		if Distance(point, current.point) < cover {
			var next *node
			for _, child := range current.children {
				if Distance(point, child.point) < cover {
					next = child
					break
				}
			}
			if next == nil {
				current.children = append(current.children, &node{level: level - 1, point: point})
				for _, ancestor := range path {
					if d := Distance(ancestor.point, point); d > ancestor.radius {
						ancestor.radius = d
					}
				}
				return
			}
			current = next
			path = append(path, next)
			level--
			continue
		}
		level++
		if level > current.level {
			old := t.root
			t.root = &node{
				level:    level,
				point:    point,
				children: []*node{old},
				radius:   Distance(point, old.point) + old.radius,
			}
			return
		}
	}
}

// Search returns up to k nearest points to query, closest first. Equal
// distances are ordered by ascending position.
func (t *Tree) Search(query []float32, k int) []Neighbor {
	if t.root == nil || k <= 0 {
		return nil
	}
	q := &Point{Position: -1, Vector: query}
	h := &neighbors{}
	t.search(t.root, q, k, h)
	result := make([]Neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(Neighbor)
	}
	return result
}

func (t *Tree) search(n *node, q *Point, k int, h *neighbors) {
	candidate := Neighbor{Point: n.point, Distance: Distance(q, n.point)}
	if h.Len() < k {
		heap.Push(h, candidate)
	} else if worse((*h)[0], candidate) {
		heap.Pop(h)
		heap.Push(h, candidate)
	}
	if len(n.children) == 0 {
		return
	}
	type childDist struct {
		child *node
		dist  float32
	}
	cds := make([]childDist, 0, len(n.children))
	for _, child := range n.children {
		cds = append(cds, childDist{child: child, dist: Distance(q, child.point)})
	}
	sort.Slice(cds, func(i, j int) bool { return cds[i].dist < cds[j].dist })
	for _, cd := range cds {
		// strict comparison keeps subtrees that may hold an equal-distance,
		// lower-position point
		if h.Len() == k && cd.dist-cd.child.radius > (*h)[0].Distance {
			continue
		}
		t.search(cd.child, q, k, h)
	}
}
