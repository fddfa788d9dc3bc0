package container

import (
	"github.com/pkg/errors"

	"github.com/kefir-lang/kefirgo/errkind"
)

// IntervalKey is the key type for interval tree endpoints ([begin,end)).
type IntervalKey int64

// IntervalNode is a single stored interval and its value.
type IntervalNode[V any] struct {
	Begin, End IntervalKey
	Value      V
}

// entry is one begin-keyed node of the outer BST; it owns the nested,
// end-keyed ordered map of every interval sharing that begin, and the
// max End across its own intervals and both subtrees, so range queries
// can prune whole subtrees without visiting them.
type entry[V any] struct {
	begin         IntervalKey
	maxSubtreeEnd IntervalKey
	nodes         *OrderedMap[IntervalKey, *IntervalNode[V]]
	left, right   *entry[V]
	parent        *entry[V]
}

// IntervalTree is keyed by [begin,end) with max-endpoint augmentation,
// implemented as an unbalanced BST of begin-keyed entries, each owning a
// nested ordered map of end-keyed leaves: a tree of trees, so intervals
// that share a begin endpoint don't need a tie-breaking comparator.
type IntervalTree[V any] struct {
	root     *entry[V]
	byBegin  map[IntervalKey]*entry[V]
	onRemove func(begin, end IntervalKey, value V)
}

// NewIntervalTree creates an empty interval tree.
func NewIntervalTree[V any]() *IntervalTree[V] {
	return &IntervalTree[V]{byBegin: make(map[IntervalKey]*entry[V])}
}

// OnRemove registers a callback invoked for every interval dropped by
// RemoveRange, mirroring kefir_interval_tree_on_remove.
func (t *IntervalTree[V]) OnRemove(fn func(begin, end IntervalKey, value V)) {
	t.onRemove = fn
}

func updateSubtreeMaxEnd[V any](e *entry[V]) {
	for e != nil {
		m := e.begin
		if k, _, ok := e.nodes.Max(); ok {
			if k > m {
				m = k
			}
		}
		if e.left != nil && e.left.maxSubtreeEnd > m {
			m = e.left.maxSubtreeEnd
		}
		if e.right != nil && e.right.maxSubtreeEnd > m {
			m = e.right.maxSubtreeEnd
		}
		e.maxSubtreeEnd = m
		e = e.parent
	}
}

func (t *IntervalTree[V]) insertEntry(begin IntervalKey) *entry[V] {
	if e, ok := t.byBegin[begin]; ok {
		return e
	}
	e := &entry[V]{begin: begin, maxSubtreeEnd: begin, nodes: NewOrderedMap[IntervalKey, *IntervalNode[V]]()}
	t.byBegin[begin] = e
	if t.root == nil {
		t.root = e
		return e
	}
	cur := t.root
	for {
		if begin < cur.begin {
			if cur.left == nil {
				cur.left = e
				e.parent = cur
				return e
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = e
				e.parent = cur
				return e
			}
			cur = cur.right
		}
	}
}

// Insert adds the interval [begin,end) with the given value. It fails
// with errkind.InvalidParameter if begin > end, and with
// errkind.AlreadyExists if an identical interval is already present.
func (t *IntervalTree[V]) Insert(begin, end IntervalKey, value V) error {
	if begin > end {
		return errkind.Wrap(errkind.InvalidParameter, "interval end shall be greater or equal to begin")
	}
	e := t.insertEntry(begin)
	if _, exists := e.nodes.Get(end); exists {
		return errkind.Wrap(errkind.AlreadyExists, "identical interval already exists in the interval tree")
	}
	e.nodes.Insert(end, &IntervalNode[V]{Begin: begin, End: end, Value: value})
	updateSubtreeMaxEnd(e)
	return nil
}

// Get returns the exact interval [begin,end), if present.
func (t *IntervalTree[V]) Get(begin, end IntervalKey) (*IntervalNode[V], error) {
	if begin > end {
		return nil, errkind.Wrap(errkind.InvalidParameter, "interval end shall be greater or equal to begin")
	}
	e, ok := t.byBegin[begin]
	if !ok {
		return nil, errkind.Wrap(errkind.NotFound, "unable to find interval in the interval tree")
	}
	n, ok := e.nodes.Get(end)
	if !ok {
		return nil, errkind.Wrap(errkind.NotFound, "unable to find interval in the interval tree")
	}
	return n, nil
}

// Finder is the cursor returned by Find and advanced by FindNext.
type Finder[V any] struct {
	node     *IntervalNode[V]
	position IntervalKey
}

func findMinNode[V any](e *entry[V], position IntervalKey) *IntervalNode[V] {
	if e == nil {
		return nil
	}
	if position < e.begin {
		return findMinNode(e.left, position)
	}
	if e.left != nil && position >= e.left.begin && position <= e.left.maxSubtreeEnd {
		if n := findMinNode(e.left, position); n != nil {
			return n
		}
	}
	if !(position >= e.begin && position <= e.maxSubtreeEnd) {
		return nil
	}

	end, _, ok := e.nodes.LowerBound(position)
	var iterEnd IntervalKey
	if !ok {
		k, _, ok2 := e.nodes.Min()
		if !ok2 {
			return findMinNode(e.right, position)
		}
		iterEnd = k
	} else {
		iterEnd = end
	}

	for {
		n, ok := e.nodes.Get(iterEnd)
		if !ok {
			break
		}
		if position < n.Begin {
			break
		}
		if position >= n.Begin && (position < n.End || position == n.Begin) {
			return n
		}
		next, _, ok := e.nodes.Next(iterEnd)
		if !ok {
			break
		}
		iterEnd = next
	}

	return findMinNode(e.right, position)
}

// Find locates the first interval (in entry/end order) containing
// position, returning a Finder usable with FindNext to continue the
// search. It fails with errkind.IteratorEnd if no interval contains
// position.
func (t *IntervalTree[V]) Find(position IntervalKey) (*Finder[V], *IntervalNode[V], error) {
	n := findMinNode(t.root, position)
	if n == nil {
		return nil, nil, errkind.IteratorEnd
	}
	return &Finder[V]{node: n, position: position}, n, nil
}

// FindNext advances finder to the next interval containing its position,
// failing with errkind.IteratorEnd when the search is exhausted.
func (t *IntervalTree[V]) FindNext(finder *Finder[V]) (*IntervalNode[V], error) {
	if finder == nil || finder.node == nil {
		return nil, errkind.IteratorEnd
	}
	e, ok := t.byBegin[finder.node.Begin]
	if !ok {
		return nil, errors.Wrap(errkind.InternalError, "interval tree entry vanished under an active finder")
	}

	if nextEnd, n, ok := e.nodes.Next(finder.node.End); ok {
		if !(finder.position >= n.Begin && (finder.position < n.End || finder.position == n.Begin)) {
			return nil, errkind.Wrap(errkind.InternalError, "expected interval nodes of the same entry to have ascending end positions")
		}
		_ = nextEnd
		finder.node = n
		return n, nil
	}

	next := t.nextEntry(e)
	for next != nil {
		if finder.position < next.begin {
			return nil, errkind.IteratorEnd
		}
		if finder.position <= next.maxSubtreeEnd {
			end, _, ok := next.nodes.LowerBound(finder.position)
			if ok {
				for {
					n, ok := next.nodes.Get(end)
					if !ok {
						break
					}
					if finder.position >= n.Begin && (finder.position < n.End || finder.position == n.Begin) {
						finder.node = n
						return n, nil
					}
					nend, _, ok := next.nodes.Next(end)
					if !ok {
						break
					}
					end = nend
				}
			}
		}
		next = t.nextEntry(next)
	}
	return nil, errkind.IteratorEnd
}

// nextEntry returns the in-order successor entry of e within the begin
// BST (smallest begin strictly greater than e.begin).
func (t *IntervalTree[V]) nextEntry(e *entry[V]) *entry[V] {
	if e.right != nil {
		cur := e.right
		for cur.left != nil {
			cur = cur.left
		}
		return cur
	}
	cur, parent := e, e.parent
	for parent != nil && cur == parent.right {
		cur, parent = parent, parent.parent
	}
	return parent
}

// RemoveRange removes the exact interval [begin,end), invoking the
// on-remove callback if registered. Once the last interval of an entry
// is removed (matching the original, which never rebalances or deletes
// begin-keyed BST nodes once allocated) the begin-keyed entry node
// itself stays in the tree with an empty nested map, so later inserts
// at the same begin reuse it.
func (t *IntervalTree[V]) RemoveRange(begin, end IntervalKey) error {
	e, ok := t.byBegin[begin]
	if !ok {
		return errkind.Wrap(errkind.NotFound, "unable to find interval in the interval tree")
	}
	n, ok := e.nodes.Get(end)
	if !ok {
		return errkind.Wrap(errkind.NotFound, "unable to find interval in the interval tree")
	}
	e.nodes.Delete(end)
	if t.onRemove != nil {
		t.onRemove(n.Begin, n.End, n.Value)
	}
	updateSubtreeMaxEnd(e)
	return nil
}

// Iterator walks every stored interval across the whole tree, in
// begin-then-end order.
type Iterator[V any] struct {
	entries []*entry[V]
	ei      int
	ki      int
}

func inorder[V any](e *entry[V], out *[]*entry[V]) {
	if e == nil {
		return
	}
	inorder(e.left, out)
	*out = append(*out, e)
	inorder(e.right, out)
}

// Iter starts a full traversal of the tree.
func (t *IntervalTree[V]) Iter() *Iterator[V] {
	var entries []*entry[V]
	inorder(t.root, &entries)
	return &Iterator[V]{entries: entries}
}

// Next returns the next interval node in the traversal, or ok=false when
// exhausted.
func (it *Iterator[V]) Next() (*IntervalNode[V], bool) {
	for it.ei < len(it.entries) {
		e := it.entries[it.ei]
		keys := e.nodes.Keys()
		if it.ki < len(keys) {
			n, _ := e.nodes.Get(keys[it.ki])
			it.ki++
			return n, true
		}
		it.ei++
		it.ki = 0
	}
	return nil, false
}
