package book

type color uint8

const (
	red   color = 0
	black color = 1
)

type node struct {
	key    float64
	level  *priceLevel
	color  color
	left   *node
	right  *node
	parent *node
}

// levelTree is a red-black tree keyed by price. It gives O(log n)
// lookup/insert/delete over distinct price levels, n being the number of
// levels, with min/max access for best-price queries.
type levelTree struct {
	root *node
	nil_ *node // black sentinel
	size int
}

func newLevelTree() *levelTree {
	sentinel := &node{color: black}
	return &levelTree{root: sentinel, nil_: sentinel}
}

func (t *levelTree) len() int { return t.size }

func (t *levelTree) find(price float64) *priceLevel {
	n := t.root
	for n != t.nil_ {
		switch {
		case price < n.key:
			n = n.left
		case price > n.key:
			n = n.right
		default:
			return n.level
		}
	}
	return nil
}

// upsert returns the level at price, creating it if absent.
func (t *levelTree) upsert(price float64) *priceLevel {
	y := t.nil_
	x := t.root
	for x != t.nil_ {
		y = x
		if price < x.key {
			x = x.left
		} else if price > x.key {
			x = x.right
		} else {
			return x.level
		}
	}

	lvl := &priceLevel{price: price}
	z := &node{key: price, level: lvl, color: red, left: t.nil_, right: t.nil_, parent: y}
	if y == t.nil_ {
		t.root = z
	} else if z.key < y.key {
		y.left = z
	} else {
		y.right = z
	}
	t.insertFixup(z)
	t.size++
	return lvl
}

func (t *levelTree) delete(price float64) bool {
	z := t.searchNode(price)
	if z == t.nil_ {
		return false
	}
	t.deleteNode(z)
	t.size--
	return true
}

func (t *levelTree) min() *priceLevel {
	n := t.minNode(t.root)
	if n == t.nil_ {
		return nil
	}
	return n.level
}

func (t *levelTree) max() *priceLevel {
	n := t.maxNode(t.root)
	if n == t.nil_ {
		return nil
	}
	return n.level
}

func (t *levelTree) ascend(fn func(*priceLevel) bool) {
	for n := t.minNode(t.root); n != t.nil_; n = t.next(n) {
		if !fn(n.level) {
			return
		}
	}
}

func (t *levelTree) descend(fn func(*priceLevel) bool) {
	for n := t.maxNode(t.root); n != t.nil_; n = t.prev(n) {
		if !fn(n.level) {
			return
		}
	}
}

func (t *levelTree) searchNode(price float64) *node {
	n := t.root
	for n != t.nil_ {
		if price < n.key {
			n = n.left
		} else if price > n.key {
			n = n.right
		} else {
			return n
		}
	}
	return t.nil_
}

func (t *levelTree) minNode(n *node) *node {
	if n == t.nil_ {
		return t.nil_
	}
	for n.left != t.nil_ {
		n = n.left
	}
	return n
}

func (t *levelTree) maxNode(n *node) *node {
	if n == t.nil_ {
		return t.nil_
	}
	for n.right != t.nil_ {
		n = n.right
	}
	return n
}

func (t *levelTree) next(n *node) *node {
	if n == t.nil_ {
		return t.nil_
	}
	if n.right != t.nil_ {
		return t.minNode(n.right)
	}
	p := n.parent
	for p != t.nil_ && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *levelTree) prev(n *node) *node {
	if n == t.nil_ {
		return t.nil_
	}
	if n.left != t.nil_ {
		return t.maxNode(n.left)
	}
	p := n.parent
	for p != t.nil_ && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

func (t *levelTree) leftRotate(x *node) {
	y := x.right
	x.right = y.left
	if y.left != t.nil_ {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.nil_ {
		t.root = y
	} else if x == x.parent.left {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *levelTree) rightRotate(y *node) {
	x := y.left
	y.left = x.right
	if x.right != t.nil_ {
		x.right.parent = y
	}
	x.parent = y.parent
	if y.parent == t.nil_ {
		t.root = x
	} else if y == y.parent.right {
		y.parent.right = x
	} else {
		y.parent.left = x
	}
	x.right = y
	y.parent = x
}

func (t *levelTree) insertFixup(z *node) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.leftRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rightRotate(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rightRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.leftRotate(z.parent.parent)
			}
		}
	}
	t.root.color = black
}

func (t *levelTree) transplant(u, v *node) {
	if u.parent == t.nil_ {
		t.root = v
	} else if u == u.parent.left {
		u.parent.left = v
	} else {
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *levelTree) deleteNode(z *node) {
	y := z
	yOrigColor := y.color
	var x *node

	if z.left == t.nil_ {
		x = z.right
		t.transplant(z, z.right)
	} else if z.right == t.nil_ {
		x = z.left
		t.transplant(z, z.left)
	} else {
		y = t.minNode(z.right)
		yOrigColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yOrigColor == black {
		t.deleteFixup(x)
	}
}

func (t *levelTree) deleteFixup(x *node) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.leftRotate(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rightRotate(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}
