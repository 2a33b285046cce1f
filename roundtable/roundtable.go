// Package roundtable implements a round table: a circular sequence of
// distinct knights with three roles on top of it. Arturo is the anchor the
// table is built around, one knight is the current speaker, and while
// Arturo holds the floor by interruption the knight he cut off is
// remembered as interrupted.
//
// Seats live in an arena and refer to each other by index. Calling an
// operation outside its precondition panics with a *PreconditionError;
// use Catch to turn that into an error at a boundary.
package roundtable

import (
	"fmt"
	"maps"
	"strings"
)

// absent is the index of the sentinel slot at the start of the arena.
// A role holding absent refers to no seat.
const absent = 0

type seat[T comparable] struct {
	value T
	left  int
	right int
}

// noCopy lets go vet's copylocks check flag tables passed by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Table is a round table of knights of type T. The zero value is an empty
// table ready to use. A Table must not be copied after first use; use
// Clone to get an independent copy.
type Table[T comparable] struct {
	_    noCopy
	addr *Table[T]

	seats []seat[T]
	free  []int
	index map[T]int
	size  int

	anchor      int
	current     int
	interrupted int
}

func New[T comparable]() *Table[T] {
	t := &Table[T]{}
	t.addr = t
	return t
}

func (t *Table[T]) copyCheck() {
	if t.addr == nil {
		t.addr = t
	} else if t.addr != t {
		violation("copy", ErrCopiedByValue)
	}
}

// SeatAnchor seats Arturo at an empty table. Arturo starts speaking.
func (t *Table[T]) SeatAnchor(v T) {
	t.copyCheck()
	if t.size != 0 {
		violation("SeatAnchor", ErrNotEmpty)
	}

	i := t.alloc(v)
	t.seats[i].left = i
	t.seats[i].right = i
	t.anchor = i
	t.current = i
	t.interrupted = absent
}

// AddKnight seats v immediately to the right of Arturo.
func (t *Table[T]) AddKnight(v T) {
	t.copyCheck()
	if t.anchor == absent {
		violation("AddKnight", ErrNoAnchor)
	}
	if _, ok := t.index[v]; ok {
		violation("AddKnight", ErrDuplicateKnight)
	}

	t.linkAfter(t.anchor, t.alloc(v))
}

// RemoveKnight expels v from the table. If v was speaking, the knight to
// its right takes the floor. If v was the knight Arturo interrupted,
// Arturo keeps speaking as if he had never interrupted. Arturo himself can
// only be removed when he is alone.
func (t *Table[T]) RemoveKnight(v T) {
	t.copyCheck()
	i, ok := t.index[v]
	if !ok {
		violation("RemoveKnight", ErrUnknownKnight)
	}
	if i == t.anchor && t.size > 1 {
		violation("RemoveKnight", ErrAnchorNotAlone)
	}

	t.expel(i)
}

// CurrentSpeaker returns the knight holding the floor.
func (t *Table[T]) CurrentSpeaker() T {
	if t.size == 0 {
		violation("CurrentSpeaker", ErrEmpty)
	}
	return t.seats[t.current].value
}

// Next passes the floor to the right. After an interruption the turn goes
// to the right of the interrupted knight, not of Arturo.
func (t *Table[T]) Next() {
	t.copyCheck()
	if t.size == 0 {
		violation("Next", ErrEmpty)
	}
	t.current = t.seats[t.resumeFrom()].right
}

// Previous passes the floor to the left. After an interruption the turn
// goes to the left of the interrupted knight.
func (t *Table[T]) Previous() {
	t.copyCheck()
	if t.size == 0 {
		violation("Previous", ErrEmpty)
	}
	t.current = t.seats[t.resumeFrom()].left
}

// resumeFrom returns the seat a turn change is measured from and ends any
// pending interruption.
func (t *Table[T]) resumeFrom() int {
	from := t.current
	if t.interrupted != absent {
		from = t.interrupted
		t.interrupted = absent
	}
	return from
}

// AnchorInterrupts gives Arturo the floor and remembers who was speaking.
// The interruption lasts until the next call to Next or Previous.
func (t *Table[T]) AnchorInterrupts() {
	t.copyCheck()
	if t.anchor == absent {
		violation("AnchorInterrupts", ErrNoAnchor)
	}
	if t.current == t.anchor {
		violation("AnchorInterrupts", ErrSelfInterruption)
	}

	t.interrupted = t.current
	t.current = t.anchor
}

func (t *Table[T]) AnchorPresent() bool {
	return t.anchor != absent
}

// RelocateAnchor moves Arturo to sit immediately to the right of v. The
// speaker and the interrupted knight stay the same knights.
func (t *Table[T]) RelocateAnchor(v T) {
	t.copyCheck()
	if t.size < 3 {
		violation("RelocateAnchor", ErrTooSmall)
	}
	i, ok := t.index[v]
	if !ok {
		violation("RelocateAnchor", ErrUnknownKnight)
	}
	if i == t.anchor {
		violation("RelocateAnchor", ErrRelocateOntoAnchor)
	}

	if t.seats[i].right == t.anchor {
		return
	}
	t.detach(t.anchor)
	t.linkAfter(i, t.anchor)
}

func (t *Table[T]) IsEmpty() bool {
	return t.size == 0
}

// Len returns the number of seated knights, Arturo included.
func (t *Table[T]) Len() int {
	return t.size
}

func (t *Table[T]) Contains(v T) bool {
	_, ok := t.index[v]
	return ok
}

// Anchor returns Arturo's value, if he is seated.
func (t *Table[T]) Anchor() (T, bool) {
	return t.valueAt(t.anchor)
}

// Interrupted returns the knight Arturo cut off, if an interruption is
// pending.
func (t *Table[T]) Interrupted() (T, bool) {
	return t.valueAt(t.interrupted)
}

func (t *Table[T]) valueAt(i int) (T, bool) {
	if i == absent {
		var zero T
		return zero, false
	}
	return t.seats[i].value, true
}

// Each calls fn for every knight clockwise starting at Arturo, until fn
// returns false.
func (t *Table[T]) Each(fn func(v T) bool) {
	i := t.anchor
	for n := 0; n < t.size; n++ {
		if !fn(t.seats[i].value) {
			return
		}
		i = t.seats[i].right
	}
}

// Knights returns the knights clockwise starting at Arturo.
func (t *Table[T]) Knights() []T {
	out := make([]T, 0, t.size)
	t.Each(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Equal reports whether both tables seat the same knights in the same
// clockwise order around Arturo, with the same speaker and the same
// interrupted knight.
func (t *Table[T]) Equal(other *Table[T]) bool {
	if t == other {
		return true
	}
	if other == nil || t.size != other.size {
		return false
	}

	a, b := t.anchor, other.anchor
	for n := 0; n < t.size; n++ {
		if t.seats[a].value != other.seats[b].value {
			return false
		}
		if (a == t.current) != (b == other.current) {
			return false
		}
		if (a == t.interrupted) != (b == other.interrupted) {
			return false
		}
		a = t.seats[a].right
		b = other.seats[b].right
	}
	return true
}

// Clone returns an independent copy of the table. Roles sit on the
// corresponding seats of the copy.
func (t *Table[T]) Clone() *Table[T] {
	c := New[T]()
	c.seats = append([]seat[T](nil), t.seats...)
	c.free = append([]int(nil), t.free...)
	c.index = maps.Clone(t.index)
	c.size = t.size
	c.anchor = t.anchor
	c.current = t.current
	c.interrupted = t.interrupted
	return c
}

// Clear removes every knight, Arturo included, and releases all seats.
func (t *Table[T]) Clear() {
	t.copyCheck()
	t.seats = nil
	t.free = nil
	t.index = nil
	t.size = 0
	t.anchor = absent
	t.current = absent
	t.interrupted = absent
}

// String lists the table clockwise from the current speaker, for example
// "[ARTURO(a), b, c]", or "[ARTURO(a),*b,c]" when Arturo interrupted b.
func (t *Table[T]) String() string {
	if t.size == 0 {
		return "[]"
	}

	sep := ", "
	if t.interrupted != absent {
		sep = ","
	}

	var sb strings.Builder
	sb.WriteByte('[')
	i := t.current
	for n := 0; n < t.size; n++ {
		if n > 0 {
			sb.WriteString(sep)
		}
		switch i {
		case t.anchor:
			fmt.Fprintf(&sb, "ARTURO(%v)", t.seats[i].value)
		case t.interrupted:
			fmt.Fprintf(&sb, "*%v", t.seats[i].value)
		default:
			fmt.Fprint(&sb, t.seats[i].value)
		}
		i = t.seats[i].right
	}
	sb.WriteByte(']')
	return sb.String()
}

//////////////
// Arena

func (t *Table[T]) alloc(v T) int {
	if len(t.seats) == 0 {
		t.seats = make([]seat[T], 1)
	}
	if t.index == nil {
		t.index = make(map[T]int)
	}

	var i int
	if n := len(t.free); n > 0 {
		i = t.free[n-1]
		t.free = t.free[:n-1]
		t.seats[i] = seat[T]{value: v}
	} else {
		i = len(t.seats)
		t.seats = append(t.seats, seat[T]{value: v})
	}

	t.index[v] = i
	t.size++
	return i
}

// linkAfter links the detached seat i immediately to the right of at.
func (t *Table[T]) linkAfter(at, i int) {
	r := t.seats[at].right
	t.seats[i].left = at
	t.seats[i].right = r
	t.seats[at].right = i
	t.seats[r].left = i
}

// detach closes the ring around seat i, leaving i linked to itself.
func (t *Table[T]) detach(i int) {
	l, r := t.seats[i].left, t.seats[i].right
	t.seats[l].right = r
	t.seats[r].left = l
	t.seats[i].left = i
	t.seats[i].right = i
}

// expel rebinds every role pointing at seat i, unlinks it and frees it.
func (t *Table[T]) expel(i int) {
	if t.size == 1 {
		t.Clear()
		return
	}

	switch i {
	case t.interrupted:
		// Arturo is current and keeps the floor.
		t.interrupted = absent
	case t.current:
		// i is not Arturo here, so no interruption is pending.
		t.current = t.seats[i].right
	}

	t.detach(i)
	delete(t.index, t.seats[i].value)
	t.seats[i] = seat[T]{}
	t.free = append(t.free, i)
	t.size--
}
