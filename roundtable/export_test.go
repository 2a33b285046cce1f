package roundtable

import "fmt"

// Check walks the ring and reports the first broken invariant.
func (t *Table[T]) Check() error {
	if t.size == 0 {
		if t.anchor != absent || t.current != absent || t.interrupted != absent {
			return fmt.Errorf("empty table still holds a role")
		}
		if len(t.index) != 0 {
			return fmt.Errorf("empty table still indexes %d knights", len(t.index))
		}
		return nil
	}

	if len(t.index) != t.size {
		return fmt.Errorf("index holds %d knights, size is %d", len(t.index), t.size)
	}
	if t.anchor == absent {
		return fmt.Errorf("non-empty table without arturo")
	}

	for _, dir := range []string{"right", "left"} {
		seen := make(map[int]bool, t.size)
		i := t.anchor
		for n := 0; n < t.size; n++ {
			if seen[i] {
				return fmt.Errorf("%s walk revisits seat %d after %d steps", dir, i, n)
			}
			seen[i] = true

			s := t.seats[i]
			if t.seats[s.right].left != i || t.seats[s.left].right != i {
				return fmt.Errorf("seat %d is not linked back by its neighbours", i)
			}
			if j, ok := t.index[s.value]; !ok || j != i {
				return fmt.Errorf("seat %d holding %v is not indexed", i, s.value)
			}

			if dir == "right" {
				i = s.right
			} else {
				i = s.left
			}
		}
		if i != t.anchor {
			return fmt.Errorf("%s walk of %d steps does not close the ring", dir, t.size)
		}
		if !seen[t.current] {
			return fmt.Errorf("current seat %d is not in the ring", t.current)
		}
		if t.interrupted != absent && !seen[t.interrupted] {
			return fmt.Errorf("interrupted seat %d is not in the ring", t.interrupted)
		}
	}

	if t.interrupted != absent {
		if t.current != t.anchor {
			return fmt.Errorf("interruption pending while arturo is not speaking")
		}
		if t.interrupted == t.anchor {
			return fmt.Errorf("arturo interrupted himself")
		}
	}

	if live := len(t.seats) - 1 - len(t.free); live != t.size {
		return fmt.Errorf("arena holds %d live seats, size is %d", live, t.size)
	}
	return nil
}

// Allocated returns the number of arena slots in use, sentinel excluded.
func (t *Table[T]) Allocated() int {
	if len(t.seats) == 0 {
		return 0
	}
	return len(t.seats) - 1 - len(t.free)
}
