package roundtable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gregoryjjb/camelot/roundtable"
)

// seated returns a table with anchor seated and knights added in order.
// Since knights sit to the right of Arturo, the last one added ends up
// next to him.
func seated(anchor string, knights ...string) *roundtable.Table[string] {
	tbl := roundtable.New[string]()
	tbl.SeatAnchor(anchor)
	for _, k := range knights {
		tbl.AddKnight(k)
	}
	return tbl
}

func requireViolation(t *testing.T, target error, fn func()) {
	t.Helper()

	err := roundtable.Catch(fn)
	require.Error(t, err)
	assert.ErrorIs(t, err, target)

	var pe *roundtable.PreconditionError
	assert.ErrorAs(t, err, &pe)
}

func requireConsistent[T comparable](t *testing.T, tbl *roundtable.Table[T]) {
	t.Helper()
	require.NoError(t, tbl.Check())
	assert.Equal(t, tbl.Len() == 0, tbl.IsEmpty())
}

func TestTable_Empty(t *testing.T) {
	tbl := roundtable.New[string]()

	assert.True(t, tbl.IsEmpty())
	assert.Equal(t, 0, tbl.Len())
	assert.False(t, tbl.AnchorPresent())
	assert.Equal(t, "[]", tbl.String())
	assert.Empty(t, tbl.Knights())
	requireConsistent(t, tbl)
}

func TestTable_ZeroValue(t *testing.T) {
	var tbl roundtable.Table[int]
	tbl.SeatAnchor(0)
	tbl.AddKnight(1)

	assert.Equal(t, "[ARTURO(0), 1]", tbl.String())
	requireConsistent(t, &tbl)
}

func TestTable_SeatAnchor(t *testing.T) {
	tbl := seated("A")

	assert.Equal(t, "[ARTURO(A)]", tbl.String())
	assert.Equal(t, 1, tbl.Len())
	assert.False(t, tbl.IsEmpty())
	assert.True(t, tbl.AnchorPresent())
	assert.Equal(t, "A", tbl.CurrentSpeaker())

	_, interrupted := tbl.Interrupted()
	assert.False(t, interrupted)
	requireConsistent(t, tbl)
}

func TestTable_AddKnight(t *testing.T) {
	tests := []struct {
		name    string
		knights []string
		want    string
	}{
		{"one", []string{"B"}, "[ARTURO(A), B]"},
		{"two", []string{"B", "C"}, "[ARTURO(A), C, B]"},
		{"three", []string{"B", "C", "D"}, "[ARTURO(A), D, C, B]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := seated("A", tt.knights...)

			assert.Equal(t, tt.want, tbl.String())
			assert.Equal(t, len(tt.knights)+1, tbl.Len())
			assert.Equal(t, "A", tbl.CurrentSpeaker())
			requireConsistent(t, tbl)
		})
	}
}

func TestTable_AddKnightKeepsRoles(t *testing.T) {
	tbl := seated("A", "B", "C")
	tbl.Next()
	tbl.AnchorInterrupts()

	tbl.AddKnight("D")

	assert.Equal(t, "[ARTURO(A),D,*C,B]", tbl.String())
	assert.Equal(t, "A", tbl.CurrentSpeaker())
	requireConsistent(t, tbl)
}

func TestTable_Turns(t *testing.T) {
	tbl := seated("A", "B", "C")

	tbl.Next()
	assert.Equal(t, "C", tbl.CurrentSpeaker())
	assert.Equal(t, "[C, B, ARTURO(A)]", tbl.String())

	tbl.Next()
	assert.Equal(t, "B", tbl.CurrentSpeaker())

	tbl.Next()
	assert.Equal(t, "A", tbl.CurrentSpeaker())

	t.Run("PreviousSeveralTimes", func(t *testing.T) {
		var got []string
		for i := 0; i < 4; i++ {
			tbl.Previous()
			got = append(got, tbl.CurrentSpeaker())
		}
		assert.Equal(t, []string{"B", "C", "A", "B"}, got)
		requireConsistent(t, tbl)
	})
}

func TestTable_Interruption(t *testing.T) {
	t.Run("RenderMarksInterrupted", func(t *testing.T) {
		tbl := seated("A", "B", "C")
		tbl.Next()
		tbl.AnchorInterrupts()

		assert.Equal(t, "[ARTURO(A),*C,B]", tbl.String())
		assert.Equal(t, "A", tbl.CurrentSpeaker())

		v, ok := tbl.Interrupted()
		assert.True(t, ok)
		assert.Equal(t, "C", v)
		requireConsistent(t, tbl)
	})

	t.Run("NextResumesRightOfInterrupted", func(t *testing.T) {
		tbl := seated("A", "B", "C")
		tbl.Next()
		tbl.AnchorInterrupts()
		tbl.Next()

		assert.Equal(t, "B", tbl.CurrentSpeaker())
		assert.Equal(t, "[B, ARTURO(A), C]", tbl.String())
		_, ok := tbl.Interrupted()
		assert.False(t, ok)
		requireConsistent(t, tbl)
	})

	t.Run("PreviousResumesLeftOfInterrupted", func(t *testing.T) {
		tbl := seated("A", "B", "C", "D")
		tbl.Next()
		tbl.Next()
		require.Equal(t, "C", tbl.CurrentSpeaker())
		tbl.AnchorInterrupts()

		tbl.Previous()
		assert.Equal(t, "D", tbl.CurrentSpeaker())
		tbl.Previous()
		assert.Equal(t, "A", tbl.CurrentSpeaker())
		assert.NotContains(t, tbl.String(), "*")
		requireConsistent(t, tbl)
	})

	t.Run("SelfInterruption", func(t *testing.T) {
		tbl := seated("A", "B")
		requireViolation(t, roundtable.ErrSelfInterruption, tbl.AnchorInterrupts)

		tbl.Next()
		tbl.AnchorInterrupts()
		requireViolation(t, roundtable.ErrSelfInterruption, tbl.AnchorInterrupts)

		assert.Equal(t, "[ARTURO(A),*B]", tbl.String())
		requireConsistent(t, tbl)
	})
}

func TestTable_RemoveKnight(t *testing.T) {
	t.Run("Unrelated", func(t *testing.T) {
		tbl := seated("A", "B", "C", "D")
		tbl.Next()
		tbl.AnchorInterrupts()
		require.Equal(t, "[ARTURO(A),*D,C,B]", tbl.String())

		tbl.RemoveKnight("C")

		assert.Equal(t, "[ARTURO(A),*D,B]", tbl.String())
		assert.Equal(t, "A", tbl.CurrentSpeaker())
		assert.Equal(t, 3, tbl.Len())
		requireConsistent(t, tbl)
	})

	t.Run("CurrentPassesRight", func(t *testing.T) {
		tbl := seated("A", "B", "C")
		tbl.Next()
		require.Equal(t, "C", tbl.CurrentSpeaker())

		tbl.RemoveKnight("C")

		assert.Equal(t, "B", tbl.CurrentSpeaker())
		assert.Equal(t, "[B, ARTURO(A)]", tbl.String())
		requireConsistent(t, tbl)
	})

	t.Run("InterruptedAsIfNeverInterrupted", func(t *testing.T) {
		tbl := seated("A", "B", "C", "D")
		tbl.Next()
		tbl.Next()
		require.Equal(t, "C", tbl.CurrentSpeaker())
		tbl.AnchorInterrupts()

		tbl.RemoveKnight("C")

		assert.Equal(t, "A", tbl.CurrentSpeaker())
		assert.Equal(t, "[ARTURO(A), D, B]", tbl.String())

		next := tbl.Clone()
		next.Next()
		assert.Equal(t, "D", next.CurrentSpeaker())

		tbl.Previous()
		assert.Equal(t, "B", tbl.CurrentSpeaker())
		requireConsistent(t, tbl)
	})

	t.Run("AnchorAlone", func(t *testing.T) {
		tbl := seated("A")
		tbl.RemoveKnight("A")

		assert.True(t, tbl.IsEmpty())
		assert.False(t, tbl.AnchorPresent())
		assert.Equal(t, "[]", tbl.String())
		assert.Equal(t, 0, tbl.Allocated())
		requireConsistent(t, tbl)

		tbl.SeatAnchor("Z")
		assert.Equal(t, "[ARTURO(Z)]", tbl.String())
	})

	t.Run("AnchorNotAlone", func(t *testing.T) {
		tbl := seated("A", "B")
		requireViolation(t, roundtable.ErrAnchorNotAlone, func() { tbl.RemoveKnight("A") })

		assert.Equal(t, "[ARTURO(A), B]", tbl.String())
		requireConsistent(t, tbl)
	})

	t.Run("Unknown", func(t *testing.T) {
		tbl := seated("A", "B")
		requireViolation(t, roundtable.ErrUnknownKnight, func() { tbl.RemoveKnight("X") })
	})

	t.Run("SeatsAreReused", func(t *testing.T) {
		tbl := seated("A", "B", "C")
		for i := 0; i < 10; i++ {
			tbl.RemoveKnight("B")
			tbl.AddKnight("B")
		}
		assert.Equal(t, 3, tbl.Allocated())
		assert.Equal(t, "[ARTURO(A), B, C]", tbl.String())
		requireConsistent(t, tbl)
	})
}

func TestTable_RelocateAnchor(t *testing.T) {
	tests := []struct {
		name    string
		knights []string
		turns   int
		target  string
		before  string
		want    string
	}{
		{
			name:    "AnchorSpeaking",
			knights: []string{"c2", "c1"},
			target:  "c1",
			before:  "[ARTURO(c0), c1, c2]",
			want:    "[ARTURO(c0), c2, c1]",
		},
		{
			name:    "KnightSpeaking",
			knights: []string{"c2", "c1"},
			turns:   1,
			target:  "c1",
			before:  "[c1, c2, ARTURO(c0)]",
			want:    "[c1, ARTURO(c0), c2]",
		},
		{
			name:    "AlreadyThere",
			knights: []string{"c2", "c1", "c3"},
			turns:   2,
			target:  "c2",
			before:  "[c1, c2, ARTURO(c0), c3]",
			want:    "[c1, c2, ARTURO(c0), c3]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := seated("c0", tt.knights...)
			for i := 0; i < tt.turns; i++ {
				tbl.Next()
			}
			require.Equal(t, tt.before, tbl.String())
			speaker := tbl.CurrentSpeaker()

			tbl.RelocateAnchor(tt.target)

			assert.Equal(t, tt.want, tbl.String())
			assert.Equal(t, speaker, tbl.CurrentSpeaker())
			requireConsistent(t, tbl)
		})
	}

	t.Run("KeepsInterruption", func(t *testing.T) {
		tbl := seated("A", "B", "C")
		tbl.Next()
		tbl.AnchorInterrupts()

		tbl.RelocateAnchor("C")

		assert.Equal(t, "[ARTURO(A),B,*C]", tbl.String())
		v, ok := tbl.Interrupted()
		assert.True(t, ok)
		assert.Equal(t, "C", v)

		tbl.Next()
		assert.Equal(t, "A", tbl.CurrentSpeaker())
		requireConsistent(t, tbl)
	})

	t.Run("SeveralTimesInARow", func(t *testing.T) {
		tbl := seated("A", "B", "C", "D")
		for _, k := range []string{"B", "C", "D", "B", "B"} {
			tbl.RelocateAnchor(k)
			requireConsistent(t, tbl)
		}
		assert.Equal(t, []string{"A", "D", "C", "B"}, tbl.Knights())
	})

	t.Run("TooSmall", func(t *testing.T) {
		tbl := seated("A", "B")
		requireViolation(t, roundtable.ErrTooSmall, func() { tbl.RelocateAnchor("B") })
	})

	t.Run("OntoAnchor", func(t *testing.T) {
		tbl := seated("A", "B", "C")
		requireViolation(t, roundtable.ErrRelocateOntoAnchor, func() { tbl.RelocateAnchor("A") })
	})

	t.Run("Unknown", func(t *testing.T) {
		tbl := seated("A", "B", "C")
		requireViolation(t, roundtable.ErrUnknownKnight, func() { tbl.RelocateAnchor("X") })
		assert.Equal(t, "[ARTURO(A), C, B]", tbl.String())
	})
}

func TestTable_Preconditions(t *testing.T) {
	empty := roundtable.New[string]()

	requireViolation(t, roundtable.ErrEmpty, func() { empty.CurrentSpeaker() })
	requireViolation(t, roundtable.ErrEmpty, empty.Next)
	requireViolation(t, roundtable.ErrEmpty, empty.Previous)
	requireViolation(t, roundtable.ErrNoAnchor, empty.AnchorInterrupts)
	requireViolation(t, roundtable.ErrNoAnchor, func() { empty.AddKnight("B") })
	requireViolation(t, roundtable.ErrUnknownKnight, func() { empty.RemoveKnight("B") })
	requireConsistent(t, empty)

	tbl := seated("A", "B")
	requireViolation(t, roundtable.ErrNotEmpty, func() { tbl.SeatAnchor("Z") })
	requireViolation(t, roundtable.ErrDuplicateKnight, func() { tbl.AddKnight("B") })
	requireViolation(t, roundtable.ErrDuplicateKnight, func() { tbl.AddKnight("A") })
	assert.Equal(t, "[ARTURO(A), B]", tbl.String())
	requireConsistent(t, tbl)
}

func TestCatch_PropagatesOtherPanics(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		_ = roundtable.Catch(func() { panic("boom") })
	})
	assert.NoError(t, roundtable.Catch(func() {}))
}

func TestTable_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b func() *roundtable.Table[string]
		want bool
	}{
		{
			name: "BothEmpty",
			a:    roundtable.New[string],
			b:    func() *roundtable.Table[string] { return &roundtable.Table[string]{} },
			want: true,
		},
		{
			name: "EmptyAndSeated",
			a:    roundtable.New[string],
			b:    func() *roundtable.Table[string] { return seated("A") },
			want: false,
		},
		{
			name: "SameSeating",
			a:    func() *roundtable.Table[string] { return seated("A", "B", "C") },
			b:    func() *roundtable.Table[string] { return seated("A", "B", "C") },
			want: true,
		},
		{
			name: "DifferentOrder",
			a:    func() *roundtable.Table[string] { return seated("A", "B", "C") },
			b:    func() *roundtable.Table[string] { return seated("A", "C", "B") },
			want: false,
		},
		{
			name: "DifferentAnchor",
			a:    func() *roundtable.Table[string] { return seated("A", "B", "C") },
			b: func() *roundtable.Table[string] {
				// Same cycle A -> C -> B -> A, but B is Arturo.
				return seated("B", "C", "A")
			},
			want: false,
		},
		{
			name: "DifferentSpeaker",
			a:    func() *roundtable.Table[string] { return seated("A", "B", "C") },
			b: func() *roundtable.Table[string] {
				tbl := seated("A", "B", "C")
				tbl.Next()
				return tbl
			},
			want: false,
		},
		{
			name: "InterruptedVersusSpeaking",
			a: func() *roundtable.Table[string] {
				tbl := seated("A", "B", "C")
				tbl.Next()
				tbl.AnchorInterrupts()
				return tbl
			},
			b:    func() *roundtable.Table[string] { return seated("A", "B", "C") },
			want: false,
		},
		{
			name: "SameAfterDifferentHistory",
			a: func() *roundtable.Table[string] {
				tbl := seated("A", "B", "X", "C")
				tbl.RemoveKnight("X")
				tbl.Next()
				tbl.AnchorInterrupts()
				return tbl
			},
			b: func() *roundtable.Table[string] {
				tbl := seated("A", "B", "C")
				tbl.Previous()
				tbl.Previous()
				tbl.AnchorInterrupts()
				return tbl
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := tt.a(), tt.b()
			assert.Equal(t, tt.want, a.Equal(b))
			assert.Equal(t, tt.want, b.Equal(a))
			assert.True(t, a.Equal(a))
		})
	}

	assert.False(t, seated("A").Equal(nil))
}

func TestTable_Clone(t *testing.T) {
	orig := seated("A", "B", "C")
	orig.Next()
	orig.AnchorInterrupts()

	clone := orig.Clone()
	require.True(t, clone.Equal(orig))
	want := clone.String()

	orig.AddKnight("D")
	orig.RemoveKnight("B")
	orig.Next()
	assert.Equal(t, want, clone.String())

	orig.Clear()
	assert.True(t, orig.IsEmpty())
	assert.Equal(t, want, clone.String())

	clone.Next()
	assert.Equal(t, "B", clone.CurrentSpeaker())
	requireConsistent(t, clone)
	requireConsistent(t, orig)
}

func TestTable_CopiedByValue(t *testing.T) {
	orig := seated("A", "B")
	copied := *orig

	requireViolation(t, roundtable.ErrCopiedByValue, func() { copied.AddKnight("C") })
	assert.Equal(t, "[ARTURO(A), B]", orig.String())

	// The copy must not have corrupted the original.
	orig.AddKnight("C")
	requireConsistent(t, orig)
}

func TestTable_Each(t *testing.T) {
	tbl := seated("A", "B", "C", "D")
	tbl.Next()

	var got []string
	tbl.Each(func(v string) bool {
		got = append(got, v)
		return len(got) < 2
	})
	assert.Equal(t, []string{"A", "D"}, got)
	assert.Equal(t, []string{"A", "D", "C", "B"}, tbl.Knights())

	v, ok := tbl.Anchor()
	assert.True(t, ok)
	assert.Equal(t, "A", v)
	assert.True(t, tbl.Contains("C"))
	assert.False(t, tbl.Contains("Z"))
}

type knight struct {
	Name  string
	Title string
}

func TestTable_StructKnights(t *testing.T) {
	tbl := roundtable.New[knight]()
	tbl.SeatAnchor(knight{"Arthur", "King"})
	tbl.AddKnight(knight{"Lancelot", "Sir"})
	tbl.AddKnight(knight{"Galahad", "Sir"})

	assert.Equal(t, "[ARTURO({Arthur King}), {Galahad Sir}, {Lancelot Sir}]", tbl.String())
	requireViolation(t, roundtable.ErrDuplicateKnight, func() { tbl.AddKnight(knight{"Galahad", "Sir"}) })
}
