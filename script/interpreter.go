package script

import (
	"errors"
	"fmt"
	"strconv"

	"gregoryjjb/camelot/roundtable"
)

var ErrNoSnapshot = errors.New("no snapshot taken, use clone first")

// Result is what a single command produced. Output is only meaningful
// when HasOutput is set.
type Result struct {
	Output    string
	HasOutput bool
}

// Interpreter runs commands against one table. It keeps one snapshot,
// taken with clone, that restore and equal work against.
type Interpreter struct {
	table    *roundtable.Table[string]
	snapshot *roundtable.Table[string]
}

func NewInterpreter() *Interpreter {
	return &Interpreter{
		table: roundtable.New[string](),
	}
}

func (in *Interpreter) Table() *roundtable.Table[string] {
	return in.table
}

// Exec runs cmd. A command called outside its precondition returns an
// error wrapping the table's *roundtable.PreconditionError and leaves the
// table as it was.
func (in *Interpreter) Exec(cmd Command) (Result, error) {
	var res execResult
	err := roundtable.Catch(func() {
		res = in.exec(cmd)
	})
	if err != nil {
		return Result{}, fmt.Errorf("line %d: %s: %w", cmd.Line, cmd, err)
	}
	if res.err != nil {
		return Result{}, fmt.Errorf("line %d: %s: %w", cmd.Line, cmd, res.err)
	}
	return res.Result, nil
}

type execResult struct {
	Result
	err error
}

func output(s string) execResult {
	return execResult{Result: Result{Output: s, HasOutput: true}}
}

func (in *Interpreter) exec(cmd Command) execResult {
	t := in.table

	switch cmd.Op {
	case OpSeat:
		t.SeatAnchor(cmd.Arg)
	case OpAdd:
		t.AddKnight(cmd.Arg)
	case OpRemove:
		t.RemoveKnight(cmd.Arg)
	case OpSpeaker:
		return output(t.CurrentSpeaker())
	case OpNext:
		t.Next()
	case OpPrevious:
		t.Previous()
	case OpInterrupt:
		t.AnchorInterrupts()
	case OpPresent:
		return output(strconv.FormatBool(t.AnchorPresent()))
	case OpMove:
		t.RelocateAnchor(cmd.Arg)
	case OpEmpty:
		return output(strconv.FormatBool(t.IsEmpty()))
	case OpSize:
		return output(strconv.Itoa(t.Len()))
	case OpShow:
		return output(t.String())
	case OpClone:
		in.snapshot = t.Clone()
	case OpRestore:
		if in.snapshot == nil {
			return execResult{err: ErrNoSnapshot}
		}
		in.table = in.snapshot.Clone()
	case OpEqual:
		if in.snapshot == nil {
			return execResult{err: ErrNoSnapshot}
		}
		return output(strconv.FormatBool(t.Equal(in.snapshot)))
	case OpClear:
		t.Clear()
	default:
		return execResult{err: fmt.Errorf("unsupported command %q", cmd.Op)}
	}

	return execResult{}
}
