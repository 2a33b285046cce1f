package roundtable

import (
	"errors"
	"fmt"
)

var (
	ErrNotEmpty           = errors.New("table is not empty")
	ErrEmpty              = errors.New("table is empty")
	ErrNoAnchor           = errors.New("arturo is not seated")
	ErrDuplicateKnight    = errors.New("knight is already seated")
	ErrUnknownKnight      = errors.New("knight is not seated")
	ErrAnchorNotAlone     = errors.New("arturo can only leave an otherwise empty table")
	ErrSelfInterruption   = errors.New("arturo is already speaking")
	ErrTooSmall           = errors.New("table needs at least 3 knights")
	ErrRelocateOntoAnchor = errors.New("arturo cannot sit next to himself")
	ErrCopiedByValue      = errors.New("table was copied by value, use Clone")
)

// PreconditionError is the value a Table panics with when an operation is
// called outside its precondition. The table is left untouched.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("roundtable: %s: %s", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

func violation(op string, err error) {
	panic(&PreconditionError{Op: op, Err: err})
}

// Catch calls fn and returns the *PreconditionError it panicked with, if
// any. Any other panic is propagated.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*PreconditionError)
			if !ok {
				panic(r)
			}
			err = pe
		}
	}()

	fn()
	return nil
}
