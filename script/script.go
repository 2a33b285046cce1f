// Package script parses and runs the line oriented command language used
// to drive a round table of string knights.
//
//	# comments and blank lines are skipped
//	seat Arthur
//	add Lancelot
//	next
//	show
package script

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type Op string

const (
	OpSeat      Op = "seat"
	OpAdd       Op = "add"
	OpRemove    Op = "remove"
	OpSpeaker   Op = "speaker"
	OpNext      Op = "next"
	OpPrevious  Op = "prev"
	OpInterrupt Op = "interrupt"
	OpPresent   Op = "present"
	OpMove      Op = "move"
	OpEmpty     Op = "empty"
	OpSize      Op = "size"
	OpShow      Op = "show"
	OpClone     Op = "clone"
	OpRestore   Op = "restore"
	OpEqual     Op = "equal"
	OpClear     Op = "clear"
)

// opArgs records which ops take a knight argument.
var opArgs = map[Op]bool{
	OpSeat:      true,
	OpAdd:       true,
	OpRemove:    true,
	OpSpeaker:   false,
	OpNext:      false,
	OpPrevious:  false,
	OpInterrupt: false,
	OpPresent:   false,
	OpMove:      true,
	OpEmpty:     false,
	OpSize:      false,
	OpShow:      false,
	OpClone:     false,
	OpRestore:   false,
	OpEqual:     false,
	OpClear:     false,
}

// aliases maps alternative spellings onto ops.
var aliases = map[string]Op{
	"previous": OpPrevious,
	"expel":    OpRemove,
	"relocate": OpMove,
	"render":   OpShow,
	"len":      OpSize,
}

type Command struct {
	Line int
	Op   Op
	Arg  string
}

func (c Command) String() string {
	if c.Arg == "" {
		return string(c.Op)
	}
	return string(c.Op) + " " + c.Arg
}

// Mutates reports whether running c can change the table.
func (c Command) Mutates() bool {
	switch c.Op {
	case OpSeat, OpAdd, OpRemove, OpNext, OpPrevious, OpInterrupt, OpMove, OpRestore, OpClear:
		return true
	}
	return false
}

type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// ParseLine parses a single line. ok is false for blank and comment lines.
// Knight names run to the end of the line and may contain spaces.
func ParseLine(line int, s string) (cmd Command, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "#") {
		return Command{}, false, nil
	}

	word, rest, _ := strings.Cut(s, " ")
	word = strings.ToLower(word)
	rest = strings.TrimSpace(rest)

	op := Op(word)
	if alias, found := aliases[word]; found {
		op = alias
	}

	takesArg, known := opArgs[op]
	if !known {
		return Command{}, false, &SyntaxError{Line: line, Msg: fmt.Sprintf("unknown command %q", word)}
	}
	if takesArg && rest == "" {
		return Command{}, false, &SyntaxError{Line: line, Msg: fmt.Sprintf("%s needs a knight", op)}
	}
	if !takesArg && rest != "" {
		return Command{}, false, &SyntaxError{Line: line, Msg: fmt.Sprintf("%s takes no argument, got %q", op, rest)}
	}

	return Command{Line: line, Op: op, Arg: rest}, true, nil
}

// Parse reads a whole script. It stops at the first syntax error.
func Parse(r io.Reader) ([]Command, error) {
	var cmds []Command

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		cmd, ok, err := ParseLine(line, scanner.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			cmds = append(cmds, cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	return cmds, nil
}

// ParseString is Parse for in-memory scripts.
func ParseString(s string) ([]Command, error) {
	return Parse(strings.NewReader(s))
}
