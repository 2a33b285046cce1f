package main

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gregoryjjb/camelot/script"
)

// Tables is the set of named sessions a server hosts.
type Tables struct {
	ctx         context.Context
	historySize int

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewTables(ctx context.Context, historySize int) *Tables {
	return &Tables{
		ctx:         ctx,
		historySize: historySize,
		sessions:    make(map[string]*Session),
	}
}

func (ts *Tables) Create(name string) (*Session, error) {
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, ok := ts.sessions[name]; ok {
		return nil, fmt.Errorf("%w: table %q", ErrExists, name)
	}

	s := NewSession(ts.ctx, name, ts.historySize)
	ts.sessions[name] = s
	return s, nil
}

func (ts *Tables) Get(name string) (*Session, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	s, ok := ts.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: table %q", ErrNotExist, name)
	}
	return s, nil
}

func (ts *Tables) Delete(name string) error {
	ts.mu.Lock()
	s, ok := ts.sessions[name]
	delete(ts.sessions, name)
	ts.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: table %q", ErrNotExist, name)
	}

	s.Close()
	return nil
}

// Names returns the table names in sorted order.
func (ts *Tables) Names() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	names := make([]string, 0, len(ts.sessions))
	for name := range ts.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close stops every session.
func (ts *Tables) Close() {
	ts.mu.Lock()
	sessions := ts.sessions
	ts.sessions = make(map[string]*Session)
	ts.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Seed creates and seats the tables described in the config.
func (ts *Tables) Seed(ctx context.Context, tables []TableConfig) error {
	for _, tc := range tables {
		s, err := ts.Create(tc.Name)
		if err != nil {
			return err
		}

		if _, _, err := s.Exec(ctx, SeatingCommands(tc)); err != nil {
			return fmt.Errorf("seat table %q: %w", tc.Name, err)
		}

		tlog.Info().
			Str("table", tc.Name).
			Int("knights", len(tc.Knights)+1).
			Msg("Seated table from config")
	}
	return nil
}

// SeatingCommands turns a table config into a script. Knights join to the
// right of Arturo, so they are added last to first to end up in the listed
// clockwise order.
func SeatingCommands(tc TableConfig) []script.Command {
	cmds := make([]script.Command, 0, len(tc.Knights)+1)
	cmds = append(cmds, script.Command{Op: script.OpSeat, Arg: tc.Anchor})
	for i := len(tc.Knights) - 1; i >= 0; i-- {
		cmds = append(cmds, script.Command{Op: script.OpAdd, Arg: tc.Knights[i]})
	}
	return cmds
}
