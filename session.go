package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gregoryjjb/camelot/circularbuffer"
	"gregoryjjb/camelot/pubsub"
	"gregoryjjb/camelot/script"
)

var tlog zerolog.Logger

func init() {
	tlog = log.With().Str("component", "session").Logger()
}

var ErrSessionClosed = errors.New("session closed")

// subscriberBuffer is how many events a slow subscriber may fall behind.
const subscriberBuffer = 32

// TableEvent is published after every command that can change a table.
type TableEvent struct {
	Table   string    `json:"table"`
	Command string    `json:"command"`
	Render  string    `json:"render"`
	Speaker string    `json:"speaker,omitempty"`
	Size    int       `json:"size"`
	At      time.Time `json:"at"`
}

// TableState is a point in time view of a table.
type TableState struct {
	Name          string   `json:"name"`
	Render        string   `json:"render"`
	Speaker       string   `json:"speaker,omitempty"`
	Interrupted   string   `json:"interrupted,omitempty"`
	Size          int      `json:"size"`
	AnchorPresent bool     `json:"anchor_present"`
	Knights       []string `json:"knights"`
}

type sessionMessage struct {
	commands []script.Command
	reply    chan sessionReply
}

type sessionReply struct {
	outputs []string
	state   TableState
	err     error
}

// Session owns one round table. The table is only ever touched by the
// session's run loop, commands reach it over a channel.
type Session struct {
	name           string
	commandChannel chan sessionMessage
	pubsub         *pubsub.Pubsub[TableEvent]
	history        *circularbuffer.CircularBuffer[TableEvent]
	cancel         context.CancelFunc
	done           chan struct{}
}

func NewSession(ctx context.Context, name string, historySize int) *Session {
	ctx, cancel := context.WithCancel(ctx)

	s := &Session{
		name:           name,
		commandChannel: make(chan sessionMessage),
		pubsub:         pubsub.New[TableEvent](subscriberBuffer),
		history:        circularbuffer.New[TableEvent](historySize),
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	go s.run(ctx, script.NewInterpreter())

	return s
}

func (s *Session) Name() string {
	return s.name
}

// Exec runs cmds in order and returns the output of every command that
// produced one. It stops at the first rejected command; outputs gathered
// before it are still returned.
func (s *Session) Exec(ctx context.Context, cmds []script.Command) ([]string, TableState, error) {
	r, err := s.send(ctx, sessionMessage{commands: cmds})
	if err != nil {
		return nil, TableState{}, err
	}
	return r.outputs, r.state, r.err
}

// State returns the table as it is now.
func (s *Session) State(ctx context.Context) (TableState, error) {
	r, err := s.send(ctx, sessionMessage{})
	if err != nil {
		return TableState{}, err
	}
	return r.state, nil
}

func (s *Session) send(ctx context.Context, msg sessionMessage) (sessionReply, error) {
	msg.reply = make(chan sessionReply, 1)

	select {
	case s.commandChannel <- msg:
	case <-s.done:
		return sessionReply{}, ErrSessionClosed
	case <-ctx.Done():
		return sessionReply{}, ctx.Err()
	}

	select {
	case r := <-msg.reply:
		return r, nil
	case <-ctx.Done():
		return sessionReply{}, ctx.Err()
	}
}

func (s *Session) Subscribe() (func(), <-chan TableEvent) {
	handle, ch := s.pubsub.Subscribe()
	return func() {
		s.pubsub.Unsubscribe(handle)
	}, ch
}

// History returns the most recent events, oldest first.
func (s *Session) History() []TableEvent {
	return s.history.Slice()
}

// Close stops the run loop and waits for it to exit. Subscribers see their
// channels closed.
func (s *Session) Close() {
	s.cancel()
	<-s.done
}

func (s *Session) run(ctx context.Context, in *script.Interpreter) {
	defer close(s.done)
	defer s.pubsub.Close()

	tlog.Debug().Str("table", s.name).Msg("Running session loop")

	for {
		select {
		case <-ctx.Done():
			tlog.Debug().Str("table", s.name).Msg("Session stopped")
			return

		case msg := <-s.commandChannel:
			msg.reply <- s.handle(in, msg.commands)
		}
	}
}

func (s *Session) handle(in *script.Interpreter, cmds []script.Command) sessionReply {
	var r sessionReply

	for _, cmd := range cmds {
		tlog.Debug().
			Str("table", s.name).
			Str("command", cmd.String()).
			Msg("Received command")

		res, err := in.Exec(cmd)
		if err != nil {
			tlog.Warn().Err(err).Str("table", s.name).Msg("Command rejected")
			r.err = err
			break
		}
		if res.HasOutput {
			r.outputs = append(r.outputs, res.Output)
		}
		if cmd.Mutates() {
			s.publish(in, cmd)
		}
	}

	r.state = s.state(in)
	return r
}

func (s *Session) publish(in *script.Interpreter, cmd script.Command) {
	t := in.Table()

	ev := TableEvent{
		Table:   s.name,
		Command: cmd.String(),
		Render:  t.String(),
		Size:    t.Len(),
		At:      time.Now(),
	}
	if !t.IsEmpty() {
		ev.Speaker = t.CurrentSpeaker()
	}

	s.history.Push(ev)
	s.pubsub.Publish(ev)
}

func (s *Session) state(in *script.Interpreter) TableState {
	t := in.Table()

	st := TableState{
		Name:          s.name,
		Render:        t.String(),
		Size:          t.Len(),
		AnchorPresent: t.AnchorPresent(),
		Knights:       t.Knights(),
	}
	if !t.IsEmpty() {
		st.Speaker = t.CurrentSpeaker()
	}
	if v, ok := t.Interrupted(); ok {
		st.Interrupted = v
	}
	return st
}
