package session

import (
	"io"
	"os"
)

// Sink is a plain io.Writer rather than a method-patched print/
// println target: every byte a shell-level command writes goes to whichever
// sink is currently on top of the session's stack. `>`/`>>` push a
// file-backed sink, `| MORE` pushes a buffer-backed one, both popped
// once the command finishes.
type Sink = io.Writer

// defaultSink is standard output, used whenever nothing has been
// pushed.
var defaultSink Sink = os.Stdout

// Sink returns the sink currently on top of the stack, or
// defaultSink when nothing has been pushed.
func (s *Session) Sink() Sink {
	if len(s.sinks) == 0 {
		return defaultSink
	}
	return s.sinks[len(s.sinks)-1]
}

// PushSink installs sink as the target for every subsequent write until
// the matching PopSink, the mechanism `>`, `>>` and `|` use to redirect
// one command's output without touching the command's own code.
func (s *Session) PushSink(sink Sink) { s.sinks = append(s.sinks, sink) }

// PopSink restores the previous sink. A no-op when the stack is empty,
// so an unbalanced Pop never panics a command that errored before
// finishing its own Push.
func (s *Session) PopSink() {
	if len(s.sinks) > 0 {
		s.sinks = s.sinks[:len(s.sinks)-1]
	}
}
