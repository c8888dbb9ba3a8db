package display

import (
	"fmt"
	"io"
)

// StderrNotifier prints engagement outcomes as one-line notices, the
// terminal analog of a toast.
type StderrNotifier struct {
	out io.Writer
}

// NewStderrNotifier creates a notifier writing to out.
func NewStderrNotifier(out io.Writer) *StderrNotifier {
	return &StderrNotifier{out: out}
}

// Success prints a confirmation notice.
func (n *StderrNotifier) Success(message string) {
	fmt.Fprintf(n.out, "✔ %s\n", message)
}

// Error prints a failure notice.
func (n *StderrNotifier) Error(message string) {
	fmt.Fprintf(n.out, "✖ %s\n", message)
}
