package exit

import (
	"fmt"
	"io"
	"os"
)

// Result ends the program early: Message goes to Output and the process
// exits with ExitCode.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the message to the configured output.
func (r *Result) Print() {
	if r.Output == nil {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// WithOutput redirects the message, e.g. to a console attached late.
func (r *Result) WithOutput(w io.Writer) *Result {
	r.Output = w
	return r
}

// Success reports a normal early exit on stdout with code 0, such as the
// usage text.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: 0,
		Message:  message,
	}
}

// Error reports a failure on stderr with code 1.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: 1,
		Message:  message,
	}
}

func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}
