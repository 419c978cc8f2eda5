package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/chenyanchen/uanode"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // Member missing, Bad status.
	ExitCommandError = 2 // Bad flags, unreadable files.
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode returns the exit code carried by err, ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// painter colors status codes when writing to a terminal.
type painter struct {
	good, uncertain, bad *color.Color
}

func newPainter(w io.Writer) painter {
	p := painter{
		good:      color.New(color.FgGreen),
		uncertain: color.New(color.FgYellow),
		bad:       color.New(color.FgRed, color.Bold),
	}
	f, ok := w.(*os.File)
	tty := ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	for _, c := range []*color.Color{p.good, p.uncertain, p.bad} {
		if tty {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p painter) status(code uanode.StatusCode) string {
	switch {
	case code.IsGood():
		return p.good.Sprint(code.String())
	case code.IsUncertain():
		return p.uncertain.Sprint(code.String())
	}
	return p.bad.Sprint(code.String())
}

// formatValue renders v, decoding structured values through sc when possible.
func formatValue(v uanode.Variant, sc uanode.SerializationContext) string {
	if v.IsNull() {
		return "null"
	}
	switch raw := v.Value.(type) {
	case uanode.ExtensionObject:
		if sc != nil {
			if decoded, err := sc.DecodeStruct(raw); err == nil {
				return fmt.Sprintf("%+v", decoded)
			}
		}
		return fmt.Sprintf("ExtensionObject(%s, %d bytes)", raw.TypeID, len(raw.Body))
	case uanode.LocalizedText:
		if raw.Locale == "" {
			return raw.Text
		}
		return raw.Locale + ":" + raw.Text
	case string:
		return fmt.Sprintf("%q", raw)
	}
	return fmt.Sprintf("%v", v.Value)
}
