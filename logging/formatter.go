package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// OutputFormatter formats events for human-readable console display,
// colorizing when writing to a terminal.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	return &OutputFormatter{useColor: useColor, writer: w}
}

// Handle implements Handler, printing each event as it occurs.
func (f *OutputFormatter) Handle(event Event) {
	if out := f.Format(event); out != "" {
		fmt.Fprintln(f.writer, out)
	}
}

// Format converts an event into a human-readable line.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case CommandReceived:
		return fmt.Sprintf("%s %s %v", latency, f.colorize("->", color.FgCyan), event.Data["command"])

	case QueryInstallBegin:
		return fmt.Sprintf("%s %s installing query with %v rules", latency, f.colorize("===", color.FgYellow), event.Data["rules"])

	case QueryFixedPoint:
		return fmt.Sprintf("%s   iteration %v: %v rows bound", latency, event.Data["iteration"], event.Data["rows"])

	case QueryInstallComplete:
		return fmt.Sprintf("%s %s query installed, %s published",
			latency,
			f.colorize("===", color.FgGreen),
			f.colorizeCount("relations", event.Data["published"]))

	case TimeAdvanced:
		return fmt.Sprintf("%s %s advanced to %v", latency, f.colorize("~>", color.FgBlue), event.Data["time"])

	case InputCreated, InputUpdated, InputClosed:
		return fmt.Sprintf("%s %s %v", latency, f.colorize(event.Name, color.FgMagenta), event.Data)

	case ErrorQueryInstall, ErrorContract:
		return fmt.Sprintf("%s %s %v", latency, f.colorize("x", color.FgRed), event.Data["error"])

	case ShutdownBegin:
		return fmt.Sprintf("%s shutdown received", latency)

	default:
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

func (f *OutputFormatter) formatLatency(d time.Duration) string {
	s := fmt.Sprintf("[%6s]", d.Round(time.Microsecond))
	if !f.useColor {
		return s
	}
	switch {
	case d < 5*time.Millisecond:
		return color.GreenString(s)
	case d < 50*time.Millisecond:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func (f *OutputFormatter) colorizeCount(label string, count any) string {
	text := fmt.Sprintf("%v %s", count, label)
	if !f.useColor {
		return text
	}
	return color.CyanString(text)
}

func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// ConsoleHandler creates a Handler that prints formatted events to stdout.
func ConsoleHandler() Handler {
	formatter := NewOutputFormatter(os.Stdout)
	return formatter.Handle
}

// isTerminal reports whether fd is one of the standard stdout/stderr
// descriptors. A simplified stand-in for a proper terminal-capability
// probe (golang.org/x/term), matching the teacher's own placeholder.
func isTerminal(fd uintptr) bool {
	return fd == uintptr(1) || fd == uintptr(2)
}
