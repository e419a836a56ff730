// Package output formats daqgen's human-facing CLI messages. Colour is used
// only when the destination is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Writer prints status lines, code blocks and listings.
type Writer struct {
	out    io.Writer
	styles Styles
}

// Option configures a Writer.
type Option func(*Writer)

// WithColor forces colour on or off.
func WithColor(on bool) Option {
	return func(w *Writer) {
		w.styles = GetStyles(!on)
	}
}

// New creates a Writer. Colour is enabled when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer, opts ...Option) *Writer {
	w := &Writer{
		out:    out,
		styles: GetStyles(!IsTTY(out) || DetectNoColor()),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Status prints a message behind an icon, or indented when icon is empty.
// Write errors are ignored.
func (w *Writer) Status(icon, msg string) {
	if icon == "" {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
		return
	}
	_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
}

// Statusf is Status with formatting.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(w.styles.Success.Render("✓"), msg)
}

// Successf is Success with formatting.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.styles.Warning.Render("!"), msg)
}

// Warningf is Warning with formatting.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.styles.Error.Render("✗"), msg)
}

// Errorf is Error with formatting.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Header prints a bold section title.
func (w *Writer) Header(title string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(title))
}

// Code prints content indented by two spaces between blank lines.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// KeyValue prints "key: value" rows with the keys padded to one width.
func (w *Writer) KeyValue(rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		label := fmt.Sprintf("%-*s", width+1, r[0]+":")
		_, _ = fmt.Fprintf(w.out, "%s %s\n", w.styles.Label.Render(label), r[1])
	}
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Raw prints text followed by a newline, without styling.
func (w *Writer) Raw(text string) {
	_, _ = fmt.Fprintln(w.out, text)
}
