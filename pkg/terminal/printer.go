package terminal

import (
	"fmt"
	"io"
)

// Printer writes role-colored messages.
type Printer struct {
	out io.Writer
	cfg Config
}

// NewPrinter returns a printer writing to w.
func NewPrinter(w io.Writer, cfg Config) *Printer {
	return &Printer{out: w, cfg: cfg}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Config returns the rendering configuration.
func (p *Printer) Config() Config {
	return p.cfg
}

// Title prints a bold line.
func (p *Printer) Title(format string, args ...any) {
	p.line(ColorBold, format, args...)
}

// Success prints a green line.
func (p *Printer) Success(format string, args ...any) {
	p.line(ColorGreen, format, args...)
}

// Failure prints a red line.
func (p *Printer) Failure(format string, args ...any) {
	p.line(ColorRed, format, args...)
}

// Notice prints a yellow line.
func (p *Printer) Notice(format string, args ...any) {
	p.line(ColorYellow, format, args...)
}

// Detail prints a blue line.
func (p *Printer) Detail(format string, args ...any) {
	p.line(ColorBlue, format, args...)
}

// Plain prints an uncolored line.
func (p *Printer) Plain(format string, args ...any) {
	p.line(ColorNone, format, args...)
}

// Header prints a boxed header sized to the terminal width.
func (p *Printer) Header(title, right string) {
	fmt.Fprintln(p.out, p.cfg.Colorize(DrawHeader(title, right, p.cfg.Width), ColorBold))
}

func (p *Printer) line(col Color, format string, args ...any) {
	fmt.Fprintln(p.out, p.cfg.Colorize(fmt.Sprintf(format, args...), col))
}
