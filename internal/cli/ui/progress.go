package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ProgressBar renders step progress for multi-entity operations
type ProgressBar struct {
	writer  io.Writer
	total   int
	current int
	width   int
	message string
	noColor bool
}

// ProgressBarOptions configures progress bar behavior
type ProgressBarOptions struct {
	Total   int
	Width   int // Default: 30
	Message string
	NoColor bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(w io.Writer, opts ProgressBarOptions) *ProgressBar {
	width := opts.Width
	if width == 0 {
		width = 30
	}

	return &ProgressBar{
		writer:  w,
		total:   opts.Total,
		width:   width,
		message: opts.Message,
		noColor: opts.NoColor,
	}
}

// Step advances the bar by one and shows label as the current item
func (p *ProgressBar) Step(label string) {
	p.message = label
	p.current = min(p.current+1, p.total)
	p.render()
}

// Current returns the number of completed steps
func (p *ProgressBar) Current() int {
	return p.current
}

// Finish ends the progress line with a success message
func (p *ProgressBar) Finish(message string) {
	fmt.Fprintln(p.writer)
	green := color.New(color.FgGreen, color.Bold)
	if p.noColor {
		green.DisableColor()
	}
	green.Fprintf(p.writer, "✓ %s\n", message)
}

// Fail ends the progress line without a success message
func (p *ProgressBar) Fail() {
	fmt.Fprintln(p.writer)
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}

	filled := p.width * p.current / p.total

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if p.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}

	var bar strings.Builder
	bar.WriteString("[")
	cyan.Fprint(&bar, strings.Repeat("█", filled))
	gray.Fprint(&bar, strings.Repeat("░", p.width-filled))
	bar.WriteString("]")

	message := ""
	if p.message != "" {
		message = " " + p.message
	}

	fmt.Fprintf(p.writer, "\r\033[K%s %d/%d%s", bar.String(), p.current, p.total, message)
}

// WithProgress runs fn with a progress bar of total steps. The success
// message is printed only when fn returns nil.
func WithProgress(w io.Writer, message string, total int, noColor bool, fn func(*ProgressBar) error) error {
	bar := NewProgressBar(w, ProgressBarOptions{
		Total:   total,
		NoColor: noColor,
	})

	if err := fn(bar); err != nil {
		bar.Fail()
		return err
	}

	bar.Finish(message)
	return nil
}
