package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Console labels.
const (
	LabelStart  = "Start"
	LabelRead   = "Read"
	LabelWrite  = "Write"
	LabelCopy   = "Copy"
	LabelRender = "Render"
	LabelWarn   = "Warn"
	LabelFinish = "Finish"
)

// Console prints the labelled progress lines of a guide build, for example
//
//	[Write] guide/index.html
//
// Start, Finish and Warn lines are always printed; the rest only in
// verbose mode.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool

	success lipgloss.Style
	warning lipgloss.Style
	label   lipgloss.Style
}

// NewConsole creates a console writing to out, or stdout when out is nil.
// Colors are dropped automatically when out is not a terminal.
func NewConsole(out io.Writer, verbose bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	r := lipgloss.NewRenderer(out)

	return &Console{
		out:     out,
		verbose: verbose,
		success: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"}),
	}
}

// Verbose reports whether detail lines are printed.
func (c *Console) Verbose() bool {
	return c != nil && c.verbose
}

// Start prints the opening line.
func (c *Console) Start(text string) {
	c.print(styleSuccess, LabelStart, text)
}

// Finish prints the closing line.
func (c *Console) Finish(text string) {
	c.print(styleSuccess, LabelFinish, text)
}

// Warn prints a warning line.
func (c *Console) Warn(format string, args ...interface{}) {
	c.print(styleWarning, LabelWarn, fmt.Sprintf(format, args...))
}

// Read, Write, Render and Copy print detail lines in verbose mode.
func (c *Console) Read(path string)   { c.detail(LabelRead, path) }
func (c *Console) Write(path string)  { c.detail(LabelWrite, path) }
func (c *Console) Render(path string) { c.detail(LabelRender, path) }

// Copy prints "src => dst".
func (c *Console) Copy(src, dst string) {
	c.detail(LabelCopy, src+" => "+dst)
}

func (c *Console) detail(label, text string) {
	if !c.Verbose() {
		return
	}
	c.print(styleDetail, label, text)
}

type styleKind int

const (
	styleDetail styleKind = iota
	styleSuccess
	styleWarning
)

// print is a no-op on a nil console.
func (c *Console) print(kind styleKind, label, text string) {
	if c == nil {
		return
	}

	style := c.label
	switch kind {
	case styleSuccess:
		style = c.success
	case styleWarning:
		style = c.warning
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", style.Render("["+label+"]"), text)
}
