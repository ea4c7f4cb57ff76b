package terminal

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
)

const stageLabelWidth = 24

var stageColors = map[mixhash.Stage]Color{
	mixhash.StageInit:      ColorGreen,
	mixhash.StageXor:       ColorBlue,
	mixhash.StageMulPrime:  ColorGreen,
	mixhash.StageShiftXor1: ColorYellow,
	mixhash.StageMulMurmur: ColorBlue,
	mixhash.StageShiftXor2: ColorGreen,
	mixhash.StageFinal:     ColorRed,
}

// FormatHash renders h as hex, decimal and 32-digit binary.
func FormatHash(h uint32) string {
	return fmt.Sprintf("0x%08x (%d, 0b%032b)", h, h, h)
}

// StepTracer writes one line per mixing step. It implements mixhash.Observer.
type StepTracer struct {
	out io.Writer
	cfg Config
}

// NewStepTracer returns a tracer writing to w.
func NewStepTracer(w io.Writer, cfg Config) *StepTracer {
	return &StepTracer{out: w, cfg: cfg}
}

// ObserveStep implements mixhash.Observer.
func (t *StepTracer) ObserveStep(step mixhash.Step) {
	if step.Stage == mixhash.StageXor {
		fmt.Fprintln(t.out, t.cfg.Colorize(
			fmt.Sprintf("Processing character %q (ASCII %d)", step.Byte, step.Byte), ColorYellow))
	}

	indent, label := "  ", step.Stage.String()
	if step.Stage == mixhash.StageInit || step.Stage == mixhash.StageFinal {
		indent, label = "", label+" hash"
	}

	line := indent + text.Pad(label+":", stageLabelWidth, ' ') + " " + FormatHash(step.Value)

	fmt.Fprintln(t.out, t.cfg.Colorize(line, stageColors[step.Stage]))
}
