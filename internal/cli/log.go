package cli

import (
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting. The logger
// writes to w and filters messages at the specified level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logProgress adapts a logger to brep.ProgressHandler, reporting phase
// transitions and completion percentages at debug level.
type logProgress struct {
	logger *log.Logger

	phase   int
	total   uint64
	count   atomic.Uint64
	lastPct atomic.Uint64
}

func newLogProgress(l *log.Logger) *logProgress {
	return &logProgress{logger: l}
}

func (p *logProgress) Start(weights []int) {
	p.logger.Debug("render started", "phases", len(weights))
}

func (p *logProgress) NextPhase(total uint64) {
	p.phase++
	p.total = total
	p.count.Store(0)
	p.lastPct.Store(0)
	p.logger.Debug("phase started", "phase", p.phase, "ticks", total)
}

func (p *logProgress) Tick(n uint64) {
	if p.total == 0 {
		return
	}
	done := p.count.Add(n)
	pct := done * 100 / p.total
	// Log on decile boundaries only; ticks arrive from every worker.
	last := p.lastPct.Load()
	if pct/10 > last/10 && p.lastPct.CompareAndSwap(last, pct) {
		p.logger.Debug("progress", "phase", p.phase, "pct", pct)
	}
}

func (p *logProgress) Finish() {
	p.logger.Debug("render finished")
}
