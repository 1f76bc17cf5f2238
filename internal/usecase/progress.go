package usecase

import (
	"math"
	"sync"
)

// ProgressReporter turns byte counts into whole percentages for an upload
// callback. Reports never go down, 100 is only sent by Complete, and
// nothing is sent after Complete or Fail.
type ProgressReporter struct {
	mu      sync.Mutex
	fn      func(percent int)
	last    int
	started bool
	done    bool
}

func NewProgressReporter(fn func(percent int)) *ProgressReporter {
	return &ProgressReporter{fn: fn}
}

// Track matches service.ProgressFunc.
func (p *ProgressReporter) Track(transferred, total int64) {
	if total <= 0 {
		return
	}

	pct := int(math.Round(float64(transferred) / float64(total) * 100))
	if pct > 99 {
		pct = 99
	}
	if pct < 0 {
		pct = 0
	}

	p.emit(pct, false)
}

func (p *ProgressReporter) Complete() {
	p.emit(100, true)
}

func (p *ProgressReporter) Fail() {
	p.mu.Lock()
	p.done = true
	p.mu.Unlock()
}

func (p *ProgressReporter) emit(pct int, final bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return
	}
	if final {
		p.done = true
	}
	if p.fn == nil || (p.started && pct <= p.last) {
		return
	}

	p.started = true
	p.last = pct
	p.fn(pct)
}
