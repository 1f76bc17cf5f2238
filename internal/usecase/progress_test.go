package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressReporterSequence(t *testing.T) {
	var got []int
	p := NewProgressReporter(func(percent int) { got = append(got, percent) })

	p.Track(0, 200)
	p.Track(50, 200)
	p.Track(50, 200)
	p.Track(40, 200)
	p.Track(101, 200)
	p.Track(200, 200)
	p.Complete()
	p.Complete()
	p.Track(200, 200)

	assert.Equal(t, []int{0, 25, 51, 99, 100}, got)
}

func TestProgressReporterSilentAfterFailure(t *testing.T) {
	var got []int
	p := NewProgressReporter(func(percent int) { got = append(got, percent) })

	p.Track(10, 100)
	p.Fail()
	p.Track(90, 100)
	p.Complete()

	assert.Equal(t, []int{10}, got)
}

func TestProgressReporterUnknownTotal(t *testing.T) {
	var got []int
	p := NewProgressReporter(func(percent int) { got = append(got, percent) })

	p.Track(1024, -1)
	p.Track(1024, 0)
	p.Complete()

	assert.Equal(t, []int{100}, got)
}

func TestProgressReporterWithoutCallback(t *testing.T) {
	p := NewProgressReporter(nil)
	assert.NotPanics(t, func() {
		p.Track(1, 2)
		p.Complete()
	})
}
