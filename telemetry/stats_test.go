package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassStatsSummary(t *testing.T) {
	var p PassStats
	mean, stddev := p.Summary()
	assert.Zero(t, mean)
	assert.Zero(t, stddev)

	p.Record(2.0)
	mean, stddev = p.Summary()
	assert.Equal(t, 2.0, mean)
	assert.Zero(t, stddev, "single sample has no spread")

	p.Record(4.0)
	p.Record(6.0)
	mean, stddev = p.Summary()
	assert.InDelta(t, 4.0, mean, 1e-9)
	assert.InDelta(t, 2.0, stddev, 1e-9)
	assert.Equal(t, 3, p.Count())
}
