package metrics

import "github.com/san-kum/marblejar/internal/marble"

// Metric folds marble records one at a time.
type Metric interface {
	Name() string
	Observe(r marble.Record)
	Value() float64
	Reset()
}

// GoodRatio is the fraction of green marbles, 1 when nothing was observed.
type GoodRatio struct {
	good    int
	samples int
}

func NewGoodRatio() *GoodRatio { return &GoodRatio{} }

func (g *GoodRatio) Name() string { return "good_ratio" }

func (g *GoodRatio) Observe(r marble.Record) {
	g.samples++
	if r.Color.Good() {
		g.good++
	}
}

func (g *GoodRatio) Value() float64 {
	if g.samples == 0 {
		return 1.0
	}
	return float64(g.good) / float64(g.samples)
}

func (g *GoodRatio) Reset() {
	g.good = 0
	g.samples = 0
}

// MovingAverage is the mean of the good series over the last window records.
type MovingAverage struct {
	window int
	ring   []float64
	next   int
	filled int
	sum    float64
}

func NewMovingAverage(window int) *MovingAverage {
	if window < 1 {
		window = 1
	}
	return &MovingAverage{window: window, ring: make([]float64, window)}
}

func (m *MovingAverage) Name() string { return "moving_average" }

func (m *MovingAverage) Observe(r marble.Record) {
	v := goodValue(r)
	if m.filled == m.window {
		m.sum -= m.ring[m.next]
	} else {
		m.filled++
	}
	m.ring[m.next] = v
	m.sum += v
	m.next = (m.next + 1) % m.window
}

func (m *MovingAverage) Value() float64 {
	if m.filled == 0 {
		return 0
	}
	return m.sum / float64(m.filled)
}

func (m *MovingAverage) Reset() {
	clear(m.ring)
	m.next, m.filled, m.sum = 0, 0, 0
}

// ExponentialAverage smooths the good series with factor alpha.
type ExponentialAverage struct {
	alpha   float64
	value   float64
	samples int
}

func NewExponentialAverage(alpha float64) *ExponentialAverage {
	return &ExponentialAverage{alpha: alpha}
}

func (e *ExponentialAverage) Name() string { return "ema" }

func (e *ExponentialAverage) Observe(r marble.Record) {
	v := goodValue(r)
	if e.samples == 0 {
		e.value = v
	} else {
		e.value = e.alpha*v + (1-e.alpha)*e.value
	}
	e.samples++
}

func (e *ExponentialAverage) Value() float64 { return e.value }

func (e *ExponentialAverage) Reset() {
	e.value = 0
	e.samples = 0
}

// Collect runs every metric over records and returns the values by name.
func Collect(records []marble.Record, ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, r := range records {
			m.Observe(r)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

func goodValue(r marble.Record) float64 {
	if r.Color.Good() {
		return 1
	}
	return 0
}
