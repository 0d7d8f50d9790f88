package core

import "github.com/spaghettifunk/tessera/engine/containers"

const AVG_COUNT int = 30

// FrameMetrics keeps a rolling average of frame times and a frames per
// second counter refreshed once per second.
type FrameMetrics struct {
	frameTimes         *containers.RingQueue[float64]
	msAverage          float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
	totalFrames        uint64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Update records one frame that took frameElapsedTime seconds.
func (m *FrameMetrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0
	m.frameTimes.Push(frameMS)

	sum := 0.0
	m.frameTimes.Each(func(v float64) { sum += v })
	m.msAverage = sum / float64(m.frameTimes.Len())

	m.frames++
	m.totalFrames++
	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}
}

func (m *FrameMetrics) FPS() float64 {
	return m.fps
}

// FrameTime is the average frame time in milliseconds.
func (m *FrameMetrics) FrameTime() float64 {
	return m.msAverage
}

func (m *FrameMetrics) Frame() (float64, float64) {
	return m.fps, m.msAverage
}

func (m *FrameMetrics) TotalFrames() uint64 {
	return m.totalFrames
}
