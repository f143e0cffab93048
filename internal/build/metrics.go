package build

import (
	"sync"
	"time"
)

// MetricsSnapshot is a point-in-time copy of the build metrics.
type MetricsSnapshot struct {
	TotalBuilds      int64
	SuccessfulBuilds int64
	FailedBuilds     int64
	SkippedSources   int64
	AverageDuration  time.Duration
	TotalDuration    time.Duration
	LastDuration     time.Duration
	LastBuild        time.Time
}

// SuccessRate returns the share of successful builds as a percentage.
func (s MetricsSnapshot) SuccessRate() float64 {
	if s.TotalBuilds == 0 {
		return 0.0
	}

	return float64(s.SuccessfulBuilds) / float64(s.TotalBuilds) * 100.0
}

// BuildMetrics tracks build performance across rebuilds
type BuildMetrics struct {
	mutex sync.RWMutex
	data  MetricsSnapshot
}

// NewBuildMetrics creates a new build metrics tracker
func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{}
}

// RecordBuild records a build outcome in the metrics. report may be nil
// when the build failed before producing one.
func (bm *BuildMetrics) RecordBuild(report *Report, err error) {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	m := &bm.data
	m.TotalBuilds++

	if err != nil {
		m.FailedBuilds++
	} else {
		m.SuccessfulBuilds++
	}

	if report == nil {
		return
	}

	m.TotalDuration += report.Duration
	m.LastDuration = report.Duration
	m.LastBuild = report.StartedAt
	for _, out := range report.Outputs {
		m.SkippedSources += int64(len(out.Bundle.Skipped()))
	}

	// Update average duration
	m.AverageDuration = m.TotalDuration / time.Duration(m.TotalBuilds)
}

// GetSnapshot returns a snapshot of current metrics
func (bm *BuildMetrics) GetSnapshot() MetricsSnapshot {
	bm.mutex.RLock()
	defer bm.mutex.RUnlock()

	return bm.data
}

// Reset resets all metrics
func (bm *BuildMetrics) Reset() {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	bm.data = MetricsSnapshot{}
}
