package concurrent

import (
	"sync/atomic"
	"time"
)

type Stats struct {
	Submitted      int64
	Completed      int64
	Failed         int64
	Rejected       int64
	AvgProcessTime time.Duration
}

type StatsCollector struct {
	submitted     atomic.Int64
	completed     atomic.Int64
	failed        atomic.Int64
	rejected      atomic.Int64
	totalProcTime atomic.Int64
}

func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

func (sc *StatsCollector) IncrementSubmitted() { sc.submitted.Add(1) }
func (sc *StatsCollector) IncrementCompleted() { sc.completed.Add(1) }
func (sc *StatsCollector) IncrementFailed()    { sc.failed.Add(1) }
func (sc *StatsCollector) IncrementRejected()  { sc.rejected.Add(1) }

// RecordProcessingTime adds d to the running total of completed jobs.
func (sc *StatsCollector) RecordProcessingTime(d time.Duration) {
	sc.totalProcTime.Add(d.Nanoseconds())
}

func (sc *StatsCollector) GetStats() Stats {
	stats := Stats{
		Submitted: sc.submitted.Load(),
		Completed: sc.completed.Load(),
		Failed:    sc.failed.Load(),
		Rejected:  sc.rejected.Load(),
	}
	if stats.Completed > 0 {
		stats.AvgProcessTime = time.Duration(sc.totalProcTime.Load() / stats.Completed)
	}
	return stats
}
