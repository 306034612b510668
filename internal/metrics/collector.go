package metrics

import (
	"time"

	"media-search-bot/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current statistics
type Stats struct {
	TotalRecords   int
	TotalAudio     int
	TotalVideo     int
	ActiveSessions int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CatalogRecordsTotal.WithLabelValues("audio").Set(float64(stats.TotalAudio))
	CatalogRecordsTotal.WithLabelValues("video").Set(float64(stats.TotalVideo))
	SessionsActive.Set(float64(stats.ActiveSessions))

	logging.Debug("Metrics collected: records=%d, audio=%d, video=%d, sessions=%d",
		stats.TotalRecords, stats.TotalAudio, stats.TotalVideo, stats.ActiveSessions)
}
