// Package metrics declares the Prometheus metrics exported by the media
// search bot and a small periodic collector that turns catalog and
// session registry statistics into gauges.
//
// Metric families cover ingestion outcomes, backfill runs, the search
// session lifecycle, outbound transport calls, catalog store queries,
// and the HTTP surface. All metrics are registered via promauto at
// package load; InitializeMetrics pre-populates the expected label
// combinations so every series appears on the first scrape.
package metrics
