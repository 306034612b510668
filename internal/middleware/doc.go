// Package middleware provides HTTP middleware for the bot's web surface.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path cardinality
//   - Configurable filtering for health checks and the metrics endpoint
package middleware
