// Package handlers is the bot's routing layer: inbound chat updates
// are dispatched to commands, live indexing, and session callbacks,
// and the HTTP health endpoints report on the catalog behind them.
package handlers
