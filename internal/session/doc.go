// Package session manages the ephemeral, interactive search views the
// bot renders into group chats. Each view is keyed by the message that
// carries it, owned by the user who started the search, paginated over
// the media catalog, and deleted automatically after a fixed idle
// period.
package session
