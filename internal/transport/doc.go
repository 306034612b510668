// Package transport defines the chat platform contract and its HTTP
// implementation.
//
// The Gateway interface is the outbound surface the bot depends on:
// sending, editing and deleting rendered messages, answering button
// presses, paging through chat history, and querying administrator
// capability. Client implements it against a bot-API-shaped HTTP
// endpoint, with bounded retries on rate limiting and server errors.
// History access may use a second, independently authenticated
// identity; credential lifecycle for both identities is external.
//
// Inbound events arrive through Webhook, which validates a shared
// secret and dispatches each update to an UpdateHandler on a bounded
// worker pool without serializing events.
//
// Callback payloads carried by pagination buttons are encoded and
// decoded by Payload; the page number is split off at the last colon so
// queries containing colons round-trip.
package transport
