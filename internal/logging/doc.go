// Package logging provides leveled logging for the media search bot.
//
// The log level is controlled by the LOG_LEVEL environment variable
// (debug, info, warn, error) or the DEBUG flag. The default level is
// info. Output goes through the standard library logger so timestamps
// and destinations follow its configuration.
package logging
