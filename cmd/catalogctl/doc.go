// Command catalogctl provides a CLI utility for inspecting the media
// catalog without going through the bot.
//
// It supports the following operations:
//   - stats: Show catalog record counts
//   - search: Run a catalog search from the command line
//
// Usage:
//
//	catalogctl <command>
//
// Commands:
//
//	stats                       Display total, per-type, and per-chat
//	                            record counts and the last index time.
//
//	search <chat_id> <keyword>  Search file names in one chat the same
//	                            way the bot's /f command does and print
//	                            the first 20 matches.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
//
// Notes:
//
// The utility opens the same SQLite catalog the bot writes to. SQLite's
// WAL mode makes concurrent read access safe while the bot is running.
package main
