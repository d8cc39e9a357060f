// Package app is the composition root of despensa.
//
// Run loads the configuration, points slog at the log file, builds the API
// client and the three collection stores, starts the background refresher and
// hands everything to the TUI, blocking until the user quits or the context is
// cancelled.
//
// # Refresher
//
// Categories and products are re-fetched in the background every PollEvery
// seconds (default 60). Consecutive failures back off exponentially, capped at
// 30 seconds. Shopping lists are only fetched on demand: refetching a list
// re-seeds the purchase overlay of the list being viewed.
//
// # Errors
//
// Only startup problems are returned: an unreadable config file, a log file
// that cannot be opened, or an invalid API URL. Everything after that is
// surfaced in the UI and the log.
package app
