// Package server holds the admin HTTP server configuration.
//
// The admin server exposes operational endpoints for the sync engine:
// triggering runs, listing past sync events, and inspecting mappings. The
// serve command builds the Fiber app; this package only defines the
// configuration structure embedded by core/config.
package server
