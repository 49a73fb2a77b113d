// Package database manages the MySQL connection for engine-owned state.
//
// The database holds the two tables the sync engine exclusively owns:
// product mappings (the idempotency join key between ERP item codes and
// storefront IDs) and sync events (one aggregate record per run). All
// remote catalog data stays in the remote systems; nothing from the ERP or
// the storefronts is mirrored here.
//
// Connections come with pool limits and an initial ping so a misconfigured
// database fails fast at startup rather than mid-run.
package database
