// Package erp provides the HTTP client for the ERP system-of-record.
//
// The ERP exposes an OData-style service layer with cookie-based sessions.
// The client logs in lazily, keeps the session cookie in a jar, and
// re-authenticates once when the session expires mid-run.
//
// The sync engine consumes this package only through the Client interface:
//   - FetchChangedItems: pending items for one store, grouped by parent key
//   - WriteBack: confirmation fields after a successful reconciliation
//
// Items are read-only snapshots; the engine never mutates source rows beyond
// the derived write-back fields.
package erp
