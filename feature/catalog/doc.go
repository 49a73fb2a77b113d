// Package catalog implements the reconciliation engine between the ERP
// system-of-record and the storefront back-ends.
//
// The engine decides, for each group of source items sharing a parent key,
// whether a storefront product already exists, creates or extends it if not,
// records the correspondence for future runs, and retries transient failures
// while treating validation failures as terminal. Reruns are idempotent:
// with no source changes, a second run creates nothing.
//
// # Components
//
//   - MappingStore: the persisted (sourceCode, storeID, targetType) →
//     targetID join key that makes reruns idempotent.
//   - Resolver: existence checks (forward pointer, mapping table, derived
//     handle) and the lazily-built option-value reference cache.
//   - Executor: the per-group state machine owning the two-step
//     create-parent-then-create-children protocol, the attach path with its
//     benign-duplicate and linked-option fallbacks, and field-level updates.
//   - Runner: store iteration, group scheduling, aggregate SyncOutcome,
//     SyncEvent persistence and report archival.
//   - Service / Handler: wiring plus the operator HTTP surface.
//
// # Failure taxonomy
//
// Transient failures (timeouts, rate limits, network) are retried by
// core/retry. Validation rejections are terminal for the group. Invariant
// violations (an "existing"-flagged group whose parent cannot be found) are
// terminal and never fall through to creation. Duplicate-child rejections
// are reclassified as success when the existing child can be located.
// Failures never propagate past the per-group boundary; every run completes
// its full pass and reports an aggregate outcome.
package catalog
