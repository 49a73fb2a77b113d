// Package retry drives bounded exponential backoff around remote calls.
//
// Failures are classified by message content into transient (timeouts, rate
// limits, network errors) and terminal (validation rejections, anything
// unrecognized). Transient failures are retried up to a small attempt cap;
// terminal failures return immediately, consuming exactly one attempt.
//
// The remote APIs this project talks to do not return structured error
// codes, so classification is necessarily substring matching. All matching
// rules are centralized in this package so they can be tested in one place.
//
// # Usage
//
//	err := retry.Do(ctx, log, "productCreate", cfg, func() error {
//	    return client.CreateProduct(ctx, input)
//	})
package retry
