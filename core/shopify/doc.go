// Package shopify provides the admin GraphQL client for one storefront.
//
// The sync engine consumes this package through the Client interface so that
// tests can substitute doubles. One client is constructed per store; each
// store has its own domain, token and currency.
//
// # Error surface
//
// Three failure shapes reach callers:
//   - transport / top-level GraphQL errors, returned as plain errors whose
//     message starts with "GraphQL query error" or names the network
//     condition, so the retry layer can classify them as transient;
//   - business validation rejections (userErrors), returned as
//     *UserErrorsError for single-entity mutations;
//   - partial bulk outcomes: CreateVariantsBulk returns both the created
//     variants and the per-request rejections in one VariantsResult, leaving
//     duplicate/linked-option classification to the engine.
//
// # Two-step creation
//
// Shopify assigns option-axis IDs only at product creation time. The engine
// therefore calls CreateProduct first, extracts Option.ID from the result,
// and stamps each CreateVariantsBulk entry with the assigned axis ID. This
// ordering is a hard dependency of the remote API, not a client choice.
package shopify
