// Package model defines the character aggregate and everything hanging off
// it: attributes, skills and the skill graph projection.
//
// This package holds type definitions, lenient decoding and normalization.
// It imports nothing internal besides levels, so every other package can
// depend on it without cycles.
//
// Key constraints:
//   - Attribute names form a closed set of eight; unknown names are dropped
//     at ingress, never carried.
//   - Skill names are unique by folded key (see FoldName).
//   - Graph node identity is always a NodeID string once decoded; the legacy
//     object-or-string shape never leaves the decoder.
//   - JSON field names keep the camelCase layout of the stored documents so
//     old saves stay readable.
package model
