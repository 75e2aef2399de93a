// Package core defines the domain model shared by the casetracker layers.
//
// # Architecture Overview
//
// The core package provides:
//   - Domain types (CaseDefinition, Examine) and their partial-update payloads
//   - Field, a JSON value wrapper that tracks key presence for merge-patch bodies
//   - EntityError and the identity sentinels used by the resource controllers
//   - PageRequest and Page for bounded, ordered listings
//
// # Identity Rules
//
// Identities are assigned by the store on the first save and never change
// afterwards. A create request must not carry an identity; replace and partial
// update requests must carry one that matches the path and exists in the store.
// Violations are reported as *EntityError values wrapping one of
// ErrIdentityConflict, ErrIdentityRequired, ErrIdentityMismatch or ErrNotFound.
package core
