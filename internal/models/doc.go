// Package models defines the core domain models for planboard.
//
// # The Planning Document
//
// Everything a couple plans lives in a single aggregate, the Document:
//   - Vendor: a candidate supplier (venue, photographer, ...) with price and status
//   - BudgetLineItem: one budget row per category, optionally pointing at the chosen vendor
//   - InspirationNote: a free-text idea, optionally enriched with an AI suggestion
//   - Guest: an invitee on the bride's or the groom's side
//   - Categories: the ordered category list shared by vendors and budget rows
//
// The Document is the unit of synchronization. It is read and overwritten as a
// whole; there is no per-entity versioning.
//
// # Snapshots
//
// A Snapshot is what arrives from the remote store. Every collection in it is
// optional: a missing or null field means "not present" and must leave the local
// collection untouched, while an empty array is present and clears it.
//
// # Design Principles
//
//  1. **One aggregate**: mutations go through the state package, never field-by-field merges
//  2. **Wire compatibility**: JSON names match the document already stored remotely
//  3. **Avoid circular references**: use ID strings instead of pointers for relationships
package models
