// Package models defines the core domain models for the expense tracker.
//
// # Models
//
//   - User: a registered account; its PartnerID field is the directional
//     pairing pointer used for shared ("AA") expenses
//   - Transaction: a single ledger entry owned by one user
//   - Budget: a monthly spending limit for one user
//   - CategoryTotal: one slice of a per-category spending breakdown
//   - PairingStatus: derived view of the relationship between two users
//
// # Design principles
//
//  1. Pairing is two independent directional pointers; mutuality is always
//     derived at read time (see internal/pairing), never stored.
//  2. Amounts are decimal.Decimal throughout so that a split pair of
//     transactions sums back to the original amount exactly.
//  3. Relationships use ID strings instead of struct pointers to avoid
//     circular references.
package models
