// Package models defines the core domain models for kakeibo.
//
// # Models
//
// Every model is a document in the remote store, tagged by its _type:
//   - User: a verified account (type "user")
//   - Group: a set of members sharing a ledger (type "group")
//   - GroupInvitation: a pending offer to join a group (type "groupInvitation")
//   - Transaction: one recorded expense (type "transaction")
//
// # Design Principles
//
//  1. **The store is the system of record**: models are decoded from documents
//     and validated at that boundary, never trusted blindly.
//  2. **References are IDs**: owner, members, invitee and the like hold document
//     IDs, never nested documents.
//  3. **One private group per user**: the reserved name PrivateGroupName is
//     created at verification and cannot be reused, renamed, shared or left.
package models
