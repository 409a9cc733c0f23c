// Package models defines the domain types shared by the fetch, replay and persistence layers.
//
// The package contains two categories of types:
//
// 1. Value types describing a user's library
//   - [Track] : an immutable (id, name) pair
//   - [LikedList] : liked tracks ordered oldest-first
//   - [Operation] : the mutation applied during replay (add or delete)
//
// 2. Persistent entities
//   - [TransferRun] : one replay run and its terminal state
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
