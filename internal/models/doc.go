// Package models defines the core domain models for the asset splitter.
//
// # Models
//
//   - Asset: one shared item of value, divided between two parties
//   - AllocationType: whether an asset is split or taken wholly by one party
//   - StoredState: party names plus the asset list, the unit of persistence and exchange
//
// Parties are identified by their position (A or B), never by name. Names are
// free text used only as labels, and an empty name falls back to "Party A" or
// "Party B" wherever it is displayed.
//
// # Design Principles
//
// 1. **Value semantics**: StoredState and Asset are plain values; collections are
// replaced, never mutated behind a caller's back.
// 2. **One document shape**: the JSON tags on these types are the persisted,
// exported and imported document format.
package models
