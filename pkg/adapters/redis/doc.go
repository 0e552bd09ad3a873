// Package redis provides Redis-backed persistence and locking for traversals.
//
// Store keeps each cursor as a JSON string with an optional TTL, plus a
// sorted set index that is pruned lazily on List. Locker implements a
// single-instance SET NX lock released by a compare-and-delete script.
package redis
