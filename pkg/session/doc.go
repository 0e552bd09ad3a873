/*
Package session implements persisted traversals.

A traversal is a cursor kept in a ports.CursorStore. The Manager serializes
access per traversal ID with in-process mutexes and, optionally, a
ports.DistributedLocker so several replicas can share one store. Trees are
supplied by the caller on every step; a cursor whose tree fingerprint no
longer matches fails with domain.ErrStaleCursor.
*/
package session
