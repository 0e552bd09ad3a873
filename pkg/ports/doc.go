/*
Package ports defines the driven ports (interfaces) for the Arbor engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various tree sources and cursor storage backends.

# Key Interfaces

  - TreeLoader: Resolves menu trees by ID (e.g., from Loam, files or memory).
  - CursorStore: Persists and loads traversal cursors.
  - DistributedLocker: Provides distributed locking for concurrent traversal access.

Adapters can verify themselves against RunCursorStoreContract and
tests.TreeLoaderContractTest.
*/
package ports
