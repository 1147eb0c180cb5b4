// Package ports declares the driven interfaces of the engine: persistence
// of flows (the editor's saved graph blobs) and of simulation sessions,
// plus optional distributed locking. Adapters under pkg/adapters provide
// memory, file and Redis implementations.
package ports
