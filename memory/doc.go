// Package memory contains the bounded ConversationMemory and the in-process
// MemoryStore. The store interface resides in the core package; depend on
// core.MemoryStore in your code and select an implementation (this package,
// memory/filestore, memory/redisstore or memory/sqlstore) at wiring time.
package memory
