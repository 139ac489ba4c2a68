// Package gwdg is a software multi-watchdog.
//
// Every task that must prove it is alive owns a [Node].
// The task registers the node with a [Registry] and a timeout,
// then calls [*Registry.Feed] more often than that timeout.
// A single supervising goroutine periodically calls [*Registry.Check],
// which walks every registered node and flags the ones whose owners
// have not fed them within their timeout.
// After a failed check, [*Registry.NextExpired] or [*Registry.Expired]
// enumerate the identifiers of the flagged nodes,
// so the supervisor can decide whether to keep refreshing a hardware watchdog.
//
// Nodes are linked into the registry intrusively:
// the registry never allocates or owns node storage,
// it only threads caller-owned nodes together.
// A node belongs to at most one registry at a time.
//
// Time is read from a [Clock], a 32-bit millisecond counter that wraps.
// Elapsed time is computed with modular arithmetic,
// so a single wraparound between a feed and a check is harmless.
//
// Structural changes and the check traversal run inside the registry's
// critical section, a [sync.Locker] that defaults to a [sync.Mutex]
// and may be replaced by a [CriticalSection] wrapping foreign enter/exit hooks.
// Feeding is lock-free by default because it only stores atomic words
// in the fed node; see [RegistryConfig.SerializeFeed].
//
// Embedded-style programs that want one process-wide registry
// can use the package-level functions such as [Init], [Add], [Feed] and [Check],
// which forward to a default registry.
package gwdg
