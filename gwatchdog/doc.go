// Package gwatchdog runs a [gwdg.Registry] on a schedule.
//
// A [Supervisor] checks its registry every interval plus or minus jitter,
// collects the expired node IDs, and publishes a [Report].
// While every node is healthy it kicks an optional [Kicker],
// standing in for the hardware watchdog a firmware main loop would pet.
// When nodes expire it logs them, and if configured to do so
// it cancels the context returned by [NewSupervisor]
// with an [ExpiredError] cause, so the rest of the process can shut down.
package gwatchdog
