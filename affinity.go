package dsketch

import "runtime"

// pinWorker makes a best-effort attempt to dedicate the calling
// goroutine's OS thread to it, approximating the source algorithm's
// "worker threads pinned to CPUs 2..T+1" (§5). Go has no portable CPU
// affinity primitive and the pack wires no syscall library for it, so
// this is the honest floor: lock the goroutine to its OS thread so the
// Go scheduler at least stops migrating it, without claiming true
// hardware affinity.
func pinWorker() {
	runtime.LockOSThread()
}
