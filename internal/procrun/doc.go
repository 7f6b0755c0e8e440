// Package procrun runs external converter processes under a cancellation
// context and an optional timeout.
//
// Each child starts in its own process group with stdin bound to the null
// device. A fixed-interval poll loop watches for exit, cancellation and the
// deadline, so cancellation latency is bounded by one poll interval. On
// cancellation or timeout the whole group receives SIGTERM, then SIGKILL once
// the grace period runs out. Cancellation and timeout are reported as
// distinct outcomes.
package procrun
