// Package intake drains the inbound side of a templating call.
//
// An Intake owns the two call-scoped accumulators: a Collector for
// substitution values and a Reassembler for indexed fragment streams. It is fed
// one message at a time in arrival order and finalized exactly once, when the
// inbound stream has ended, into an immutable Payload.
package intake
