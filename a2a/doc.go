// Package a2a exposes simulations over the A2A protocol. It implements
// a2asrv.AgentExecutor, translating incoming protocol messages into
// simulation inputs and simulation outputs into task status and artifact
// update events.
package a2a
