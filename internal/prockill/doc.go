// Package prockill owns platform-specific process semantics: detaching a
// spawned process from this one's lifetime, liveness probing, and graceful
// terminate-then-kill. Call sites stay platform-agnostic.
package prockill
