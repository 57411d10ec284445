// Package recorder drives one recording session against the game: launching
// the process, waiting for the console port, loading the demo, and running
// the per-clip seek/spectate/capture sequence.
//
// The game emits no completion signals, so stage transitions lean on the
// console package's delay policy plus explicit hold timers derived from tick
// arithmetic. A Session owns its process handle and an exclusivity lock;
// teardown always runs, even after mid-sequence failures.
package recorder
