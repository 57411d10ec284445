// Package console sends line-oriented text commands to the game's TCP
// console port.
//
// The game offers no acknowledgement protocol: replies are free-form text
// that is logged and never parsed. Command pacing therefore relies on an
// explicit DelayPolicy, a calibrated table of per-command settle delays that
// stands in for the completion signals the game does not emit.
package console
