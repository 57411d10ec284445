// Package services defines the shared error taxonomy for external
// collaborators (game process, console port, capture layer, encoder).
//
// Every failure that crosses a component boundary is wrapped with one of the
// sentinel markers so the export coordinator can classify it without string
// matching.
package services
