// Package frames locates the directory the capture layer wrote frame images
// into. The capture layer's output location is only heuristically known, so
// the locator searches a list of candidate roots and reports every path it
// checked when nothing matches.
package frames
