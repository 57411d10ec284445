// Package export coordinates a full clip export session: options validation,
// workspace management, recording, encoding, and montage assembly, behind a
// single failure boundary that always yields a terminal result.
package export
