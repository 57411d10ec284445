// Package ffmpeg wraps the external ffmpeg encoder subprocess.
//
// It turns captured frame sequences into videos, re-times clip speed with a
// chained atempo filter, trims composite recordings, and stitches clips into
// montages by demuxer concatenation or a crossfade chain. Every invocation
// goes through the Runner interface so the argument construction is testable
// without a binary; subprocess stderr is folded into returned errors.
package ffmpeg
