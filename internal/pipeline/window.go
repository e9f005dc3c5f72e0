// Package pipeline implements the sliding-window transcript assembly:
// windowing, fuzzy overlap resolution between adjacent window
// transcripts, and folding the deduplicated text into timed segments.
package pipeline

// Window is a fixed-duration slice of the source audio with its
// absolute start offset in seconds.
type Window struct {
	StartS  float64
	Samples []float32
}

// Windows slices a mono sample stream into overlapping windows.
// Window k starts at sample k*stride; each window holds up to
// windowSize seconds of audio and the final window may be shorter.
// The returned windows share backing storage with samples.
func Windows(samples []float32, sampleRate int, windowSizeS, strideS float64) []Window {
	chunkLen := int(windowSizeS * float64(sampleRate))
	strideLen := int(strideS * float64(sampleRate))

	// A duration below one sample period truncates to 0; the loop must
	// always advance and every window must hold at least one sample.
	if strideLen < 1 {
		strideLen = 1
	}
	if chunkLen < 1 {
		chunkLen = 1
	}

	var windows []Window
	for i := 0; i < len(samples); i += strideLen {
		w := Window{StartS: float64(i) / float64(sampleRate)}
		if i+chunkLen <= len(samples) {
			w.Samples = samples[i : i+chunkLen]
		} else {
			w.Samples = samples[i:]
		}
		windows = append(windows, w)
	}
	return windows
}
