package pipeline

import "strings"

// Default alignment parameters. An overlap shorter than
// MinOverlapWords is never trusted; candidates longer than
// MaxOverlapWords are not considered.
const (
	MinOverlapWords = 5
	MaxOverlapWords = 30
	MatchThreshold  = 0.85
)

// Resolver finds where the transcript of one window stops repeating
// the transcript of its predecessor. Exact substring matching is too
// brittle here: the model rarely produces identical wording for the
// same audio at two chunk boundaries, so the resolver accepts a long
// run of words that agrees positionally in at least Threshold of its
// positions.
type Resolver struct {
	MinWords  int
	MaxWords  int
	Threshold float64
}

// NewResolver returns a Resolver with the default parameters.
func NewResolver() Resolver {
	return Resolver{
		MinWords:  MinOverlapWords,
		MaxWords:  MaxOverlapWords,
		Threshold: MatchThreshold,
	}
}

// SkipWords returns the number of leading words of currText that
// duplicate the tail of prevText. Candidate overlap lengths are tried
// longest first so the longest supported overlap wins; within one
// length the earliest offset wins. When nothing clears the threshold
// it returns 0 and the caller keeps the whole current window, which
// can leak a little duplicate text but never drops content.
func (r Resolver) SkipWords(prevText, currText string) int {
	prevWords := strings.Fields(strings.ToLower(prevText))
	currWords := strings.Fields(strings.ToLower(currText))

	maxLen := min(len(prevWords), len(currWords), r.MaxWords)
	for overlapLen := maxLen; overlapLen >= r.MinWords; overlapLen-- {
		tail := prevWords[len(prevWords)-overlapLen:]

		for start := 0; start+overlapLen <= len(currWords); start++ {
			head := currWords[start : start+overlapLen]

			matches := 0
			for i := range tail {
				if tail[i] == head[i] {
					matches++
				}
			}
			if float64(matches)/float64(overlapLen) >= r.Threshold {
				return start + overlapLen
			}
		}
	}
	return 0
}
