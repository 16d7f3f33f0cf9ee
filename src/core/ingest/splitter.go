package ingest

import (
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultChunkTokens  = 400
	DefaultChunkOverlap = 40
)

// SplitText breaks a document into overlapping chunks sized by estimated
// token count rather than raw characters. The effective chunk size comes
// from CalculateChunkSize, so tokens spread evenly across chunks instead of
// leaving a small remainder chunk at the end of the document.
func SplitText(text string, chunkTokens, chunkOverlap int) ([]string, error) {
	if chunkTokens <= 0 {
		chunkTokens = DefaultChunkTokens
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}

	chunkSize := CalculateChunkSize(EstimateTokenCount(text), chunkTokens)
	if chunkSize <= 0 {
		chunkSize = chunkTokens
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithLenFunc(EstimateTokenCount),
	)

	return splitter.SplitText(text)
}

// CalculateChunkSize calculates the chunk size that spreads tokens evenly
// across the minimum number of chunks respecting the limit.
//
// If the token count fits within the limit it is returned as-is. Otherwise
// the count is divided over ceil(count/limit) chunks, with any remainder
// distributed across them.
func CalculateChunkSize(tokenCount, tokenLimit int) int {
	if tokenCount <= tokenLimit {
		return tokenCount
	}

	// ceiling division
	numChunks := (tokenCount + tokenLimit - 1) / tokenLimit

	chunkSize := tokenCount / numChunks

	remainingTokens := tokenCount % tokenLimit
	if remainingTokens > 0 {
		chunkSize += remainingTokens / numChunks
	}

	return chunkSize
}
