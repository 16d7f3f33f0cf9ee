package ingest_test

import (
	"strings"
	"testing"

	"medrag/src/core/ingest"
)

func TestCalculateChunkSize(t *testing.T) {
	tests := []struct {
		name       string
		tokenCount int
		tokenLimit int
		wantSize   int
	}{
		{
			name:       "double the limit splits in half",
			tokenCount: 1000,
			tokenLimit: 500,
			wantSize:   500,
		},
		{
			name:       "remainder spread across four chunks",
			tokenCount: 1530,
			tokenLimit: 500,
			wantSize:   389,
		},
		{
			name:       "remainder spread across five chunks",
			tokenCount: 2242,
			tokenLimit: 500,
			wantSize:   496,
		},
		{
			name:       "exactly at the limit",
			tokenCount: 500,
			tokenLimit: 500,
			wantSize:   500,
		},
		{
			name:       "below the limit returns the count",
			tokenCount: 10,
			tokenLimit: 20,
			wantSize:   10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ingest.CalculateChunkSize(tt.tokenCount, tt.tokenLimit)
			if got != tt.wantSize {
				t.Errorf("CalculateChunkSize(%d, %d) = %d, want %d",
					tt.tokenCount, tt.tokenLimit, got, tt.wantSize)
			}
		})
	}
}

func TestSplitTextShortInput(t *testing.T) {
	text := "Anemia is a condition in which the blood lacks enough healthy red blood cells."

	chunks, err := ingest.SplitText(text, 400, 40)
	if err != nil {
		t.Fatalf("SplitText returned error: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("SplitText returned %d chunks, want 1", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("SplitText changed the content: got %q", chunks[0])
	}
}

// A 500-token document with a 400-token limit must split into chunks of at
// most CalculateChunkSize(500, 400) = 300 tokens, not one 400-token chunk
// with a 100-token remainder.
func TestSplitTextSpreadsTokensEvenly(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 500)) // 500 tokens

	chunks, err := ingest.SplitText(text, 400, 0)
	if err != nil {
		t.Fatalf("SplitText returned error: %v", err)
	}

	if len(chunks) < 2 {
		t.Fatalf("SplitText returned %d chunks, want at least 2", len(chunks))
	}

	wantMax := ingest.CalculateChunkSize(500, 400)
	for i, chunk := range chunks {
		if got := ingest.EstimateTokenCount(chunk); got > wantMax {
			t.Errorf("chunk %d has %d tokens, want at most %d", i, got, wantMax)
		}
	}
}
