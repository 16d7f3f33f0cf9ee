package ingest_test

import (
	"testing"

	"medrag/src/core/ingest"
)

func TestEstimateTokenCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{
			name: "empty string",
			text: "",
			want: 0,
		},
		{
			name: "whitespace only",
			text: "   \n\t  ",
			want: 0,
		},
		{
			name: "short words count one each",
			text: "the cat sat",
			want: 3,
		},
		{
			name: "long word splits into subwords",
			text: "antibiotics",
			want: 3,
		},
		{
			name: "number counts per character",
			text: "12345",
			want: 5,
		},
		{
			name: "single punctuation",
			text: ".",
			want: 1,
		},
		{
			name: "mixed sentence",
			text: "Take 2 tablets daily.",
			want: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ingest.EstimateTokenCount(tt.text)
			if got != tt.want {
				t.Errorf("EstimateTokenCount(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}
