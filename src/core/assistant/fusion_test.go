package assistant_test

import (
	"testing"

	"medrag/src/core/assistant"
)

func TestFuseRanked(t *testing.T) {
	p1 := assistant.Passage{Content: "one", DocumentID: "1", ChunkIndex: 0}
	p2 := assistant.Passage{Content: "two", DocumentID: "2", ChunkIndex: 0}
	p3 := assistant.Passage{Content: "three", DocumentID: "3", ChunkIndex: 0}

	fused := assistant.FuseRanked(0,
		[]assistant.Passage{p1, p2},
		[]assistant.Passage{p2, p3},
	)

	if len(fused) != 3 {
		t.Fatalf("got %d passages, want 3", len(fused))
	}

	// p2 appears in both lists and must rank first
	if fused[0].DocumentID != "2" {
		t.Errorf("top passage = %s, want 2", fused[0].DocumentID)
	}
	// p1 at rank 0 beats p3 at rank 1
	if fused[1].DocumentID != "1" || fused[2].DocumentID != "3" {
		t.Errorf("tail order = %s, %s; want 1, 3", fused[1].DocumentID, fused[2].DocumentID)
	}

	if fused[0].Score <= fused[1].Score || fused[1].Score <= fused[2].Score {
		t.Errorf("scores not strictly decreasing: %v, %v, %v",
			fused[0].Score, fused[1].Score, fused[2].Score)
	}
}

func TestFuseRankedLimit(t *testing.T) {
	p1 := assistant.Passage{DocumentID: "1", ChunkIndex: 0}
	p2 := assistant.Passage{DocumentID: "2", ChunkIndex: 0}
	p3 := assistant.Passage{DocumentID: "3", ChunkIndex: 0}

	fused := assistant.FuseRanked(2, []assistant.Passage{p1, p2, p3})
	if len(fused) != 2 {
		t.Fatalf("got %d passages, want 2", len(fused))
	}
}

func TestFuseRankedDeduplicates(t *testing.T) {
	a := assistant.Passage{Content: "kept", DocumentID: "1", ChunkIndex: 3}
	b := assistant.Passage{Content: "dropped duplicate", DocumentID: "1", ChunkIndex: 3}

	fused := assistant.FuseRanked(0,
		[]assistant.Passage{a},
		[]assistant.Passage{b},
	)

	if len(fused) != 1 {
		t.Fatalf("got %d passages, want 1", len(fused))
	}
	if fused[0].Content != "kept" {
		t.Errorf("first occurrence must win, got %q", fused[0].Content)
	}
}

func TestFuseRankedEmpty(t *testing.T) {
	fused := assistant.FuseRanked(5)
	if len(fused) != 0 {
		t.Fatalf("got %d passages, want 0", len(fused))
	}
}
