package assistant

import "sort"

// rrfK dampens the weight of lower-ranked results in reciprocal rank fusion.
// 60 is the constant from the original RRF paper and what Elasticsearch uses.
const rrfK = 60

// FuseRanked merges ranked passage lists with reciprocal rank fusion.
// A passage appearing in several lists accumulates 1/(rrfK+rank) per list.
// Duplicates are identified by document ID and chunk index; the first
// occurrence's content wins. The fused score replaces the input scores.
func FuseRanked(limit int, lists ...[]Passage) []Passage {
	type entry struct {
		passage Passage
		score   float64
		seen    int // insertion order, for stable ties
	}

	type key struct {
		documentID string
		chunkIndex int
	}

	entries := make(map[key]*entry)
	order := 0

	for _, list := range lists {
		for rank, p := range list {
			k := key{documentID: p.DocumentID, chunkIndex: p.ChunkIndex}
			e, ok := entries[k]
			if !ok {
				e = &entry{passage: p, seen: order}
				order++
				entries[k] = e
			}
			e.score += 1.0 / float64(rrfK+rank+1)
		}
	}

	fused := make([]Passage, 0, len(entries))
	flat := make([]*entry, 0, len(entries))
	for _, e := range entries {
		flat = append(flat, e)
	}

	sort.Slice(flat, func(i, j int) bool {
		if flat[i].score != flat[j].score {
			return flat[i].score > flat[j].score
		}
		return flat[i].seen < flat[j].seen
	})

	for _, e := range flat {
		p := e.passage
		p.Score = e.score
		fused = append(fused, p)
	}

	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}

	return fused
}
