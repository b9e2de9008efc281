package planner

import (
	"hash/fnv"
	"math/rand"
)

// seedFromBatchID derives a deterministic RNG seed from the generation
// batch id, so regeneration of the same batch is reproducible while
// distinct batches diverge.
func seedFromBatchID(batchID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(batchID))
	return int64(h.Sum64())
}

func newRNG(batchID string) *rand.Rand {
	return rand.New(rand.NewSource(seedFromBatchID(batchID)))
}
