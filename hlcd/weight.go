package hlcd

// WeightEnumerator counts the stored codewords of every Hamming weight 0..n
func WeightEnumerator(store *CombinationStore, n int) []uint64 {
	counts := make([]uint64, n+1)
	store.Each(store.Len(), func(_ uint64, v uint64) {
		w := store.field.HammingWeight(v)
		if w <= n {
			counts[w]++
		}
	})
	return counts
}

// MinimumDistance is the smallest nonzero weight present, zero if there is none
func MinimumDistance(enumerator []uint64) int {
	for w := 1; w < len(enumerator); w++ {
		if enumerator[w] > 0 {
			return w
		}
	}
	return 0
}
