package interactions

import "sort"

// tally counts keys and remembers the order each key was first seen in
type tally[K comparable] struct {
	counts map[K]int
	order  []K
}

func newTally[K comparable]() *tally[K] {
	return &tally[K]{counts: make(map[K]int)}
}

func (t *tally[K]) add(key K) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// ranked returns keys by descending count; equal counts keep first-seen order
func (t *tally[K]) ranked() []K {
	keys := make([]K, len(t.order))
	copy(keys, t.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return t.counts[keys[i]] > t.counts[keys[j]]
	})
	return keys
}

func (t *tally[K]) total() int {
	sum := 0
	for _, n := range t.counts {
		sum += n
	}
	return sum
}

// top truncates a ranked list to at most n entries; n <= 0 keeps everything
func top[T any](ranked []T, n int) []T {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
