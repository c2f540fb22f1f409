package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// BloomFilter sits in front of the resolve path so lookups for tokens
// that were never created skip both caches and the database. It is
// append-only: a deleted short name keeps testing positive, which only
// costs one database miss.
type BloomFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewBloomFilter sizes the filter for the expected number of short
// names at the given false-positive rate.
func NewBloomFilter(expectedItems uint, falsePositiveRate float64) *BloomFilter {
	return &BloomFilter{
		filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}
}

func (b *BloomFilter) Add(shortName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.AddString(shortName)
}

// MightExist returns false only when the short name was definitely
// never added.
func (b *BloomFilter) MightExist(shortName string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.TestString(shortName)
}

// Count estimates how many short names have been added.
func (b *BloomFilter) Count() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter.ApproximatedSize()
}
