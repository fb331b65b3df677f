package sequence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstbilling-backend/sequence"
)

// fakeCounterStore mimics the merge-write counter record with an exact
// compare-and-swap, like the GORM-backed store does.
type fakeCounterStore struct {
	last map[string]int64
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{last: make(map[string]int64)}
}

func (f *fakeCounterStore) LastIssued(ownerID string) (int64, error) {
	return f.last[ownerID], nil
}

func (f *fakeCounterStore) CompareAndSet(ownerID string, expected, next int64) error {
	if f.last[ownerID] != expected {
		return sequence.ErrConflict
	}
	f.last[ownerID] = next
	return nil
}

// fakeDocumentIndex stands in for the documents table.
type fakeDocumentIndex struct {
	numbers map[string]map[int64]bool
}

func newFakeDocumentIndex() *fakeDocumentIndex {
	return &fakeDocumentIndex{numbers: make(map[string]map[int64]bool)}
}

func (f *fakeDocumentIndex) NumberExists(ownerID string, number int64) (bool, error) {
	return f.numbers[ownerID][number], nil
}

func (f *fakeDocumentIndex) add(ownerID string, number int64) {
	if f.numbers[ownerID] == nil {
		f.numbers[ownerID] = make(map[int64]bool)
	}
	f.numbers[ownerID][number] = true
}

func TestAllocatorIssuesGapFreeSequence(t *testing.T) {
	counters := newFakeCounterStore()
	docs := newFakeDocumentIndex()
	alloc := sequence.NewAllocator(counters, docs)

	const owner = "user-1"
	for want := int64(1); want <= 5; want++ {
		n, err := alloc.AllocateNext(owner)
		require.NoError(t, err)
		assert.Equal(t, want, n)

		// Document write succeeds, then the counter is confirmed.
		docs.add(owner, n)
		require.NoError(t, alloc.Confirm(owner, n))
	}

	last, err := counters.LastIssued(owner)
	require.NoError(t, err)
	assert.Equal(t, int64(5), last)
}

func TestFailedDocumentWriteDoesNotAdvanceCounter(t *testing.T) {
	counters := newFakeCounterStore()
	docs := newFakeDocumentIndex()
	alloc := sequence.NewAllocator(counters, docs)

	const owner = "user-1"
	n, err := alloc.AllocateNext(owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Document write fails: no doc recorded, no Confirm. The candidate is
	// discarded and the next allocation hands out the same number again.
	again, err := alloc.AllocateNext(owner)
	require.NoError(t, err)
	assert.Equal(t, n, again)
}

func TestStaleCounterSurfacesConflict(t *testing.T) {
	counters := newFakeCounterStore()
	docs := newFakeDocumentIndex()
	alloc := sequence.NewAllocator(counters, docs)

	const owner = "user-1"
	// A document already carries number 1, but the counter record was never
	// confirmed. The inconsistency must surface, not be papered over.
	docs.add(owner, 1)

	_, err := alloc.AllocateNext(owner)
	require.ErrorIs(t, err, sequence.ErrConflict)
}

func TestConcurrentConfirmSecondLoses(t *testing.T) {
	counters := newFakeCounterStore()
	docs := newFakeDocumentIndex()
	alloc := sequence.NewAllocator(counters, docs)

	const owner = "user-1"
	// Two submissions observe the same counter and get the same candidate.
	first, err := alloc.AllocateNext(owner)
	require.NoError(t, err)
	second, err := alloc.AllocateNext(owner)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	docs.add(owner, first)
	require.NoError(t, alloc.Confirm(owner, first))

	// The losing submission must re-allocate and retry.
	err = alloc.Confirm(owner, second)
	require.ErrorIs(t, err, sequence.ErrConflict)
}

func TestConfirmRejectsNonPositiveNumbers(t *testing.T) {
	alloc := sequence.NewAllocator(newFakeCounterStore(), newFakeDocumentIndex())

	assert.Error(t, alloc.Confirm("user-1", 0))
	assert.Error(t, alloc.Confirm("user-1", -3))
}

func TestCountersAreScopedPerOwner(t *testing.T) {
	counters := newFakeCounterStore()
	docs := newFakeDocumentIndex()
	alloc := sequence.NewAllocator(counters, docs)

	n1, err := alloc.AllocateNext("user-1")
	require.NoError(t, err)
	docs.add("user-1", n1)
	require.NoError(t, alloc.Confirm("user-1", n1))

	n2, err := alloc.AllocateNext("user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n2)
}
