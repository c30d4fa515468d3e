package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsUndersizedArena(t *testing.T) {
	_, err := New(4)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ErrCodeInvalidArgument, rerr.Code)
}

func TestNewAcceptsMinimumSize(t *testing.T) {
	r, err := New(8)
	require.NoError(t, err)
	require.True(t, r.IsEmpty())
	require.Equal(t, 0, r.Len())
}

func TestPutGetFIFO(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)

	require.NoError(t, r.Put(1, []byte("Hello")))
	require.NoError(t, r.Put(2, []byte("World")))

	id, payload := r.Get()
	require.Equal(t, uint16(1), id)
	require.Equal(t, []byte("Hello"), payload)

	id, payload = r.Get()
	require.Equal(t, uint16(2), id)
	require.Equal(t, []byte("World"), payload)

	require.True(t, r.IsEmpty())
}

func TestPutGetRoundTripPreservesCount(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)

	before := r.Len()
	require.NoError(t, r.Put(9, []byte("payload")))
	id, payload := r.Get()
	require.Equal(t, uint16(9), id)
	require.Equal(t, []byte("payload"), payload)
	require.Equal(t, before, r.Len())
}

func TestPeekDoesNotMutate(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	require.NoError(t, r.Put(1, []byte("Test")))

	id, payload, ok := r.Peek()
	require.True(t, ok)
	require.Equal(t, uint16(1), id)
	require.Equal(t, []byte("Test"), payload)

	id, payload, ok = r.Peek()
	require.True(t, ok)
	require.Equal(t, uint16(1), id)
	require.Equal(t, []byte("Test"), payload)
	require.Equal(t, 1, len(r.List()))
}

func TestPeekEmpty(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	_, _, ok := r.Peek()
	require.False(t, ok)
}

func TestPullExtractsOldestMatchOnly(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	require.NoError(t, r.Put(1, []byte("First")))
	require.NoError(t, r.Put(2, []byte("Second")))
	require.NoError(t, r.Put(3, []byte("Third")))

	id, payload := r.Pull(2)
	require.Equal(t, uint16(2), id)
	require.Equal(t, []byte("Second"), payload)

	ids := r.List()
	require.Equal(t, []uint16{1, 3}, ids)
}

func TestPullOnlyFirstOfDuplicateIDs(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	require.NoError(t, r.Put(5, []byte("one")))
	require.NoError(t, r.Put(5, []byte("two")))

	id, payload := r.Pull(5)
	require.Equal(t, uint16(5), id)
	require.Equal(t, []byte("one"), payload)

	ids := r.List()
	require.Equal(t, []uint16{5}, ids)

	id, payload = r.Pull(5)
	require.Equal(t, uint16(5), id)
	require.Equal(t, []byte("two"), payload)
	require.Empty(t, r.List())
}

func TestPullNotFound(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	require.NoError(t, r.Put(1, []byte("Test")))

	id, payload := r.Pull(99)
	require.Equal(t, uint16(0), id)
	require.Nil(t, payload)
}

func TestPullOutOfRangeID(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	id, payload := r.Pull(0)
	require.Equal(t, uint16(0), id)
	require.Nil(t, payload)
}

func TestListOrderedOldestToNewest(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	require.NoError(t, r.Put(1, []byte("A")))
	require.NoError(t, r.Put(2, []byte("B")))
	require.NoError(t, r.Put(3, []byte("C")))

	require.Equal(t, []uint16{1, 2, 3}, r.List())

	r.Get()
	require.Equal(t, []uint16{2, 3}, r.List())
}

func TestIsEmptyIsFullLen(t *testing.T) {
	r, err := New(20)
	require.NoError(t, err)

	require.True(t, r.IsEmpty())
	require.False(t, r.IsFull())

	require.NoError(t, r.Put(1, []byte("1234567890")))
	require.False(t, r.IsFull())
	require.Equal(t, 14, r.Len())

	err = r.Put(2, []byte("1234567890"))
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ErrCodeCapacityExhausted, rerr.Code)
}

func TestClearResetsCursors(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	require.NoError(t, r.Put(1, []byte("Test1")))
	require.NoError(t, r.Put(2, []byte("Test2")))

	r.Clear()
	require.True(t, r.IsEmpty())
	require.Equal(t, 0, r.Len())

	stats := r.Stats()
	require.Equal(t, 0, stats.Head)
	require.Equal(t, 0, stats.Tail)
}

func TestWraparoundMatchesNonWrappingRun(t *testing.T) {
	r, err := New(20)
	require.NoError(t, err)

	require.NoError(t, r.Put(1, []byte("12345")))
	require.NoError(t, r.Put(2, []byte("67890")))
	r.Get()
	require.NoError(t, r.Put(3, []byte("ABCDE"))) // wraps past size-1 -> 0

	id, payload := r.Get()
	require.Equal(t, uint16(2), id)
	require.Equal(t, []byte("67890"), payload)

	id, payload = r.Get()
	require.Equal(t, uint16(3), id)
	require.Equal(t, []byte("ABCDE"), payload)
}

func TestInvalidMsgID(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)

	err = r.Put(0, []byte("Test"))
	require.Error(t, err)
}

func TestMessageTooLarge(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	huge := make([]byte, maxPayloadLen+1)
	err = r.Put(1, huge)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, ErrCodeInvalidArgument, rerr.Code)
}

func TestEmptyGetSentinel(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	id, payload := r.Get()
	require.Equal(t, uint16(0), id)
	require.Nil(t, payload)
}

func TestStringContainsSize(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	require.Contains(t, r.String(), "Ring")
	require.Contains(t, r.String(), "256")
}

func TestMultipleOperationsAndStats(t *testing.T) {
	r, err := New(512)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, r.Put(uint16(i+1), []byte{byte(i)}))
	}
	require.Len(t, r.List(), 10)

	for i := 0; i < 5; i++ {
		r.Get()
	}
	require.Len(t, r.List(), 5)

	id, _ := r.Pull(8)
	require.Equal(t, uint16(8), id)
	require.Len(t, r.List(), 4)

	stats := r.Stats()
	require.Equal(t, uint64(10), stats.Puts)
	require.Equal(t, uint64(5), stats.Gets)
	require.Equal(t, uint64(1), stats.Pulls)
}

// Scenario 1 from spec §8.
func TestScenarioHelloWorld(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	require.NoError(t, r.Put(1, []byte("Hello")))
	require.NoError(t, r.Put(2, []byte("World")))

	id, payload := r.Get()
	require.Equal(t, uint16(1), id)
	require.Equal(t, []byte("Hello"), payload)

	id, payload = r.Get()
	require.Equal(t, uint16(2), id)
	require.Equal(t, []byte("World"), payload)

	require.True(t, r.IsEmpty())
}

// Scenario 3 from spec §8.
func TestScenarioPullThenList(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	require.NoError(t, r.Put(1, []byte("a")))
	require.NoError(t, r.Put(2, []byte("b")))
	require.NoError(t, r.Put(3, []byte("c")))

	id, _ := r.Pull(2)
	require.Equal(t, uint16(2), id)
	require.Equal(t, []uint16{1, 3}, r.List())
}
