package lexorder

import (
	"errors"
	"testing"

	"github.com/dr0pdb/icecanelex/pkg/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name string
		n, w int
		want []Range
	}{
		{"even", 8, 4, []Range{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{"remainder goes to the first workers", 10, 4, []Range{{0, 3}, {3, 6}, {6, 8}, {8, 10}}},
		{"single worker", 5, 1, []Range{{0, 5}}},
		{"more workers than indices", 2, 4, []Range{{0, 1}, {1, 2}, {2, 2}, {2, 2}}},
		{"empty sequence", 0, 3, []Range{{0, 0}, {0, 0}, {0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Partition(tt.n, tt.w)
			require.Nil(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Partition(%d, %d) mismatch (-want +got):\n%s", tt.n, tt.w, diff)
			}
		})
	}
}

func TestPartitionInvalidArguments(t *testing.T) {
	for _, args := range [][2]int{{-1, 2}, {10, 0}, {10, -3}} {
		_, err := Partition(args[0], args[1])
		var ia common.InvalidArgumentError
		assert.True(t, errors.As(err, &ia), "Expected an InvalidArgumentError for n=%d w=%d", args[0], args[1])
	}
}

func TestPartitionCoversSequence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 10000).Draw(t, "n")
		w := rapid.IntRange(1, 300).Draw(t, "w")

		ranges, err := Partition(n, w)
		require.Nil(t, err)
		require.Len(t, ranges, w)

		next := 0
		minLen, maxLen := n, 0
		for _, r := range ranges {
			require.Equal(t, next, r.Start, "ranges must be contiguous and ordered")
			require.GreaterOrEqual(t, r.End, r.Start)
			next = r.End
			if r.Len() < minLen {
				minLen = r.Len()
			}
			if r.Len() > maxLen {
				maxLen = r.Len()
			}
		}
		require.Equal(t, n, next, "ranges must cover [0, n)")
		require.LessOrEqual(t, maxLen-minLen, 1, "range sizes must differ by at most one")
	})
}

func TestRangeSplit(t *testing.T) {
	r := Range{Start: 100, End: 110}
	sub, err := r.Split(3)
	require.Nil(t, err)
	if diff := cmp.Diff([]Range{{100, 104}, {104, 107}, {107, 110}}, sub); diff != "" {
		t.Errorf("Split mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 10, r.Len())
	assert.False(t, r.Empty())
	assert.True(t, Range{Start: 7, End: 7}.Empty())
	assert.Equal(t, Range{Start: 105, End: 115}, r.Shift(5))
	assert.Equal(t, "[100, 110)", r.String())
}
