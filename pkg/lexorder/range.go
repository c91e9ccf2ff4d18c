/**
 * Copyright 2021 The IcecaneDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lexorder

import (
	"fmt"

	"github.com/dr0pdb/icecanelex/pkg/common"
)

// Range is a half-open interval [Start, End) of indices into a sequence.
// Every Range is owned by exactly one worker.
type Range struct {
	Start, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Empty returns true if the range holds no index.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Shift returns the range moved by off indices.
func (r Range) Shift(off int) Range {
	return Range{Start: r.Start + off, End: r.End + off}
}

// Split partitions the range into parts contiguous sub-ranges, see Partition.
func (r Range) Split(parts int) ([]Range, error) {
	sub, err := Partition(r.Len(), parts)
	if err != nil {
		return nil, err
	}
	for i := range sub {
		sub[i] = sub[i].Shift(r.Start)
	}
	return sub, nil
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Partition divides [0, n) into w contiguous ranges.
// The first n%w ranges get one extra index so that sizes differ by at most 1,
// and range k always lies before range k+1. When w > n the trailing ranges are empty.
func Partition(n, w int) ([]Range, error) {
	if n < 0 {
		return nil, common.NewInvalidArgumentError(fmt.Sprintf("negative length %d", n))
	}
	if w <= 0 {
		return nil, common.NewInvalidArgumentError(fmt.Sprintf("non-positive worker count %d", w))
	}

	size, rem := n/w, n%w
	ranges := make([]Range, w)
	start := 0
	for i := 0; i < w; i++ {
		end := start + size
		if i < rem {
			end++
		}
		ranges[i] = Range{Start: start, End: end}
		start = end
	}
	return ranges, nil
}
