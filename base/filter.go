// Copyright 2026 cinerec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import "cmp"

type weightedItem[T cmp.Ordered] struct {
	item   T
	weight float32
}

// TopKFilter filters out top k items with maximum weights. Items of equal weight are
// ranked by ascending item, so the result does not depend on push order.
type TopKFilter[T cmp.Ordered] struct {
	items []weightedItem[T]
	k     int
}

// NewTopKFilter creates a top k filter.
func NewTopKFilter[T cmp.Ordered](k int) *TopKFilter[T] {
	filter := new(TopKFilter[T])
	filter.items = make([]weightedItem[T], 0, max(k, 0)+1)
	filter.k = k
	return filter
}

func (filter *TopKFilter[T]) Len() int {
	return len(filter.items)
}

func (filter *TopKFilter[T]) Swap(i, j int) {
	filter.items[i], filter.items[j] = filter.items[j], filter.items[i]
}

// Less reports whether items[i] ranks below items[j].
func (filter *TopKFilter[T]) Less(i, j int) bool {
	if filter.items[i].weight != filter.items[j].weight {
		return filter.items[i].weight < filter.items[j].weight
	}
	return filter.items[i].item > filter.items[j].item
}

// Push pushes the element x onto the heap.
// The complexity is O(log k).
func (filter *TopKFilter[T]) Push(item T, weight float32) {
	filter.items = append(filter.items, weightedItem[T]{item, weight})
	filter.up(filter.Len() - 1)
	if filter.Len() > filter.k {
		filter.pop()
	}
}

// pop removes and returns the lowest ranked element from the heap.
func (filter *TopKFilter[T]) pop() (T, float32) {
	n := filter.Len() - 1
	filter.Swap(0, n)
	filter.down(0, n)
	item := filter.items[n]
	filter.items = filter.items[:n]
	return item.item, item.weight
}

func (filter *TopKFilter[T]) up(j int) {
	for {
		i := (j - 1) / 2 // parent
		if i == j || !filter.Less(j, i) {
			break
		}
		filter.Swap(i, j)
		j = i
	}
}

func (filter *TopKFilter[T]) down(i0, n int) {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 { // j1 < 0 after int overflow
			break
		}
		j := j1 // left child
		if j2 := j1 + 1; j2 < n && filter.Less(j2, j1) {
			j = j2 // right child
		}
		if !filter.Less(j, i) {
			break
		}
		filter.Swap(i, j)
		i = j
	}
}

// PopAll pops all items in the filter, best ranked first.
func (filter *TopKFilter[T]) PopAll() ([]T, []float32) {
	items := make([]T, filter.Len())
	weights := make([]float32, filter.Len())
	for i := len(items) - 1; i >= 0; i-- {
		items[i], weights[i] = filter.pop()
	}
	return items, weights
}
