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

package dataset

// IDDict maps sparse identifiers to dense indices and counts how often each
// identifier has been added.
type IDDict struct {
	si  map[int64]int32
	is  []int64
	cnt []int
}

func NewIDDict() *IDDict {
	return &IDDict{si: map[int64]int32{}}
}

func (d *IDDict) Count() int32 {
	return int32(len(d.is))
}

// Add returns the index of id, assigning the next index on first sight.
func (d *IDDict) Add(id int64) int32 {
	if y, ok := d.si[id]; ok {
		d.cnt[y]++
		return y
	}
	y := int32(len(d.is))
	d.si[id] = y
	d.is = append(d.is, id)
	d.cnt = append(d.cnt, 1)
	return y
}

// Id returns the index of id, or -1 if it has never been added.
func (d *IDDict) Id(id int64) int32 {
	if y, ok := d.si[id]; ok {
		return y
	}
	return -1
}

func (d *IDDict) Value(index int32) (int64, bool) {
	if index < 0 || int(index) >= len(d.is) {
		return 0, false
	}
	return d.is[index], true
}

func (d *IDDict) Freq(index int32) int {
	if index < 0 || int(index) >= len(d.cnt) {
		return 0
	}
	return d.cnt[index]
}
