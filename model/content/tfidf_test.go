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

package content

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparseVector_Dot(t *testing.T) {
	a := SparseVector{Indices: []int32{0, 2, 5}, Values: []float32{1, 2, 3}}
	b := SparseVector{Indices: []int32{1, 2, 5, 7}, Values: []float32{4, 5, 6, 7}}
	assert.Equal(t, float32(28), a.Dot(b))
	assert.Equal(t, float32(28), b.Dot(a))
	assert.Zero(t, a.Dot(SparseVector{}))
}

func TestVectorizer_FitTransform(t *testing.T) {
	tokenizer, err := NewTokenizer("none")
	assert.NoError(t, err)
	vectorizer := NewVectorizer(tokenizer)
	vectors := vectorizer.FitTransform([]string{"apple apple banana", "banana cherry", ""})
	assert.Equal(t, []string{"apple", "banana", "cherry"}, vectorizer.Vocabulary())

	// smoothed idf
	assert.InDelta(t, math.Log(4.0/2.0)+1, vectorizer.IDF("apple"), 1e-6)
	assert.InDelta(t, math.Log(4.0/3.0)+1, vectorizer.IDF("banana"), 1e-6)
	assert.Zero(t, vectorizer.IDF("durian"))

	// rows are normalized
	assert.Equal(t, []int32{0, 1}, vectors[0].Indices)
	assert.InDelta(t, 1, vectors[0].Norm(), 1e-6)
	assert.InDelta(t, 1, vectors[1].Norm(), 1e-6)
	apple := 2 * (math.Log(2) + 1)
	banana := math.Log(4.0/3.0) + 1
	assert.InDelta(t, apple/math.Sqrt(apple*apple+banana*banana), vectors[0].Values[0], 1e-6)

	// empty document
	assert.Empty(t, vectors[2].Indices)
	assert.Zero(t, vectors[2].Norm())
}
