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
	"sort"

	"github.com/chewxy/math32"
	"github.com/samber/lo"
)

// SparseVector is a row of the TF-IDF matrix. Indices are sorted ascending.
type SparseVector struct {
	Indices []int32
	Values  []float32
}

// Dot computes the inner product of two sparse vectors.
func (v SparseVector) Dot(other SparseVector) float32 {
	var sum float32
	i, j := 0, 0
	for i < len(v.Indices) && j < len(other.Indices) {
		switch {
		case v.Indices[i] < other.Indices[j]:
			i++
		case v.Indices[i] > other.Indices[j]:
			j++
		default:
			sum += v.Values[i] * other.Values[j]
			i++
			j++
		}
	}
	return sum
}

func (v SparseVector) Norm() float32 {
	var sum float32
	for _, value := range v.Values {
		sum += value * value
	}
	return math32.Sqrt(sum)
}

// Vectorizer weights documents by smoothed TF-IDF over a vocabulary learned from the corpus:
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
//
// Rows are L2 normalized, so the cosine similarity of two rows is their dot product.
type Vectorizer struct {
	tokenizer  *Tokenizer
	vocabulary map[string]int32
	terms      []string
	idf        []float32
}

func NewVectorizer(tokenizer *Tokenizer) *Vectorizer {
	return &Vectorizer{tokenizer: tokenizer}
}

// FitTransform learns the vocabulary and document frequencies of docs and returns their
// TF-IDF rows. A document without any term yields an empty vector.
func (v *Vectorizer) FitTransform(docs []string) []SparseVector {
	// count terms
	counts := make([]map[string]int, len(docs))
	documentFreq := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, token := range v.tokenizer.Tokenize(doc) {
			counts[i][token]++
		}
		for term := range counts[i] {
			documentFreq[term]++
		}
	}
	// build sorted vocabulary
	v.terms = lo.Keys(documentFreq)
	sort.Strings(v.terms)
	v.vocabulary = make(map[string]int32, len(v.terms))
	v.idf = make([]float32, len(v.terms))
	n := float64(len(docs))
	for i, term := range v.terms {
		v.vocabulary[term] = int32(i)
		v.idf[i] = float32(math.Log((1+n)/(1+float64(documentFreq[term]))) + 1)
	}
	// weight and normalize
	vectors := make([]SparseVector, len(docs))
	for i := range docs {
		vectors[i] = v.transform(counts[i])
	}
	return vectors
}

func (v *Vectorizer) transform(counts map[string]int) SparseVector {
	vec := SparseVector{
		Indices: make([]int32, 0, len(counts)),
		Values:  make([]float32, 0, len(counts)),
	}
	for term := range counts {
		if index, ok := v.vocabulary[term]; ok {
			vec.Indices = append(vec.Indices, index)
		}
	}
	sort.Slice(vec.Indices, func(i, j int) bool { return vec.Indices[i] < vec.Indices[j] })
	for _, index := range vec.Indices {
		vec.Values = append(vec.Values, float32(counts[v.terms[index]])*v.idf[index])
	}
	if norm := vec.Norm(); norm > 0 {
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// Vocabulary returns terms sorted ascending.
func (v *Vectorizer) Vocabulary() []string {
	return v.terms
}

// IDF returns the inverse document frequency of a term, or zero if the term is unknown.
func (v *Vectorizer) IDF(term string) float32 {
	if index, ok := v.vocabulary[term]; ok {
		return v.idf[index]
	}
	return 0
}
