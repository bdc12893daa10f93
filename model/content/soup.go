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
	"strings"
	"unicode"

	"github.com/cinerec/cinerec/dataset"
	"github.com/samber/lo"
)

// SoupWeights are the number of times each metadata field is repeated in a soup.
type SoupWeights struct {
	Genres   int `mapstructure:"genres" validate:"gte=0"`
	Keywords int `mapstructure:"keywords" validate:"gte=0"`
	Cast     int `mapstructure:"cast" validate:"gte=0"`
	Director int `mapstructure:"director" validate:"gte=0"`
	Overview int `mapstructure:"overview" validate:"gte=0"`
}

func DefaultSoupWeights() SoupWeights {
	return SoupWeights{
		Genres:   1,
		Keywords: 3,
		Cast:     3,
		Director: 3,
		Overview: 1,
	}
}

// SoupBuilder concatenates movie metadata into one weighted text blob per movie.
type SoupBuilder struct {
	weights SoupWeights
}

func NewSoupBuilder(weights SoupWeights) *SoupBuilder {
	return &SoupBuilder{weights: weights}
}

// Build returns the soup of a movie. Multi-word entities such as "Science Fiction" are
// squashed into a single token so that the vectorizer keeps them whole.
func (b *SoupBuilder) Build(movie *dataset.Movie) string {
	var words []string
	words = appendRepeated(words, squashAll(movie.Genres), b.weights.Genres)
	words = appendRepeated(words, squashAll(movie.Keywords), b.weights.Keywords)
	words = appendRepeated(words, squashAll(movie.Cast), b.weights.Cast)
	if director := squash(movie.Director); director != "" {
		words = appendRepeated(words, []string{director}, b.weights.Director)
	}
	if overview := strings.TrimSpace(movie.Overview); overview != "" {
		words = appendRepeated(words, []string{overview}, b.weights.Overview)
	}
	return strings.Join(words, " ")
}

// BuildAll returns soups positionally aligned with the catalog.
func (b *SoupBuilder) BuildAll(catalog *dataset.Catalog) []string {
	movies := catalog.GetMovies()
	soups := make([]string, len(movies))
	for i := range movies {
		soups[i] = b.Build(&movies[i])
	}
	return soups
}

func appendRepeated(dst, words []string, times int) []string {
	for i := 0; i < times; i++ {
		dst = append(dst, words...)
	}
	return dst
}

func squashAll(entries []string) []string {
	return lo.FilterMap(entries, func(entry string, _ int) (string, bool) {
		s := squash(entry)
		return s, s != ""
	})
}

func squash(entry string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, entry)
}
