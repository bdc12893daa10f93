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
	"context"
	"runtime"
	"time"

	"github.com/chewxy/math32"
	"github.com/cinerec/cinerec/base"
	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/base/progress"
	"github.com/cinerec/cinerec/common/parallel"
	"github.com/cinerec/cinerec/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

type IndexConfig struct {
	Weights  SoupWeights
	Language string
	Jobs     int
}

func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		Weights:  DefaultSoupWeights(),
		Language: "english",
		Jobs:     runtime.NumCPU(),
	}
}

// Neighbor is a movie similar to a queried movie.
type Neighbor struct {
	Index int
	Movie dataset.Movie
	Score float32
}

// SimilarityIndex holds the dense cosine similarity matrix of a catalog. The matrix
// takes N^2 float32 cells, so it only suits catalogs of thousands of movies. The index
// is immutable once built and safe for concurrent queries.
type SimilarityIndex struct {
	catalog    *dataset.Catalog
	matrix     [][]float32
	titles     map[string][]int
	ids        map[string]int
	duplicates []string
}

// BuildIndex vectorizes the soups of a catalog and computes all pairwise similarities.
func BuildIndex(ctx context.Context, catalog *dataset.Catalog, cfg IndexConfig) (*SimilarityIndex, error) {
	tokenizer, err := NewTokenizer(cfg.Language)
	if err != nil {
		return nil, errors.Trace(err)
	}
	n := catalog.Count()
	start := time.Now()
	soups := NewSoupBuilder(cfg.Weights).BuildAll(catalog)
	vectorizer := NewVectorizer(tokenizer)
	vectors := vectorizer.FitTransform(soups)
	log.Logger().Info("vectorize movie soups",
		zap.Int("n_movies", n),
		zap.Int("n_terms", len(vectorizer.Vocabulary())),
		zap.String("language", tokenizer.Language()))

	idx := &SimilarityIndex{
		catalog: catalog,
		titles:  make(map[string][]int),
		ids:     make(map[string]int),
	}
	idx.matrix = make([][]float32, n)
	cells := make([]float32, n*n)
	for i := range idx.matrix {
		idx.matrix[i] = cells[i*n : (i+1)*n]
	}

	// row i fills the pairs (i, j) for j >= i, so each pair has exactly one writer
	_, span := progress.Start(ctx, "BuildIndex", n)
	err = parallel.For(ctx, n, cfg.Jobs, func(i int) {
		idx.matrix[i][i] = 1
		for j := i + 1; j < n; j++ {
			sim := clamp(vectors[i].Dot(vectors[j]))
			idx.matrix[i][j] = sim
			idx.matrix[j][i] = sim
		}
		span.Add(1)
	})
	if err != nil {
		span.Fail(err)
		return nil, errors.Trace(err)
	}
	span.End()

	for i, movie := range catalog.GetMovies() {
		if rows, exist := idx.titles[movie.Title]; exist && len(rows) == 1 {
			idx.duplicates = append(idx.duplicates, movie.Title)
		}
		idx.titles[movie.Title] = append(idx.titles[movie.Title], i)
		if movie.Id != "" {
			if _, exist := idx.ids[movie.Id]; !exist {
				idx.ids[movie.Id] = i
			}
		}
	}
	if len(idx.duplicates) > 0 {
		log.Logger().Warn("duplicate movie titles, queries use the first occurrence",
			zap.Int("n_duplicates", len(idx.duplicates)),
			zap.Strings("titles", idx.duplicates))
	}
	log.Logger().Info("complete building similarity index",
		zap.Int("n_movies", n),
		zap.Duration("build_time", time.Since(start)))
	return idx, nil
}

func clamp(x float32) float32 {
	if math32.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func (idx *SimilarityIndex) Count() int {
	return idx.catalog.Count()
}

func (idx *SimilarityIndex) Catalog() *dataset.Catalog {
	return idx.catalog
}

// Similarity returns the cosine similarity between two rows.
func (idx *SimilarityIndex) Similarity(i, j int) float32 {
	return idx.matrix[i][j]
}

// DuplicateTitles returns titles shared by more than one movie, in catalog order.
func (idx *SimilarityIndex) DuplicateTitles() []string {
	return idx.duplicates
}

// Lookup returns the rows of a title in catalog order.
func (idx *SimilarityIndex) Lookup(title string) ([]int, bool) {
	rows, ok := idx.titles[title]
	return rows, ok
}

// SimilarTo returns up to k movies most similar to the first movie titled title.
func (idx *SimilarityIndex) SimilarTo(title string, k int) ([]Neighbor, error) {
	rows, ok := idx.titles[title]
	if !ok {
		return nil, errors.NotFoundf("movie %q", title)
	}
	return idx.similarToRow(rows[0], k), nil
}

// SimilarToId returns up to k movies most similar to the movie with the identifier.
func (idx *SimilarityIndex) SimilarToId(id string, k int) ([]Neighbor, error) {
	row, ok := idx.ids[id]
	if !ok {
		return nil, errors.NotFoundf("movie id %q", id)
	}
	return idx.similarToRow(row, k), nil
}

// similarToRow ranks rows by descending similarity, ties broken by ascending row, and
// excludes the query row itself.
func (idx *SimilarityIndex) similarToRow(row, k int) []Neighbor {
	if k <= 0 {
		return []Neighbor{}
	}
	filter := base.NewTopKFilter[int](k)
	for j, sim := range idx.matrix[row] {
		if j != row {
			filter.Push(j, sim)
		}
	}
	rows, scores := filter.PopAll()
	neighbors := make([]Neighbor, len(rows))
	for i := range rows {
		neighbors[i] = Neighbor{
			Index: rows[i],
			Movie: idx.catalog.Get(rows[i]),
			Score: scores[i],
		}
	}
	return neighbors
}
