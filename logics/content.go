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

package logics

import (
	"strings"

	"github.com/cinerec/cinerec/dataset"
	"github.com/cinerec/cinerec/model/content"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// SimilarMovie is a movie returned by a content query.
type SimilarMovie struct {
	Id         string   `json:"id"`
	Title      string   `json:"title"`
	Genres     []string `json:"genres"`
	PosterPath string   `json:"poster_path,omitempty"`
	PosterURL  string   `json:"poster_url,omitempty"`
	Score      float32  `json:"score"`
}

// ContentRecommender answers "movies similar to X" from a prebuilt similarity index.
type ContentRecommender struct {
	index         *content.SimilarityIndex
	posterBaseURL string
}

func NewContentRecommender(index *content.SimilarityIndex, posterBaseURL string) *ContentRecommender {
	return &ContentRecommender{index: index, posterBaseURL: posterBaseURL}
}

// SimilarTo returns up to k movies similar to the first movie titled title.
func (r *ContentRecommender) SimilarTo(title string, k int) ([]SimilarMovie, error) {
	neighbors, err := r.index.SimilarTo(title, k)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return r.convert(neighbors), nil
}

// SimilarToId returns up to k movies similar to the movie with the identifier.
func (r *ContentRecommender) SimilarToId(id string, k int) ([]SimilarMovie, error) {
	neighbors, err := r.index.SimilarToId(id, k)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return r.convert(neighbors), nil
}

// Titles returns up to n titles of the catalog starting from offset.
func (r *ContentRecommender) Titles(offset, n int) []string {
	movies := r.index.Catalog().GetMovies()
	offset = min(max(offset, 0), len(movies))
	end := min(offset+max(n, 0), len(movies))
	return lo.Map(movies[offset:end], func(m dataset.Movie, _ int) string {
		return m.Title
	})
}

func (r *ContentRecommender) Count() int {
	return r.index.Count()
}

// DuplicateTitles returns titles shared by more than one movie.
func (r *ContentRecommender) DuplicateTitles() []string {
	return r.index.DuplicateTitles()
}

func (r *ContentRecommender) convert(neighbors []content.Neighbor) []SimilarMovie {
	return lo.Map(neighbors, func(n content.Neighbor, _ int) SimilarMovie {
		return SimilarMovie{
			Id:         n.Movie.Id,
			Title:      n.Movie.Title,
			Genres:     n.Movie.Genres,
			PosterPath: n.Movie.PosterPath,
			PosterURL:  PosterURL(r.posterBaseURL, n.Movie.PosterPath),
			Score:      n.Score,
		}
	})
}

// PosterURL joins a poster path to the image base URL. Absolute URLs are kept.
func PosterURL(baseURL, path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"), baseURL == "":
		return path
	default:
		return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
}
