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
	"context"
	"testing"

	"github.com/cinerec/cinerec/dataset"
	"github.com/cinerec/cinerec/model/content"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func newTestContentRecommender(t *testing.T) *ContentRecommender {
	catalog := dataset.NewCatalog([]dataset.Movie{
		{Id: "1", Title: "A", Genres: []string{"Science Fiction"}, Keywords: []string{"space"}, PosterPath: "/a.jpg"},
		{Id: "2", Title: "B", Genres: []string{"Science Fiction"}, Keywords: []string{"space"}, PosterPath: "/b.jpg"},
		{Id: "3", Title: "C", Genres: []string{"Drama"}, Keywords: []string{"family"}},
	})
	index, err := content.BuildIndex(context.Background(), catalog, content.DefaultIndexConfig())
	assert.NoError(t, err)
	return NewContentRecommender(index, "https://image.tmdb.org/t/p/w342/")
}

func TestContentRecommender_SimilarTo(t *testing.T) {
	recommender := newTestContentRecommender(t)
	movies, err := recommender.SimilarTo("A", 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, lo.Map(movies, func(m SimilarMovie, _ int) string { return m.Title }))
	assert.Equal(t, "2", movies[0].Id)
	assert.Equal(t, "/b.jpg", movies[0].PosterPath)
	assert.Equal(t, "https://image.tmdb.org/t/p/w342/b.jpg", movies[0].PosterURL)
	assert.Empty(t, movies[1].PosterURL)

	movies, err = recommender.SimilarToId("2", 1)
	assert.NoError(t, err)
	assert.Equal(t, "A", movies[0].Title)

	_, err = recommender.SimilarTo("Z", 2)
	assert.True(t, errors.Is(err, errors.NotFound))
	_, err = recommender.SimilarToId("9", 2)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestContentRecommender_Titles(t *testing.T) {
	recommender := newTestContentRecommender(t)
	assert.Equal(t, 3, recommender.Count())
	assert.Equal(t, []string{"A", "B", "C"}, recommender.Titles(0, 10))
	assert.Equal(t, []string{"B"}, recommender.Titles(1, 1))
	assert.Empty(t, recommender.Titles(5, 1))
	assert.Empty(t, recommender.DuplicateTitles())
}

func TestPosterURL(t *testing.T) {
	assert.Equal(t, "https://img/p/x.jpg", PosterURL("https://img/p", "/x.jpg"))
	assert.Equal(t, "https://img/p/x.jpg", PosterURL("https://img/p/", "x.jpg"))
	assert.Equal(t, "http://other/x.jpg", PosterURL("https://img/p", "http://other/x.jpg"))
	assert.Equal(t, "/x.jpg", PosterURL("", "/x.jpg"))
	assert.Empty(t, PosterURL("https://img/p", ""))
}
