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
	"github.com/cinerec/cinerec/base"
	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/dataset"
	"github.com/cinerec/cinerec/model/cf"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Recommendation is a movie returned by a collaborative query.
type Recommendation struct {
	MovieId int64    `json:"movie_id"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`
	Score   float32  `json:"score"`
}

// CollaborativeRecommender predicts the unseen movies a user would rate highest.
type CollaborativeRecommender struct {
	model   cf.Model
	ratings *dataset.RatingSet
	movies  *dataset.MovieTable
	items   []int64
}

func NewCollaborativeRecommender(model cf.Model, ratings *dataset.RatingSet, movies *dataset.MovieTable) *CollaborativeRecommender {
	return &CollaborativeRecommender{
		model:   model,
		ratings: ratings,
		movies:  movies,
		items:   ratings.DistinctItems(),
	}
}

// RecommendForUser ranks every rated movie the user has not rated yet by predicted rating,
// ties broken by ascending movie id, and returns the top n. Users without ratings are
// ranked by the bias terms of the model.
func (r *CollaborativeRecommender) RecommendForUser(userId int64, n int) ([]Recommendation, error) {
	if n < 0 {
		return nil, errors.NotValidf("number of recommendations %d", n)
	}
	if !r.model.IsUserPredictable(userId) {
		log.Logger().Debug("recommend for unknown user", zap.Int64("user_id", userId))
	}
	rated := r.ratings.RatedBy(userId)
	filter := base.NewTopKFilter[int64](n)
	for _, movieId := range r.items {
		if !rated.Contains(movieId) {
			filter.Push(movieId, r.model.Predict(userId, movieId))
		}
	}
	movieIds, scores := filter.PopAll()
	recommendations := make([]Recommendation, len(movieIds))
	for i, movieId := range movieIds {
		recommendations[i] = Recommendation{MovieId: movieId, Score: scores[i]}
		if movie, ok := r.movies.Get(movieId); ok {
			recommendations[i].Title = movie.Title
			recommendations[i].Genres = movie.Genres
		} else {
			log.Logger().Warn("movie missing from reference table", zap.Int64("movie_id", movieId))
		}
	}
	return recommendations, nil
}

// CountItems returns the number of distinct rated movies.
func (r *CollaborativeRecommender) CountItems() int {
	return len(r.items)
}

func (r *CollaborativeRecommender) Predict(userId, movieId int64) float32 {
	return r.model.Predict(userId, movieId)
}
