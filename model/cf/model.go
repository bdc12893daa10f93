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

package cf

import (
	"context"

	"github.com/cinerec/cinerec/dataset"
	"github.com/cinerec/cinerec/model"
)

// Score is the accuracy of rating predictions.
type Score struct {
	RMSE float32 `json:"rmse"`
	MAE  float32 `json:"mae"`
}

type FitConfig struct {
	Jobs    int
	Verbose int
}

func NewFitConfig() *FitConfig {
	return &FitConfig{
		Jobs:    1,
		Verbose: 10,
	}
}

func (config *FitConfig) SetVerbose(verbose int) *FitConfig {
	config.Verbose = verbose
	return config
}

func (config *FitConfig) SetJobs(jobs int) *FitConfig {
	config.Jobs = jobs
	return config
}

// Model predicts the rating a user would give to a movie.
type Model interface {
	model.Model
	// Fit a model with a train set and an optional validation set.
	Fit(ctx context.Context, trainSet, validSet *dataset.RatingSet, config *FitConfig) (Score, error)
	// Predict the rating of a user on a movie, clipped to the rating scale.
	Predict(userId, movieId int64) float32
	// IsUserPredictable returns true if the user has ratings in the train set.
	IsUserPredictable(userId int64) bool
	// IsItemPredictable returns true if the movie has ratings in the train set.
	IsItemPredictable(movieId int64) bool
}
