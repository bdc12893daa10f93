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

	"github.com/chewxy/math32"
	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/base/progress"
	"github.com/cinerec/cinerec/common/parallel"
	"github.com/cinerec/cinerec/dataset"
	"github.com/cinerec/cinerec/model"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// RMSE is the root mean square error of predictions on a test set.
func RMSE(m Model, testSet *dataset.RatingSet) float32 {
	if testSet.Count() == 0 {
		return 0
	}
	var sum float32
	for i := 0; i < testSet.Count(); i++ {
		r := testSet.GetRating(i)
		diff := m.Predict(r.UserId, r.MovieId) - r.Rating
		sum += diff * diff
	}
	return math32.Sqrt(sum / float32(testSet.Count()))
}

// MAE is the mean absolute error of predictions on a test set.
func MAE(m Model, testSet *dataset.RatingSet) float32 {
	if testSet.Count() == 0 {
		return 0
	}
	var sum float32
	for i := 0; i < testSet.Count(); i++ {
		r := testSet.GetRating(i)
		sum += math32.Abs(m.Predict(r.UserId, r.MovieId) - r.Rating)
	}
	return sum / float32(testSet.Count())
}

func Evaluate(m Model, testSet *dataset.RatingSet) Score {
	return Score{
		RMSE: RMSE(m, testSet),
		MAE:  MAE(m, testSet),
	}
}

// CrossValidateResult holds the test score of every fold.
type CrossValidateResult struct {
	Folds []Score `json:"folds"`
}

func (r CrossValidateResult) MeanRMSE() float32 {
	return lo.SumBy(r.Folds, func(s Score) float32 { return s.RMSE }) / float32(len(r.Folds))
}

func (r CrossValidateResult) MeanMAE() float32 {
	return lo.SumBy(r.Folds, func(s Score) float32 { return s.MAE }) / float32(len(r.Folds))
}

// CrossValidate fits a fresh SVD on each of k folds and scores it on the held out fold.
// Folds are trained by config.Jobs workers.
func CrossValidate(ctx context.Context, params model.Params, ratings *dataset.RatingSet, k int, seed int64,
	config *FitConfig) (CrossValidateResult, error) {
	if k < 2 {
		return CrossValidateResult{}, errors.NotValidf("%d folds", k)
	}
	if ratings.Count() < k {
		return CrossValidateResult{}, errors.NotValidf("%d ratings for %d folds", ratings.Count(), k)
	}
	if config == nil {
		config = NewFitConfig()
	}
	trainSets, testSets := ratings.KFold(k, seed)
	result := CrossValidateResult{Folds: make([]Score, k)}
	ctx, span := progress.Start(ctx, "CrossValidate", k)
	err := parallel.Parallel(ctx, k, config.Jobs, func(_, fold int) error {
		svd := NewSVD(params)
		score, err := svd.Fit(ctx, trainSets[fold], testSets[fold], &FitConfig{Jobs: 1, Verbose: config.Verbose})
		if err != nil {
			return errors.Annotatef(err, "fold %d", fold)
		}
		result.Folds[fold] = score
		span.Add(1)
		return nil
	})
	if err != nil {
		span.Fail(err)
		return CrossValidateResult{}, errors.Trace(err)
	}
	span.End()
	log.Logger().Info("cross validate svd",
		zap.Int("folds", k),
		zap.Float32("RMSE", result.MeanRMSE()),
		zap.Float32("MAE", result.MeanMAE()))
	return result, nil
}
