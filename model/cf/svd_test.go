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
	"testing"

	"github.com/cinerec/cinerec/base"
	"github.com/cinerec/cinerec/dataset"
	"github.com/cinerec/cinerec/model"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// newSyntheticRatings generates ratings of a rank-2 preference structure.
func newSyntheticRatings(t assert.TestingT, nUsers, nItems int, density float64) *dataset.RatingSet {
	rng := base.NewRandomGenerator(1)
	userTaste := rng.NormalMatrix(nUsers, 2, 0, 1)
	itemStyle := rng.NormalMatrix(nItems, 2, 0, 1)
	var ratings []dataset.Rating
	for u := 0; u < nUsers; u++ {
		for i := 0; i < nItems; i++ {
			if rng.Float64() > density {
				continue
			}
			r := 3 + userTaste[u][0]*itemStyle[i][0] + userTaste[u][1]*itemStyle[i][1]
			ratings = append(ratings, dataset.Rating{
				UserId:  int64(u + 1),
				MovieId: int64(100 + i),
				Rating:  min(max(r, 1), 5),
			})
		}
	}
	set, err := dataset.NewRatingSet(ratings)
	assert.NoError(t, err)
	return set
}

type SVDTestSuite struct {
	suite.Suite
	ratings *dataset.RatingSet
}

func (suite *SVDTestSuite) SetupSuite() {
	suite.ratings = newSyntheticRatings(suite.T(), 60, 40, 0.5)
}

func (suite *SVDTestSuite) TestFit() {
	trainSet, testSet := suite.ratings.Split(0.2, 0)
	svd := NewSVD(model.Params{
		model.NFactors: 10,
		model.NEpochs:  50,
		model.Lr:       0.01,
	})
	score, err := svd.Fit(context.Background(), trainSet, testSet, NewFitConfig())
	suite.NoError(err)
	suite.Equal(Evaluate(svd, testSet), score)
	// better than predicting the global mean
	baseline := NewSVD(model.Params{model.NEpochs: 0})
	_, err = baseline.Fit(context.Background(), trainSet, nil, nil)
	suite.NoError(err)
	suite.Less(RMSE(svd, trainSet), RMSE(baseline, trainSet))
	suite.Less(score.RMSE, RMSE(baseline, testSet))
	suite.LessOrEqual(score.MAE, score.RMSE)
}

func (suite *SVDTestSuite) TestDeterminism() {
	params := model.Params{model.NFactors: 5, model.NEpochs: 5, model.RandomState: 7}
	a, b := NewSVD(params), NewSVD(params)
	_, err := a.Fit(context.Background(), suite.ratings, nil, nil)
	suite.NoError(err)
	_, err = b.Fit(context.Background(), suite.ratings, nil, nil)
	suite.NoError(err)
	suite.Equal(a.UserFactor, b.UserFactor)
	suite.Equal(a.ItemBias, b.ItemBias)
	suite.Equal(a.Predict(1, 100), b.Predict(1, 100))
}

func (suite *SVDTestSuite) TestPredict() {
	svd := NewSVD(model.Params{model.NFactors: 5, model.NEpochs: 10})
	_, err := svd.Fit(context.Background(), suite.ratings, nil, nil)
	suite.NoError(err)
	for u := int64(1); u <= 60; u++ {
		for i := int64(100); i < 140; i++ {
			r := svd.Predict(u, i)
			suite.GreaterOrEqual(r, float32(1))
			suite.LessOrEqual(r, float32(5))
		}
	}
	// unknown users and items fall back to biases
	suite.False(svd.IsUserPredictable(1000))
	suite.False(svd.IsItemPredictable(1000))
	suite.True(svd.IsUserPredictable(1))
	suite.True(svd.IsItemPredictable(100))
	itemIndex := suite.ratings.GetItemDict().Id(100)
	suite.InDelta(svd.GlobalMean+svd.ItemBias[itemIndex], svd.Predict(1000, 100), 1e-6)
	suite.InDelta(svd.GlobalMean, svd.Predict(1000, 1000), 1e-6)
}

func (suite *SVDTestSuite) TestCrossValidate() {
	params := model.Params{model.NFactors: 5, model.NEpochs: 5}
	result, err := CrossValidate(context.Background(), params, suite.ratings, 3, 0, NewFitConfig().SetJobs(2))
	suite.NoError(err)
	suite.Len(result.Folds, 3)
	for _, score := range result.Folds {
		suite.Greater(score.RMSE, float32(0))
	}
	suite.Greater(result.MeanRMSE(), float32(0))
	suite.Greater(result.MeanMAE(), float32(0))

	// deterministic regardless of workers
	again, err := CrossValidate(context.Background(), params, suite.ratings, 3, 0, NewFitConfig())
	suite.NoError(err)
	suite.Equal(result, again)

	_, err = CrossValidate(context.Background(), params, suite.ratings, 1, 0, nil)
	suite.True(errors.Is(err, errors.NotValid))
}

func (suite *SVDTestSuite) TestCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSVD(nil).Fit(ctx, suite.ratings, nil, nil)
	suite.ErrorIs(err, context.Canceled)
}

func TestSVD(t *testing.T) {
	suite.Run(t, new(SVDTestSuite))
}

func TestSVD_EmptyTrainSet(t *testing.T) {
	ratings, err := dataset.NewRatingSet([]dataset.Rating{{UserId: 1, MovieId: 10, Rating: 5}})
	assert.NoError(t, err)
	trainSet, _ := ratings.Split(1, 0)
	assert.Zero(t, trainSet.Count())
	_, err = NewSVD(nil).Fit(context.Background(), trainSet, nil, nil)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = NewSVD(nil).Fit(context.Background(), nil, nil, nil)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestSVD_WithoutBias(t *testing.T) {
	ratings := newSyntheticRatings(t, 20, 10, 0.8)
	svd := NewSVD(model.Params{model.UseBias: false, model.NFactors: 4, model.NEpochs: 5})
	_, err := svd.Fit(context.Background(), ratings, nil, nil)
	assert.NoError(t, err)
	for _, bias := range svd.UserBias {
		assert.Zero(t, bias)
	}
	assert.InDelta(t, min(max(ratings.GlobalMean(), 1), 5), svd.Predict(1000, 100), 1e-6)
}

func TestSVD_Scale(t *testing.T) {
	ratings, err := dataset.NewRatingSet([]dataset.Rating{
		{UserId: 1, MovieId: 10, Rating: 10},
		{UserId: 2, MovieId: 10, Rating: 8},
	})
	assert.NoError(t, err)
	svd := NewSVD(model.Params{model.MinRating: 0, model.MaxRating: 10, model.NEpochs: 1})
	_, err = svd.Fit(context.Background(), ratings, nil, nil)
	assert.NoError(t, err)
	assert.Greater(t, svd.Predict(1, 10), float32(5))
}
