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
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/base/progress"
	"github.com/cinerec/cinerec/common/floats"
	"github.com/cinerec/cinerec/dataset"
	"github.com/cinerec/cinerec/model"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// SVD algorithm, as popularized by Simon Funk during the
// Netflix Prize. The prediction \hat{r}_{ui} is set as:
//
//	\hat{r}_{ui} = μ + b_u + b_i + q_i^Tp_u
//
// If user u is unknown, then the bias b_u and the factors p_u are
// assumed to be zero. The same applies for item i with b_i and q_i.
// Without biases the prediction is q_i^Tp_u, or μ if either side is unknown.
type SVD struct {
	model.BaseModel
	// Model parameters
	UserFactor [][]float32 // p_u
	ItemFactor [][]float32 // q_i
	UserBias   []float32   // b_u
	ItemBias   []float32   // b_i
	GlobalMean float32     // μ
	// Indices
	userIndex       *dataset.IDDict
	itemIndex       *dataset.IDDict
	userPredictable *bitset.BitSet
	itemPredictable *bitset.BitSet
	// Hyper parameters
	useBias    bool
	nFactors   int
	nEpochs    int
	lr         float32
	reg        float32
	initMean   float32
	initStdDev float32
	minRating  float32
	maxRating  float32
}

// NewSVD creates a SVD model. Params:
//
//	UseBias    - Learn user and item biases. Default is true.
//	Reg        - The regularization parameter of the cost function. Default is 0.02.
//	Lr         - The learning rate of SGD. Default is 0.005.
//	NFactors   - The number of latent factors. Default is 100.
//	NEpochs    - The number of iteration of the SGD procedure. Default is 20.
//	InitMean   - The mean of initial random latent factors. Default is 0.
//	InitStdDev - The standard deviation of initial random latent factors. Default is 0.1.
//	MinRating  - The lower bound of predictions. Default is 1.
//	MaxRating  - The upper bound of predictions. Default is 5.
func NewSVD(params model.Params) *SVD {
	svd := new(SVD)
	svd.SetParams(params)
	return svd
}

func (svd *SVD) SetParams(params model.Params) {
	svd.BaseModel.SetParams(params)
	svd.useBias = svd.Params.GetBool(model.UseBias, true)
	svd.nFactors = svd.Params.GetInt(model.NFactors, 100)
	svd.nEpochs = svd.Params.GetInt(model.NEpochs, 20)
	svd.lr = svd.Params.GetFloat32(model.Lr, 0.005)
	svd.reg = svd.Params.GetFloat32(model.Reg, 0.02)
	svd.initMean = svd.Params.GetFloat32(model.InitMean, 0)
	svd.initStdDev = svd.Params.GetFloat32(model.InitStdDev, 0.1)
	svd.minRating = svd.Params.GetFloat32(model.MinRating, 1)
	svd.maxRating = svd.Params.GetFloat32(model.MaxRating, 5)
}

func (svd *SVD) Clear() {
	svd.UserFactor = nil
	svd.ItemFactor = nil
	svd.UserBias = nil
	svd.ItemBias = nil
	svd.GlobalMean = 0
	svd.userIndex = dataset.NewIDDict()
	svd.itemIndex = dataset.NewIDDict()
	svd.userPredictable = bitset.New(0)
	svd.itemPredictable = bitset.New(0)
}

func (svd *SVD) IsUserPredictable(userId int64) bool {
	if svd.userIndex == nil {
		return false
	}
	index := svd.userIndex.Id(userId)
	return index >= 0 && svd.userPredictable.Test(uint(index))
}

func (svd *SVD) IsItemPredictable(movieId int64) bool {
	if svd.itemIndex == nil {
		return false
	}
	index := svd.itemIndex.Id(movieId)
	return index >= 0 && svd.itemPredictable.Test(uint(index))
}

// Predict the rating of a user on a movie. Users and movies without ratings in the
// train set fall back to the bias terms.
func (svd *SVD) Predict(userId, movieId int64) float32 {
	userIndex, itemIndex := int32(-1), int32(-1)
	if svd.IsUserPredictable(userId) {
		userIndex = svd.userIndex.Id(userId)
	}
	if svd.IsItemPredictable(movieId) {
		itemIndex = svd.itemIndex.Id(movieId)
	}
	return svd.clip(svd.internalPredict(userIndex, itemIndex))
}

func (svd *SVD) internalPredict(userIndex, itemIndex int32) float32 {
	known := userIndex >= 0 && itemIndex >= 0
	if !svd.useBias {
		if known {
			return floats.Dot(svd.UserFactor[userIndex], svd.ItemFactor[itemIndex])
		}
		return svd.GlobalMean
	}
	ret := svd.GlobalMean
	// + b_u
	if userIndex >= 0 {
		ret += svd.UserBias[userIndex]
	}
	// + b_i
	if itemIndex >= 0 {
		ret += svd.ItemBias[itemIndex]
	}
	// + q_i^Tp_u
	if known {
		ret += floats.Dot(svd.UserFactor[userIndex], svd.ItemFactor[itemIndex])
	}
	return ret
}

func (svd *SVD) clip(r float32) float32 {
	return min(max(r, svd.minRating), svd.maxRating)
}

func (svd *SVD) Init(trainSet *dataset.RatingSet) {
	svd.userIndex = trainSet.GetUserDict()
	svd.itemIndex = trainSet.GetItemDict()
	svd.GlobalMean = trainSet.GlobalMean()
	nUsers, nItems := trainSet.CountUsers(), trainSet.CountItems()
	svd.UserBias = make([]float32, nUsers)
	svd.ItemBias = make([]float32, nItems)
	svd.UserFactor = svd.GetRandomGenerator().NormalMatrix(nUsers, svd.nFactors, svd.initMean, svd.initStdDev)
	svd.ItemFactor = svd.GetRandomGenerator().NormalMatrix(nItems, svd.nFactors, svd.initMean, svd.initStdDev)
	svd.userPredictable = bitset.New(uint(nUsers))
	for userIndex, feedback := range trainSet.GetUserFeedback() {
		if len(feedback) > 0 {
			svd.userPredictable.Set(uint(userIndex))
		}
	}
	svd.itemPredictable = bitset.New(uint(nItems))
	for itemIndex, feedback := range trainSet.GetItemFeedback() {
		if len(feedback) > 0 {
			svd.itemPredictable.Set(uint(itemIndex))
		}
	}
}

// Fit trains the model by SGD over a seeded permutation of the train set in every epoch.
// The validation set may be nil.
func (svd *SVD) Fit(ctx context.Context, trainSet, validSet *dataset.RatingSet, config *FitConfig) (Score, error) {
	if trainSet == nil || trainSet.Count() == 0 {
		return Score{}, errors.NotValidf("empty train set")
	}
	if config == nil {
		config = NewFitConfig()
	}
	validSize := 0
	if validSet != nil {
		validSize = validSet.Count()
	}
	log.Logger().Info("fit svd",
		zap.Int("train_set_size", trainSet.Count()),
		zap.Int("valid_set_size", validSize),
		zap.Any("params", svd.GetParams()),
		zap.Any("config", config))
	svd.Init(trainSet)
	rng := svd.GetRandomGenerator()
	_, span := progress.Start(ctx, "SVD.Fit", svd.nEpochs)
	for epoch := 1; epoch <= svd.nEpochs; epoch++ {
		if err := ctx.Err(); err != nil {
			span.Fail(err)
			return Score{}, errors.Trace(err)
		}
		fitStart := time.Now()
		var cost float32
		for _, i := range rng.Perm(trainSet.Count()) {
			userIndex, itemIndex, rating := trainSet.Get(i)
			// Compute error: e_{ui} = r - \hat r
			diff := rating - svd.internalPredict(userIndex, itemIndex)
			cost += diff * diff
			if svd.useBias {
				// Update user bias: b_u <- b_u + \gamma (e_{ui} - \lambda b_u)
				svd.UserBias[userIndex] += svd.lr * (diff - svd.reg*svd.UserBias[userIndex])
				// Update item bias: b_i <- b_i + \gamma (e_{ui} - \lambda b_i)
				svd.ItemBias[itemIndex] += svd.lr * (diff - svd.reg*svd.ItemBias[itemIndex])
			}
			// Update latent factors with values before this step
			userFactor := svd.UserFactor[userIndex]
			itemFactor := svd.ItemFactor[itemIndex]
			for f := range userFactor {
				puf, qif := userFactor[f], itemFactor[f]
				userFactor[f] += svd.lr * (diff*qif - svd.reg*puf)
				itemFactor[f] += svd.lr * (diff*puf - svd.reg*qif)
			}
		}
		span.Add(1)
		if config.Verbose > 0 && epoch%config.Verbose == 0 || epoch == svd.nEpochs {
			fields := []zap.Field{
				zap.String("fit_time", time.Since(fitStart).String()),
				zap.Float32("train_cost", cost/float32(trainSet.Count())),
			}
			if validSize > 0 {
				fields = append(fields, zap.Float32("valid_rmse", RMSE(svd, validSet)))
			}
			log.Logger().Debug(fmt.Sprintf("fit svd %v/%v", epoch, svd.nEpochs), fields...)
		}
	}
	span.End()
	if validSize == 0 {
		return Score{}, nil
	}
	score := Evaluate(svd, validSet)
	log.Logger().Info("fit svd complete",
		zap.Float32("RMSE", score.RMSE),
		zap.Float32("MAE", score.MAE))
	return score, nil
}
