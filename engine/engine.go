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

package engine

import (
	"context"
	"time"

	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/base/progress"
	"github.com/cinerec/cinerec/common/parallel"
	"github.com/cinerec/cinerec/config"
	"github.com/cinerec/cinerec/dataset"
	"github.com/cinerec/cinerec/logics"
	"github.com/cinerec/cinerec/model/cf"
	"github.com/cinerec/cinerec/model/content"
	"github.com/cinerec/cinerec/storage"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Engine holds the artifacts built once at startup. It is immutable and every query is
// safe for concurrent use.
type Engine struct {
	Config        *config.Config
	Content       *logics.ContentRecommender
	Collaborative *logics.CollaborativeRecommender
	BuildTime     time.Time
}

// Dataset is the set of source tables.
type Dataset struct {
	Catalog *dataset.Catalog
	Ratings *dataset.RatingSet
	Movies  *dataset.MovieTable
}

// OpenDatabase connects to the data store of a configuration.
func OpenDatabase(cfg *config.Config) (storage.Database, error) {
	db, err := storage.Open(cfg.Database.DataStore, storage.Tables{
		Catalog: cfg.Database.CatalogTable,
		Ratings: cfg.Database.RatingsTable,
		Movies:  cfg.Database.MoviesTable,
	})
	return db, errors.Trace(err)
}

// LoadDataset loads all source tables. Any missing or malformed table fails the load.
func LoadDataset(ctx context.Context, db storage.Database) (*Dataset, error) {
	start := time.Now()
	stepStart := time.Now()
	catalog, err := db.LoadCatalog(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load movie metadata")
	}
	LoadDatasetStepSecondsVec.WithLabelValues("load_catalog").Set(time.Since(stepStart).Seconds())

	stepStart = time.Now()
	ratings, err := LoadRatings(ctx, db)
	if err != nil {
		return nil, errors.Trace(err)
	}
	LoadDatasetStepSecondsVec.WithLabelValues("load_ratings").Set(time.Since(stepStart).Seconds())

	stepStart = time.Now()
	movies, err := db.LoadMovies(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load movie references")
	}
	LoadDatasetStepSecondsVec.WithLabelValues("load_movies").Set(time.Since(stepStart).Seconds())
	LoadDatasetTotalSeconds.Set(time.Since(start).Seconds())

	DatasetSizeVec.WithLabelValues("catalog").Set(float64(catalog.Count()))
	DatasetSizeVec.WithLabelValues("ratings").Set(float64(ratings.Count()))
	DatasetSizeVec.WithLabelValues("users").Set(float64(ratings.CountUsers()))
	DatasetSizeVec.WithLabelValues("movies").Set(float64(movies.Count()))
	return &Dataset{Catalog: catalog, Ratings: ratings, Movies: movies}, nil
}

// LoadRatings loads and indexes the rating table.
func LoadRatings(ctx context.Context, db storage.Database) (*dataset.RatingSet, error) {
	records, err := db.LoadRatings(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load ratings")
	}
	ratings, err := dataset.NewRatingSet(records)
	if err != nil {
		return nil, errors.Annotate(err, "failed to index ratings")
	}
	return ratings, nil
}

// Build loads the source tables, builds the content similarity index and trains the
// collaborative model. Both paths run concurrently and either failing fails the build.
func Build(ctx context.Context, cfg *config.Config, db storage.Database) (*Engine, error) {
	ctx, span := progress.Start(ctx, "Build", 3)
	data, err := LoadDataset(ctx, db)
	if err != nil {
		span.Fail(err)
		return nil, errors.Trace(err)
	}
	span.Add(1)

	var (
		index *content.SimilarityIndex
		svd   *cf.SVD
	)
	err = parallel.Parallel(ctx, 2, 2, func(_, jobId int) error {
		var err error
		switch jobId {
		case 0:
			index, err = BuildContent(ctx, cfg, data.Catalog)
		case 1:
			svd, err = BuildCollaborative(ctx, cfg, data.Ratings)
		}
		span.Add(1)
		return err
	})
	if err != nil {
		span.Fail(err)
		return nil, errors.Trace(err)
	}
	span.End()
	return &Engine{
		Config:        cfg,
		Content:       logics.NewContentRecommender(index, cfg.Content.PosterBaseURL),
		Collaborative: logics.NewCollaborativeRecommender(svd, data.Ratings, data.Movies),
		BuildTime:     time.Now(),
	}, nil
}

// BuildContent builds the similarity index of a catalog.
func BuildContent(ctx context.Context, cfg *config.Config, catalog *dataset.Catalog) (*content.SimilarityIndex, error) {
	start := time.Now()
	index, err := content.BuildIndex(ctx, catalog, cfg.Content.GetIndexConfig())
	if err != nil {
		return nil, errors.Annotate(err, "failed to build similarity index")
	}
	SimilarityIndexBuildSeconds.Set(time.Since(start).Seconds())
	DuplicateTitlesTotal.Set(float64(len(index.DuplicateTitles())))
	return index, nil
}

// BuildCollaborative trains SVD on every rating. Ratings outside the configured scale are
// kept and reported.
func BuildCollaborative(ctx context.Context, cfg *config.Config, ratings *dataset.RatingSet) (*cf.SVD, error) {
	minRating, maxRating := cfg.Collaborative.MinRating, cfg.Collaborative.MaxRating
	outOfScale := ratings.CountOutOfRange(minRating, maxRating)
	RatingsOutOfScaleTotal.Set(float64(outOfScale))
	if outOfScale > 0 {
		log.Logger().Warn("ratings out of scale",
			zap.Int("n_ratings", outOfScale),
			zap.Float32("min_rating", minRating),
			zap.Float32("max_rating", maxRating))
	}
	start := time.Now()
	svd := cf.NewSVD(cfg.Collaborative.GetParams())
	if _, err := svd.Fit(ctx, ratings, nil, cfg.Collaborative.GetFitConfig()); err != nil {
		return nil, errors.Annotate(err, "failed to fit svd")
	}
	CollaborativeFilteringFitSeconds.Set(time.Since(start).Seconds())
	CollaborativeFilteringRMSE.Set(float64(cf.RMSE(svd, ratings)))
	CollaborativeFilteringMAE.Set(float64(cf.MAE(svd, ratings)))
	return svd, nil
}

// Evaluation is the offline accuracy of the collaborative model.
type Evaluation struct {
	HoldOut        cf.Score               `json:"hold_out"`
	CrossValidate  cf.CrossValidateResult `json:"cross_validate"`
	TrainSetSize   int                    `json:"train_set_size"`
	TestSetSize    int                    `json:"test_set_size"`
	NumFolds       int                    `json:"num_folds"`
	EvaluationTime time.Duration          `json:"evaluation_time"`
}

// EvaluateCollaborative scores SVD on a random hold out split and by k-fold cross
// validation. Cross validation is skipped when folds is less than 2.
func EvaluateCollaborative(ctx context.Context, cfg *config.Config, ratings *dataset.RatingSet, folds int) (*Evaluation, error) {
	start := time.Now()
	seed := cfg.Collaborative.RandomState
	trainSet, testSet := ratings.Split(cfg.Collaborative.TestRatio, seed)
	svd := cf.NewSVD(cfg.Collaborative.GetParams())
	score, err := svd.Fit(ctx, trainSet, testSet, cfg.Collaborative.GetFitConfig())
	if err != nil {
		return nil, errors.Annotate(err, "failed to fit svd")
	}
	evaluation := &Evaluation{
		HoldOut:      score,
		TrainSetSize: trainSet.Count(),
		TestSetSize:  testSet.Count(),
	}
	if folds >= 2 {
		evaluation.NumFolds = folds
		evaluation.CrossValidate, err = cf.CrossValidate(ctx, cfg.Collaborative.GetParams(), ratings, folds, seed,
			cfg.Collaborative.GetFitConfig())
		if err != nil {
			return nil, errors.Trace(err)
		}
	}
	evaluation.EvaluationTime = time.Since(start)
	return evaluation, nil
}
