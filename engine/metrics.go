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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelStep = "step"
	LabelData = "data"
)

var (
	LoadDatasetStepSecondsVec = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cinerec",
		Subsystem: "engine",
		Name:      "load_dataset_step_seconds",
	}, []string{LabelStep})
	LoadDatasetTotalSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cinerec",
		Subsystem: "engine",
		Name:      "load_dataset_total_seconds",
	})
	DatasetSizeVec = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cinerec",
		Subsystem: "engine",
		Name:      "dataset_size",
	}, []string{LabelData})
	SimilarityIndexBuildSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cinerec",
		Subsystem: "engine",
		Name:      "similarity_index_build_seconds",
	})
	DuplicateTitlesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cinerec",
		Subsystem: "engine",
		Name:      "duplicate_titles_total",
	})
	CollaborativeFilteringFitSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cinerec",
		Subsystem: "engine",
		Name:      "collaborative_filtering_fit_seconds",
	})
	CollaborativeFilteringRMSE = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cinerec",
		Subsystem: "engine",
		Name:      "collaborative_filtering_rmse",
	})
	CollaborativeFilteringMAE = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cinerec",
		Subsystem: "engine",
		Name:      "collaborative_filtering_mae",
	})
	RatingsOutOfScaleTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "cinerec",
		Subsystem: "engine",
		Name:      "ratings_out_of_scale_total",
	})
)
