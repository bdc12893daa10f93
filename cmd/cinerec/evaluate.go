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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/base/progress"
	"github.com/cinerec/cinerec/engine"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var evaluateCommand = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the collaborative model by hold out and cross validation.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if folds, _ := cmd.Flags().GetInt("folds"); folds >= 0 {
			cfg.Collaborative.NumFolds = folds
		}
		if ratio, _ := cmd.Flags().GetFloat32("test-ratio"); ratio > 0 {
			cfg.Collaborative.TestRatio = ratio
		}

		ctx := context.Background()
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			ctx = progress.WithBar(ctx, os.Stderr)
		}
		db, err := engine.OpenDatabase(cfg)
		if err != nil {
			return errors.Trace(err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Logger().Warn("failed to close data store", zap.Error(err))
			}
		}()
		ratings, err := engine.LoadRatings(ctx, db)
		if err != nil {
			return errors.Trace(err)
		}
		evaluation, err := engine.EvaluateCollaborative(ctx, cfg, ratings, cfg.Collaborative.NumFolds)
		if err != nil {
			return errors.Trace(err)
		}
		return renderEvaluation(os.Stdout, evaluation)
	},
}

func init() {
	evaluateCommand.Flags().Int("folds", -1, "number of cross validation folds, less than 2 skips (default from config)")
	evaluateCommand.Flags().Float32("test-ratio", 0, "ratio of ratings held out (default from config)")
	evaluateCommand.Flags().BoolP("quiet", "q", false, "hide progress bars")
}

func renderEvaluation(w io.Writer, evaluation *engine.Evaluation) error {
	table := tablewriter.NewWriter(w)
	table.Header("evaluation", "RMSE", "MAE")
	rows := [][]string{{
		fmt.Sprintf("hold out (%d/%d)", evaluation.TrainSetSize, evaluation.TestSetSize),
		fmt.Sprintf("%.4f", evaluation.HoldOut.RMSE),
		fmt.Sprintf("%.4f", evaluation.HoldOut.MAE),
	}}
	for i, fold := range evaluation.CrossValidate.Folds {
		rows = append(rows, []string{
			"fold " + strconv.Itoa(i+1),
			fmt.Sprintf("%.4f", fold.RMSE),
			fmt.Sprintf("%.4f", fold.MAE),
		})
	}
	if evaluation.NumFolds > 0 {
		rows = append(rows, []string{
			fmt.Sprintf("%d-fold mean", evaluation.NumFolds),
			fmt.Sprintf("%.4f", evaluation.CrossValidate.MeanRMSE()),
			fmt.Sprintf("%.4f", evaluation.CrossValidate.MeanMAE()),
		})
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return errors.Trace(err)
		}
	}
	if err := table.Render(); err != nil {
		return errors.Trace(err)
	}
	_, err := fmt.Fprintf(w, "evaluated in %v\n", evaluation.EvaluationTime)
	return errors.Trace(err)
}
