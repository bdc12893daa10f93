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
	"strings"

	"github.com/cinerec/cinerec/base"
	"github.com/cinerec/cinerec/logics"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var similarCommand = &cobra.Command{
	Use:   "similar <title>",
	Short: "Find movies similar to a movie.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		e, err := buildEngine(context.Background(), cfg)
		if err != nil {
			return errors.Trace(err)
		}
		n, _ := cmd.Flags().GetInt("n")
		if n < 0 {
			n = cfg.Content.NumSimilar
		}
		byId, _ := cmd.Flags().GetBool("id")
		format, _ := cmd.Flags().GetString("format")
		query := strings.Join(args, " ")
		var movies []logics.SimilarMovie
		if byId {
			movies, err = e.Content.SimilarToId(query, n)
		} else {
			movies, err = e.Content.SimilarTo(query, n)
		}
		if err != nil {
			return errors.Trace(err)
		}
		return renderSimilar(os.Stdout, format, movies)
	},
}

var recommendCommand = &cobra.Command{
	Use:   "recommend <user-id>",
	Short: "Recommend unrated movies to a user.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userId, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.NewNotValid(err, "invalid user id")
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		e, err := buildEngine(context.Background(), cfg)
		if err != nil {
			return errors.Trace(err)
		}
		n, _ := cmd.Flags().GetInt("n")
		if n < 0 {
			n = cfg.Collaborative.NumRecommend
		}
		format, _ := cmd.Flags().GetString("format")
		recommendations, err := e.Collaborative.RecommendForUser(userId, n)
		if err != nil {
			return errors.Trace(err)
		}
		return renderRecommendations(os.Stdout, format, recommendations)
	},
}

func init() {
	similarCommand.Flags().IntP("n", "n", -1, "number of similar movies (default from config)")
	similarCommand.Flags().Bool("id", false, "look up the movie by identifier instead of title")
	similarCommand.Flags().String("format", "table", "output format (table or csv)")
	recommendCommand.Flags().IntP("n", "n", -1, "number of recommendations (default from config)")
	recommendCommand.Flags().String("format", "table", "output format (table or csv)")
}

func renderSimilar(w io.Writer, format string, movies []logics.SimilarMovie) error {
	header := []string{"#", "id", "title", "genres", "score"}
	rows := lo.Map(movies, func(movie logics.SimilarMovie, i int) []string {
		return []string{
			strconv.Itoa(i + 1),
			movie.Id,
			movie.Title,
			strings.Join(movie.Genres, ", "),
			fmt.Sprintf("%.4f", movie.Score),
		}
	})
	return render(w, format, header, rows)
}

func renderRecommendations(w io.Writer, format string, recommendations []logics.Recommendation) error {
	header := []string{"#", "movie id", "title", "genres", "score"}
	rows := lo.Map(recommendations, func(r logics.Recommendation, i int) []string {
		return []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(r.MovieId, 10),
			r.Title,
			strings.Join(r.Genres, "|"),
			fmt.Sprintf("%.4f", r.Score),
		}
	})
	return render(w, format, header, rows)
}

func render(w io.Writer, format string, header []string, rows [][]string) error {
	switch format {
	case "csv":
		for _, row := range append([][]string{header}, rows...) {
			line := strings.Join(lo.Map(row, func(field string, _ int) string { return base.Escape(field) }), ",")
			if _, err := fmt.Fprintln(w, line); err != nil {
				return errors.Trace(err)
			}
		}
		return nil
	case "table":
		table := tablewriter.NewWriter(w)
		table.Header(lo.ToAnySlice(header)...)
		for _, row := range rows {
			if err := table.Append(row); err != nil {
				return errors.Trace(err)
			}
		}
		return errors.Trace(table.Render())
	default:
		return errors.NotSupportedf("output format %q", format)
	}
}
