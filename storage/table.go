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

package storage

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/cinerec/cinerec/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const noGenres = "(no genres listed)"

// table is a source table held in memory. Cells are kept as text and converted by the
// parsers below, so that every backend reports the same errors.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func newTable(name string, header []string) *table {
	t := &table{name: name, columns: make(map[string]int, len(header))}
	for i, column := range header {
		column = strings.TrimSpace(column)
		if _, exist := t.columns[column]; !exist {
			t.columns[column] = i
		}
	}
	return t
}

// column returns the position of the first present column among names, or -1.
func (t *table) column(names ...string) int {
	for _, name := range names {
		if i, ok := t.columns[name]; ok {
			return i
		}
	}
	return -1
}

func (t *table) require(names ...string) ([]int, error) {
	positions := make([]int, len(names))
	for i, name := range names {
		if positions[i] = t.column(name); positions[i] < 0 {
			return nil, errors.NotValidf("table %s: missing required column %s", t.name, name)
		}
	}
	return positions, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCatalog(t *table) ([]dataset.Movie, error) {
	required, err := t.require("title")
	if err != nil {
		return nil, errors.Trace(err)
	}
	var (
		title       = required[0]
		id          = t.column("id_tmdb", "id", "movieId")
		overview    = t.column("overview")
		genres      = t.column("genres")
		director    = t.column("director")
		cast        = t.column("cast")
		keywords    = t.column("keywords")
		releaseDate = t.column("release_date")
		popularity  = t.column("popularity")
		voteAverage = t.column("vote_average")
		voteCount   = t.column("vote_count")
		posterPath  = t.column("poster_path")
	)
	movies := make([]dataset.Movie, 0, len(t.rows))
	for line, row := range t.rows {
		movie := dataset.Movie{
			Id:          cell(row, id),
			Title:       cell(row, title),
			Overview:    cell(row, overview),
			Genres:      dataset.SplitList(cell(row, genres), ","),
			Director:    cell(row, director),
			Cast:        dataset.SplitList(cell(row, cast), ","),
			Keywords:    dataset.SplitList(cell(row, keywords), ","),
			ReleaseDate: normalizeDate(cell(row, releaseDate)),
			PosterPath:  cell(row, posterPath),
		}
		if movie.Id == "" {
			movie.Id = strconv.Itoa(line)
		}
		if movie.Popularity, err = parseOptionalFloat(t, row, popularity, line); err != nil {
			return nil, errors.Trace(err)
		}
		if movie.VoteAverage, err = parseOptionalFloat(t, row, voteAverage, line); err != nil {
			return nil, errors.Trace(err)
		}
		var count float64
		if count, err = parseOptionalFloat(t, row, voteCount, line); err != nil {
			return nil, errors.Trace(err)
		}
		movie.VoteCount = int(count)
		movies = append(movies, movie)
	}
	return movies, nil
}

// normalizeDate rewrites a recognized date as YYYY-MM-DD. Anything else is kept verbatim.
func normalizeDate(text string) string {
	if text == "" {
		return ""
	}
	date, err := dateparse.ParseAny(text)
	if err != nil {
		return text
	}
	return date.Format(time.DateOnly)
}

func parseOptionalFloat(t *table, row []string, column, line int) (float64, error) {
	text := cell(row, column)
	if text == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, errors.NotValidf("table %s: row %d: number %q", t.name, line+1, text)
	}
	return value, nil
}

func parseRatings(t *table) ([]dataset.Rating, error) {
	required, err := t.require("userId", "movieId", "rating")
	if err != nil {
		return nil, errors.Trace(err)
	}
	ratings := make([]dataset.Rating, 0, len(t.rows))
	for line, row := range t.rows {
		userId, err := strconv.ParseInt(cell(row, required[0]), 10, 64)
		if err != nil {
			return nil, errors.NotValidf("table %s: row %d: user id %q", t.name, line+1, cell(row, required[0]))
		}
		movieId, err := strconv.ParseInt(cell(row, required[1]), 10, 64)
		if err != nil {
			return nil, errors.NotValidf("table %s: row %d: movie id %q", t.name, line+1, cell(row, required[1]))
		}
		rating, err := strconv.ParseFloat(cell(row, required[2]), 32)
		if err != nil {
			return nil, errors.NotValidf("table %s: row %d: rating %q", t.name, line+1, cell(row, required[2]))
		}
		ratings = append(ratings, dataset.Rating{UserId: userId, MovieId: movieId, Rating: float32(rating)})
	}
	return ratings, nil
}

func parseMovies(t *table) ([]dataset.MovieInfo, error) {
	required, err := t.require("movieId", "title")
	if err != nil {
		return nil, errors.Trace(err)
	}
	genres := t.column("genres")
	movies := make([]dataset.MovieInfo, 0, len(t.rows))
	for line, row := range t.rows {
		movieId, err := strconv.ParseInt(cell(row, required[0]), 10, 64)
		if err != nil {
			return nil, errors.NotValidf("table %s: row %d: movie id %q", t.name, line+1, cell(row, required[0]))
		}
		movies = append(movies, dataset.MovieInfo{
			MovieId: movieId,
			Title:   cell(row, required[1]),
			Genres: lo.Filter(dataset.SplitList(cell(row, genres), "|"), func(g string, _ int) bool {
				return g != noGenres
			}),
		})
	}
	return movies, nil
}
