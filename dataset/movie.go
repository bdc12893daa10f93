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

package dataset

import (
	"strings"

	"github.com/samber/lo"
)

// Movie is a row of the movie metadata table. Any field except Title may be empty.
type Movie struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Director    string   `json:"director,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Popularity  float64  `json:"popularity,omitempty"`
	VoteAverage float64  `json:"vote_average,omitempty"`
	VoteCount   int      `json:"vote_count,omitempty"`
	PosterPath  string   `json:"poster_path,omitempty"`
}

// Catalog is the ordered movie metadata table. Row order defines the dense index used by
// the content similarity matrix.
type Catalog struct {
	movies []Movie
}

func NewCatalog(movies []Movie) *Catalog {
	return &Catalog{movies: movies}
}

func (c *Catalog) Count() int {
	return len(c.movies)
}

func (c *Catalog) Get(index int) Movie {
	return c.movies[index]
}

func (c *Catalog) GetMovies() []Movie {
	return c.movies
}

// MovieInfo is a row of the movie reference table used to present collaborative results.
type MovieInfo struct {
	MovieId int64    `json:"movie_id"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`
}

// MovieTable indexes movie reference rows by id. The first row of a repeated id wins.
type MovieTable struct {
	movies map[int64]MovieInfo
}

func NewMovieTable(movies []MovieInfo) *MovieTable {
	table := &MovieTable{movies: make(map[int64]MovieInfo, len(movies))}
	for _, movie := range movies {
		if _, exist := table.movies[movie.MovieId]; !exist {
			table.movies[movie.MovieId] = movie
		}
	}
	return table
}

func (t *MovieTable) Get(movieId int64) (MovieInfo, bool) {
	movie, ok := t.movies[movieId]
	return movie, ok
}

func (t *MovieTable) Count() int {
	return len(t.movies)
}

// SplitList splits a delimited cell such as "Action, Adventure" into trimmed, non-empty entries.
func SplitList(cell, sep string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	return lo.FilterMap(strings.Split(cell, sep), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
}
