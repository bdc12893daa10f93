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
	"context"
	"strings"

	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

const (
	CSVPrefix      = "csv://"
	SQLitePrefix   = "sqlite://"
	MongoPrefix    = "mongodb://"
	MongoSrvPrefix = "mongodb+srv://"
)

// Tables names the three source tables. For a CSV data store they are file names without
// the .csv extension, for SQLite table names and for MongoDB collection names.
type Tables struct {
	Catalog string
	Ratings string
	Movies  string
}

// Database loads the source tables of the recommender.
type Database interface {
	// LoadCatalog loads the movie metadata table in its stored order.
	LoadCatalog(ctx context.Context) (*dataset.Catalog, error)
	// LoadRatings loads the rating table.
	LoadRatings(ctx context.Context) ([]dataset.Rating, error)
	// LoadMovies loads the movie reference table.
	LoadMovies(ctx context.Context) (*dataset.MovieTable, error)
	Close() error
}

// tableReader reads a whole source table into memory.
type tableReader interface {
	readTable(ctx context.Context, name string, listSep string) (*table, error)
	Close() error
}

// Open connects to a data store. A path without a scheme is a directory of CSV files.
func Open(dataStore string, tables Tables) (Database, error) {
	var (
		reader tableReader
		err    error
	)
	switch {
	case strings.HasPrefix(dataStore, SQLitePrefix):
		reader, err = openSQLite(dataStore[len(SQLitePrefix):])
	case strings.HasPrefix(dataStore, MongoPrefix) || strings.HasPrefix(dataStore, MongoSrvPrefix):
		reader, err = openMongo(dataStore)
	case strings.HasPrefix(dataStore, CSVPrefix):
		reader, err = openCSV(dataStore[len(CSVPrefix):])
	case strings.Contains(dataStore, "://"):
		return nil, errors.NotSupportedf("data store %s", log.RedactURI(dataStore))
	default:
		reader, err = openCSV(dataStore)
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("open data store", zap.String("data_store", log.RedactURI(dataStore)))
	return &database{reader: reader, tables: tables}, nil
}

type database struct {
	reader tableReader
	tables Tables
}

func (d *database) LoadCatalog(ctx context.Context) (*dataset.Catalog, error) {
	t, err := d.reader.readTable(ctx, d.tables.Catalog, ",")
	if err != nil {
		return nil, errors.Trace(err)
	}
	movies, err := parseCatalog(t)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load movie metadata", zap.String("table", d.tables.Catalog), zap.Int("n_movies", len(movies)))
	return dataset.NewCatalog(movies), nil
}

func (d *database) LoadRatings(ctx context.Context) ([]dataset.Rating, error) {
	t, err := d.reader.readTable(ctx, d.tables.Ratings, ",")
	if err != nil {
		return nil, errors.Trace(err)
	}
	ratings, err := parseRatings(t)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load ratings", zap.String("table", d.tables.Ratings), zap.Int("n_ratings", len(ratings)))
	return ratings, nil
}

func (d *database) LoadMovies(ctx context.Context) (*dataset.MovieTable, error) {
	t, err := d.reader.readTable(ctx, d.tables.Movies, "|")
	if err != nil {
		return nil, errors.Trace(err)
	}
	movies, err := parseMovies(t)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load movie references", zap.String("table", d.tables.Movies), zap.Int("n_movies", len(movies)))
	return dataset.NewMovieTable(movies), nil
}

func (d *database) Close() error {
	return d.reader.Close()
}
