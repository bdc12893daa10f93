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

	"github.com/cinerec/cinerec/base"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// mongoDatabase reads each table from a collection of the database named in the URI.
// Array fields are joined with the list separator of the table.
type mongoDatabase struct {
	client *mongo.Client
	dbName string
}

func openMongo(uri string) (*mongoDatabase, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if cs.Database == "" {
		return nil, errors.NotValidf("database name in %s", uri)
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, base.NewDataUnavailable(err, "connect to mongodb")
	}
	return &mongoDatabase{client: client, dbName: cs.Database}, nil
}

func (db *mongoDatabase) readTable(ctx context.Context, name string, listSep string) (*table, error) {
	d := db.client.Database(db.dbName)
	collections, err := d.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return nil, base.NewDataUnavailable(err, "read collection "+name)
	}
	if len(collections) == 0 {
		return nil, base.DataUnavailablef("collection %s does not exist", name)
	}
	cursor, err := d.Collection(name).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, base.NewDataUnavailable(err, "read collection "+name)
	}
	defer cursor.Close(ctx)
	var documents []bson.D
	if err = cursor.All(ctx, &documents); err != nil {
		return nil, errors.Trace(err)
	}
	// columns are the union of fields in order of first appearance
	var header []string
	for _, document := range documents {
		for _, element := range document {
			if element.Key != "_id" && !lo.Contains(header, element.Key) {
				header = append(header, element.Key)
			}
		}
	}
	t := newTable(name, header)
	for _, document := range documents {
		row := make([]string, len(header))
		for _, element := range document {
			if i, ok := t.columns[element.Key]; ok {
				row[i] = formatBSON(element.Value, listSep)
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func formatBSON(value any, listSep string) string {
	if array, ok := value.(bson.A); ok {
		return strings.Join(lo.Map(array, func(v any, _ int) string {
			return formatBSON(v, listSep)
		}), listSep)
	}
	switch v := value.(type) {
	case int32:
		return formatValue(int64(v))
	default:
		return formatValue(v)
	}
}

func (db *mongoDatabase) Close() error {
	return db.client.Disconnect(context.Background())
}
