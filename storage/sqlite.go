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
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cinerec/cinerec/base"
	"github.com/juju/errors"
	_ "modernc.org/sqlite"
)

// sqliteDatabase reads tables from a SQLite file through the pure Go driver.
type sqliteDatabase struct {
	client *sql.DB
}

func openSQLite(path string) (*sqliteDatabase, error) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if _, err := os.Stat(path); err != nil {
		return nil, base.NewDataUnavailable(err, "open sqlite data store")
	}
	client, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &sqliteDatabase{client: client}, nil
}

func (db *sqliteDatabase) readTable(ctx context.Context, name string, _ string) (*table, error) {
	var found string
	err := db.client.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type IN ('table', 'view') AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, base.DataUnavailablef("table %s does not exist", name)
	} else if err != nil {
		return nil, base.NewDataUnavailable(err, "read table "+name)
	}
	rows, err := db.client.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, strings.ReplaceAll(name, `"`, `""`)))
	if err != nil {
		return nil, base.NewDataUnavailable(err, "read table "+name)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Trace(err)
	}
	t := newTable(name, columns)
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	for rows.Next() {
		if err = rows.Scan(pointers...); err != nil {
			return nil, errors.Trace(err)
		}
		row := make([]string, len(columns))
		for i, value := range values {
			row[i] = formatValue(value)
		}
		t.rows = append(t.rows, row)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return t, nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (db *sqliteDatabase) Close() error {
	return db.client.Close()
}
