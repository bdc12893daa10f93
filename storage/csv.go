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
	"os"
	"path/filepath"

	"github.com/cinerec/cinerec/base"
	"github.com/juju/errors"
)

// csvDirectory reads each table from <dir>/<table>.csv. The first record is the header.
type csvDirectory struct {
	dir string
}

func openCSV(dir string) (*csvDirectory, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, base.NewDataUnavailable(err, "open csv data store")
	}
	if !info.IsDir() {
		return nil, base.DataUnavailablef("csv data store %s is not a directory", dir)
	}
	return &csvDirectory{dir: dir}, nil
}

func (d *csvDirectory) readTable(ctx context.Context, name string, _ string) (*table, error) {
	path := filepath.Join(d.dir, name+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, base.NewDataUnavailable(err, "read table "+name)
	}
	defer file.Close()
	var t *table
	err = base.ReadLines(file, ',', func(i int, fields []string) bool {
		if i == 0 {
			t = newTable(name, fields)
			return true
		}
		if len(fields) == 1 && fields[0] == "" {
			// blank line
			return true
		}
		t.rows = append(t.rows, fields)
		return ctx.Err() == nil
	})
	if errors.Is(err, errors.NotValid) {
		return nil, errors.Annotatef(err, "table %s", name)
	} else if err != nil {
		return nil, base.NewDataUnavailable(err, "read table "+name)
	}
	if err = ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	if t == nil {
		return nil, errors.NotValidf("table %s: missing header", name)
	}
	return t, nil
}

func (d *csvDirectory) Close() error {
	return nil
}
