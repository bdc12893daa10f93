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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "1999-03-30", normalizeDate("1999-03-30"))
	assert.Equal(t, "1994-06-23", normalizeDate("06/23/1994"))
	assert.Equal(t, "coming soon", normalizeDate("coming soon"))
	assert.Empty(t, normalizeDate(""))
}

func TestRequire(t *testing.T) {
	tbl := newTable("ratings", []string{"userId", "movieId"})
	_, err := tbl.require("userId", "rating")
	assert.ErrorContains(t, err, "rating")
	indices, err := tbl.require("movieId")
	assert.NoError(t, err)
	assert.Equal(t, []int{1}, indices)
}
