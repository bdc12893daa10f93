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
	"testing"

	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func testRatings() []Rating {
	return []Rating{
		{UserId: 1, MovieId: 30, Rating: 4},
		{UserId: 1, MovieId: 10, Rating: 5},
		{UserId: 2, MovieId: 20, Rating: 3},
		{UserId: 2, MovieId: 30, Rating: 2},
		{UserId: 3, MovieId: 10, Rating: 1},
		{UserId: 3, MovieId: 40, Rating: 5},
		{UserId: 4, MovieId: 20, Rating: 4},
		{UserId: 4, MovieId: 50, Rating: 0.5},
	}
}

func TestNewRatingSet(t *testing.T) {
	set, err := NewRatingSet(testRatings())
	assert.NoError(t, err)
	assert.Equal(t, 8, set.Count())
	assert.Equal(t, 4, set.CountUsers())
	assert.Equal(t, 5, set.CountItems())
	assert.InDelta(t, 24.5/8, set.GlobalMean(), 1e-6)
	assert.Equal(t, []int64{10, 20, 30, 40, 50}, set.DistinctItems())
	assert.ElementsMatch(t, []int64{10, 30}, set.RatedBy(1).ToSlice())
	assert.Zero(t, set.RatedBy(99).Cardinality())
	assert.Equal(t, 1, set.CountOutOfRange(1, 5))
	assert.Equal(t, Rating{UserId: 2, MovieId: 20, Rating: 3}, set.GetRating(2))

	userIndex, itemIndex, rating := set.Get(0)
	assert.Equal(t, int32(0), userIndex)
	assert.Equal(t, int32(0), itemIndex)
	assert.Equal(t, float32(4), rating)
	assert.Equal(t, []int32{0, 1}, set.GetUserFeedback()[0])
	assert.Equal(t, []int32{0, 1}, set.GetItemFeedback()[0])
}

func TestNewRatingSetInvalid(t *testing.T) {
	_, err := NewRatingSet(nil)
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = NewRatingSet([]Rating{{UserId: 1, MovieId: 1, Rating: math32.NaN()}})
	assert.True(t, errors.Is(err, errors.NotValid))
	_, err = NewRatingSet([]Rating{{UserId: 1, MovieId: 1, Rating: math32.Inf(1)}})
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestRatingSet_Split(t *testing.T) {
	set, err := NewRatingSet(testRatings())
	assert.NoError(t, err)
	train, test := set.Split(0.25, 0)
	assert.Equal(t, 6, train.Count())
	assert.Equal(t, 2, test.Count())
	// dictionaries are shared
	assert.Equal(t, set.CountUsers(), train.CountUsers())
	assert.Equal(t, set.CountItems(), test.CountItems())
	// every rating lands in exactly one side
	seen := make(map[Rating]int)
	for i := 0; i < train.Count(); i++ {
		seen[train.GetRating(i)]++
	}
	for i := 0; i < test.Count(); i++ {
		seen[test.GetRating(i)]++
	}
	assert.Len(t, seen, 8)
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
	// deterministic
	train2, _ := set.Split(0.25, 0)
	for i := 0; i < train.Count(); i++ {
		assert.Equal(t, train.GetRating(i), train2.GetRating(i))
	}
}

func TestRatingSet_KFold(t *testing.T) {
	set, err := NewRatingSet(testRatings())
	assert.NoError(t, err)
	trainSets, testSets := set.KFold(4, 1)
	assert.Len(t, trainSets, 4)
	held := make(map[Rating]int)
	for i := range testSets {
		assert.Equal(t, 2, testSets[i].Count())
		assert.Equal(t, 6, trainSets[i].Count())
		for j := 0; j < testSets[i].Count(); j++ {
			held[testSets[i].GetRating(j)]++
		}
	}
	assert.Len(t, held, 8)
}

func TestMovieTable(t *testing.T) {
	table := NewMovieTable([]MovieInfo{
		{MovieId: 1, Title: "Toy Story (1995)", Genres: []string{"Animation", "Children"}},
		{MovieId: 1, Title: "Duplicate"},
		{MovieId: 2, Title: "Jumanji (1995)"},
	})
	assert.Equal(t, 2, table.Count())
	movie, ok := table.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "Toy Story (1995)", movie.Title)
	_, ok = table.Get(3)
	assert.False(t, ok)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Action", "Science Fiction"}, SplitList("Action, Science Fiction", ","))
	assert.Equal(t, []string{"Comedy", "Drama"}, SplitList("Comedy|Drama|", "|"))
	assert.Nil(t, SplitList("  ", ","))
}
