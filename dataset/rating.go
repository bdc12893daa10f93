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
	"sort"

	"github.com/chewxy/math32"
	"github.com/cinerec/cinerec/base"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Rating is an explicit rating given by a user to a movie.
type Rating struct {
	UserId  int64   `json:"user_id"`
	MovieId int64   `json:"movie_id"`
	Rating  float32 `json:"rating"`
}

// RatingSet is an immutable, densely indexed rating table. Subsets produced by Split and
// KFold share the user and item dictionaries of their parent, so indices stay comparable.
type RatingSet struct {
	userDict     *IDDict
	itemDict     *IDDict
	users        []int32
	items        []int32
	ratings      []float32
	userFeedback [][]int32
	itemFeedback [][]int32
	globalMean   float32
}

// NewRatingSet indexes a rating table. An empty table or a non-finite rating is a data error.
func NewRatingSet(ratings []Rating) (*RatingSet, error) {
	if len(ratings) == 0 {
		return nil, errors.NotValidf("empty rating table")
	}
	userDict, itemDict := NewIDDict(), NewIDDict()
	users := make([]int32, len(ratings))
	items := make([]int32, len(ratings))
	values := make([]float32, len(ratings))
	for i, r := range ratings {
		if math32.IsNaN(r.Rating) || math32.IsInf(r.Rating, 0) {
			return nil, errors.NotValidf("rating %v of user %d on movie %d", r.Rating, r.UserId, r.MovieId)
		}
		users[i] = userDict.Add(r.UserId)
		items[i] = itemDict.Add(r.MovieId)
		values[i] = r.Rating
	}
	return newRatingSet(userDict, itemDict, users, items, values), nil
}

func newRatingSet(userDict, itemDict *IDDict, users, items []int32, ratings []float32) *RatingSet {
	set := &RatingSet{
		userDict:     userDict,
		itemDict:     itemDict,
		users:        users,
		items:        items,
		ratings:      ratings,
		userFeedback: make([][]int32, userDict.Count()),
		itemFeedback: make([][]int32, itemDict.Count()),
	}
	var sum float64
	for i := range ratings {
		set.userFeedback[users[i]] = append(set.userFeedback[users[i]], items[i])
		set.itemFeedback[items[i]] = append(set.itemFeedback[items[i]], users[i])
		sum += float64(ratings[i])
	}
	if len(ratings) > 0 {
		set.globalMean = float32(sum / float64(len(ratings)))
	}
	return set
}

func (s *RatingSet) subset(indices []int) *RatingSet {
	users := make([]int32, len(indices))
	items := make([]int32, len(indices))
	ratings := make([]float32, len(indices))
	for i, j := range indices {
		users[i], items[i], ratings[i] = s.users[j], s.items[j], s.ratings[j]
	}
	return newRatingSet(s.userDict, s.itemDict, users, items, ratings)
}

func (s *RatingSet) Count() int {
	return len(s.ratings)
}

func (s *RatingSet) CountUsers() int {
	return int(s.userDict.Count())
}

func (s *RatingSet) CountItems() int {
	return int(s.itemDict.Count())
}

// GlobalMean is the mean of all ratings in this set.
func (s *RatingSet) GlobalMean() float32 {
	return s.globalMean
}

func (s *RatingSet) GetUserDict() *IDDict {
	return s.userDict
}

func (s *RatingSet) GetItemDict() *IDDict {
	return s.itemDict
}

// Get returns the dense user index, dense item index and value of the i-th rating.
func (s *RatingSet) Get(i int) (int32, int32, float32) {
	return s.users[i], s.items[i], s.ratings[i]
}

// GetRating returns the i-th rating with its original identifiers.
func (s *RatingSet) GetRating(i int) Rating {
	userId, _ := s.userDict.Value(s.users[i])
	movieId, _ := s.itemDict.Value(s.items[i])
	return Rating{UserId: userId, MovieId: movieId, Rating: s.ratings[i]}
}

func (s *RatingSet) GetUserFeedback() [][]int32 {
	return s.userFeedback
}

func (s *RatingSet) GetItemFeedback() [][]int32 {
	return s.itemFeedback
}

// DistinctItems returns every movie id that has at least one rating in this set, ascending.
func (s *RatingSet) DistinctItems() []int64 {
	items := make([]int64, 0, len(s.itemFeedback))
	for index, feedback := range s.itemFeedback {
		if len(feedback) > 0 {
			id, _ := s.itemDict.Value(int32(index))
			items = append(items, id)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items
}

// RatedBy returns the movie ids rated by a user. Unknown users rated nothing.
func (s *RatingSet) RatedBy(userId int64) mapset.Set[int64] {
	rated := mapset.NewThreadUnsafeSet[int64]()
	userIndex := s.userDict.Id(userId)
	if userIndex < 0 {
		return rated
	}
	for _, itemIndex := range s.userFeedback[userIndex] {
		id, _ := s.itemDict.Value(itemIndex)
		rated.Add(id)
	}
	return rated
}

// CountOutOfRange counts ratings outside [low, high].
func (s *RatingSet) CountOutOfRange(low, high float32) int {
	return lo.CountBy(s.ratings, func(r float32) bool {
		return r < low || r > high
	})
}

// Split shuffles ratings with seed and holds out testRatio of them as the test set.
func (s *RatingSet) Split(testRatio float32, seed int64) (*RatingSet, *RatingSet) {
	perm := base.NewRandomGenerator(seed).Perm(s.Count())
	testSize := int(math32.Round(float32(s.Count()) * testRatio))
	testSize = min(max(testSize, 0), s.Count())
	return s.subset(perm[testSize:]), s.subset(perm[:testSize])
}

// KFold shuffles ratings with seed and splits them into k folds. The i-th test set is the
// i-th fold and the i-th train set is the rest.
func (s *RatingSet) KFold(k int, seed int64) ([]*RatingSet, []*RatingSet) {
	perm := base.NewRandomGenerator(seed).Perm(s.Count())
	trainSets := make([]*RatingSet, k)
	testSets := make([]*RatingSet, k)
	for i := 0; i < k; i++ {
		begin := i * s.Count() / k
		end := (i + 1) * s.Count() / k
		trainIndices := make([]int, 0, s.Count()-(end-begin))
		trainIndices = append(trainIndices, perm[:begin]...)
		trainIndices = append(trainIndices, perm[end:]...)
		trainSets[i] = s.subset(trainIndices)
		testSets[i] = s.subset(perm[begin:end])
	}
	return trainSets, testSets
}
