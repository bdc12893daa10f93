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

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cinerec/cinerec/base"
	"github.com/cinerec/cinerec/base/progress"
	"github.com/cinerec/cinerec/config"
	"github.com/cinerec/cinerec/engine"
	"github.com/cinerec/cinerec/logics"
	"github.com/emicklei/go-restful/v3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func csvRow(fields ...string) string {
	return strings.Join(lo.Map(fields, func(field string, _ int) string { return base.Escape(field) }), ",")
}

func writeCSV(t *testing.T, dir, name string, rows ...string) {
	text := strings.Join(rows, "\n") + "\n"
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name+".csv"), []byte(text), 0644))
}

type ServerTestSuite struct {
	suite.Suite
	server    *RestServer
	container *restful.Container
}

func (suite *ServerTestSuite) SetupSuite() {
	dir := suite.T().TempDir()
	writeCSV(suite.T(), dir, "movies_data_tmdb",
		csvRow("id_tmdb", "title", "overview", "genres", "director", "cast", "keywords", "poster_path"),
		csvRow("1", "Alien", "Crew meets a creature in space.", "Horror, Science Fiction", "Ridley Scott",
			"Sigourney Weaver", "space, alien", "/alien.jpg"),
		csvRow("2", "Aliens", "Marines fight creatures in space.", "Action, Science Fiction", "James Cameron",
			"Sigourney Weaver", "space, alien", "/aliens.jpg"),
		csvRow("3", "Notting Hill", "A bookseller falls in love.", "Comedy, Romance", "Roger Michell",
			"Hugh Grant, Julia Roberts", "london, love", ""),
	)
	writeCSV(suite.T(), dir, "ratings",
		"userId,movieId,rating",
		"1,10,5", "1,20,1",
		"2,10,4", "2,30,5", "2,20,2",
		"3,30,4", "3,40,2",
	)
	writeCSV(suite.T(), dir, "movies",
		"movieId,title,genres",
		"10,Alien (1979),Horror|Sci-Fi",
		"20,Notting Hill (1999),Comedy|Romance",
		"30,Aliens (1986),Action|Sci-Fi",
		"40,Heat (1995),Action|Crime",
	)

	cfg := config.GetDefaultConfig()
	cfg.Database.DataStore = dir
	cfg.Content.NumJobs = 1
	cfg.Collaborative.NFactors = 2
	cfg.Collaborative.NEpochs = 5
	cfg.Collaborative.NumJobs = 1
	db, err := engine.OpenDatabase(cfg)
	suite.NoError(err)
	defer db.Close()
	tracer := progress.NewTracer("test")
	e, err := engine.Build(context.Background(), cfg, db)
	suite.NoError(err)

	suite.server = NewRestServer(e, tracer)
	suite.server.CreateWebService()
	suite.container = restful.NewContainer()
	suite.container.Add(suite.server.WebService)
}

func (suite *ServerTestSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Content-Type", restful.MIME_JSON)
	resp := httptest.NewRecorder()
	suite.container.ServeHTTP(resp, req)
	return resp
}

func (suite *ServerTestSuite) TestHealth() {
	resp := suite.get("/api/health")
	suite.Equal(http.StatusOK, resp.Code)
	suite.NotEmpty(resp.Header().Get("X-Request-ID"))
	var health Health
	suite.NoError(json.Unmarshal(resp.Body.Bytes(), &health))
	suite.True(health.Ready)
	suite.Equal(3, health.NumMovies)
	suite.Equal(4, health.NumRatedItems)
}

func (suite *ServerTestSuite) TestRequestId() {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	resp := httptest.NewRecorder()
	suite.container.ServeHTTP(resp, req)
	suite.Equal("abc", resp.Header().Get("X-Request-ID"))
}

func (suite *ServerTestSuite) TestMovies() {
	resp := suite.get("/api/movies?offset=1&n=5")
	suite.Equal(http.StatusOK, resp.Code)
	var movies MovieList
	suite.NoError(json.Unmarshal(resp.Body.Bytes(), &movies))
	suite.Equal(3, movies.Total)
	suite.Equal([]string{"Aliens", "Notting Hill"}, movies.Titles)

	resp = suite.get("/api/movies?n=abc")
	suite.Equal(http.StatusBadRequest, resp.Code)
}

func (suite *ServerTestSuite) TestSimilar() {
	resp := suite.get("/api/similar/Alien?n=1")
	suite.Equal(http.StatusOK, resp.Code)
	var movies []logics.SimilarMovie
	suite.NoError(json.Unmarshal(resp.Body.Bytes(), &movies))
	suite.Len(movies, 1)
	suite.Equal("Aliens", movies[0].Title)

	resp = suite.get("/api/similar/" + url.PathEscape("Notting Hill"))
	suite.Equal(http.StatusOK, resp.Code)
	suite.NoError(json.Unmarshal(resp.Body.Bytes(), &movies))
	suite.Len(movies, 2)

	resp = suite.get("/api/similar/Missing")
	suite.Equal(http.StatusNotFound, resp.Code)
}

func (suite *ServerTestSuite) TestSimilarById() {
	resp := suite.get("/api/similar-by-id/2?n=1")
	suite.Equal(http.StatusOK, resp.Code)
	var movies []logics.SimilarMovie
	suite.NoError(json.Unmarshal(resp.Body.Bytes(), &movies))
	suite.Len(movies, 1)
	suite.Equal("Alien", movies[0].Title)

	resp = suite.get("/api/similar-by-id/99")
	suite.Equal(http.StatusNotFound, resp.Code)
}

func (suite *ServerTestSuite) TestRecommend() {
	resp := suite.get("/api/recommend/1")
	suite.Equal(http.StatusOK, resp.Code)
	var recommendations []logics.Recommendation
	suite.NoError(json.Unmarshal(resp.Body.Bytes(), &recommendations))
	ids := lo.Map(recommendations, func(r logics.Recommendation, _ int) int64 { return r.MovieId })
	suite.ElementsMatch([]int64{30, 40}, ids)

	resp = suite.get("/api/recommend/abc")
	suite.Equal(http.StatusBadRequest, resp.Code)
	resp = suite.get("/api/recommend/1?n=-1")
	suite.Equal(http.StatusBadRequest, resp.Code)
}

func (suite *ServerTestSuite) TestCache() {
	hits := testutil.ToFloat64(CacheHitsTotal)
	first := suite.get("/api/similar/Aliens?n=2")
	suite.Equal(http.StatusOK, first.Code)
	second := suite.get("/api/similar/Aliens?n=2")
	suite.Equal(http.StatusOK, second.Code)
	suite.JSONEq(first.Body.String(), second.Body.String())
	suite.Equal(hits+1, testutil.ToFloat64(CacheHitsTotal))
}

func (suite *ServerTestSuite) TestProgress() {
	resp := suite.get("/api/progress")
	suite.Equal(http.StatusOK, resp.Code)
}

func TestServer(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) TestRateLimit() {
	e := *suite.server.Engine
	cfg := *e.Config
	cfg.Server.RateLimit = 1
	e.Config = &cfg
	s := NewRestServer(&e, nil)
	s.CreateWebService()
	container := restful.NewContainer()
	container.Add(s.WebService)

	limited := testutil.ToFloat64(RateLimitedTotal)
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		container.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		codes = append(codes, resp.Code)
	}
	suite.Equal([]int{http.StatusOK, http.StatusTooManyRequests}, codes)
	suite.Equal(limited+1, testutil.ToFloat64(RateLimitedTotal))
}

func TestParseInt(t *testing.T) {
	req := restful.NewRequest(httptest.NewRequest(http.MethodGet, "/?a=3&b=x", nil))
	value, err := ParseInt(req, "a", 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, value)
	value, err = ParseInt(req, "c", 7)
	assert.NoError(t, err)
	assert.Equal(t, 7, value)
	_, err = ParseInt(req, "b", 1)
	assert.Error(t, err)
}
