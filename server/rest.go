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
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/base/progress"
	"github.com/cinerec/cinerec/engine"
	"github.com/cinerec/cinerec/logics"
	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"github.com/juju/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RestServer implements a REST-ful API server over a built engine.
type RestServer struct {
	Engine     *engine.Engine
	Tracer     *progress.Tracer
	WebService *restful.WebService
	cache      *ttlcache.Cache[string, any]
	limiter    *ratelimit.Bucket
}

// NewRestServer creates a server. Responses are cached for the configured TTL since the
// engine never changes.
func NewRestServer(e *engine.Engine, tracer *progress.Tracer) *RestServer {
	s := &RestServer{
		Engine:     e,
		Tracer:     tracer,
		WebService: new(restful.WebService),
	}
	cfg := e.Config.Server
	if cfg.CacheTTL > 0 && cfg.CacheSize > 0 {
		s.cache = ttlcache.New(
			ttlcache.WithTTL[string, any](cfg.CacheTTL),
			ttlcache.WithCapacity[string, any](uint64(cfg.CacheSize)),
			ttlcache.WithDisableTouchOnHit[string, any]())
	}
	if cfg.RateLimit > 0 {
		s.limiter = ratelimit.NewBucketWithQuantum(time.Second, int64(cfg.RateLimit), int64(cfg.RateLimit))
	}
	return s
}

// Serve starts the REST-ful API server and blocks until ctx is cancelled.
func (s *RestServer) Serve(ctx context.Context) error {
	s.CreateWebService()
	container := restful.NewContainer()
	container.Add(s.WebService)
	container.Handle("/metrics", promhttp.Handler())
	if s.cache != nil {
		go s.cache.Start()
		defer s.cache.Stop()
	}

	cfg := s.Engine.Config.Server
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: container,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Logger().Error("failed to shutdown http server", zap.Error(err))
		}
	}()
	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Trace(err)
	}
	return nil
}

// LogFilter tags every request with an X-Request-ID and logs its outcome.
func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	requestId := req.HeaderParameter("X-Request-ID")
	if requestId == "" {
		requestId = uuid.New().String()
	}
	resp.Header().Set("X-Request-ID", requestId)

	start := time.Now()
	chain.ProcessFilter(req, resp)
	log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("response_time", time.Since(start)))
}

// RateLimitFilter rejects requests beyond the configured queries per second.
func (s *RestServer) RateLimitFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	if s.limiter != nil && s.limiter.TakeAvailable(1) == 0 {
		RateLimitedTotal.Inc()
		resp.Header().Set("Access-Control-Allow-Origin", "*")
		if err := resp.WriteErrorString(http.StatusTooManyRequests, "too many requests"); err != nil {
			log.ResponseLogger(resp).Error("failed to write error", zap.Error(err))
		}
		return
	}
	chain.ProcessFilter(req, resp)
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(LogFilter)
	ws.Filter(s.RateLimitFilter)

	ws.Route(ws.GET("/health").To(s.getHealth).
		Doc("Check whether the recommender is ready.").
		Writes(Health{}))
	ws.Route(ws.GET("/progress").To(s.getProgress).
		Doc("Get progress of the startup build.").
		Writes([]progress.Progress{}))
	ws.Route(ws.GET("/movies").To(s.getMovies).
		Doc("Get titles of the movie catalog.").
		Param(ws.QueryParameter("offset", "offset of the first returned title").DataType("int")).
		Param(ws.QueryParameter("n", "number of returned titles").DataType("int")).
		Writes(MovieList{}))
	ws.Route(ws.GET("/similar/{title:*}").To(s.getSimilar).
		Doc("Get movies similar to a movie by title.").
		Param(ws.PathParameter("title", "title of the movie").DataType("string")).
		Param(ws.QueryParameter("n", "number of returned movies").DataType("int")).
		Writes([]logics.SimilarMovie{}))
	ws.Route(ws.GET("/similar-by-id/{id}").To(s.getSimilarById).
		Doc("Get movies similar to a movie by identifier.").
		Param(ws.PathParameter("id", "identifier of the movie").DataType("string")).
		Param(ws.QueryParameter("n", "number of returned movies").DataType("int")).
		Writes([]logics.SimilarMovie{}))
	ws.Route(ws.GET("/recommend/{user-id}").To(s.getRecommend).
		Doc("Get recommended movies for a user.").
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("int")).
		Param(ws.QueryParameter("n", "number of returned movies").DataType("int")).
		Writes([]logics.Recommendation{}))
}

// ParseInt parses integers from the query parameter.
func ParseInt(request *restful.Request, name string, fallback int) (value int, err error) {
	valueString := request.QueryParameter(name)
	value, err = strconv.Atoi(valueString)
	if err != nil && valueString == "" {
		value = fallback
		err = nil
	}
	return
}

type Health struct {
	Ready         bool      `json:"ready"`
	BuildTime     time.Time `json:"build_time"`
	NumMovies     int       `json:"num_movies"`
	NumRatedItems int       `json:"num_rated_items"`
}

func (s *RestServer) getHealth(_ *restful.Request, response *restful.Response) {
	Ok(response, Health{
		Ready:         true,
		BuildTime:     s.Engine.BuildTime,
		NumMovies:     s.Engine.Content.Count(),
		NumRatedItems: s.Engine.Collaborative.CountItems(),
	})
}

func (s *RestServer) getProgress(_ *restful.Request, response *restful.Response) {
	if s.Tracer == nil {
		Ok(response, []progress.Progress{})
		return
	}
	Ok(response, s.Tracer.List())
}

type MovieList struct {
	Total  int      `json:"total"`
	Titles []string `json:"titles"`
}

func (s *RestServer) getMovies(request *restful.Request, response *restful.Response) {
	offset, err := ParseInt(request, "offset", 0)
	if err != nil {
		BadRequest(response, err)
		return
	}
	n, err := ParseInt(request, "n", 100)
	if err != nil {
		BadRequest(response, err)
		return
	}
	Ok(response, MovieList{
		Total:  s.Engine.Content.Count(),
		Titles: s.Engine.Content.Titles(offset, n),
	})
}

func (s *RestServer) getSimilar(request *restful.Request, response *restful.Response) {
	title := request.PathParameter("title")
	n, err := ParseInt(request, "n", s.Engine.Config.Content.NumSimilar)
	if err != nil {
		BadRequest(response, err)
		return
	}
	s.query(response, "similar", fmt.Sprintf("similar/%d/%s", n, title), func() (any, error) {
		return s.Engine.Content.SimilarTo(title, n)
	})
}

func (s *RestServer) getSimilarById(request *restful.Request, response *restful.Response) {
	id := request.PathParameter("id")
	n, err := ParseInt(request, "n", s.Engine.Config.Content.NumSimilar)
	if err != nil {
		BadRequest(response, err)
		return
	}
	s.query(response, "similar_by_id", fmt.Sprintf("similar-by-id/%d/%s", n, id), func() (any, error) {
		return s.Engine.Content.SimilarToId(id, n)
	})
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	userId, err := strconv.ParseInt(request.PathParameter("user-id"), 10, 64)
	if err != nil {
		BadRequest(response, err)
		return
	}
	n, err := ParseInt(request, "n", s.Engine.Config.Collaborative.NumRecommend)
	if err != nil {
		BadRequest(response, err)
		return
	}
	s.query(response, "recommend", fmt.Sprintf("recommend/%d/%d", n, userId), func() (any, error) {
		return s.Engine.Collaborative.RecommendForUser(userId, n)
	})
}

// query answers from the response cache or runs fn and caches its successful result.
func (s *RestServer) query(response *restful.Response, route, key string, fn func() (any, error)) {
	start := time.Now()
	if s.cache != nil {
		if item := s.cache.Get(key); item != nil {
			CacheHitsTotal.Inc()
			Ok(response, item.Value())
			return
		}
		CacheMissesTotal.Inc()
	}
	result, err := fn()
	QuerySecondsVec.WithLabelValues(route).Observe(time.Since(start).Seconds())
	if err != nil {
		QueryErrorsTotalVec.WithLabelValues(route).Inc()
		switch {
		case errors.Is(err, errors.NotFound):
			PageNotFound(response, err)
		case errors.Is(err, errors.NotValid):
			BadRequest(response, err)
		default:
			InternalServerError(response, err)
		}
		return
	}
	if s.cache != nil {
		s.cache.Set(key, result, ttlcache.DefaultTTL)
	}
	Ok(response, result)
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns a internal server error.
func InternalServerError(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.ResponseLogger(response).Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// PageNotFound returns a not found error.
func PageNotFound(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteError(http.StatusNotFound, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content any) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteAsJson(content); err != nil {
		log.ResponseLogger(response).Error("failed to write json", zap.Error(err))
	}
}
