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

package progress

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/atomic"
)

type spanKeyType string

var (
	spanKeyName = spanKeyType(uuid.New().String())
	barKeyName  = spanKeyType(uuid.New().String())
)

type Status string

const (
	StatusRunning  Status = "Running"
	StatusComplete Status = "Complete"
	StatusFailed   Status = "Failed"
)

// Tracer keeps the root spans of a process, e.g. the startup build of the recommender.
type Tracer struct {
	name  string
	spans sync.Map
}

func NewTracer(name string) *Tracer {
	return &Tracer{name: name}
}

// Start creates a root span.
func (t *Tracer) Start(ctx context.Context, name string, total int) (context.Context, *Span) {
	span := newSpan(ctx, name, total)
	t.spans.Store(name, span)
	return context.WithValue(ctx, spanKeyName, span), span
}

// List returns progress of every span, root spans first, ordered by start time.
func (t *Tracer) List() []Progress {
	var progress []Progress
	t.spans.Range(func(_, value any) bool {
		span := value.(*Span)
		progress = append(progress, span.List(t.name)...)
		return true
	})
	sort.SliceStable(progress, func(i, j int) bool {
		return progress[i].StartTime.Before(progress[j].StartTime)
	})
	return progress
}

type Span struct {
	name     string
	total    int
	status   *atomic.String
	count    *atomic.Int64
	err      *atomic.Error
	start    time.Time
	finish   *atomic.Time
	children sync.Map
	bar      *progressbar.ProgressBar
}

func newSpan(ctx context.Context, name string, total int) *Span {
	span := &Span{
		name:   name,
		total:  total,
		status: atomic.NewString(string(StatusRunning)),
		count:  atomic.NewInt64(0),
		err:    atomic.NewError(nil),
		start:  time.Now(),
		finish: atomic.NewTime(time.Time{}),
	}
	if ctx != nil {
		if w, ok := ctx.Value(barKeyName).(io.Writer); ok {
			span.bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(name),
				progressbar.OptionShowCount())
		}
	}
	return span
}

func (s *Span) Add(n int) {
	s.count.Add(int64(n))
	if s.bar != nil {
		_ = s.bar.Add(n)
	}
}

func (s *Span) End() {
	s.count.Store(int64(s.total))
	s.status.Store(string(StatusComplete))
	s.finish.Store(time.Now())
	if s.bar != nil {
		_ = s.bar.Finish()
	}
}

func (s *Span) Fail(err error) {
	s.err.Store(err)
	s.status.Store(string(StatusFailed))
	s.finish.Store(time.Now())
	if s.bar != nil {
		_ = s.bar.Exit()
	}
}

func (s *Span) Count() int {
	return int(s.count.Load())
}

func (s *Span) List(tracer string) []Progress {
	p := Progress{
		Tracer:     tracer,
		Name:       s.name,
		Status:     Status(s.status.Load()),
		Count:      s.Count(),
		Total:      s.total,
		StartTime:  s.start,
		FinishTime: s.finish.Load(),
	}
	if err := s.err.Load(); err != nil {
		p.Error = err.Error()
	}
	result := []Progress{p}
	s.children.Range(func(_, value any) bool {
		result = append(result, value.(*Span).List(tracer)...)
		return true
	})
	return result
}

// Start creates a child span of the span carried by ctx. Without a parent span the
// span is not tracked by any tracer.
func Start(ctx context.Context, name string, total int) (context.Context, *Span) {
	childSpan := newSpan(ctx, name, total)
	if ctx == nil {
		return nil, childSpan
	}
	span, ok := ctx.Value(spanKeyName).(*Span)
	if !ok {
		return ctx, childSpan
	}
	span.children.Store(name, childSpan)
	return context.WithValue(ctx, spanKeyName, childSpan), childSpan
}

// WithBar makes every span started from the returned context render a progress bar to w.
func WithBar(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, barKeyName, w)
}

type Progress struct {
	Tracer     string    `json:"tracer"`
	Name       string    `json:"name"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Count      int       `json:"count"`
	Total      int       `json:"total"`
	StartTime  time.Time `json:"start_time"`
	FinishTime time.Time `json:"finish_time"`
}
