package sonar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/httpclient"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{
		BaseURL:       srv.URL,
		Auth:          httpclient.Auth{Token: "squ_test"},
		Retries:       2,
		RetryDelay:    time.Millisecond,
		RetryMaxDelay: 5 * time.Millisecond,
		Logger:        quietLogger(),
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func TestNewClientBaseURL(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "sonar.example.com", "ftp://sonar", "http://"} {
		_, err := NewClient(Options{BaseURL: bad})
		assert.ErrorIs(t, err, ErrBaseURL, bad)
	}

	c, err := NewClient(Options{BaseURL: "https://example.com/sonar/"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/sonar", c.BaseURL())
	assert.Equal(t, "https://example.com/sonar/api/issues/search?p=2", c.endpointURL(EndpointIssues, map[string][]string{"p": {"2"}}))
}

func TestComponentSendsTokenAsBasicUser(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "squ_test" || pass != "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/"+EndpointComponent, r.URL.Path)
		assert.Equal(t, "demo", r.URL.Query().Get("component"))
		assert.Contains(t, r.Header.Get("User-Agent"), "reflectsonar/")
		writeJSON(w, `{"component":{"key":"demo","name":"Demo","qualifier":"TRK","analysisDate":"2024-05-01T10:20:30+0200","revision":"abc123"}}`)
	}))

	p, err := c.Component(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "Demo", p.Name)
	assert.Equal(t, "abc123", p.Revision)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 20, 30, 0, time.UTC), p.AnalysisDate.UTC())
}

// pagedIssues serves total issues in pages of per items, regardless of ps.
func pagedIssues(t *testing.T, total, per int, calls *atomic.Int32, legacyTotal bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "500", r.URL.Query().Get("ps"))
		p, _ := strconv.Atoi(r.URL.Query().Get("p"))
		start := (p - 1) * per
		var items []string
		for i := start; i < min(start+per, total); i++ {
			items = append(items, fmt.Sprintf(`{"key":"I%d","component":"demo:f%d.go","severity":"MAJOR","type":"BUG","line":%d}`, i, i, i+1))
		}
		if legacyTotal {
			writeJSON(w, fmt.Sprintf(`{"total":%d,"p":%d,"issues":[%s]}`, total, p, strings.Join(items, ",")))
			return
		}
		writeJSON(w, fmt.Sprintf(`{"paging":{"pageIndex":%d,"pageSize":500,"total":%d},"issues":[%s]}`, p, total, strings.Join(items, ",")))
	}
}

func TestIssuesPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		total    int
		per      int
		maxPages int
		legacy   bool
		want     int
		calls    int32
	}{
		{"single page", 2, 5, 0, false, 2, 1},
		{"stops at total", 5, 2, 0, false, 5, 3},
		{"legacy total field", 5, 2, 0, true, 5, 3},
		{"page cap", 100, 1, 3, false, 3, 3},
		{"empty", 0, 5, 0, false, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var calls atomic.Int32
			c := newTestClient(t, pagedIssues(t, tt.total, tt.per, &calls, tt.legacy))
			issues, err := c.Issues(context.Background(), "demo", tt.maxPages)
			require.NoError(t, err)
			assert.Len(t, issues, tt.want)
			assert.Equal(t, tt.calls, calls.Load())
			for i, is := range issues {
				assert.Equal(t, fmt.Sprintf("I%d", i), is.Key, "server order kept")
			}
		})
	}
}

func TestIssuesStopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("p") == "1" {
			writeJSON(w, `{"paging":{"total":50},"issues":[{"key":"A","component":"demo:a.go"}]}`)
			return
		}
		writeJSON(w, `{"paging":{"total":50},"issues":[]}`)
	}))

	issues, err := c.Issues(context.Background(), "demo", 0)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestIssuesDecodesBothRepresentations(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"paging":{"total":1},"issues":[{
			"key":"K","rule":"go:S1","component":"demo:a.go","line":4,"message":"m",
			"severity":"MAJOR","type":"CODE_SMELL","tags":["cwe"],
			"creationDate":"2024-01-02T03:04:05+0000",
			"impacts":[{"softwareQuality":"SECURITY","severity":"HIGH"}]}]}`)
	}))

	issues, err := c.Issues(context.Background(), "demo", 0)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	is := issues[0]
	assert.Equal(t, finding.Major, is.Severity)
	assert.Equal(t, []finding.Impact{{Quality: finding.QualitySecurity, Severity: finding.High}}, is.Impacts)
	assert.Equal(t, []string{"cwe"}, is.Tags)
	assert.Equal(t, 2024, is.Created.Year())
}

func TestHotspots(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "demo", r.URL.Query().Get("projectKey"))
		writeJSON(w, `{"paging":{"pageIndex":1,"pageSize":500,"total":1},"hotspots":[
			{"key":"H1","component":"demo:x.go","securityCategory":"sql-injection","vulnerabilityProbability":"HIGH","status":"TO_REVIEW","line":7,"message":"check","ruleKey":"go:S2077"}]}`)
	}))

	hs, err := c.Hotspots(context.Background(), "demo", 0)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, finding.High, hs[0].Probability)
	assert.Equal(t, "go:S2077", hs[0].Rule)
	assert.Equal(t, "sql-injection", hs[0].Category)
}

func TestMeasures(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "coverage,lines", r.URL.Query().Get("metricKeys"))
		writeJSON(w, `{"component":{"key":"demo","measures":[
			{"metric":"coverage","value":"81.5"},
			{"metric":"lines","period":{"value":"120"}}]}}`)
	}))

	ms, err := c.Measures(context.Background(), "demo", []string{"coverage", "lines"})
	require.NoError(t, err)
	assert.InDelta(t, 81.5, ms.Float("coverage", 0), 1e-9)
	assert.Equal(t, "120", ms.Value("lines"))
}

func TestModeSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   scheme.Signal
	}{
		{"settings list mqr", 200, `{"settings":[{"key":"sonar.multi-quality-mode.enabled","value":"true","inherited":true}]}`, scheme.SignalMQR},
		{"settings list standard", 200, `{"settings":[{"key":"sonar.multi-quality-mode.enabled","value":"false"}]}`, scheme.SignalStandard},
		{"flat shape", 200, `{"sonar.multi-quality-mode.enabled":{"value":"true"}}`, scheme.SignalMQR},
		{"boolean value", 200, `{"settings":[{"key":"sonar.multi-quality-mode.enabled","value":false}]}`, scheme.SignalStandard},
		{"key missing", 200, `{"settings":[]}`, scheme.SignalAbsent},
		{"unknown setting", 404, `{"errors":[{"msg":"unknown key"}]}`, scheme.SignalAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, scheme.SettingKey, r.URL.Query().Get("keys"))
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			got, err := c.ModeSignal(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSource(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "demo:a.go", q.Get("key"))
		assert.Equal(t, "1", q.Get("from"), "clamped to the first line")
		assert.Equal(t, "5", q.Get("to"))
		writeJSON(w, `{"sources":[
			[1,"<span class=\"k\">package</span> main"],
			[2,""],
			[3,"x := a &lt; b"]]}`)
	}))

	ex, err := c.Source(context.Background(), "demo:a.go", 2, 3)
	require.NoError(t, err)
	require.NotNil(t, ex)
	assert.Equal(t, 1, ex.StartLine)
	assert.Equal(t, 2, ex.Focus)
	assert.Equal(t, "package main\n\nx := a < b", ex.Text)

	lines := ex.Lines()
	require.Len(t, lines, 3)
	assert.True(t, lines[1].Focus)

	none, err := c.Source(context.Background(), "demo:a.go", 0, 3)
	require.NoError(t, err)
	assert.Nil(t, none, "file-level findings have no excerpt")
}

func TestSourceEmptyAndMalformed(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") == "empty" {
			writeJSON(w, `{"sources":[]}`)
			return
		}
		writeJSON(w, `{"sources":[["one","code"]]}`)
	}))

	ex, err := c.Source(context.Background(), "empty", 10, 3)
	require.NoError(t, err)
	assert.Nil(t, ex)

	_, err = c.Source(context.Background(), "bad", 10, 3)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestRule(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("key") {
		case "go:S1":
			writeJSON(w, `{"rule":{"key":"go:S1","name":"Sections","langName":"Go","type":"BUG",
				"descriptionSections":[{"key":"root_cause","content":"<p>why</p>"},{"key":"how_to_fix","content":"<p>fix</p>"}]}}`)
		default:
			writeJSON(w, `{"rule":{"key":"go:S2","name":"Legacy","htmlDesc":"<p>old</p>"}}`)
		}
	}))

	r, err := c.Rule(context.Background(), "go:S1")
	require.NoError(t, err)
	assert.Equal(t, "Sections", r.Name)
	assert.Equal(t, "Go", r.Language)
	require.Len(t, r.Sections, 2)
	assert.Equal(t, "How To Fix", r.Sections[1].Title())

	r, err = c.Rule(context.Background(), "go:S2")
	require.NoError(t, err)
	assert.Equal(t, []finding.RuleSection{{Content: "<p>old</p>"}}, r.Sections)
}

func TestQualityGate(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "demo", r.URL.Query().Get("projectKey"))
		writeJSON(w, `{"projectStatus":{"status":"ERROR","conditions":[
			{"status":"ERROR","metricKey":"new_coverage","comparator":"LT","errorThreshold":"80","actualValue":"41.2"}]}}`)
	}))

	g, err := c.QualityGate(context.Background(), "demo")
	require.NoError(t, err)
	assert.False(t, g.Passed())
	require.Len(t, g.Conditions, 1)
	assert.Equal(t, finding.Condition{Metric: "new_coverage", Status: "ERROR", Actual: "41.2", Threshold: "80"}, g.Conditions[0])
}

func TestStatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		sentinel error
		calls    int32
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized, 1},
		{"forbidden", http.StatusForbidden, ErrUnauthorized, 1},
		{"not found", http.StatusNotFound, ErrNotFound, 1},
		{"bad request", http.StatusBadRequest, ErrRejected, 1},
		{"server error retried", http.StatusBadGateway, ErrServer, 3},
		{"rate limited retried", http.StatusTooManyRequests, ErrRateLimited, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var calls atomic.Int32
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"errors":[{"msg":"Component key 'demo' not found"}]}`)
			}))

			_, err := c.Component(context.Background(), "demo")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.calls, calls.Load())

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Code)
			assert.Equal(t, EndpointComponent, se.Endpoint)
			assert.Contains(t, err.Error(), "Component key 'demo' not found")
		})
	}
}

func TestRetryRecovers(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			writeJSON(w, `{"component":{"key":"demo","name":"Demo"}}`)
		}
	}))

	p, err := c.Component(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "Demo", p.Name)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1, c.Limiter().Stats().Throttles)
}

func TestMalformedResponseNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, `{"component":`)
	}))

	_, err := c.Component(context.Background(), "demo")
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestContextCancellation(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{}`)
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Component(ctx, "demo")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"0", 0},
		{"-1", 0},
		{"soon", 0},
		{now.Add(10 * time.Second).Format(http.TimeFormat), 10 * time.Second},
		{now.Add(-10 * time.Second).Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, retryAfter(tt.in, now), tt.in)
	}
}

// fakeServer is a small in-memory SonarQube.
type fakeServer struct {
	mu   sync.Mutex
	hits map[string]int

	failHotspots bool
	failSource   string // component whose source fails
	failRule     string
	orphanIssue  bool // add a fourth issue with a line but no component
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[strings.TrimPrefix(r.URL.Path, "/")]++
	f.mu.Unlock()

	q := r.URL.Query()
	switch strings.TrimPrefix(r.URL.Path, "/") {
	case EndpointComponent:
		writeJSON(w, `{"component":{"key":"demo","name":"Demo"}}`)
	case EndpointSettings:
		writeJSON(w, `{"settings":[{"key":"sonar.multi-quality-mode.enabled","value":"true"}]}`)
	case EndpointIssues:
		if f.orphanIssue {
			writeJSON(w, `{"paging":{"total":2},"issues":[
			{"key":"A","rule":"go:S1","component":"demo:a.go","line":3,"impacts":[{"softwareQuality":"SECURITY","severity":"HIGH"}]},
			{"key":"D","rule":"go:S1","line":4,"impacts":[{"softwareQuality":"SECURITY","severity":"LOW"}]}]}`)
			return
		}
		writeJSON(w, `{"paging":{"total":3},"issues":[
			{"key":"A","rule":"go:S1","component":"demo:a.go","line":3,"impacts":[{"softwareQuality":"SECURITY","severity":"HIGH"}]},
			{"key":"B","rule":"go:S2","component":"demo:b.go","line":9,"impacts":[{"softwareQuality":"RELIABILITY","severity":"LOW"}]},
			{"key":"C","rule":"go:S1","component":"demo:c.go","impacts":[{"softwareQuality":"MAINTAINABILITY","severity":"MEDIUM"}]}]}`)
	case EndpointMeasures:
		writeJSON(w, `{"component":{"measures":[{"metric":"coverage","value":"50.0"}]}}`)
	case EndpointHotspots:
		if f.failHotspots {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeJSON(w, `{"paging":{"total":1},"hotspots":[{"key":"H","component":"demo:h.go","line":2,"vulnerabilityProbability":"LOW"}]}`)
	case EndpointQualityGate:
		writeJSON(w, `{"projectStatus":{"status":"OK"}}`)
	case EndpointSources:
		if q.Get("key") == f.failSource {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		line, _ := strconv.Atoi(q.Get("from"))
		writeJSON(w, fmt.Sprintf(`{"sources":[[%d,"line for %s"]]}`, line, q.Get("key")))
	case EndpointRule:
		if q.Get("key") == f.failRule {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, fmt.Sprintf(`{"rule":{"key":%q,"name":"Rule %s"}}`, q.Get("key"), q.Get("key")))
	default:
		http.NotFound(w, r)
	}
}

func TestFetch(t *testing.T) {
	t.Parallel()

	f := &fakeServer{hits: map[string]int{}, failSource: "demo:b.go", failRule: "go:S2", failHotspots: true}
	var logs bytes.Buffer
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{
		BaseURL:    srv.URL,
		Auth:       httpclient.Auth{Token: "t"},
		RetryDelay: time.Millisecond,
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
	})
	require.NoError(t, err)

	var stages []string
	data, err := c.Fetch(context.Background(), "demo", FetchOptions{
		Snippets:     true,
		ContextLines: 1,
		Rules:        true,
		Concurrency:  2,
		Progress:     func(s string) { stages = append(stages, s) },
	})
	require.NoError(t, err)

	assert.Equal(t, "Demo", data.Project.Name)
	assert.Equal(t, scheme.SignalMQR, data.Signal)
	require.Len(t, data.Issues, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{data.Issues[0].Key, data.Issues[1].Key, data.Issues[2].Key})

	require.NotNil(t, data.Issues[0].Excerpt)
	assert.Equal(t, "line for demo:a.go", data.Issues[0].Excerpt.Text)
	assert.Equal(t, 2, data.Issues[0].Excerpt.StartLine)
	assert.Nil(t, data.Issues[1].Excerpt, "failed excerpt degrades")
	assert.Nil(t, data.Issues[2].Excerpt, "no line, no excerpt")

	assert.Empty(t, data.Hotspots, "hotspot failure degrades")
	assert.Equal(t, "50.0", data.Measures.Value("coverage"))
	assert.True(t, data.QualityGate.Passed())

	require.Len(t, data.Rules, 1)
	assert.Equal(t, "go:S1", data.Rules[0].Key)
	assert.Equal(t, 2, f.hits[EndpointRule], "each referenced rule fetched once")

	assert.Equal(t, []string{"project", "settings", "issues", "measures", "hotspots", "quality gate", "excerpts", "rules"}, stages)
	assert.Contains(t, logs.String(), "hotspots unavailable")
	assert.Contains(t, logs.String(), "some excerpts could not be fetched")
	assert.Contains(t, logs.String(), "some rules could not be fetched")
	assert.False(t, data.FetchedAt.IsZero())
}

func TestFetchExcerptNeedsComponent(t *testing.T) {
	t.Parallel()

	f := &fakeServer{hits: map[string]int{}, orphanIssue: true}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL, Auth: httpclient.Auth{Token: "t"}, RetryDelay: time.Millisecond})
	require.NoError(t, err)

	data, err := c.Fetch(context.Background(), "demo", FetchOptions{Snippets: true, ContextLines: 1, Concurrency: 2})
	require.NoError(t, err)

	require.Len(t, data.Issues, 2)
	assert.NotNil(t, data.Issues[0].Excerpt)
	assert.Empty(t, data.Issues[1].Component)
	assert.Nil(t, data.Issues[1].Excerpt)
	assert.Equal(t, 2, f.hits[EndpointSources], "issue A and hotspot H only")
}

func TestFetchRequiresIssues(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/") {
		case EndpointComponent:
			writeJSON(w, `{"component":{"key":"demo"}}`)
		case EndpointSettings:
			writeJSON(w, `{"settings":[]}`)
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))

	_, err := c.Fetch(context.Background(), "demo", FetchOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "issues")
}

func TestFetchMissingProject(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.NotFoundHandler())
	_, err := c.Fetch(context.Background(), "nope", FetchOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "project nope")
}
