package sonar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reflectsonar/reflectsonar/pkg/defaults"
	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/markup"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
)

// API endpoints.
const (
	EndpointComponent   = "api/components/show"
	EndpointIssues      = "api/issues/search"
	EndpointMeasures    = "api/measures/component"
	EndpointSettings    = "api/settings/values"
	EndpointHotspots    = "api/hotspots/search"
	EndpointSources     = "api/sources/show"
	EndpointRule        = "api/rules/show"
	EndpointQualityGate = "api/qualitygates/project_status"
)

// SonarQube dates carry a numeric zone without a colon.
const dateLayout = "2006-01-02T15:04:05-0700"

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

type wireComponent struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Qualifier    string `json:"qualifier"`
	Visibility   string `json:"visibility"`
	AnalysisDate string `json:"analysisDate"`
	Revision     string `json:"revision"`
}

// Component returns the project component.
func (c *Client) Component(ctx context.Context, key string) (finding.Project, error) {
	var resp struct {
		Component wireComponent `json:"component"`
	}
	if err := c.get(ctx, EndpointComponent, url.Values{"component": {key}}, &resp); err != nil {
		return finding.Project{}, err
	}
	w := resp.Component
	p := finding.Project{
		Key:          w.Key,
		Name:         w.Name,
		Qualifier:    w.Qualifier,
		Visibility:   w.Visibility,
		AnalysisDate: parseTime(w.AnalysisDate),
		Revision:     w.Revision,
	}
	if p.Key == "" {
		p.Key = key
	}
	return p, nil
}

type paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

type wireIssue struct {
	Key          string            `json:"key"`
	Rule         string            `json:"rule"`
	Severity     finding.Severity  `json:"severity"`
	Component    string            `json:"component"`
	Project      string            `json:"project"`
	Line         int               `json:"line"`
	Status       string            `json:"status"`
	Message      string            `json:"message"`
	Effort       string            `json:"effort"`
	Author       string            `json:"author"`
	Tags         []string          `json:"tags"`
	CreationDate string            `json:"creationDate"`
	Type         finding.IssueType `json:"type"`
	Impacts      []finding.Impact  `json:"impacts"`
}

func (w *wireIssue) issue() finding.Issue {
	return finding.Issue{
		Key:       w.Key,
		Component: w.Component,
		Project:   w.Project,
		Line:      w.Line,
		Rule:      w.Rule,
		Message:   w.Message,
		Type:      w.Type,
		Tags:      w.Tags,
		Status:    w.Status,
		Effort:    w.Effort,
		Author:    w.Author,
		Created:   parseTime(w.CreationDate),
		Severity:  w.Severity,
		Impacts:   w.Impacts,
	}
}

// Issues returns the unresolved issues of the project in server order,
// reading at most maxPages pages (0 = default).
func (c *Client) Issues(ctx context.Context, projectKey string, maxPages int) ([]finding.Issue, error) {
	q := url.Values{
		"componentKeys": {projectKey},
		"resolved":      {"false"},
	}
	wire, err := paginate(ctx, c, EndpointIssues, q, maxPages, func(ctx context.Context, q url.Values) ([]wireIssue, int, error) {
		var page struct {
			Total  int         `json:"total"`
			Paging *paging     `json:"paging"`
			Issues []wireIssue `json:"issues"`
		}
		if err := c.get(ctx, EndpointIssues, q, &page); err != nil {
			return nil, 0, err
		}
		total := page.Total
		if page.Paging != nil {
			total = page.Paging.Total
		}
		return page.Issues, total, nil
	})
	if err != nil {
		return nil, err
	}
	issues := make([]finding.Issue, len(wire))
	for i := range wire {
		issues[i] = wire[i].issue()
	}
	return issues, nil
}

// Hotspots returns the security hotspots of the project.
func (c *Client) Hotspots(ctx context.Context, projectKey string, maxPages int) ([]finding.Hotspot, error) {
	q := url.Values{"projectKey": {projectKey}}
	return paginate(ctx, c, EndpointHotspots, q, maxPages, func(ctx context.Context, q url.Values) ([]finding.Hotspot, int, error) {
		var page struct {
			Paging   paging            `json:"paging"`
			Hotspots []finding.Hotspot `json:"hotspots"`
		}
		if err := c.get(ctx, EndpointHotspots, q, &page); err != nil {
			return nil, 0, err
		}
		return page.Hotspots, page.Paging.Total, nil
	})
}

// paginate walks p=1.. with ps=PageSize until the reported total is
// reached, a page comes back empty or maxPages pages were read.
func paginate[T any](ctx context.Context, c *Client, endpoint string, base url.Values, maxPages int,
	fetch func(ctx context.Context, q url.Values) ([]T, int, error)) ([]T, error) {
	if maxPages <= 0 {
		maxPages = defaults.MaxPages
	}
	var all []T
	for p := 1; ; p++ {
		q := url.Values{}
		for k, v := range base {
			q[k] = v
		}
		q.Set("ps", strconv.Itoa(defaults.PageSize))
		q.Set("p", strconv.Itoa(p))

		items, total, err := fetch(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%s page %d: %w", endpoint, p, err)
		}
		all = append(all, items...)

		switch {
		case len(items) == 0, len(all) >= total:
			return all, nil
		case p >= maxPages:
			c.log.Warn("page limit reached, results truncated",
				slog.String("endpoint", endpoint),
				slog.Int("fetched", len(all)),
				slog.Int("total", total))
			return all, nil
		}
	}
}

// Measures returns the requested project measures keyed by metric.
func (c *Client) Measures(ctx context.Context, projectKey string, metrics []string) (finding.Measures, error) {
	q := url.Values{
		"component":  {projectKey},
		"metricKeys": {strings.Join(metrics, ",")},
	}
	var resp struct {
		Component struct {
			Measures []struct {
				Metric string `json:"metric"`
				Value  string `json:"value"`
				Period *struct {
					Value string `json:"value"`
				} `json:"period"`
			} `json:"measures"`
		} `json:"component"`
	}
	if err := c.get(ctx, EndpointMeasures, q, &resp); err != nil {
		return nil, err
	}
	ms := make(finding.Measures, len(resp.Component.Measures))
	for _, m := range resp.Component.Measures {
		v := m.Value
		if v == "" && m.Period != nil {
			v = m.Period.Value
		}
		ms[m.Metric] = finding.Measure{Metric: m.Metric, Value: v}
	}
	return ms, nil
}

// ModeSignal reads the server's quality mode setting. A server that does
// not know the setting (404) yields SignalAbsent without error.
func (c *Client) ModeSignal(ctx context.Context) (scheme.Signal, error) {
	var resp map[string]any
	err := c.get(ctx, EndpointSettings, url.Values{"keys": {scheme.SettingKey}}, &resp)
	if errors.Is(err, ErrNotFound) {
		return scheme.SignalAbsent, nil
	}
	if err != nil {
		return scheme.SignalAbsent, err
	}
	value, ok := settingValue(resp, scheme.SettingKey)
	return scheme.ParseSignal(value, ok), nil
}

// settingValue finds key in either the documented
// {"settings":[{"key":..,"value":..}]} shape or the flat
// {"<key>":{"value":..}} shape.
func settingValue(resp map[string]any, key string) (string, bool) {
	if list, ok := resp["settings"].([]any); ok {
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok || m["key"] != key {
				continue
			}
			if v, ok := m["value"]; ok {
				return fmt.Sprint(v), true
			}
		}
	}
	if m, ok := resp[key].(map[string]any); ok {
		if v, ok := m["value"]; ok {
			return fmt.Sprint(v), true
		}
	}
	return "", false
}

// Source returns the lines around line of component, ±around lines, with
// syntax highlighting markup removed. It returns nil when the server has
// no source for the range.
func (c *Client) Source(ctx context.Context, component string, line, around int) (*finding.Excerpt, error) {
	if line <= 0 {
		return nil, nil
	}
	from := max(1, line-around)
	q := url.Values{
		"key":  {component},
		"from": {strconv.Itoa(from)},
		"to":   {strconv.Itoa(line + around)},
	}
	var resp struct {
		Sources [][]any `json:"sources"`
	}
	if err := c.get(ctx, EndpointSources, q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Sources) == 0 {
		return nil, nil
	}

	ex := &finding.Excerpt{Focus: line}
	var b strings.Builder
	for i, src := range resp.Sources {
		if len(src) < 2 {
			return nil, fmt.Errorf("%w: %s: source entry %d", ErrMalformed, EndpointSources, i)
		}
		num, ok := src[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s: line number %v", ErrMalformed, EndpointSources, src[0])
		}
		code, _ := src[1].(string)
		if i == 0 {
			ex.StartLine = int(num)
		} else {
			b.WriteByte('\n')
		}
		b.WriteString(markup.StripTags(code))
	}
	ex.Text = b.String()
	return ex, nil
}

// Rule returns a rule definition. Servers without description sections
// get a single section built from the legacy HTML description.
func (c *Client) Rule(ctx context.Context, key string) (finding.Rule, error) {
	var resp struct {
		Rule struct {
			finding.Rule `json:",inline"`
			HTMLDesc     string `json:"htmlDesc"`
		} `json:"rule"`
	}
	if err := c.get(ctx, EndpointRule, url.Values{"key": {key}}, &resp); err != nil {
		return finding.Rule{}, err
	}
	r := resp.Rule.Rule
	if r.Key == "" {
		r.Key = key
	}
	if len(r.Sections) == 0 && resp.Rule.HTMLDesc != "" {
		r.Sections = []finding.RuleSection{{Content: resp.Rule.HTMLDesc}}
	}
	return r, nil
}

// QualityGate returns the project's quality gate status.
func (c *Client) QualityGate(ctx context.Context, projectKey string) (*finding.QualityGate, error) {
	var resp struct {
		ProjectStatus finding.QualityGate `json:"projectStatus"`
	}
	if err := c.get(ctx, EndpointQualityGate, url.Values{"projectKey": {projectKey}}, &resp); err != nil {
		return nil, err
	}
	return &resp.ProjectStatus, nil
}
