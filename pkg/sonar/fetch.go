package sonar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/reflectsonar/reflectsonar/pkg/defaults"
	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/report"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
	"github.com/reflectsonar/reflectsonar/pkg/tracing"
	"github.com/reflectsonar/reflectsonar/pkg/workerpool"
)

// FetchOptions selects what Fetch downloads besides the issue list.
type FetchOptions struct {
	// MaxPages caps paged endpoints (0 = default).
	MaxPages int

	// Snippets fetches source excerpts for issues and hotspots.
	Snippets bool

	// ContextLines is the number of lines around each finding.
	ContextLines int

	// Rules fetches the definition of every referenced rule.
	Rules bool

	// Concurrency bounds parallel excerpt and rule fetches.
	Concurrency int

	// Progress, if set, is told when each stage starts.
	Progress func(stage string)
}

// Fetch downloads everything a report needs for projectKey. The project
// and its issues are required. Measures, hotspots, the quality gate, the
// mode setting, excerpts and rules degrade to empty values with a warning.
func (c *Client) Fetch(ctx context.Context, projectKey string, opts FetchOptions) (data *report.Data, err error) {
	ctx, span := c.tracer.Start(ctx, "sonar.Fetch")
	span.SetAttributes(tracing.Project(projectKey))
	defer func() { tracing.End(span, err) }()

	if opts.Concurrency <= 0 {
		opts.Concurrency = defaults.Concurrency
	}
	if opts.ContextLines < 0 {
		opts.ContextLines = defaults.ContextLines
	}
	stage := func(name string) {
		c.log.Debug("fetching", slog.String("stage", name), slog.String("project", projectKey))
		if opts.Progress != nil {
			opts.Progress(name)
		}
	}

	data = &report.Data{}

	stage("project")
	if data.Project, err = c.Component(ctx, projectKey); err != nil {
		return nil, fmt.Errorf("project %s: %w", projectKey, err)
	}

	stage("settings")
	data.Signal, err = c.ModeSignal(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("mode setting unavailable, inferring from issues", slog.String("error", err.Error()))
	}
	if data.Signal == scheme.SignalAbsent {
		c.log.Debug("server did not report a quality mode")
	}

	stage("issues")
	if data.Issues, err = c.Issues(ctx, projectKey, opts.MaxPages); err != nil {
		return nil, fmt.Errorf("issues: %w", err)
	}

	stage("measures")
	if data.Measures, err = c.Measures(ctx, projectKey, report.MetricKeys()); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("measures unavailable", slog.String("error", err.Error()))
		data.Measures = finding.Measures{}
	}

	stage("hotspots")
	if data.Hotspots, err = c.Hotspots(ctx, projectKey, opts.MaxPages); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("hotspots unavailable", slog.String("error", err.Error()))
		data.Hotspots = nil
	}

	stage("quality gate")
	if data.QualityGate, err = c.QualityGate(ctx, projectKey); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("quality gate unavailable", slog.String("error", err.Error()))
		data.QualityGate = nil
	}

	if opts.Snippets {
		stage("excerpts")
		if err := c.attachExcerpts(ctx, data, opts); err != nil {
			return nil, err
		}
	}

	if opts.Rules {
		stage("rules")
		if data.Rules, err = c.fetchRules(ctx, data.RuleKeys(), opts.Concurrency); err != nil {
			return nil, err
		}
	}

	data.FetchedAt = time.Now()
	span.SetAttributes(
		attribute.Int("sonar.issues", len(data.Issues)),
		attribute.Int("sonar.hotspots", len(data.Hotspots)),
		attribute.String("sonar.signal", data.Signal.String()),
	)
	return data, nil
}

type excerptTarget struct {
	component string
	line      int
	issue     int // index into Data.Issues, or -1
	hotspot   int // index into Data.Hotspots, or -1
}

// attachExcerpts fetches source around every issue and hotspot with a
// component and a line. Failed fetches leave the excerpt empty.
func (c *Client) attachExcerpts(ctx context.Context, data *report.Data, opts FetchOptions) error {
	var targets []excerptTarget
	for i := range data.Issues {
		if data.Issues[i].Line > 0 && data.Issues[i].Component != "" {
			targets = append(targets, excerptTarget{component: data.Issues[i].Component, line: data.Issues[i].Line, issue: i, hotspot: -1})
		}
	}
	for i := range data.Hotspots {
		if data.Hotspots[i].Line > 0 && data.Hotspots[i].Component != "" {
			targets = append(targets, excerptTarget{component: data.Hotspots[i].Component, line: data.Hotspots[i].Line, issue: -1, hotspot: i})
		}
	}
	if len(targets) == 0 {
		return nil
	}

	excerpts, errs := workerpool.Map(ctx, opts.Concurrency, targets, func(ctx context.Context, _ int, t excerptTarget) (*finding.Excerpt, error) {
		return c.Source(ctx, t.component, t.line, opts.ContextLines)
	})
	if err := ctx.Err(); err != nil {
		return err
	}

	failed := 0
	for i, t := range targets {
		if errs[i] != nil {
			failed++
			c.log.Debug("excerpt unavailable",
				slog.String("component", t.component),
				slog.Int("line", t.line),
				slog.String("error", errs[i].Error()))
			continue
		}
		if t.issue >= 0 {
			data.Issues[t.issue].Excerpt = excerpts[i]
		} else {
			data.Hotspots[t.hotspot].Excerpt = excerpts[i]
		}
	}
	if failed > 0 {
		c.log.Warn("some excerpts could not be fetched", slog.Int("failed", failed), slog.Int("total", len(targets)))
	}
	return nil
}

// fetchRules returns the definitions of keys in key order, skipping
// those that could not be fetched.
func (c *Client) fetchRules(ctx context.Context, keys []string, workers int) ([]finding.Rule, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	rules, errs := workerpool.Map(ctx, workers, keys, func(ctx context.Context, _ int, key string) (finding.Rule, error) {
		return c.Rule(ctx, key)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]finding.Rule, 0, len(rules))
	failed := 0
	for i, r := range rules {
		if errs[i] != nil {
			failed++
			c.log.Debug("rule unavailable", slog.String("rule", keys[i]), slog.String("error", errs[i].Error()))
			continue
		}
		out = append(out, r)
	}
	if failed > 0 {
		c.log.Warn("some rules could not be fetched", slog.Int("failed", failed), slog.Int("total", len(keys)))
	}
	return out, nil
}
