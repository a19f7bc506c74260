package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
	"github.com/reflectsonar/reflectsonar/pkg/metrics"
	"github.com/reflectsonar/reflectsonar/pkg/outline"
	"github.com/reflectsonar/reflectsonar/pkg/scheme"
	"github.com/reflectsonar/reflectsonar/pkg/section"
	"github.com/reflectsonar/reflectsonar/pkg/tracing"
)

// ErrNoData is returned when Generate is called without a bundle.
var ErrNoData = errors.New("report: no data")

// Renderer draws a document. Generate calls its methods in order: Cover,
// then BeginSection/EndSection once per section, then Hotspots, then
// Rules when enabled, then Finish with the finalized outline.
type Renderer interface {
	Cover(c *Cover) error

	// BeginSection starts a section and returns the sink its rows are
	// streamed into. Empty sections are begun and ended too.
	BeginSection(s *section.Section) (section.Sink, error)
	EndSection(s *section.Section) error

	Hotspots(hs []finding.Hotspot) error
	Rules(rs []finding.Rule) error

	// Finish receives the outline entries in first-observed order.
	Finish(entries []outline.Entry) error
}

// Options configures Generate.
type Options struct {
	// Mode overrides the detected severity mode: auto, standard or mqr.
	Mode string

	// Uncategorized adds a trailing section for issues no rule places.
	Uncategorized bool

	// Rules appends the rules reference.
	Rules bool

	Logger  *slog.Logger
	Metrics *metrics.Recorder
	Tracer  trace.Tracer

	// Now stamps the document. Defaults to time.Now.
	Now func() time.Time

	// ID overrides the generated report id.
	ID string
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// Generate builds the report from data and draws it through r.
func Generate(ctx context.Context, data *Data, opts Options, r Renderer) (doc *Document, err error) {
	if data == nil {
		return nil, ErrNoData
	}
	log := orDefault(opts.Logger)
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.Tracer(nil)
	}
	ctx, span := tracer.Start(ctx, "report.Generate", trace.WithAttributes(tracing.Project(data.Project.Key)))
	defer func() { tracing.End(span, err) }()

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	mode := scheme.Resolve(opts.Mode, data.Signal, data.Issues)
	if data.Signal == scheme.SignalAbsent && isAuto(opts.Mode) {
		log.Debug("mode setting not exposed, inferred from issues", slog.String("mode", mode.String()))
	}
	span.SetAttributes(attribute.String("report.mode", mode.String()))

	issues, incomplete := normalize(data.Issues, mode, log)
	part := scheme.Partition(issues, mode, scheme.PartitionOptions{Uncategorized: opts.Uncategorized})
	if part.Unclassified > 0 {
		log.Warn("issues without a category",
			slog.Int("count", part.Unclassified),
			slog.Bool("shown", opts.Uncategorized))
	}
	opts.Metrics.Unclassified(part.Unclassified)

	sch := scheme.For(mode)
	sections := make([]*section.Section, 0, len(part.Order))
	for _, c := range part.Order {
		sections = append(sections, section.Build(c, part.Buckets[c], sch))
	}

	doc = &Document{
		ID:           id,
		Project:      data.Project,
		Mode:         mode,
		Generated:    now(),
		Issues:       len(issues),
		Classified:   part.Total - part.Unclassified,
		Unclassified: part.Unclassified,
		Incomplete:   incomplete,
		Hotspots:     len(data.Hotspots),
	}
	if data.QualityGate != nil {
		doc.QualityGate = data.QualityGate.Status
	}
	for _, s := range sections {
		doc.Sections = append(doc.Sections, summarize(s))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Cover(NewCover(id, data, mode, doc.Generated, doc.Sections)); err != nil {
		return nil, fmt.Errorf("cover: %w", err)
	}

	idx := outline.New()
	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := emit(s, r, idx); err != nil {
			return nil, err
		}
		if s.Unknown > 0 {
			log.Warn("issues with unrecognized severity",
				slog.String("category", s.Category.String()),
				slog.Int("count", s.Unknown),
				slog.String("mode", mode.String()))
		}
		for _, cnt := range s.Summary {
			opts.Metrics.Issues(s.Category.String(), cnt.Severity.String(), cnt.Count)
		}
		opts.Metrics.Unknown(s.Category.String(), s.Unknown)
	}

	if err := r.Hotspots(SortHotspots(data.Hotspots)); err != nil {
		return nil, fmt.Errorf("hotspots: %w", err)
	}
	if opts.Rules {
		rules := SortRules(data.Rules)
		doc.Rules = len(rules)
		if err := r.Rules(rules); err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
	}

	doc.Outline = idx.Finalize()
	if err := r.Finish(doc.Outline); err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}

	span.SetAttributes(
		attribute.Int("report.issues", doc.Issues),
		attribute.Int("report.outline_entries", len(doc.Outline)),
	)
	log.Debug("report generated",
		slog.String("id", id),
		slog.Int("sections", len(sections)),
		slog.Int("outline", len(doc.Outline)))
	return doc, nil
}

func isAuto(override string) bool {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "standard", "legacy", "mqr":
		return false
	}
	return true
}

func emit(s *section.Section, r Renderer, idx *outline.Indexer) error {
	sink, err := r.BeginSection(s)
	if err != nil {
		return fmt.Errorf("section %s: %w", s.Category, err)
	}
	if err := s.Emit(sink, idx); err != nil {
		return err
	}
	if err := r.EndSection(s); err != nil {
		return fmt.Errorf("section %s: %w", s.Category, err)
	}
	return nil
}

// normalize collapses each issue to the severity representation of mode.
// Records missing a key or component are kept and counted; the tables
// draw them with a placeholder location.
func normalize(in []finding.Issue, mode scheme.Mode, log *slog.Logger) ([]finding.Issue, int) {
	out := make([]finding.Issue, 0, len(in))
	incomplete := 0
	for i := range in {
		if err := in[i].Validate(); err != nil {
			incomplete++
			log.Warn("incomplete issue record", slog.Int("index", i), slog.String("error", err.Error()))
		}
		out = append(out, in[i].Normalize(mode == scheme.MQR))
	}
	return out, incomplete
}
