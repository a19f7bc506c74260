package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/reflectsonar/reflectsonar/pkg/config"
	"github.com/reflectsonar/reflectsonar/pkg/defaults"
	"github.com/reflectsonar/reflectsonar/pkg/httpclient"
	"github.com/reflectsonar/reflectsonar/pkg/metrics"
	"github.com/reflectsonar/reflectsonar/pkg/pdf"
	"github.com/reflectsonar/reflectsonar/pkg/report"
	"github.com/reflectsonar/reflectsonar/pkg/sonar"
	"github.com/reflectsonar/reflectsonar/pkg/tracing"
	"github.com/reflectsonar/reflectsonar/pkg/ui"
)

func configOptions(cfg *config.Config) []ui.Option {
	auth := "token"
	if cfg.Username != "" {
		auth = "user " + cfg.Username
	}
	rate := "unlimited"
	if cfg.RateLimit > 0 {
		rate = strconv.FormatFloat(cfg.RateLimit, 'g', -1, 64) + "/s"
	}
	return []ui.Option{
		{Name: "Server", Value: cfg.URL},
		{Name: "Project", Value: cfg.Project},
		{Name: "Auth", Value: auth},
		{Name: "Mode", Value: cfg.Mode},
		{Name: "Concurrency", Value: strconv.Itoa(cfg.Concurrency)},
		{Name: "Rate Limit", Value: rate},
		{Name: "Output", Value: cfg.OutputPath()},
		{Name: "JSON", Value: cfg.JSONOut},
		{Name: "Config", Value: cfg.ConfigFile},
	}
}

// session holds what one command run shares.
type session struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Recorder
	client  *sonar.Client
	stderr  io.Writer
}

func newSession(ctx context.Context, cfg *config.Config, stderr io.Writer, log *slog.Logger) (*session, tracing.Shutdown, error) {
	shutdown, err := tracing.Setup(ctx, tracing.Options{
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       cfg.OTLPInsecure,
		ServiceName:    defaults.ToolName,
		ServiceVersion: defaults.Version,
	})
	if err != nil {
		return nil, nil, err
	}

	rec, err := metrics.New()
	if err != nil {
		_ = shutdown(ctx)
		return nil, nil, err
	}

	client, err := sonar.NewClient(sonar.Options{
		BaseURL:       cfg.URL,
		Auth:          httpclient.Auth{Token: cfg.Token, Username: cfg.Username, Password: cfg.Password},
		Timeout:       cfg.Timeout,
		Insecure:      cfg.Insecure,
		RateLimit:     cfg.RateLimit,
		Retries:       cfg.Retries,
		RetryDelay:    defaults.RetryDelay,
		RetryMaxDelay: defaults.RetryMaxDelay,
		Logger:        log,
		Metrics:       rec,
		Tracer:        tracing.Tracer(nil),
	})
	if err != nil {
		_ = shutdown(ctx)
		return nil, nil, err
	}
	return &session{cfg: cfg, log: log, metrics: rec, client: client, stderr: stderr}, shutdown, nil
}

// flush ends trace export with its own deadline so spans survive a
// cancelled run.
func flush(shutdown tracing.Shutdown, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn("trace export failed", slog.String("error", err.Error()))
	}
}

func (s *session) fetch(ctx context.Context, opts sonar.FetchOptions) (*report.Data, error) {
	st := ui.NewStages(s.stderr)
	defer st.Stop()
	opts.Progress = st.Start
	return s.client.Fetch(ctx, s.cfg.Project, opts)
}

func runReport(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, log *slog.Logger) error {
	start := time.Now()

	// Compile the template first so a typo fails before any request.
	tmpl, err := report.LoadSummary(cfg.SummaryTemplate)
	if err != nil {
		return err
	}

	renderer, err := pdf.New(pdf.Config{PageSize: cfg.PageSize, Logo: cfg.Logo, Logger: log})
	if err != nil {
		return err
	}

	ui.PrintBanner(stderr)
	ui.PrintConfig(stderr, configOptions(cfg))

	s, shutdown, err := newSession(ctx, cfg, stderr, log)
	if err != nil {
		return err
	}
	defer flush(shutdown, log)

	data, err := s.fetch(ctx, sonar.FetchOptions{
		Snippets:     cfg.Snippets,
		ContextLines: cfg.ContextLines,
		Rules:        cfg.Rules,
		Concurrency:  cfg.Concurrency,
	})
	if err != nil {
		return err
	}

	doc, err := report.Generate(ctx, data, report.Options{
		Mode:          cfg.Mode,
		Uncategorized: cfg.Uncategorized,
		Rules:         cfg.Rules,
		Logger:        log,
		Metrics:       s.metrics,
		Tracer:        tracing.Tracer(nil),
	}, renderer)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	doc.Pages = renderer.Pages()

	path := cfg.OutputPath()
	if err := renderer.WriteFile(path); err != nil {
		return err
	}
	if cfg.JSONOut != "" {
		if err := report.WriteJSONFile(cfg.JSONOut, doc); err != nil {
			return err
		}
	}

	took := time.Since(start)
	s.metrics.Finished(doc.Pages, took, time.Now())
	if cfg.MetricsFile != "" {
		if err := s.metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
	}
	log.Info("report written",
		slog.String("path", path),
		slog.String("id", doc.ID),
		slog.Int("pages", doc.Pages),
		slog.Duration("took", took))

	if cfg.SummaryTemplate != "" {
		return report.RenderSummary(stdout, tmpl, doc)
	}
	ui.PrintSummary(stderr, doc, path, took)
	return nil
}
