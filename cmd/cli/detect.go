package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/reflectsonar/reflectsonar/pkg/config"
	"github.com/reflectsonar/reflectsonar/pkg/report"
	"github.com/reflectsonar/reflectsonar/pkg/sonar"
	"github.com/reflectsonar/reflectsonar/pkg/tracing"
)

// runDetect fetches the issues, resolves the severity mode and prints
// per-category counts without rendering anything.
func runDetect(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, log *slog.Logger) error {
	s, shutdown, err := newSession(ctx, cfg, stderr, log)
	if err != nil {
		return err
	}
	defer flush(shutdown, log)

	data, err := s.fetch(ctx, sonar.FetchOptions{Concurrency: cfg.Concurrency})
	if err != nil {
		return err
	}
	doc, err := report.Generate(ctx, data, report.Options{
		Mode:          cfg.Mode,
		Uncategorized: cfg.Uncategorized,
		Logger:        log,
		Tracer:        tracing.Tracer(nil),
	}, report.Discard{})
	if err != nil {
		return err
	}
	printDetect(stdout, data, doc)
	return nil
}

func printDetect(w io.Writer, data *report.Data, doc *report.Document) {
	fmt.Fprintf(w, "%-24s %s\n", "project", doc.Project.Key)
	fmt.Fprintf(w, "%-24s %s\n", "mode", doc.Mode)
	fmt.Fprintf(w, "%-24s %s\n", "signal", data.Signal)
	fmt.Fprintf(w, "%-24s %d\n", "issues", doc.Issues)
	for _, s := range doc.Sections {
		fmt.Fprintf(w, "%-24s %d\n", s.Category, s.Total)
		for _, c := range s.Counts {
			if c.Count > 0 {
				fmt.Fprintf(w, "  %-22s %d\n", c.Label, c.Count)
			}
		}
	}
	if doc.Unclassified > 0 {
		fmt.Fprintf(w, "%-24s %d\n", "unclassified", doc.Unclassified)
	}
	if doc.Incomplete > 0 {
		fmt.Fprintf(w, "%-24s %d\n", "incomplete", doc.Incomplete)
	}
}
