// Command reflectsonar turns the analysis results of a SonarQube project
// into a PDF report.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/reflectsonar/reflectsonar/pkg/cli"
	"github.com/reflectsonar/reflectsonar/pkg/defaults"
	"github.com/reflectsonar/reflectsonar/pkg/ui"
)

func main() {
	ctx, cancel := cli.SignalContext(5 * time.Second)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	cancel()
	os.Exit(code)
}

func printUsage(w io.Writer) {
	ui.PrintBanner(w)
	fmt.Fprintln(w, ui.SectionStyle.Render("USAGE"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", ui.ConfigValueStyle.Render(defaults.ToolName+" [command] [flags] [project-key]"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.SectionStyle.Render("COMMANDS"))
	fmt.Fprintln(w)
	for _, c := range cli.Commands() {
		fmt.Fprintf(w, "  %s  %s\n", ui.StatValueStyle.Render(fmt.Sprintf("%-8s", c)), c.Description())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.SectionStyle.Render("EXAMPLES"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", ui.ConfigValueStyle.Render(defaults.ToolName+" -u https://sonar.example.com -t $SONAR_TOKEN -p my-project"))
	fmt.Fprintf(w, "  %s\n", ui.ConfigValueStyle.Render(defaults.ToolName+" detect -config reflectsonar.yaml my-project"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Run '%s report -h' for all flags.\n", defaults.ToolName)
}
