// Package ui prints the console banner, fetch progress and the run summary
// of the reflectsonar CLI. Everything goes to the writer it is given,
// normally stderr, so stdout stays free for machine-readable output.
package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/reflectsonar/reflectsonar/pkg/defaults"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses most output)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

const bannerArt = `
           __ _           _
 _ __ ___ / _| | ___  ___| |_ ___  ___  _ __   __ _ _ __
| '__/ _ \ |_| |/ _ \/ __| __/ __|/ _ \| '_ \ / _' | '__|
| | |  __/  _| |  __/ (__| |_\__ \ (_) | | | | (_| | |
|_|  \___|_| |_|\___|\___|\__|___/\___/|_| |_|\__,_|_|
`

const bannerSeparator = "________________________________________________________"

// PrintBanner prints the application banner with version info.
func PrintBanner(w io.Writer) {
	if IsSilent() {
		return
	}
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(w, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(w, "%36s\n\n", "v"+VersionStyle.Render(defaults.Version))
}

// Option is one line of the configuration banner.
type Option struct {
	Name  string
	Value string
}

// PrintConfig prints options in order, skipping empty values.
// Format:  :: Option           : Value
func PrintConfig(w io.Writer, options []Option) {
	if IsSilent() {
		return
	}
	for _, o := range options {
		if o.Value == "" {
			continue
		}
		fmt.Fprintf(w, " :: %s : %s\n", ConfigLabelStyle.Render(o.Name), ConfigValueStyle.Render(o.Value))
	}
	fmt.Fprintf(w, "%s\n\n", DividerStyle.Render(bannerSeparator))
}

// PrintSection prints a section header.
func PrintSection(w io.Writer, title string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(w, SectionStyle.Render("> "+title))
	fmt.Fprintln(w, DividerStyle.Render(strings.Repeat("-", len(bannerSeparator))))
}

// PrintSuccess prints a success message.
func PrintSuccess(w io.Writer, message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(w, PassStyle.Render("  [+] "+message))
}

// PrintError prints an error message. It is shown in silent mode too.
func PrintError(w io.Writer, message string) {
	fmt.Fprintln(w, FailStyle.Render("  [X] "+message))
}

// PrintWarning prints a warning message.
func PrintWarning(w io.Writer, message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(w, WarnStyle.Render("  [!] "+message))
}

// PrintInfo prints an info message.
func PrintInfo(w io.Writer, message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(w, "  %s %s\n", SpinnerStyle.Render("*"), message)
}
