package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ASCIILogo is printed at the start of interactive runs
const ASCIILogo = `
    ┌─────────────────────────────────────────────────────┐
    │  ┌─┐┌─┐┬─┐┬ ┬┌┬┐  ┌┬┐┬ ┬┌┬┐┌─┐                       │
    │  ├┤ │ │├┬┘│ ││││   │││ ││││├─┘                       │
    │  └  └─┘┴└─└─┘┴ ┴  ─┴┘└─┘┴ ┴┴     discourse archiver   │
    └─────────────────────────────────────────────────────┘
`

// Output is where all terminal helpers write
var Output io.Writer = os.Stdout

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes when Output is a terminal
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled() {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

func colorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := Output.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// PrintLogo prints the ASCII logo with color
func PrintLogo() {
	fmt.Fprint(Output, Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints an info message in cyan
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(Output, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(Output, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Output, Magenta(msg))
}

// Stat is one labeled number of a summary
type Stat struct {
	Label string
	Value int
}

// PrintSummary prints a titled block of counters
func PrintSummary(title string, stats ...Stat) {
	fmt.Fprintln(Output, Magenta(title))
	for _, s := range stats {
		fmt.Fprintf(Output, "  %s %s\n", Dim(fmt.Sprintf("%-14s", s.Label)), Yellow(fmt.Sprint(s.Value)))
	}
}
