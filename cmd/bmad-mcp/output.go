package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
)

var (
	headerColor = color.New(color.Bold, color.FgCyan)
	warnColor   = color.New(color.FgYellow)
	dimColor    = color.New(color.Faint)
)

// printActivation writes the prompt to out and its cost and warnings to
// errOut, so out can be piped as-is.
func printActivation(out, errOut io.Writer, act *agents.Activation) {
	fmt.Fprint(out, act.ActivationPrompt)
	dimColor.Fprintf(errOut, "~%d tokens\n", act.TokenEstimate)
	for _, w := range act.Warnings {
		warnColor.Fprintf(errOut, "warning: %s\n", w)
	}
}

// printAgents writes an aligned agent table with a colored header.
func printAgents(out io.Writer, list []agents.Summary) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "No agents found.")
		return err
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDISPLAY NAME\tCATEGORY\tCOMMANDS\tDEPS\tROLE")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			s.Name, s.DisplayName, s.Category, s.CommandCount, s.DependencyCount, s.Role)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	header, rows, _ := strings.Cut(buf.String(), "\n")
	if _, err := headerColor.Fprintln(out, header); err != nil {
		return err
	}
	_, err := io.WriteString(out, rows)
	return err
}
