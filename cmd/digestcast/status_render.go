package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"digestcast/internal/deps"
	"digestcast/internal/preflight"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
	statusInfo
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusIndent = "  "

// checkLine is one labelled result in a check section.
type checkLine struct {
	label   string
	kind    statusKind
	message string
}

func dependencyLines(statuses []deps.Status) []checkLine {
	lines := make([]checkLine, 0, len(statuses))
	for _, status := range statuses {
		line := checkLine{label: status.Name, kind: statusError, message: status.Detail}
		switch {
		case status.Available:
			line.kind = statusOK
			line.message = "found at " + status.Command
		case status.Optional:
			line.kind = statusWarn
		}
		lines = append(lines, line)
	}
	return lines
}

func preflightLines(results []preflight.Result) []checkLine {
	lines := make([]checkLine, 0, len(results))
	for _, result := range results {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		lines = append(lines, checkLine{label: result.Name, kind: kind, message: result.Detail})
	}
	return lines
}

// renderCheckSection renders a titled block whose header counts the passing
// lines. Labels are padded to the longest label in the section.
func renderCheckSection(title string, lines []checkLine, colorize bool) []string {
	width, passed := 0, 0
	for _, line := range lines {
		width = max(width, len(line.label)+1)
		if line.kind == statusOK {
			passed++
		}
	}
	header := fmt.Sprintf("== %s (%d/%d ok) ==", strings.TrimSpace(title), passed, len(lines))
	out := []string{colorizeText(header, statusInfo, colorize)}
	for _, line := range lines {
		out = append(out, renderStatusLine(line, width, colorize))
	}
	return out
}

func renderStatusLine(line checkLine, width int, colorize bool) string {
	status := "[" + statusKindLabel(line.kind) + "]"
	if line.message != "" {
		status += " " + line.message
	}
	return colorizeText(fmt.Sprintf("%s%-*s %s", statusIndent, width, line.label+":", status), line.kind, colorize)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// colorizeText wraps value in the colour for kind when colorize is set.
func colorizeText(value string, kind statusKind, colorize bool) string {
	if !colorize {
		return value
	}
	var color string
	switch kind {
	case statusOK:
		color = ansiGreen
	case statusWarn:
		color = ansiYellow
	case statusError:
		color = ansiRed
	default:
		color = ansiBlue
	}
	return color + value + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
