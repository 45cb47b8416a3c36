package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"casegraph/domain/casenet"

	"github.com/fatih/color"
)

var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

var riskColors = map[casenet.RiskLevel]*color.Color{
	casenet.RiskCritical: color.New(color.FgHiRed, color.Bold),
	casenet.RiskHigh:     color.New(color.FgRed),
	casenet.RiskMedium:   color.New(color.FgYellow),
	casenet.RiskLow:      color.New(color.FgGreen),
}

func riskLabel(level casenet.RiskLevel) string {
	c, ok := riskColors[level]
	if !ok {
		return string(level)
	}
	return c.Sprint(strings.ToUpper(string(level)))
}

// table prints an aligned table. Cells may carry color escapes; widths are
// computed on the plain text.
func table(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := visibleWidth(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var head, sep strings.Builder
	head.WriteString("  ")
	sep.WriteString("  ")
	for i, h := range headers {
		fmt.Fprintf(&head, "%-*s  ", widths[i], h)
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	subtle.Fprintln(w, head.String())
	subtle.Fprintln(w, sep.String())

	for _, row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", widths[i]-visibleWidth(cell)+2))
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func visibleWidth(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			n++
		}
	}
	return n
}
