package main

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const labelWidth = 22

// outcomeLine renders one "  label:  [ok] message" row, coloured green or red
// when colorize is set.
func outcomeLine(label string, ok bool, message string, colorize bool) string {
	mark, color := "[FAIL]", ansiRed
	if ok {
		mark, color = "[ok]", ansiGreen
	}

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(label)
	b.WriteByte(':')
	if pad := labelWidth - len(label) - 1; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteByte(' ')
	if colorize {
		b.WriteString(color)
	}
	b.WriteString(mark)
	if colorize {
		b.WriteString(ansiReset)
	}
	if message != "" {
		b.WriteByte(' ')
		b.WriteString(message)
	}
	return b.String()
}

// colorEnabled reports whether w is an interactive terminal. NO_COLOR wins.
func colorEnabled(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
