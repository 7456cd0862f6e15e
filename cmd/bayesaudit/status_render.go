package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"bayesaudit/internal/model"
)

var (
	statusPassedColor    = color.New(color.FgGreen)
	statusUpsetColor     = color.New(color.FgRed)
	statusExhaustedColor = color.New(color.FgYellow)
	statusOpenColor      = color.New(color.FgBlue)
)

// renderStatus formats a measurement status for terminal output, colored
// when the destination is a TTY: green for Passed, red for Upset, yellow
// for Exhausted, blue for Open. Off is left uncolored.
func renderStatus(status model.Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	switch status {
	case model.StatusPassed:
		return statusPassedColor.Sprint(string(status))
	case model.StatusUpset:
		return statusUpsetColor.Sprint(string(status))
	case model.StatusExhausted:
		return statusExhaustedColor.Sprint(string(status))
	case model.StatusOpen:
		return statusOpenColor.Sprint(string(status))
	default:
		return string(status)
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
