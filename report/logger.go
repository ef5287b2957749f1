package report

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds a *logrus.Logger: a text formatter for interactive
// runs, or a JSON formatter when mode (the CVC_MODE setting) contains
// "batch" — batch runs are typically
// piped into another tool that wants structured lines, not a human
// reading a terminal.
func NewLogger(out io.Writer, mode string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	if strings.Contains(mode, "batch") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
