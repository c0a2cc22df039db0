package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// setupLogging sends log output to stdout and a timestamped file under
// logs/errors. The returned func closes the file.
func setupLogging(baseDir string, debug bool) (*log.Logger, func()) {
	logDir := filepath.Join(baseDir, "logs", "errors")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Printf("could not create log directory: %v\n", err)
	}
	ts := time.Now().Format("20060102-150405")

	var out io.Writer = os.Stdout
	closeFile := func() {}
	f, err := os.Create(filepath.Join(logDir, fmt.Sprintf("heboris-%s.log", ts)))
	if err == nil {
		out = io.MultiWriter(os.Stdout, f)
		closeFile = func() { f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "heboris",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)
	return logger, closeFile
}
