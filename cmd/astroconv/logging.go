package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/astrotools/astroSaveConverter/pkg/config"
)

const logFileName = "astro_converter.log"

// setupLogging opens the debug log. With debugging off the logger discards everything.
func setupLogging(cfg config.Log) (*log.Logger, func(), error) {
	if !cfg.Debug || cfg.Dir == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(cfg.Dir, logFileName), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}

	logger := log.New(f, "", log.LstdFlags)
	return logger, func() { f.Close() }, nil
}
