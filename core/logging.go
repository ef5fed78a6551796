package core

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// SetupLogging routes process logs to stdout and an append-only file
// under cfg.LogDir. Token rejections and throttling decisions surface
// only through logs, so timestamps get microsecond resolution to keep
// bursts of login attempts orderable. Caller closes the returned file
// on shutdown.
func SetupLogging(cfg Config, filename string) (io.Closer, error) {
	dir := firstNonEmpty(cfg.LogDir, "/var/log/students-api")
	filename = firstNonEmpty(filename, "students-api.log")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	mw := io.MultiWriter(os.Stdout, f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(mw)
	gin.DefaultWriter = mw
	gin.DefaultErrorWriter = mw

	return f, nil
}
