package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alexanderramin/atelier/internal/config"
	"github.com/alexanderramin/atelier/internal/service"
)

// openLog returns the use-case observer for path. The TUI owns the
// terminal, so logs normally go to a file; "-" selects stderr and "off"
// or an empty path disables logging. The returned closer may be nil.
func openLog(path string) (service.UseCaseObserver, io.Closer, error) {
	switch path {
	case "", config.LogOff:
		return service.NoopUseCaseObserver{}, nil, nil
	case config.LogStderr:
		return service.NewLogUseCaseObserver(os.Stderr), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return service.NewLogUseCaseObserver(f), f, nil
}
