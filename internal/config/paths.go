// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/pdiddy/adn/internal/fsutil"
)

const (
	fileName     = "config.yaml"
	templatesDir = "templates"
	logsDir      = "logs"
	logFileName  = "adn.log"
	historyFile  = "history.db"
)

// Paths locates the configuration directory and the templates directory.
type Paths struct {
	Dir          string
	TemplatesDir string
}

// DefaultDir returns the user-scoped configuration directory:
// ~/AppData/Roaming/adn-cli on Windows and ~/.adn elsewhere.
func DefaultDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(xdg.Home, "AppData", "Roaming", "adn-cli")
	}
	return filepath.Join(xdg.Home, ".adn")
}

// ResolvePaths fills in defaults. An empty dir means DefaultDir. An empty
// templates dir means the templates directory bundled next to the
// executable when present, else <dir>/templates.
func ResolvePaths(dir, tmplDir string) Paths {
	if dir == "" {
		dir = DefaultDir()
	}
	if tmplDir == "" {
		if bundled := bundledTemplatesDir(); bundled != "" {
			tmplDir = bundled
		} else {
			tmplDir = filepath.Join(dir, templatesDir)
		}
	}
	return Paths{Dir: dir, TemplatesDir: tmplDir}
}

func bundledTemplatesDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	dir := filepath.Join(filepath.Dir(exe), templatesDir)
	if fsutil.IsDir(dir) {
		return dir
	}
	return ""
}

// File returns the path of the configuration document.
func (p Paths) File() string { return filepath.Join(p.Dir, fileName) }

// LogsDir returns the directory holding log files.
func (p Paths) LogsDir() string { return filepath.Join(p.Dir, logsDir) }

// LogFile returns the path of the main log file.
func (p Paths) LogFile() string { return filepath.Join(p.LogsDir(), logFileName) }

// HistoryFile returns the path of the generation history database.
func (p Paths) HistoryFile() string { return filepath.Join(p.Dir, historyFile) }
