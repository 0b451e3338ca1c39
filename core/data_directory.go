package core

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the application name used in data directory paths.
const AppName = "aigen"

// GetDataDirectory returns the platform-specific data directory path for the
// application. This is a pure function based on runtime.GOOS and environment
// variables.
//
// Paths by platform:
//   - Windows: %APPDATA%/aigen
//   - Linux/macOS: ~/.aigen
//
// Does NOT create the directory - callers should use EnsureDataDirectory for that.
func GetDataDirectory() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return AppName
			}
			return filepath.Join(home, "AppData", "Roaming", AppName)
		}
		return filepath.Join(appData, AppName)
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "." + AppName
		}
		return filepath.Join(home, "."+AppName)
	}
}

// GetDataFilePath returns the full path for a file within the data directory.
// Example: GetDataFilePath("history.db") -> "/home/user/.aigen/history.db"
func GetDataFilePath(filename string) string {
	return filepath.Join(GetDataDirectory(), filename)
}

// EnsureDataDirectory creates the data directory if it doesn't exist.
// Returns the directory path and any error encountered.
func EnsureDataDirectory() (string, error) {
	dir := GetDataDirectory()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// EnsureDirectory creates an arbitrary directory (and parents) if missing.
// Used for the output, temp, and model cache directories at startup.
func EnsureDirectory(dir string) error {
	return os.MkdirAll(dir, 0755)
}
