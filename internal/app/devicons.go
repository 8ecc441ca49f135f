package app

import (
	"os"
	"path/filepath"
	"time"

	devicons "github.com/epilande/go-devicons"
)

// iconFileInfo feeds a bare path to devicons without touching the filesystem.
type iconFileInfo struct {
	name  string
	isDir bool
}

func (i iconFileInfo) Name() string { return i.name }

func (i iconFileInfo) Size() int64 { return 0 }

func (i iconFileInfo) Mode() os.FileMode {
	if i.isDir {
		return os.ModeDir | 0o755
	}
	return 0
}

func (i iconFileInfo) ModTime() time.Time { return time.Time{} }

func (i iconFileInfo) IsDir() bool { return i.isDir }

func (i iconFileInfo) Sys() any { return nil }

const iconBranch = "\ue725"

func deviconForPath(path string) string {
	if path == "" {
		return ""
	}
	isDir := path[len(path)-1] == '/'
	name := filepath.Base(path)
	style := devicons.IconForInfo(iconFileInfo{name: name, isDir: isDir})
	return style.Icon
}

func iconPrefix(icon string, enabled bool) string {
	if !enabled || icon == "" {
		return ""
	}
	return icon + " "
}
