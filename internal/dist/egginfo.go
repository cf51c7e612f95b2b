package dist

import (
	"os"
	"path/filepath"

	"github.com/cppyy-build/clingwrapper/internal/config"
	"github.com/cppyy-build/clingwrapper/internal/msg"
)

// WriteEggInfo writes the package metadata directory and returns its path.
func WriteEggInfo(p Project) (string, error) {
	meta, err := NewMetadata(p)
	if err != nil {
		return "", err
	}

	dir := EggInfoDir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	cfg := p.Config()
	sources := []string{config.Filename}
	if cfg.Package.Readme != "" {
		sources = append(sources, filepath.ToSlash(cfg.Package.Readme))
	}
	sources = append(sources, cfg.Extension.Sources...)

	files := map[string]string{
		"PKG-INFO":      meta.String(),
		"requires.txt":  lines(meta.Requires),
		"top_level.txt": lines(meta.TopLevel()),
		"SOURCES.txt":   lines(sources),
		"not-zip-safe":  "\n",
	}
	for name, content := range files {
		msg.Info("writing %s", filepath.Join(dir, name))
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return "", err
		}
	}
	return dir, nil
}
