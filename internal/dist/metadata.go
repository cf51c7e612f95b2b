package dist

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cppyy-build/clingwrapper/internal/config"
)

const metadataVersion = "2.1"

// Metadata is the core metadata shared by PKG-INFO and a wheel's METADATA.
type Metadata struct {
	cfg             *config.Config
	Requires        []string
	Packages        []string
	LongDescription string
}

// NewMetadata collects the metadata of p, reading the README named in [package] readme.
func NewMetadata(p Project) (*Metadata, error) {
	cfg := p.Config()
	tc := p.Toolchain()
	m := &Metadata{
		cfg:      cfg,
		Requires: slices.Clone(tc.Requires),
		Packages: slices.Clone(tc.Packages),
	}

	if cfg.Package.Readme != "" {
		data, err := os.ReadFile(filepath.Join(p.Dir(), cfg.Package.Readme))
		if err != nil {
			return nil, fmt.Errorf("failed to read long description: %w", err)
		}
		m.LongDescription = string(data)
	}
	return m, nil
}

func (m *Metadata) descriptionContentType() string {
	switch strings.ToLower(filepath.Ext(m.cfg.Package.Readme)) {
	case ".rst":
		return "text/x-rst"
	case ".md":
		return "text/markdown"
	case "":
		return ""
	default:
		return "text/plain"
	}
}

func field(sb *strings.Builder, name, value string) {
	if value != "" {
		writeln(sb, name, ": ", value)
	}
}

// String renders the metadata in the RFC 822 style used by PKG-INFO and METADATA.
func (m *Metadata) String() string {
	pkg := m.cfg.Package
	var sb strings.Builder

	field(&sb, "Metadata-Version", metadataVersion)
	field(&sb, "Name", pkg.Name)
	field(&sb, "Version", pkg.Version)
	field(&sb, "Summary", pkg.Description)
	field(&sb, "Home-page", pkg.URL)
	field(&sb, "Author", pkg.Author)
	field(&sb, "Author-email", pkg.AuthorEmail)
	field(&sb, "License", pkg.License)
	field(&sb, "Keywords", pkg.Keywords)
	for _, c := range pkg.Classifiers {
		field(&sb, "Classifier", c)
	}
	for _, r := range m.Requires {
		field(&sb, "Requires-Dist", r)
	}
	field(&sb, "Description-Content-Type", m.descriptionContentType())

	if m.LongDescription != "" {
		writeln(&sb)
		write(&sb, m.LongDescription)
		if !strings.HasSuffix(m.LongDescription, "\n") {
			writeln(&sb)
		}
	}
	return sb.String()
}

// TopLevel lists the top-level import names shipped by the distribution.
func (m *Metadata) TopLevel() []string {
	names := make([]string, 0, len(m.Packages)+1)
	for _, pkg := range m.Packages {
		top, _, _ := strings.Cut(pkg, ".")
		names = append(names, top)
	}
	if top, _, _ := strings.Cut(m.cfg.Extension.Name, "/"); top != "" {
		names = append(names, top)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func lines(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, "\n") + "\n"
}
