package dist

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cppyy-build/clingwrapper/internal/fsutil"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/cppyy-build/clingwrapper/internal/platform"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

const wheelGenerator = "clingwrapper"

type WheelOptions struct {
	PlatName   string
	Universal  bool
	RootIsPure bool
	DistDir    string
	KeepTemp   bool
	// ReleaseFile is consulted to detect the manylinux build image; defaults to
	// platform.ReleaseFile.
	ReleaseFile string
	Progress    io.Writer
}

// FinalizeWheel tags the wheel as universal yet platform specific. The library is
// bound to the platform but uses no Python-version-specific API, a combination the
// default pure/platlib classification does not express.
func FinalizeWheel(opts *WheelOptions) {
	opts.PlatName = platform.Name()
	opts.Universal = true
	opts.RootIsPure = true
}

func (o WheelOptions) pythonTags() []string {
	if o.Universal {
		return []string{"py2", "py3"}
	}
	return []string{"py3"}
}

func (o WheelOptions) platTag() string {
	if o.PlatName == "" {
		return "any"
	}
	return platform.WheelTag(o.PlatName)
}

// Tag is the compressed wheel tag, e.g. "py2.py3-none-linux_x86_64".
func (o WheelOptions) Tag() string {
	return strings.Join(o.pythonTags(), ".") + "-none-" + o.platTag()
}

// WheelName is the file name of the wheel p produces under opts.
func WheelName(p Project, opts WheelOptions) string {
	cfg := p.Config()
	return fmt.Sprintf("%s-%s-%s.whl", cfg.DistName(), cfg.Package.Version, opts.Tag())
}

// RunWheel produces a wheel, but only on the manylinux build image: anywhere else the
// result would not be portable and the call returns "" without doing anything. On the
// image, build runs first (when non-nil), then an install is staged and zipped.
// It returns the path of the wheel.
func RunWheel(p Project, opts WheelOptions, build func() error) (string, error) {
	releaseFile := opts.ReleaseFile
	if releaseFile == "" {
		releaseFile = platform.ReleaseFile
	}
	if !platform.IsManylinux(releaseFile) {
		msg.Info("skipping bdist_wheel: not running on the manylinux build image")
		return "", nil
	}

	if build != nil {
		if err := build(); err != nil {
			return "", err
		}
	}

	bdistDir := filepath.Join(p.Layout().BdistBase, "wheel-"+uuid.NewString())
	if !opts.KeepTemp {
		defer func() {
			if err := removeTree(bdistDir, false); err != nil {
				msg.Warn("failed to remove %s: %v", bdistDir, err)
			}
		}()
	}

	if _, err := Install(p, InstallOptions{BdistDir: bdistDir, Progress: opts.Progress}); err != nil {
		return "", err
	}
	if err := writeDistInfo(p, opts, bdistDir); err != nil {
		return "", err
	}

	distDir := opts.DistDir
	if distDir == "" {
		distDir = DistDir(p)
	}
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return "", err
	}

	wheelPath := filepath.Join(distDir, WheelName(p, opts))
	msg.Info("creating '%s' and adding '%s' to it", wheelPath, bdistDir)
	if err := zipDir(bdistDir, wheelPath); err != nil {
		os.Remove(wheelPath)
		return "", err
	}
	return wheelPath, nil
}

func distInfoName(p Project) string {
	cfg := p.Config()
	return cfg.DistName() + "-" + cfg.Package.Version + ".dist-info"
}

func wheelFile(opts WheelOptions) string {
	var sb strings.Builder
	field(&sb, "Wheel-Version", "1.0")
	field(&sb, "Generator", wheelGenerator)
	field(&sb, "Root-Is-Purelib", strconv.FormatBool(opts.RootIsPure))
	for _, py := range opts.pythonTags() {
		field(&sb, "Tag", py+"-none-"+opts.platTag())
	}
	return sb.String()
}

// writeDistInfo writes METADATA, WHEEL, top_level.txt and finally RECORD, which
// hashes every file staged in root.
func writeDistInfo(p Project, opts WheelOptions, root string) error {
	meta, err := NewMetadata(p)
	if err != nil {
		return err
	}

	distInfo := distInfoName(p)
	dir := filepath.Join(root, distInfo)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := map[string]string{
		"METADATA":      meta.String(),
		"WHEEL":         wheelFile(opts),
		"top_level.txt": lines(meta.TopLevel()),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}

	record, err := buildRecord(root, path.Join(distInfo, "RECORD"))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "RECORD"), record, 0o644)
}

// buildRecord renders the RECORD of every file under root; recordName itself is
// listed without hash and size.
func buildRecord(root, recordName string) ([]byte, error) {
	files, err := stagedFiles(root)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, rel := range files {
		if rel == recordName {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(data)
		digest := "sha256=" + base64.RawURLEncoding.EncodeToString(sum[:])
		if err := w.Write([]string{rel, digest, strconv.Itoa(len(data))}); err != nil {
			return nil, err
		}
	}
	if err := w.Write([]string{recordName, "", ""}); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// stagedFiles lists the files under root, slash separated, with .dist-info entries last.
func stagedFiles(root string) ([]string, error) {
	files, err := fsutil.List(root)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(files, func(a, b string) int {
		ad, bd := isDistInfo(a), isDistInfo(b)
		if ad != bd {
			if ad {
				return 1
			}
			return -1
		}
		return strings.Compare(a, b)
	})
	return files, nil
}

func isDistInfo(rel string) bool {
	top, _, _ := strings.Cut(rel, "/")
	return strings.HasSuffix(top, ".dist-info")
}

func zipDir(root, out string) error {
	files, err := stagedFiles(root)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	now := time.Now()
	for _, rel := range files {
		src := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(src)
		if err != nil {
			return err
		}

		hdr := &zip.FileHeader{Name: rel, Method: zip.Deflate, Modified: now}
		hdr.SetMode(info.Mode())
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if err := copyInto(w, src); err != nil {
			return fmt.Errorf("adding %s: %w", rel, err)
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

func copyInto(w io.Writer, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}
