package builder

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cppyy-build/clingwrapper/internal/config"
	"github.com/cppyy-build/clingwrapper/internal/fsutil"
	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/cppyy-build/clingwrapper/internal/platform"
	"github.com/cppyy-build/clingwrapper/internal/toolchain"
)

// SharedLibName is the file name of the linked wrapper. The cppyy backend loader
// (PyPy's _cppyy and CPython's cppyy) dlopens exactly this name, so it never follows
// the extension name.
const SharedLibName = "libcppyy_backend.so"

// optFlag is always passed after the sources, ahead of the queried auxiliary flags.
const optFlag = "-O2"

var (
	ErrNoSources  = errors.New("extension sources matched no files")
	errNoCompiler = errors.New("no C++ compiler found, set CXX")
)

// Options tune a build. Zero values mean "use the project's defaults".
type Options struct {
	// Environ is the process environment in os.Environ form; it is read once here.
	Environ  []string
	Mode     toolchain.Mode
	Python   string
	Debug    bool
	Force    bool
	Jobs     int
	Compiler string
	// BuildTemp and BuildLib override the layout's directories.
	BuildTemp string
	BuildLib  string
}

type Builder struct {
	cfg     *config.Config
	basedir string
	env     config.ConfigEnv
	tc      *toolchain.Toolchain
	layout  platform.Layout
	opts    Options
}

// New assembles a builder from already resolved parts.
func New(basedir string, cfg *config.Config, env config.ConfigEnv, tc *toolchain.Toolchain, opts Options) *Builder {
	pyver := cfg.Build.Python
	if opts.Python != "" {
		pyver = opts.Python
	}
	layout := platform.NewLayout(basedir, platform.Name(), pyver)
	if opts.BuildTemp != "" {
		layout.Temp = opts.BuildTemp
	}
	if opts.BuildLib != "" {
		layout.Lib = opts.BuildLib
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	return &Builder{cfg: cfg, basedir: basedir, env: env, tc: tc, layout: layout, opts: opts}
}

// NewBuilderInDirectory loads Clingwrap.toml from path and probes the toolchain.
func NewBuilderInDirectory(path string, opts Options) (*Builder, error) {
	var err error
	path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	env := config.NewConfigEnv(path, opts.Environ)
	cfg, err := config.ParseConfigFromFile(filepath.Join(path, config.Filename), env)
	if err != nil {
		return nil, err
	}
	tc := toolchain.Probe(cfg.Toolchain, opts.Mode, env.Lookup)
	return New(path, cfg, env, tc, opts), nil
}

func (b *Builder) Dir() string                     { return b.basedir }
func (b *Builder) Config() *config.Config          { return b.cfg }
func (b *Builder) Env() config.ConfigEnv           { return b.env }
func (b *Builder) Toolchain() *toolchain.Toolchain { return b.tc }
func (b *Builder) Layout() platform.Layout         { return b.layout }

// ExtFullPath is where the shared library ends up: the directory the extension name
// maps to under the build lib, with the file name forced to SharedLibName.
func (b *Builder) ExtFullPath() string {
	dir := filepath.Dir(filepath.FromSlash(b.cfg.Extension.Name))
	return filepath.Join(b.layout.Lib, dir, SharedLibName)
}

// Build runs build_py followed by build_ext.
func (b *Builder) Build() error {
	if err := b.BuildPy(); err != nil {
		return err
	}
	_, err := b.BuildExt()
	return err
}

// BuildPy copies the Python packages this project ships into the build lib.
func (b *Builder) BuildPy() error {
	for _, pkg := range b.tc.Packages {
		rel := filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/"))
		src := filepath.Join(b.basedir, b.cfg.Package.PackageDir, rel)
		if stat, err := os.Stat(src); err != nil || !stat.IsDir() {
			return fmt.Errorf("package directory %s for %q does not exist", src, pkg)
		}

		files, err := doublestar.Glob(os.DirFS(src), "**/*.py", doublestar.WithFilesOnly())
		if err != nil {
			return err
		}
		for _, f := range files {
			dst := filepath.Join(b.layout.Lib, rel, filepath.FromSlash(f))
			if err := fsutil.CopyFile(filepath.Join(src, filepath.FromSlash(f)), dst); err != nil {
				return fmt.Errorf("build_py %s: %w", pkg, err)
			}
		}
		msg.Info("copied %d files of package %s", len(files), pkg)
	}
	return nil
}

// ensureDir creates dir and its parents. An existing directory is left alone.
func ensureDir(dir string) error {
	msg.Info("checking for %s", dir)
	if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
		return nil
	}
	msg.Info("creating %s", dir)
	return os.MkdirAll(dir, 0o755)
}

func collectFiles(basedir string, patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	fsys := os.DirFS(basedir)

	for _, pat := range patterns {
		var matches []string
		if filepath.IsAbs(pat) {
			matches = []string{filepath.Clean(pat)}
		} else {
			rel, err := doublestar.Glob(fsys, filepath.ToSlash(pat), doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("bad source pattern %q: %w", pat, err)
			}
			for _, m := range rel {
				matches = append(matches, filepath.Join(basedir, filepath.FromSlash(m)))
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	slices.Sort(files)
	return files, nil
}

// sourceDir is the directory the source patterns are resolved against: the project
// directory, or the checkout of [extension] fetch.
func (b *Builder) sourceDir() (string, error) {
	if b.cfg.Extension.Fetch == "" {
		return b.basedir, nil
	}
	return fetchSources(b.cfg.Extension.Fetch, b.basedir, filepath.Join(b.layout.Base, "_src"))
}

// compileFlags returns the flags placed before -c and the ones placed after the source.
func (b *Builder) compileFlags(incdir string, aux []string) (pre, post []string) {
	if runtime.GOOS != "windows" {
		pre = append(pre, "-fPIC")
	}
	if b.opts.Debug {
		pre = append(pre, "-g")
	}

	defines := make([]string, 0, len(b.cfg.Extension.Defines))
	for define, v := range b.cfg.Extension.Defines {
		if v != "" {
			defines = append(defines, "-D"+define+"="+v)
		} else {
			defines = append(defines, "-D"+define)
		}
	}
	slices.Sort(defines)
	pre = append(pre, defines...)

	for _, dir := range b.cfg.Extension.IncludeDirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(b.basedir, dir)
		}
		pre = append(pre, "-I"+dir)
	}
	if incdir != "" {
		pre = append(pre, "-I"+incdir)
	}
	pre = append(pre, b.cfg.Extension.Cflags...)

	post = append([]string{optFlag}, aux...)
	return pre, post
}

// linkFlags returns the arguments placed before the objects and the ones after them.
func (b *Builder) linkFlags() (pre, post []string) {
	switch runtime.GOOS {
	case "darwin":
		pre = []string{"-bundle", "-undefined", "dynamic_lookup"}
	default:
		pre = []string{"-shared"}
	}
	if runtime.GOOS == "linux" {
		pre = append(pre, "-Wl,-Bsymbolic-functions")
	}

	if b.opts.Debug {
		post = append(post, "-g")
	}
	post = append(post, b.cfg.Extension.Ldflags...)
	for _, lib := range b.cfg.Extension.Links {
		post = append(post, "-l"+lib)
	}
	return pre, post
}

// objectPath maps a source to its object under buildTemp. Sources outside srcDir go
// under a directory named after a hash of their parent, so equal base names don't collide.
func objectPath(buildTemp, srcDir, src string) string {
	rel, err := filepath.Rel(srcDir, src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		sum := sha256.Sum256([]byte(filepath.Dir(src)))
		rel = filepath.Join("_ext", hex.EncodeToString(sum[:6]), filepath.Base(src))
	}
	return filepath.Join(buildTemp, strings.TrimSuffix(rel, filepath.Ext(rel))+".o")
}

func depfilePath(obj string) string {
	return strings.TrimSuffix(obj, ".o") + ".d"
}

// BuildExt compiles the extension sources and links them into SharedLibName. The
// backend configuration is queried on every call. It returns the path of the library.
func (b *Builder) BuildExt() (string, error) {
	srcDir, err := b.sourceDir()
	if err != nil {
		return "", fmt.Errorf("failed to fetch sources: %w", err)
	}

	if err := b.cfg.RunBuildScript(b.env); err != nil {
		return "", err
	}

	sources, err := collectFiles(srcDir, b.cfg.Extension.Sources)
	if err != nil {
		return "", err
	}
	if len(sources) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoSources, strings.Join(b.cfg.Extension.Sources, ", "))
	}

	incdir, err := b.tc.IncludeDir()
	if err != nil {
		return "", err
	}
	aux, err := b.tc.AuxCflags()
	if err != nil {
		return "", err
	}

	if err := ensureDir(b.layout.Temp); err != nil {
		return "", err
	}

	compiler := b.opts.Compiler
	if compiler == "" {
		compiler = toolchain.FindCompiler(true, b.env.Lookup)
	}
	if compiler == "" {
		return "", errNoCompiler
	}

	preCflags, postCflags := b.compileFlags(incdir, aux)
	preLdflags, postLdflags := b.linkFlags()

	state := newStateFile(filepath.Join(b.layout.Temp, stateFilename))
	if err := state.load(); err != nil {
		msg.Warn("failed to load build state: %v", err)
	}

	plan := buildPlan{
		compiler: compiler,
		force:    b.opts.Force,
		cflags:   slices.Concat(preCflags, postCflags),
		ldflags:  slices.Concat(preLdflags, postLdflags),
	}
	out := b.ExtFullPath()

	var compileJobs []compileJob
	objects := make([]string, 0, len(sources))
	depfiles := make(map[string]string, len(sources))
	for _, src := range sources {
		obj := objectPath(b.layout.Temp, srcDir, src)
		objects = append(objects, obj)
		depfiles[src] = depfilePath(obj)

		dirty, err := state.isDirty(src, obj, plan)
		if err != nil {
			return "", fmt.Errorf("could not check status of %s: %w", src, err)
		}
		if dirty {
			compileJobs = append(compileJobs, compileJob{
				cc:   compiler,
				src:  src,
				obj:  obj,
				dep:  depfiles[src],
				pre:  preCflags,
				post: postCflags,
			})
		}
	}

	if err := runJobs(compileJobs, runCompileJob, b.opts.Jobs); err != nil {
		return "", fmt.Errorf("compilation failed: %w", err)
	}

	if len(compileJobs) > 0 || state.needsRelink(out, sources, plan) {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return "", err
		}
		msg.Info("now building %s", SharedLibName)
		job := linkJob{cc: compiler, objs: objects, out: out, pre: preLdflags, post: postLdflags}
		if err := runLinkJob(job); err != nil {
			return "", fmt.Errorf("linking failed: %w", err)
		}
	} else {
		msg.Info("%s is up to date", SharedLibName)
	}

	if err := state.update(sources, depfiles, plan); err != nil {
		msg.Warn("failed to update build state: %v", err)
	} else if err := state.save(); err != nil {
		msg.Warn("failed to save build state: %v", err)
	}

	return out, nil
}
