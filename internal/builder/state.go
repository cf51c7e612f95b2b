package builder

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"slices"
	"strings"
)

const stateFilename = "clingwrapper_build_state.json"

// BuildState records what the last successful build of the extension used
type BuildState struct {
	Compiler string            `json:"compiler,omitempty"`
	Sources  map[string]string `json:"sources,omitempty"` // source file -> hash
	Cflags   []string          `json:"cflags,omitempty"`  // includes the queried flags
	Ldflags  []string          `json:"ldflags,omitempty"`

	// Deps maps a source to the headers it included and their hashes.
	Deps map[string]map[string]string `json:"deps,omitempty"`
}

// buildPlan is what the current build is about to use
type buildPlan struct {
	compiler string
	force    bool
	cflags   []string
	ldflags  []string
}

type stateFile struct {
	path      string
	state     *BuildState
	hashCache map[string]string
}

func newStateFile(path string) *stateFile {
	return &stateFile{path: path, hashCache: make(map[string]string)}
}

// load reads the previous build state from disk
func (s *stateFile) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // no previous state, that's fine
		}
		return err
	}
	defer f.Close()

	var state BuildState
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&state); err != nil {
		return err
	}
	s.state = &state
	return nil
}

func (s *stateFile) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// fileHash computes the SHA256 hash of a file with an in-memory cache
func (s *stateFile) fileHash(path string) (string, error) {
	if hash, ok := s.hashCache[path]; ok {
		return hash, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	hexHash := hex.EncodeToString(hash.Sum(nil))
	s.hashCache[path] = hexHash
	return hexHash, nil
}

func (s *stateFile) flagsChanged(p buildPlan) bool {
	return s.state.Compiler != p.compiler || !slices.Equal(s.state.Cflags, p.cflags)
}

// isDirty checks if a single source file needs to be recompiled
func (s *stateFile) isDirty(src, obj string, p buildPlan) (bool, error) {
	if p.force || s.state == nil || s.flagsChanged(p) {
		return true, nil
	}
	if _, err := os.Stat(obj); os.IsNotExist(err) {
		return true, nil
	}

	hash, err := s.fileHash(src)
	if err != nil {
		return true, err
	}
	prevHash, exists := s.state.Sources[src]
	if !exists || prevHash != hash {
		return true, nil
	}

	for dep, prevHash := range s.state.Deps[src] {
		hash, err := s.fileHash(dep)
		if err != nil || hash != prevHash {
			return true, nil // changed or gone
		}
	}
	return false, nil
}

// needsRelink reports whether the library has to be linked even though no object changed
func (s *stateFile) needsRelink(out string, sources []string, p buildPlan) bool {
	if p.force || s.state == nil {
		return true
	}
	if _, err := os.Stat(out); os.IsNotExist(err) {
		return true
	}
	if s.state.Compiler != p.compiler || !slices.Equal(s.state.Ldflags, p.ldflags) {
		return true
	}
	if len(s.state.Sources) != len(sources) {
		return true
	}
	for _, src := range sources {
		if _, ok := s.state.Sources[src]; !ok {
			return true
		}
	}
	return false
}

// update replaces the state after a successful build. depfiles maps each source to
// the depfile its compilation wrote; a missing depfile records no headers.
func (s *stateFile) update(sources []string, depfiles map[string]string, p buildPlan) error {
	state := &BuildState{
		Compiler: p.compiler,
		Sources:  make(map[string]string, len(sources)),
		Cflags:   slices.Clone(p.cflags),
		Ldflags:  slices.Clone(p.ldflags),
		Deps:     make(map[string]map[string]string),
	}
	for _, src := range sources {
		hash, err := s.fileHash(src)
		if err != nil {
			return err
		}
		state.Sources[src] = hash

		data, err := os.ReadFile(depfiles[src])
		if err != nil {
			continue
		}
		for _, dep := range parseDepfile(string(data)) {
			if dep == src {
				continue
			}
			hash, err := s.fileHash(dep)
			if err != nil {
				continue
			}
			if state.Deps[src] == nil {
				state.Deps[src] = make(map[string]string)
			}
			state.Deps[src][dep] = hash
		}
	}
	s.state = state
	return nil
}

// parseDepfile returns the prerequisites of the make rules in a compiler depfile
// (gcc/clang -MMD output). Line continuations and escaped spaces are honored.
func parseDepfile(data string) []string {
	data = strings.ReplaceAll(data, "\\\r\n", " ")
	data = strings.ReplaceAll(data, "\\\n", " ")

	var deps []string
	for line := range strings.SplitSeq(data, "\n") {
		_, prereqs, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}

		var cur strings.Builder
		flush := func() {
			if cur.Len() > 0 {
				deps = append(deps, cur.String())
				cur.Reset()
			}
		}
		for i := 0; i < len(prereqs); i++ {
			c := prereqs[i]
			switch {
			case c == '\\' && i+1 < len(prereqs) && prereqs[i+1] == ' ':
				cur.WriteByte(' ')
				i++
			case c == '$' && i+1 < len(prereqs) && prereqs[i+1] == '$':
				cur.WriteByte('$')
				i++
			case c == ' ' || c == '\t' || c == '\r':
				flush()
			default:
				cur.WriteByte(c)
			}
		}
		flush()
	}
	return deps
}
