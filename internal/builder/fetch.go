package builder

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cppyy-build/clingwrapper/internal/msg"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
)

var sourceShortcuts = map[string]string{
	"gh:": "https://github.com/",
	"gl:": "https://gitlab.com/",
	"bb:": "https://bitbucket.org/",
	"sr:": "https://sr.ht/",
	"cb:": "https://codeberg.org/",
}

const gitPrefix = "git:"

// fetchMarker is written into the .git directory of a finished checkout and holds the
// source it was fetched from.
const fetchMarker = "clingwrapper-fetch"

var (
	errIllegalSource     = errors.New("empty or illegal source string")
	errUnsupportedSource = errors.New("archive sources are not supported, use a git remote or a path")
)

// resolveGitSource expands a source spec into a git URL. ok is false for plain paths.
func resolveGitSource(spec string) (rawURL string, ok bool, err error) {
	if spec == "" {
		return "", false, errIllegalSource
	}

	// git:https://github.com/owner/repo.git
	if strings.HasPrefix(spec, gitPrefix) {
		return spec[len(gitPrefix):], true, nil
	}

	// gh:owner/repo
	for shortcut, base := range sourceShortcuts {
		if strings.HasPrefix(spec, shortcut) {
			return base + spec[len(shortcut):], true, nil
		}
	}

	if isURL(spec) {
		return "", false, errUnsupportedSource
	}
	return "", false, nil
}

// fetchSources makes the wrapper sources named by spec available and returns their
// directory. Git sources are cloned into toWhere once; paths are used in place.
func fetchSources(spec, basedir, toWhere string) (string, error) {
	rawURL, isGit, err := resolveGitSource(spec)
	if err != nil {
		return "", err
	}
	if !isGit {
		if !filepath.IsAbs(spec) {
			spec = filepath.Join(basedir, spec)
		}
		if stat, err := os.Stat(spec); err != nil || !stat.IsDir() {
			return "", fmt.Errorf("source directory %s does not exist", spec)
		}
		return spec, nil
	}

	// a checkout is reused only when it was made for the same spec
	marker := filepath.Join(toWhere, ".git", fetchMarker)
	if prev, err := os.ReadFile(marker); err == nil && string(prev) == rawURL {
		return toWhere, nil
	}
	if err := os.RemoveAll(toWhere); err != nil {
		return "", err
	}
	if err := os.MkdirAll(toWhere, 0o755); err != nil {
		return "", err
	}
	if _, err := cloneGitRepo(rawURL, toWhere); err != nil {
		os.RemoveAll(toWhere)
		return "", err
	}
	if err := os.WriteFile(marker, []byte(rawURL), 0o644); err != nil {
		return "", err
	}
	return toWhere, nil
}

func isURL(maybeURL string) bool {
	u, err := url.Parse(maybeURL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

type gitURL struct {
	cleanURL    string
	branch      string
	commitOrTag string
}

// someone/something@master#0.1.0
// someone/something@feature-branch#12345abc
// someone/something#12345abc
func parseGitURL(rawURL string) (res gitURL) {
	parts := strings.SplitN(rawURL, "#", 2)
	baseURL := parts[0]
	if len(parts) == 2 {
		res.commitOrTag = parts[1]
	}

	parts = strings.SplitN(baseURL, "@", 2)
	res.cleanURL = parts[0]
	if len(parts) == 2 {
		res.branch = parts[1]
	}

	if !strings.HasSuffix(res.cleanURL, ".git") {
		res.cleanURL += ".git"
	}

	return
}

// cloneGitRepo clones a Git remote into the specified directory
func cloneGitRepo(url, toWhere string) (string, error) {
	parsedURL := parseGitURL(url)

	msg.Step("Fetching", "%s", parsedURL.cleanURL)
	cloneOptions := &git.CloneOptions{
		URL:               parsedURL.cleanURL,
		Progress:          &msg.IndentWriter{Indent: "    ", W: os.Stdout},
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}

	if parsedURL.commitOrTag == "" {
		cloneOptions.Depth = 1 // we can do a shallow clone of the latest commit
	}

	if parsedURL.branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(parsedURL.branch)
		cloneOptions.SingleBranch = true
	}

	repo, err := git.PlainClone(toWhere, cloneOptions)
	if err != nil {
		os.RemoveAll(toWhere)
		return toWhere, err
	}

	if parsedURL.commitOrTag != "" {
		w, err := repo.Worktree()
		if err != nil {
			return toWhere, fmt.Errorf("could not get worktree: %w", err)
		}

		revision := parsedURL.commitOrTag
		hash, err := repo.ResolveRevision(plumbing.Revision(revision))
		if err != nil {
			return toWhere, fmt.Errorf("could not resolve revision `%s`: %w", revision, err)
		}

		err = w.Checkout(&git.CheckoutOptions{
			Hash:  *hash,
			Force: true,
		})
		if err != nil {
			return toWhere, fmt.Errorf("failed to checkout `%s`: %w", revision, err)
		}
	}

	return toWhere, nil
}
