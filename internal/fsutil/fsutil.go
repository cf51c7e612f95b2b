package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/cppyy-build/clingwrapper/internal/msg"
)

// CopyFile copies srcPath to destPath, creating parent directories and keeping the mode bits.
func CopyFile(srcPath, destPath string) error {
	return copyFile(srcPath, destPath, nil)
}

func copyFile(srcPath, destPath string, progress io.Writer) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(destPath)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	var w io.Writer = out
	if progress != nil {
		w = io.MultiWriter(out, progress)
	}
	if _, err = io.Copy(w, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

// TreeSize sums the sizes of the files under root, following symlinks like CopyTree.
func TreeSize(root string) (int64, error) {
	var total int64
	err := walkFollow(root, func(path, rel string, info fs.FileInfo) error {
		if info != nil {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

// walkFollow calls fn for every directory (with a nil info) and regular file under
// root, including the targets of symlinks. Directory symlinks are descended into once
// per real directory; dangling links and loops are skipped with a warning.
func walkFollow(root string, fn func(path, rel string, info fs.FileInfo) error) error {
	visited := make(map[string]bool)
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		visited[resolved] = true
	}

	var walk func(dir, prefix string) error
	walk = func(dir, prefix string) error {
		return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			rel = filepath.Join(prefix, rel)

			switch {
			case d.IsDir():
				return fn(path, rel, nil)
			case d.Type().IsRegular():
				info, err := d.Info()
				if err != nil {
					return err
				}
				return fn(path, rel, info)
			case d.Type()&fs.ModeSymlink != 0:
				info, err := os.Stat(path)
				if err != nil {
					msg.Warn("skipping dangling symlink %s", path)
					return nil
				}
				if info.Mode().IsRegular() {
					return fn(path, rel, info)
				}
				if !info.IsDir() {
					return nil
				}
				resolved, err := filepath.EvalSymlinks(path)
				if err != nil {
					return err
				}
				if visited[resolved] {
					msg.Warn("skipping symlink loop %s", path)
					return nil
				}
				visited[resolved] = true
				return walk(resolved, rel)
			}
			return nil
		})
	}
	return walk(root, "")
}

// CopyTree copies every file under src into dst and returns the copied paths relative
// to dst, slash separated. Symlinks are copied as the files they point to. When
// progress is non-nil a progress bar is drawn on it.
func CopyTree(src, dst string, progress io.Writer) ([]string, error) {
	var pb *msg.ProgressBar
	if progress != nil {
		total, err := TreeSize(src)
		if err != nil {
			return nil, err
		}
		pb = msg.NewProgressBar(total, 4, progress)
	}

	var copied []string
	err := walkFollow(src, func(path, rel string, info fs.FileInfo) error {
		target := filepath.Join(dst, rel)
		if info == nil {
			return os.MkdirAll(target, 0o755)
		}

		var w io.Writer
		if pb != nil {
			w = pb
		}
		if err := copyFile(path, target, w); err != nil {
			return err
		}
		copied = append(copied, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if pb != nil {
		pb.Finish()
	}
	return copied, nil
}

// Exists reports whether path exists. Errors other than "not exist" count as existing.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// List returns the regular files under root relative to it, slash separated and sorted.
func List(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
