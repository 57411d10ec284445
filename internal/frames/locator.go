package frames

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"demoreel/internal/services"
)

// Matcher decides whether a file name is a captured frame.
type Matcher func(name string) bool

// ExtensionMatcher matches files by extension, case-insensitively. The
// extension may be given with or without the leading dot.
func ExtensionMatcher(ext string) Matcher {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ext)
	}
}

// CandidateRoots assembles the heuristic search roots for a clip's frames.
// The capture layer picks its own take directory, so the session's assigned
// capture dir is only the most likely location, not a guarantee.
func CandidateRoots(captureDir, takeDirName, exeDir, clipID string) []string {
	var roots []string
	add := func(path string) {
		path = strings.TrimSpace(path)
		if path == "" {
			return
		}
		for _, existing := range roots {
			if existing == path {
				return
			}
		}
		roots = append(roots, path)
	}

	add(captureDir)
	if captureDir != "" && takeDirName != "" {
		add(filepath.Join(captureDir, takeDirName))
		add(filepath.Join(filepath.Dir(captureDir), takeDirName))
	}
	if exeDir != "" && clipID != "" {
		add(filepath.Join(exeDir, clipID))
		if takeDirName != "" {
			add(filepath.Join(exeDir, takeDirName, clipID))
		}
	}
	return roots
}

// Locate searches each candidate root depth-first and returns the first
// directory containing at least one file accepted by match. The function is
// pure with respect to its inputs: no state beyond the filesystem reads.
//
// When every candidate comes up empty the error enumerates all checked paths
// so a misconfigured capture directory can be diagnosed from the message
// alone.
func Locate(candidateRoots []string, match Matcher) (string, error) {
	if match == nil {
		return "", services.Wrap(services.ErrCapture, "frames", "locate", "nil matcher", nil)
	}

	checked := make([]string, 0, len(candidateRoots))
	for _, root := range candidateRoots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		checked = append(checked, root)
		if dir, ok := searchDir(root, match); ok {
			return dir, nil
		}
	}

	if len(checked) == 0 {
		return "", services.Wrap(services.ErrCapture, "frames", "locate", "no candidate directories to search", nil)
	}
	return "", services.Wrap(services.ErrCapture, "frames", "locate",
		fmt.Sprintf("no captured frames found; checked: %s", strings.Join(checked, ", ")), nil)
}

func searchDir(dir string, match Matcher) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, filepath.Join(dir, entry.Name()))
			continue
		}
		if match(entry.Name()) {
			return dir, true
		}
	}
	for _, sub := range subdirs {
		if found, ok := searchDir(sub, match); ok {
			return found, true
		}
	}
	return "", false
}
