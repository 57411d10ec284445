package export

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"demoreel/internal/services"
)

// Workspace is the session-scoped scratch tree: raw captures land under
// raw/<clipID>, intermediates at the root. It is exclusively owned by one
// session and removed on every exit path.
type Workspace struct {
	root string
}

// NewWorkspace creates a uniquely named workspace under baseDir, or under the
// system temp directory when baseDir is empty.
func NewWorkspace(baseDir string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	root := filepath.Join(baseDir, "demoreel-"+uuid.NewString())
	if err := os.MkdirAll(filepath.Join(root, "raw"), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "create workspace", root, err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// RawDir returns (and creates) the capture directory for one clip.
func (w *Workspace) RawDir(clipID string) (string, error) {
	dir := filepath.Join(w.root, "raw", clipID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "export", "create capture dir", dir, err)
	}
	return dir, nil
}

// IntermediatePath returns a session-scoped path for an intermediate file.
func (w *Workspace) IntermediatePath(name string) string {
	return filepath.Join(w.root, name)
}

// Cleanup removes the workspace tree. Idempotent: a second call on an
// already-removed tree is a no-op.
func (w *Workspace) Cleanup() error {
	if w == nil || w.root == "" {
		return nil
	}
	if err := os.RemoveAll(w.root); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
