package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ManifestName is the export manifest written alongside the artifacts.
const ManifestName = "README.md"

// Packager materializes an artifact set into the working copy. The artifact
// list is authoritative for what should exist: prior files are removed, files
// at the same relative paths are overwritten, nothing is merged.
type Packager struct {
	log *zap.Logger
}

func NewPackager(log *zap.Logger) *Packager {
	return &Packager{log: log}
}

// Materialize renders the artifact set under dir plus a manifest describing
// the export. Everything previously exported is cleared first so a removed
// artifact shows up as a deletion. Returns the number of artifact files
// written, manifest excluded.
//
// The manifest is derived purely from the artifact set. Re-running with
// unchanged artifacts must leave the working copy byte-identical, otherwise
// every cycle would commit a spurious manifest change.
func (p *Packager) Materialize(ctx context.Context, dir string, artifacts []Artifact) (int, error) {
	if err := clearExported(dir); err != nil {
		return 0, err
	}

	written := 0
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		target := filepath.Join(dir, filepath.FromSlash(a.RelativePath))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("failed to create directory for %q: %w", a.RelativePath, err)
		}
		if err := os.WriteFile(target, a.Body, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %q: %w", a.RelativePath, err)
		}
		written++
	}

	manifest := renderManifest(artifacts)
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0o644); err != nil {
		return written, fmt.Errorf("failed to write manifest: %w", err)
	}

	p.log.Info("materialized export",
		zap.Int("artifacts", len(artifacts)),
		zap.String("dir", dir))
	return written, nil
}

// clearExported empties the working copy except the repository metadata.
func clearExported(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0o755)
		}
		return fmt.Errorf("failed to read working copy: %w", err)
	}

	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to clear %q: %w", entry.Name(), err)
		}
	}
	return nil
}

func renderManifest(artifacts []Artifact) string {
	digest := sha256.New()
	for _, a := range artifacts {
		digest.Write([]byte(a.RelativePath))
		digest.Write([]byte{0})
		digest.Write(a.Body)
	}

	var b strings.Builder
	b.WriteString("# Content Backup\n\n")
	fmt.Fprintf(&b, "Artifacts: %d\n", len(artifacts))
	fmt.Fprintf(&b, "Digest: sha256:%s\n\n", hex.EncodeToString(digest.Sum(nil)))
	for _, a := range artifacts {
		fmt.Fprintf(&b, "- %s\n", a.RelativePath)
	}
	return b.String()
}
