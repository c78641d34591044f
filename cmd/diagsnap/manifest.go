package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"diagsnap/internal/normalize"
)

type contextManifest struct {
	Path   string
	Root   string
	Config manifestConfig
}

type manifestConfig struct {
	Package packageConfig `toml:"package"`
	Paths   pathsConfig   `toml:"paths"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type pathsConfig struct {
	SourceDir string `toml:"source-dir"`
	Workspace string `toml:"workspace"`
}

// findDiagsnapToml walks up from startDir looking for a diagsnap.toml.
func findDiagsnapToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "diagsnap.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadContextManifest(startDir string) (*contextManifest, bool, error) {
	manifestPath, ok, err := findDiagsnapToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadManifestConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &contextManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadManifestConfig(path string) (manifestConfig, error) {
	var cfg manifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return manifestConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return manifestConfig{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return manifestConfig{}, fmt.Errorf("%s: missing [package].name", path)
	}
	return cfg, nil
}

// resolveContext builds the redaction context from flags, falling back to a
// discovered diagsnap.toml for anything the flags leave empty. Manifest paths
// may be relative; they resolve against the manifest's directory. A missing
// value degrades to a no-op redaction rather than an error.
func resolveContext(crate, sourceDir, workspace, startDir string) (normalize.Context, error) {
	nctx := normalize.Context{
		Crate:     crate,
		SourceDir: sourceDir,
		Workspace: workspace,
	}
	if nctx.Crate != "" && nctx.SourceDir != "" && nctx.Workspace != "" {
		return nctx, nil
	}

	manifest, ok, err := loadContextManifest(startDir)
	if err != nil {
		return normalize.Context{}, err
	}
	if !ok {
		return nctx, nil
	}

	if nctx.Crate == "" {
		nctx.Crate = manifest.Config.Package.Name
	}
	if nctx.SourceDir == "" {
		nctx.SourceDir = manifestPath(manifest.Root, manifest.Config.Paths.SourceDir)
	}
	if nctx.Workspace == "" {
		nctx.Workspace = manifestPath(manifest.Root, manifest.Config.Paths.Workspace)
	}
	return nctx, nil
}

func manifestPath(root, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}
