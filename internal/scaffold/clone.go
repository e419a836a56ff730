package scaffold

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

// Source tokens replaced in the cloned files, in replacement order.
const (
	SourceGeneratorToken = "ToySimulator"
	SourceFragmentToken  = "Toy"
)

// Package subdirectories holding generators and overlays.
const (
	GeneratorsDir = "Generators"
	OverlaysDir   = "Overlays"
)

// EnvRepo names the checkout containing the artdaq package. When Root is
// empty, Clone uses $LBNEARTDAQ_REPO/lbne-artdaq.
const (
	EnvRepo        = "LBNEARTDAQ_REPO"
	DefaultPackage = "lbne-artdaq"
)

var (
	generatorExts = []string{".hh", "_generator.cc"}
	overlayExts   = []string{".hh", ".cc", "Writer.hh"}
	tokenPattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// CloneOptions configures Clone.
type CloneOptions struct {
	// Root is the package directory holding Generators/ and Overlays/.
	Root string

	// GeneratorToken replaces "ToySimulator".
	GeneratorToken string

	// FragmentToken replaces "Toy". Overlay files are named
	// <FragmentToken>Fragment*.
	FragmentToken string

	// DryRun plans the copies without touching the file system.
	DryRun bool

	Logger *slog.Logger
}

// FileCopy is one planned source-to-target copy.
type FileCopy struct {
	Source string
	Target string
}

// CloneResult lists what Clone did.
type CloneResult struct {
	Root   string
	Copies []FileCopy
}

// Targets returns the target paths in copy order.
func (r *CloneResult) Targets() []string {
	out := make([]string, len(r.Copies))
	for i, c := range r.Copies {
		out[i] = c.Target
	}
	return out
}

// ValidateToken reports whether tok can stand in for a C++ identifier.
func ValidateToken(tok string) error {
	if !tokenPattern.MatchString(tok) {
		return daqerrors.ValidationError(fmt.Sprintf("%q is not a valid C++ identifier", tok), nil).
			WithDetail("token", tok).
			WithSuggestion("use letters, digits and underscores, not starting with a digit")
	}
	return nil
}

// DefaultRoot returns the package directory under $LBNEARTDAQ_REPO.
func DefaultRoot() (string, error) {
	repo := os.Getenv(EnvRepo)
	if repo == "" {
		return "", daqerrors.ConfigError(EnvRepo+" is not set", nil).
			WithSuggestion("pass --root or source the artdaq setup script")
	}
	return filepath.Join(repo, DefaultPackage), nil
}

// Plan returns the copies Clone would make for opts.
func Plan(opts CloneOptions) []FileCopy {
	gen := filepath.Join(opts.Root, GeneratorsDir)
	ovl := filepath.Join(opts.Root, OverlaysDir)

	copies := make([]FileCopy, 0, len(generatorExts)+len(overlayExts))
	for _, ext := range generatorExts {
		copies = append(copies, FileCopy{
			Source: filepath.Join(gen, SourceGeneratorToken+ext),
			Target: filepath.Join(gen, opts.GeneratorToken+ext),
		})
	}
	for _, ext := range overlayExts {
		copies = append(copies, FileCopy{
			Source: filepath.Join(ovl, SourceFragmentToken+"Fragment"+ext),
			Target: filepath.Join(ovl, opts.FragmentToken+"Fragment"+ext),
		})
	}
	return copies
}

// Rename applies the clone's token replacement to text.
func Rename(text, generatorToken, fragmentToken string) string {
	text = strings.ReplaceAll(text, SourceGeneratorToken, generatorToken)
	return strings.ReplaceAll(text, SourceFragmentToken, fragmentToken)
}

// Clone copies the ToySimulator generator and ToyFragment overlay under new
// names. All sources must exist and no target may exist. On failure the
// targets written so far are removed.
func Clone(ctx context.Context, opts CloneOptions) (*CloneResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := ValidateToken(opts.GeneratorToken); err != nil {
		return nil, err
	}
	if err := ValidateToken(opts.FragmentToken); err != nil {
		return nil, err
	}
	if opts.Root == "" {
		root, err := DefaultRoot()
		if err != nil {
			return nil, err
		}
		opts.Root = root
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, daqerrors.ValidationError("invalid root "+opts.Root, err)
	}
	opts.Root = root

	copies := Plan(opts)
	result := &CloneResult{Root: root, Copies: copies}
	if err := checkCopies(copies); err != nil {
		return nil, err
	}
	if opts.DryRun {
		return result, nil
	}

	lock := NewFileLock(root)
	if err := lock.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	// Another clone may have finished while this one waited.
	if err := checkCopies(copies); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(copies))
	for _, c := range copies {
		if err := ctx.Err(); err != nil {
			removeAll(written)
			return nil, err
		}
		if err := copyRenamed(c, opts.GeneratorToken, opts.FragmentToken); err != nil {
			removeAll(written)
			return nil, err
		}
		written = append(written, c.Target)
		logger.Debug("cloned source",
			slog.String("source", c.Source),
			slog.String("target", c.Target))
	}

	logger.Info("cloned fragment generator",
		slog.String("generator", opts.GeneratorToken),
		slog.String("fragment", opts.FragmentToken),
		slog.Int("files", len(written)))
	return result, nil
}

func checkCopies(copies []FileCopy) error {
	for _, c := range copies {
		if _, err := os.Stat(c.Source); err != nil {
			return daqerrors.New(daqerrors.ErrCodeSourceNotFound,
				"clone source not found: "+c.Source, err).
				WithDetail("path", c.Source).
				WithSuggestion("point --root at the package holding Generators/ and Overlays/")
		}
		if _, err := os.Lstat(c.Target); err == nil {
			return daqerrors.New(daqerrors.ErrCodeTargetExists,
				"clone target already exists: "+c.Target, nil).
				WithDetail("path", c.Target).
				WithSuggestion("choose other tokens or remove the existing files")
		}
	}
	return nil
}

func copyRenamed(c FileCopy, generatorToken, fragmentToken string) error {
	src, err := os.ReadFile(c.Source)
	if err != nil {
		return daqerrors.New(daqerrors.ErrCodeSourceNotFound, "read "+c.Source, err).
			WithDetail("path", c.Source)
	}
	info, err := os.Stat(c.Source)
	if err != nil {
		return daqerrors.New(daqerrors.ErrCodeSourceNotFound, "stat "+c.Source, err).
			WithDetail("path", c.Source)
	}

	text := Rename(string(src), generatorToken, fragmentToken)
	f, err := os.OpenFile(c.Target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return daqerrors.New(daqerrors.ErrCodeTargetExists,
				"clone target already exists: "+c.Target, err).
				WithDetail("path", c.Target)
		}
		return daqerrors.New(daqerrors.ErrCodeOutputWrite, "create "+c.Target, err).
			WithDetail("path", c.Target)
	}
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		_ = os.Remove(c.Target)
		return daqerrors.New(daqerrors.ErrCodeOutputWrite, "write "+c.Target, err).
			WithDetail("path", c.Target)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(c.Target)
		return daqerrors.New(daqerrors.ErrCodeOutputWrite, "close "+c.Target, err).
			WithDetail("path", c.Target)
	}
	return nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
