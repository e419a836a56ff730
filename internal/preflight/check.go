package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dune-daq/daqgen/internal/store"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed successfully.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical warning.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Templates resolves base templates.
type Templates interface {
	Resolve(name string) (store.Entry, string, error)
	Dirs() []string
}

// Checker performs preflight validation checks.
type Checker struct {
	verbose   bool
	output    io.Writer
	templates Templates
	required  []string
	cloneRoot string
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables verbose output.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// WithTemplates sets the template store to check.
func WithTemplates(t Templates) Option {
	return func(c *Checker) {
		c.templates = t
	}
}

// WithRequiredTemplates replaces the base templates that must resolve.
func WithRequiredTemplates(names ...string) Option {
	return func(c *Checker) {
		c.required = names
	}
}

// WithCloneRoot sets the package checked for clone sources. Empty means
// the lbne-artdaq package under $LBNEARTDAQ_REPO.
func WithCloneRoot(root string) Option {
	return func(c *Checker) {
		c.cloneRoot = root
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output:   os.Stdout,
		required: DefaultRequiredTemplates,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs all preflight checks and returns the results.
func (c *Checker) RunAll(_ context.Context, dataDir string) []CheckResult {
	var results []CheckResult

	results = append(results, c.CheckWritePermissions(dataDir))
	results = append(results, c.CheckDiskSpace(dataDir))

	if c.templates != nil {
		results = append(results, c.CheckSearchPath())
		results = append(results, c.CheckTemplates()...)
	}

	results = append(results, c.CheckCloneSources())
	return results
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	hasCriticalFailure := false

	for _, r := range results {
		if r.IsCritical() {
			hasCriticalFailure = true
		}
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			hasWarnings = true
		}
	}

	if hasCriticalFailure {
		return "failed"
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "daqgen environment check")
	_, _ = fmt.Fprintln(c.output, "========================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, errors []string
	for _, r := range results {
		if r.IsCritical() {
			errors = append(errors, r.Name+": "+r.Message)
		} else if r.Status != StatusPass {
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}

	if len(errors) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d error(s):\n", len(errors))
		for _, e := range errors {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", e)
		}
	}

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d warning(s):\n", len(warnings))
		for _, w := range warnings {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", w)
		}
	}
}

// CheckWritePermissions checks that generated documents and ROOT files can
// be written under dir.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	result := CheckResult{
		Name:     "data_dir",
		Required: true,
	}

	if dir == "" {
		result.Status = StatusFail
		result.Message = "output.data_dir is not set"
		return result
	}

	f, err := os.CreateTemp(dir, ".daqgen-preflight-*")
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s is not writable", dir)
		result.Details = err.Error()
		return result
	}
	_ = f.Close()
	_ = os.Remove(f.Name())

	result.Status = StatusPass
	result.Message = dir
	return result
}

// CheckSearchPath warns about search-path directories that do not exist.
func (c *Checker) CheckSearchPath() CheckResult {
	result := CheckResult{Name: "search_path"}

	var missing []string
	for _, dir := range c.templates.Dirs() {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}

	if len(missing) > 0 {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%d of %d directories missing", len(missing), len(c.templates.Dirs()))
		result.Details = strings.Join(missing, ", ")
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d directories", len(c.templates.Dirs()))
	return result
}

// CloneSourceFile is the file whose presence marks a clonable package.
var CloneSourceFile = filepath.Join("Generators", "ToySimulator.hh")

// CheckCloneSources reports whether clone-generator has sources to copy.
// It never fails a run.
func (c *Checker) CheckCloneSources() CheckResult {
	result := CheckResult{Name: "clone_sources"}

	root := c.cloneRoot
	if root == "" {
		repo := os.Getenv("LBNEARTDAQ_REPO")
		if repo == "" {
			result.Status = StatusWarn
			result.Message = "LBNEARTDAQ_REPO is not set"
			result.Details = "clone-generator needs --root"
			return result
		}
		root = filepath.Join(repo, "lbne-artdaq")
	}

	if _, err := os.Stat(filepath.Join(root, CloneSourceFile)); err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("no ToySimulator sources under %s", root)
		return result
	}

	result.Status = StatusPass
	result.Message = root
	return result
}
