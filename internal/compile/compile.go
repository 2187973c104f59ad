package compile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"waste-bench/internal/logging"
	"waste-bench/internal/variant"

	"github.com/sirupsen/logrus"
)

// OptLevel controls code-generation aggressiveness, 0 (none) to 3 (most
// aggressive).
type OptLevel int

func ParseOptLevel(level int) (OptLevel, error) {
	if level < 0 || level > 3 {
		return 0, fmt.Errorf("invalid optimization level %d (must be 0-3)", level)
	}
	return OptLevel(level), nil
}

// GCFlags maps the level onto compiler flags: 0 disables optimization and
// inlining, 1 disables inlining only, 2 is the default code generation,
// 3 additionally drops bounds checks.
func (l OptLevel) GCFlags() []string {
	switch l {
	case 0:
		return []string{"-gcflags", "all=-N -l"}
	case 1:
		return []string{"-gcflags", "all=-l"}
	case 3:
		return []string{"-gcflags", "all=-B"}
	default:
		return nil
	}
}

func (l OptLevel) String() string {
	return fmt.Sprintf("-O%d", int(l))
}

// Error carries the compiler's diagnostic output for a failed build.
type Error struct {
	Variant string
	Output  string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to compile %s: %v\n%s", e.Variant, e.Err, e.Output)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Compiler struct {
	Binary     string
	BuildFlags []string
	BinDir     string
}

// Compile builds the variant at the given level into the bench binary
// directory. The executable is named after the variant. Builds are
// idempotent per (variant, level).
func (c *Compiler) Compile(ctx context.Context, v variant.Variant, level OptLevel) (string, error) {
	logger := logging.GetLogger()

	if err := os.MkdirAll(c.BinDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create binary directory %s: %w", c.BinDir, err)
	}

	binPath := filepath.Join(c.BinDir, v.Name)
	args := c.buildArgs(v, level, binPath)

	logger.WithFields(logrus.Fields{
		"variant":   v.Name,
		"opt_level": level.String(),
	}).Info("Compiling variant")

	cmd := exec.CommandContext(ctx, c.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &Error{Variant: v.Name, Output: stderr.String(), Err: err}
	}

	logger.WithField("binary", binPath).Debug("Variant compiled")
	return binPath, nil
}

func (c *Compiler) buildArgs(v variant.Variant, level OptLevel, binPath string) []string {
	args := []string{"build"}
	args = append(args, level.GCFlags()...)
	args = append(args, c.BuildFlags...)
	args = append(args, "-o", binPath, "./"+filepath.ToSlash(v.Dir))
	return args
}
