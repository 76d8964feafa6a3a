// Command ismsctl keeps the compliance catalogue in sync and enforces the
// audit-log retention policy.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// Exit statuses.
const (
	exitOK        = 0
	exitFailure   = 1
	exitInvalid   = 2
	exitCancelled = 3
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// streams are the process I/O, swapped out in tests.
type streams struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{in: os.Stdin, out: os.Stdout, errOut: os.Stderr})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, s streams) int {
	root := newRootCmd(s)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	code := exitCode(err)
	fmt.Fprintln(s.errOut, "Error:", err)
	return code
}

// exitCode maps an error onto the documented exit statuses.
func exitCode(err error) int {
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	var pv *retention.PolicyViolation
	if errors.As(err, &pv) {
		return exitInvalid
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeNotFound, dErrors.CodePolicyViolation:
		return exitInvalid
	}
	return exitFailure
}

type rootFlags struct {
	envFiles []string
}

func newRootCmd(s streams) *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:           "ismsctl",
		Short:         "Compliance catalogue and audit-log maintenance",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.errOut)
	root.PersistentFlags().StringArrayVar(&flags.envFiles, "env-file", []string{".env"}, "Environment file to load before reading ISMS_* variables (may be repeated)")

	root.AddCommand(newFrameworksCmd(s, &flags), newAuditLogCmd(s, &flags))
	return root
}
