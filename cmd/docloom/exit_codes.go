package main

import (
	"errors"
	"os"

	"github.com/docloom/docloom/anchor"
	"github.com/docloom/docloom/contract"
	"github.com/docloom/docloom/docx"
	"github.com/docloom/docloom/opc"
)

// Exit codes for the docloom CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags or arguments
	ExitIO      = 3 // File not found, unreadable or malformed package
	ExitStrict  = 4 // Render preflight failure: unmapped role or dangling reference
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is/errors.As, so callers must wrap with fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var unmapped *contract.UnmappedRoleError
	var dangling *anchor.DanglingReferenceError
	var renderErr *docx.RenderError
	if errors.As(err, &unmapped) || errors.As(err, &dangling) || errors.As(err, &renderErr) {
		return ExitStrict
	}

	var missing *opc.MissingPartError
	var malformed *opc.MalformedPackageError
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.As(err, &missing) ||
		errors.As(err, &malformed) {
		return ExitIO
	}

	if errors.Is(err, errUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
