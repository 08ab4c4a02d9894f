// Package foundry provides standardized process exit codes.
//
// The teacher's version of this package (gofulmen/foundry) re-exports a
// catalog generated from a private "crucible" monorepo that is not
// available outside that organization. Rather than fabricate a fake
// replace-directive dependency, this package inlines the small set of
// exit codes walktree's CLI (cmd/walktree) actually needs, keeping the
// same ExitCode/name/description shape the teacher exposes.
package foundry

// ExitCode is a process exit status. Alias for int so it composes
// directly with os.Exit.
type ExitCode = int

const (
	ExitSuccess ExitCode = 0
	ExitFailure ExitCode = 1

	// ExitInvalidArgument covers configuration errors, such as mixing
	// file_types/file_types_except (§6, §7).
	ExitInvalidArgument ExitCode = 40

	// ExitSecurityViolation is unused by walktree today (no
	// archive-creation path exists to escape) and no walkerr code maps
	// onto it; it is kept in the catalog below for parity with the
	// teacher's fulpack.
	ExitSecurityViolation ExitCode = 51

	// ExitResourceExhausted names timeouts waiting on the external RAR
	// tool (§4.5.4, §7). No walkerr code maps onto it: a RAR timeout
	// reaches the error handler like any other recoverable failure.
	ExitResourceExhausted ExitCode = 34

	// ExitDataCorrupt covers archive-open/entry failures (§7).
	ExitDataCorrupt ExitCode = 60

	// ExitExternalToolMissing covers an absent unrar-compatible binary
	// (§6 "External tool dependency").
	ExitExternalToolMissing ExitCode = 41

	// ExitInternalError covers the tree-builder's fatal re-entry case
	// (§4.6, §7) — never silently absorbed.
	ExitInternalError ExitCode = 70
)

// ExitCodeInfo documents one code. Trimmed from the teacher's
// YAML-catalog-driven ExitCodeInfo to the fields walktree actually
// surfaces (no BSD-compatibility mode, no simplified-mode mapping —
// those exist in the teacher to satisfy a cross-ecosystem exit-code
// standard this library doesn't participate in).
type ExitCodeInfo struct {
	Code        ExitCode
	Name        string
	Description string
}

// catalog is intentionally a plain Go map rather than the teacher's
// embedded-YAML catalog loader: there is no external schema to load it
// from here, and the set of codes is small and static.
var catalog = map[ExitCode]ExitCodeInfo{
	ExitSuccess:             {ExitSuccess, "EXIT_SUCCESS", "Traversal completed normally"},
	ExitFailure:             {ExitFailure, "EXIT_FAILURE", "Unclassified failure"},
	ExitInvalidArgument:     {ExitInvalidArgument, "EXIT_INVALID_ARGUMENT", "Invalid walker configuration"},
	ExitSecurityViolation:   {ExitSecurityViolation, "EXIT_SECURITY_VIOLATION", "Security-sensitive path rejected"},
	ExitResourceExhausted:   {ExitResourceExhausted, "EXIT_RESOURCE_EXHAUSTED", "External tool timed out"},
	ExitDataCorrupt:         {ExitDataCorrupt, "EXIT_DATA_CORRUPT", "Archive could not be opened or read"},
	ExitExternalToolMissing: {ExitExternalToolMissing, "EXIT_EXTERNAL_TOOL_MISSING", "Required external tool not found on PATH"},
	ExitInternalError:       {ExitInternalError, "EXIT_INTERNAL_ERROR", "Internal re-entrant failure"},
}

// Describe returns metadata for code, or a generic "unknown" entry.
func Describe(code ExitCode) ExitCodeInfo {
	if info, ok := catalog[code]; ok {
		return info
	}
	return ExitCodeInfo{Code: code, Name: "EXIT_UNKNOWN", Description: "Unrecognized exit code"}
}
