// Callisto is a compile service for a small lisp-like expression language.
//
// It compiles prefix expressions such as (add 2 (subtract 4 2)) into
// C-style call expressions such as add(2, subtract(4, 2)); and wraps the
// compiler in the operational shell a build pipeline needs:
//   - One-shot and batch compilation from the command line
//   - An HTTP compile service with a queryable compilation ledger
//   - Watch mode that recompiles sources on change
//   - Git-synced source trees for GitOps pipelines
//   - Content-addressed output caching
//
// Usage:
//
//	# Compile a file to stdout
//	callisto compile program.lisp
//
//	# Compile a directory tree into build/
//	callisto compile ./src --outdir build
//
//	# Start the compile service
//	callisto run --config /path/to/config.yaml
//
//	# Recompile a directory on change
//	callisto watch ./src
//
//	# Query the compilation ledger
//	callisto history list --status error --limit 10
//
//	# Show version information
//	callisto version
//
// For complete documentation, see: https://github.com/mercator-hq/callisto
package main

func main() {
	Execute()
}
