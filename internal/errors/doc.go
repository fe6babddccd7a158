// Package errors provides coded, actionable error messages for the hyper
// CLI and configuration loader.
//
// Each code (e.g., "E120") maps to a category, a short message and a
// longer detail. Errors are built from the registry and decorated:
//
//	err := errors.New("E122").
//	    WithDetail("server.port is 70000").
//	    WithSuggestion("Pick a port between 1 and 65535")
//
//	errors.PrintError(err)
//	// ERROR E122: Invalid port number
//	//
//	//   server.port is 70000
//	//
//	//   Hint: Pick a port between 1 and 65535
package errors
