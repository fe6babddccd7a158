package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E159)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "hyper.yaml could not be read or is not valid YAML.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid log configuration",
		Detail:   "log.level must be debug, info, warn or error and log.format must be text or json.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The port must be between 0 and 65535.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid session limits",
		Detail:   "Session timeouts, message size and event queue length must not be negative.",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No hyper.yaml was found. Flags and defaults are used instead.",
	},

	// ============================================
	// CLI Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryCLI,
		Message:  "Unknown demo app",
		Detail:   "The requested demo is not registered.",
	},
	"E161": {
		Category: CategoryCLI,
		Message:  "Attach failed",
		Detail:   "Could not connect to the session endpoint.",
	},

	// ============================================
	// Server Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryServer,
		Message:  "Server failed to start",
		Detail:   "The listener could not be opened. The address may be in use.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for a code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
