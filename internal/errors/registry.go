package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/eventmanager/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E120-E149)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "eventmanager.json could not be read or parsed.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or not recognized.",
		DocURL:   docBase + "E121",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No eventmanager.json was found in the given directory.",
		DocURL:   docBase + "E141",
	},

	// ============================================
	// CLI Errors (E150-E169)
	// ============================================

	"E150": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command-line flag has an invalid value.",
		DocURL:   docBase + "E150",
	},

	// ============================================
	// Server Errors (E170-E189)
	// ============================================

	"E170": {
		Category: CategoryServer,
		Message:  "Server failed to start",
		Detail:   "The inspect server could not listen on the configured address.",
		DocURL:   docBase + "E170",
	},
	"E171": {
		Category: CategoryServer,
		Message:  "Server shutdown failed",
		Detail:   "The server did not shut down cleanly before the deadline.",
		DocURL:   docBase + "E171",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
