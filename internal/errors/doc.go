// Package errors provides coded, actionable errors for the eventmanager
// configuration and CLI.
//
// Each error has a code (e.g. "E120") that maps to a category, a short
// message, a longer explanation and a documentation URL. Call sites add
// specifics:
//
//	err := errors.New("E121").
//	    WithDetail(`log.level "loud" is not one of debug, info, warn, error`).
//	    WithSuggestion(`Set "log": {"level": "info"} in eventmanager.json`)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E121: Invalid configuration value
//	//
//	//   log.level "loud" is not one of debug, info, warn, error
//	//
//	//   Hint: Set "log": {"level": "info"} in eventmanager.json
//	//
//	//   Learn more: https://vango.dev/docs/eventmanager/errors/E121
//
// Registry errors from package tracker are not coded; they are returned as
// *tracker.ValidationError and *tracker.RegistrationError.
package errors
