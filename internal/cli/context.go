// Package cli provides the command-line interface for the pricecompare application.
package cli

import (
	"github.com/law-makers/pricecompare/internal/app"
)

// globalApp is set by the root command's pre-run hook and cleared after the
// command finishes. Commands run one at a time, so no locking is needed.
var globalApp *app.Application

// SetApp stores the Application for the running command
func SetApp(a *app.Application) {
	globalApp = a
}

// GetApp returns the Application of the running command, or nil
func GetApp() *app.Application {
	return globalApp
}
