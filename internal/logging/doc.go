// Package logging builds the slog loggers used by both framed daemons.
//
// It provides a console handler tuned for journal/terminal reading, a JSON
// handler for machine consumption, and small attr helpers so call sites stay
// terse. Component loggers carry a "component" attribute that the console
// handler folds into the message prefix.
package logging
