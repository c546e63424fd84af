// Package diarclog provides the structured logger the compress driver
// uses for the logging hook spec.md §7 names (skipped-file
// warnings, phase progress), built on go.uber.org/zap, the teacher's
// logging library.
package diarclog

import "go.uber.org/zap"

// New builds a *zap.SugaredLogger; debug selects zap's development
// preset (console-friendly, debug-level enabled) over its production
// preset (JSON, info-level).
func New(debug bool) *zap.SugaredLogger {
	var l *zap.Logger
	var err error
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		// zap's own constructors only fail on sink misconfiguration;
		// the default sinks (stderr) cannot fail to open.
		l = zap.NewNop()
	}
	return l.Sugar()
}

// Fields builds the alternating key-value slice zap's *w methods take,
// keyed to the identifiers diarc's object graph and chunker use most:
// chunk offsets, object ids, file paths.
func Fields(kv ...interface{}) []interface{} {
	return kv
}
