// Package logger provides structured logging for flowkit using zerolog.
//
// It supports JSON and console output formats, log level configuration,
// and component-scoped loggers with structured fields.
//
// # Usage
//
//	log := logger.NewDefault("flowkit")
//	log.Info("stage added", logger.Fields("stage", 2, "workers", 5))
package logger
