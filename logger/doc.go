// Package logger provides structured logging built on zerolog.
//
// A global logger is initialized once from config at startup; packages
// obtain component-tagged child loggers via WithComponent:
//
//	logger.Init(cfg.Logging)
//	log := logger.WithComponent("hub")
//	log.Info("connection registered", logger.Fields("key", "acme"))
package logger
