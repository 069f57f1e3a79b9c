// Package logging turns [config.LoggingConfig] into an arbor logger.
package logging
