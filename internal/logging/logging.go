// Package logging builds the zerolog logger shared by the CLI and the
// settings resolver.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the level and output format of the logger.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Setup creates a zerolog logger writing to w. Format "text" renders
// human-readable lines; anything else emits JSON. The default level is warn,
// so a normal run only reports mirror fallbacks.
func Setup(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	out := w
	if strings.EqualFold(cfg.Format, "text") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(level), nil
}
