// Package log constructs the [slog.Handler] used by the rawsync command.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Supported log formats.
const (
	TextFormat   = "text"
	LogfmtFormat = "logfmt"
	JSONFormat   = "json"
)

// CreateHandler returns a [slog.Handler] writing to w at the given level and
// format. An empty format selects [TextFormat].
func CreateHandler(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	level, err := charmlog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	var f charmlog.Formatter
	switch strings.ToLower(logFormat) {
	case TextFormat, "":
		f = charmlog.TextFormatter
	case LogfmtFormat:
		f = charmlog.LogfmtFormatter
	case JSONFormat:
		f = charmlog.JSONFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", logFormat)
	}

	return charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       f,
		ReportTimestamp: true,
	}), nil
}
