package sl

import "log/slog"

// Err returns a slog attribute for an error value.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Module returns a slog attribute tagging the emitting module.
func Module(name string) slog.Attr {
	return slog.Attr{
		Key:   "module",
		Value: slog.StringValue(name),
	}
}

// Secret returns a slog attribute with the value masked down to its last
// four characters. Raw credential values never reach a log line.
func Secret(key, value string) slog.Attr {
	masked := "<unset>"
	if len(value) > 4 {
		masked = "********" + value[len(value)-4:]
	} else if value != "" {
		masked = "********"
	}
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(masked),
	}
}
