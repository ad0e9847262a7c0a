package logsplit

import "log/slog"

// log follows the teacher's package-level structured-logger idiom
// (internal/controller/controller.go's `var log = slog.Default()`).
var log = slog.Default()
