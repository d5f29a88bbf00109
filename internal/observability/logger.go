package observability

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// Logger writes leveled key=value lines to stderr. Kept deliberately
// small: the service's structured output is the audit trail in
// postgres, not the process log.
type Logger struct {
	std    *log.Logger
	fields map[string]string
}

func NewLogger() *Logger {
	return &Logger{std: log.New(os.Stderr, "", log.LstdFlags|log.LUTC)}
}

func (l *Logger) With(key, value string) *Logger {
	fields := make(map[string]string, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{std: l.std, fields: fields}
}

func (l *Logger) Info(msg string, kv ...string) {
	l.write("INFO", msg, kv)
}

func (l *Logger) Warn(msg string, kv ...string) {
	l.write("WARN", msg, kv)
}

func (l *Logger) Error(msg string, kv ...string) {
	l.write("ERROR", msg, kv)
}

func (l *Logger) write(level, msg string, kv []string) {
	if l == nil || l.std == nil {
		return
	}
	var b strings.Builder
	b.WriteString(level)
	b.WriteString(" ")
	b.WriteString(msg)
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, l.fields[k])
	}
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %s=%s", kv[i], kv[i+1])
	}
	l.std.Print(b.String())
}
