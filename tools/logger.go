package tools

import (
	"log"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05.000"

var (
	loggerEnabled   = true
	loggerTimestamp = true
)

func EnableLogger() {
	loggerEnabled = true
}

func DisableLogger() {
	loggerEnabled = false
}

func EnableLoggerTimestamp() {
	loggerTimestamp = true
}

func DisableLoggerTimestamp() {
	loggerTimestamp = false
}

// LogOutput prints progress messages for the CLI, optionally prefixed with a
// wall-clock timestamp. Silenced entirely when the quiet flag is set.
func LogOutput(values ...interface{}) {
	if !loggerEnabled {
		return
	}
	if loggerTimestamp {
		values = append([]interface{}{"[" + time.Now().Format(timestampLayout) + "]"}, values...)
	}
	log.Println(values...)
}
