package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

var (
	InfoLogger  *log.Logger
	WarnLogger  *log.Logger
	ErrorLogger *log.Logger
)

func init() {
	SetOutput(os.Stdout, os.Stderr)
}

// SetOutput redirects the loggers, e.g. to io.Discard in tests.
func SetOutput(out, errOut io.Writer) {
	InfoLogger = log.New(out, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	WarnLogger = log.New(out, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(errOut, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// Info logs msg followed by optional key/value pairs: Info("loaded", "count", 3).
func Info(msg string, kv ...interface{}) {
	InfoLogger.Output(2, msg+fields(kv))
}

func Warn(msg string, kv ...interface{}) {
	WarnLogger.Output(2, msg+fields(kv))
}

func Error(msg string, err error, kv ...interface{}) {
	line := msg
	if err != nil {
		line += ": " + err.Error()
	}
	ErrorLogger.Output(2, line+fields(kv))
}

func fields(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v", kv[i])
		}
	}
	return b.String()
}
