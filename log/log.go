package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

const (
	logFlag    = log.Ldate | log.Ltime
	errLogFlag = log.Ldate | log.Ltime | log.Lshortfile
	errLogName = "error.log"
)

var (
	// Log is the logger for normal use
	Log = log.New(os.Stdout, "", logFlag)
	// Error is the Logger for errors
	Error = log.New(os.Stderr, "", errLogFlag)
)

// Init sends error output to error.log as well as stderr.
func Init() {
	f, err := os.OpenFile(errLogName, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0640)
	if err != nil {
		panic(err)
	}

	SetOutput(os.Stdout, io.MultiWriter(os.Stderr, f))
}

// SetOutput redirects both loggers, keeping the current prefix.
func SetOutput(out, errOut io.Writer) {
	Log.SetOutput(out)
	Error.SetOutput(errOut)
}

// UpdatePrefix Sets new prefix
func UpdatePrefix(prefix string) {
	if prefix != "" {
		prefix = fmt.Sprintf("[%s] ", prefix)
	}
	Log.SetPrefix(prefix)
	Error.SetPrefix(prefix)
}

// Printf is the alias for Log.Printf
func Printf(format string, v ...interface{}) {
	Log.Printf(format, v...)
}

// Println is the alias for Log.Println
func Println(v ...interface{}) {
	Log.Println(v...)
}

// Errorf writes to the error logger with the caller's file and line.
func Errorf(format string, v ...interface{}) {
	Error.Output(2, fmt.Sprintf(format, v...))
}
