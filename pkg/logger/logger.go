package logger

import (
	"io"
	"log"
	"os"
)

var (
	Info    = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	Warning = log.New(os.Stdout, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error   = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
)

// Init points the leveled loggers at stdout/stderr. Call once from main.
func Init() {
	Info.SetOutput(os.Stdout)
	Warning.SetOutput(os.Stdout)
	Error.SetOutput(os.Stderr)
}

// Discard silences all levels (tests, quiet CLI runs).
func Discard() {
	Info.SetOutput(io.Discard)
	Warning.SetOutput(io.Discard)
	Error.SetOutput(io.Discard)
}
