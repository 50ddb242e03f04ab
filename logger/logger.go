package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

type LogLevel int

const (
	LevelInfo LogLevel = iota + 1
	LevelWarn
	LevelError
	LevelFatal
	// LevelOff silences every message.
	LevelOff
)

// ParseLevel maps "info", "warn", "error", "fatal" and "off" to a level.
// Unknown names yield LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	case "off", "none":
		return LevelOff
	}
	return LevelInfo
}

// Interface logger interface
type Logger interface {
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
}

type logger struct {
	sync.Mutex
	lvl        LogLevel
	infoLabel  string
	warnLabel  string
	errorLabel string
	fatalLabel string
	w          io.Writer
}

// NewStdLogger output log to command line
func NewStdLogger() *logger {
	return NewWriterLogger(os.Stdout)
}

// NewWriterLogger output log to w
func NewWriterLogger(w io.Writer) *logger {
	return &logger{
		lvl:        LevelInfo,
		infoLabel:  "[INFO] ",
		warnLabel:  "[WARN] ",
		errorLabel: "[ERROR] ",
		fatalLabel: "[FATAL] ",
		w:          w,
	}
}

// NewFileLogger output log to a file
func NewFileLogger(filePath string) (*logger, error) {
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("fail to create log file: %w", err)
	}
	return NewWriterLogger(f), nil
}

func (l *logger) SetLevel(lvl LogLevel) {
	l.Lock()
	l.lvl = lvl
	l.Unlock()
}

func (l *logger) printf(lvl LogLevel, label, format string, v ...interface{}) {
	l.Lock()
	defer l.Unlock()
	if lvl < l.lvl {
		return
	}
	fmt.Fprintf(l.w, label+format+"\n", v...)
}

func (l *logger) Infof(format string, v ...interface{}) {
	l.printf(LevelInfo, l.infoLabel, format, v...)
}

func (l *logger) Warnf(format string, v ...interface{}) {
	l.printf(LevelWarn, l.warnLabel, format, v...)
}

func (l *logger) Errorf(format string, v ...interface{}) {
	l.printf(LevelError, l.errorLabel, format, v...)
}

func (l *logger) Fatalf(format string, v ...interface{}) {
	l.printf(LevelFatal, l.fatalLabel, format, v...)
}

type nopLogger struct{}

// NewNopLogger discards everything.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Fatalf(string, ...interface{}) {}
