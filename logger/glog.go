package logger

import (
	"fmt"

	"github.com/golang/glog"
)

type glogLogger struct {
	lvl LogLevel
}

// NewGlogLogger forwards to glog, which honours its own -v, -logtostderr and
// -log_dir flags. Fatalf is logged at error severity and does not exit.
func NewGlogLogger(lvl LogLevel) Logger {
	return &glogLogger{lvl: lvl}
}

func (g *glogLogger) Infof(format string, v ...interface{}) {
	if g.lvl <= LevelInfo {
		glog.InfoDepth(1, fmt.Sprintf(format, v...))
	}
}

func (g *glogLogger) Warnf(format string, v ...interface{}) {
	if g.lvl <= LevelWarn {
		glog.WarningDepth(1, fmt.Sprintf(format, v...))
	}
}

func (g *glogLogger) Errorf(format string, v ...interface{}) {
	if g.lvl <= LevelError {
		glog.ErrorDepth(1, fmt.Sprintf(format, v...))
	}
}

func (g *glogLogger) Fatalf(format string, v ...interface{}) {
	if g.lvl <= LevelFatal {
		glog.ErrorDepth(1, "[FATAL] "+fmt.Sprintf(format, v...))
	}
}
