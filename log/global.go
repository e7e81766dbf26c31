package log

import (
	"fmt"
	"log"
)

var (
	global       Logger
	filterLevels = make(map[Level]struct{})
)

func init() {
	global = NewStdLogger(log.Writer())
}

// SetLogger replaces the default std logger.
func SetLogger(l Logger) {
	global = l
}

// GetLogger returns the global logger.
func GetLogger() Logger {
	return global
}

// FilterLevel sets levels that will not be logged.
func FilterLevel(level ...Level) {
	for _, l := range level {
		switch l {
		case LevelDebug, LevelInfo, LevelWarn, LevelError:
			filterLevels[l] = struct{}{}
		default:
		}
	}
}

func Log(level Level, kvs ...interface{}) {
	if _, ok := filterLevels[level]; ok {
		return
	}
	global.Log(level, kvs...)
}

func Debugf(format string, v ...interface{}) {
	Log(LevelDebug, "msg", fmt.Sprintf(format, v...))
}

func Infof(format string, v ...interface{}) {
	Log(LevelInfo, "msg", fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	Log(LevelWarn, "msg", fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	Log(LevelError, "msg", fmt.Sprintf(format, v...))
}
