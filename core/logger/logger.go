package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	log  *zap.SugaredLogger
	once sync.Once
)

// Init configures the process logger. "production" gets JSON output,
// anything else gets the development console encoder.
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	if environment == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(l)
	log = l.Sugar()
	return nil
}

func get() *zap.SugaredLogger {
	once.Do(func() {
		if log == nil {
			l, _ := zap.NewDevelopment()
			log = l.Sugar()
		}
	})
	return log
}

func Debug(msg string, keysAndValues ...any) {
	get().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	get().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	get().Warnw(msg, keysAndValues...)
}

// Error accepts either a bare error ("Component:Method", err) or
// key/value pairs like the other levels.
func Error(msg string, args ...any) {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			get().Errorw(msg, "error", err)
			return
		}
	}
	get().Errorw(msg, args...)
}

func Sync() {
	_ = get().Sync()
}
