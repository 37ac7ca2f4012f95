package logger

import (
	"log"

	"go.uber.org/zap"
)

var zlog *zap.Logger

func init() {
	var err error
	zlog, err = zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}
}

// Configure replaces the process logger. Used by tests and the CLI to
// switch between production and development encoders.
func Configure(development bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return err
	}
	zlog = l
	return nil
}

func Info(msg string, fields ...zap.Field) {
	zlog.Info(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	zlog.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	zlog.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	zlog.Error(msg, fields...)
}
