// Package logger provides structured logging functionality for the wfmigrate CLI tool.
package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with different severity levels.
type Logger struct {
	base    *zap.Logger
	sugar   *zap.SugaredLogger
	success *zap.SugaredLogger
	debug   bool
	logFile *os.File
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	core := zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), level(debug))
	return newLogger(core, debug, nil)
}

// NewWithFile creates a new Logger instance that writes to both console and a file.
func NewWithFile(debug bool, logFilePath string) (*Logger, error) {
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stderr), level(debug)),
		zapcore.NewCore(consoleEncoder(), zapcore.AddSync(logFile), level(debug)),
	)
	return newLogger(core, debug, logFile), nil
}

func newLogger(core zapcore.Core, debug bool, logFile *os.File) *Logger {
	base := zap.New(core)
	return &Logger{
		base:    base,
		sugar:   base.Sugar(),
		success: base.Named("done").Sugar(),
		debug:   debug,
		logFile: logFile,
	}
}

func consoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	})
}

func level(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// Close flushes buffered entries and closes the log file if one is open.
func (l *Logger) Close() error {
	// Syncing a terminal fails on some platforms; there is nothing to recover.
	_ = l.base.Sync()
	if l.logFile != nil {
		err := l.logFile.Close()
		l.logFile = nil
		return err
	}
	return nil
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.sugar.Info(msg)
}

// Infof logs a formatted informational message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Success logs a success message.
func (l *Logger) Success(msg string) {
	l.success.Info(msg)
}

// Successf logs a formatted success message.
func (l *Logger) Successf(format string, args ...interface{}) {
	l.success.Infof(format, args...)
}

// Warning logs a warning message.
func (l *Logger) Warning(msg string) {
	l.sugar.Warn(msg)
}

// Warningf logs a formatted warning message.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string) {
	l.sugar.Error(msg)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Debug logs a debug message (only if debug mode is enabled).
func (l *Logger) Debug(msg string) {
	l.sugar.Debug(msg)
}

// Debugf logs a formatted debug message (only if debug mode is enabled).
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Step logs a step header for workflow progress.
func (l *Logger) Step(stepNum int, description string) {
	l.Info("")
	l.Info("=========================================")
	l.Infof("Step %d: %s", stepNum, description)
	l.Info("=========================================")
}

// GetTimestamp returns a timestamp string in the format YYYYMMDD-HHMMSS.
func GetTimestamp() string {
	return time.Now().Format("20060102-150405")
}
