// Copyright (C) 2023 The Eventival Authors.
//
// This file is part of Eventival.
//
// Eventival is free software: you can redistribute it and/or modify it under
// the terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Eventival is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public
// License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Eventival.  If not, see <https://www.gnu.org/licenses/>.

package log

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Fatal(v ...interface{})
	Infof(format string, v ...interface{})
	Info(v ...interface{})
	Warnf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Infow(msg string, kv ...interface{})
	Warnw(msg string, kv ...interface{})
}

var logger Logger = defaultLogger("info")

func defaultLogger(level string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.OutputPaths = []string{"stdout"}
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// SetLevel replaces the package logger with one logging at level.
func SetLevel(level string) {
	logger = defaultLogger(level)
}

// SetLogger is used by tests to silence or capture output.
func SetLogger(l Logger) {
	logger = l
}

func Nop() Logger {
	return zap.NewNop().Sugar()
}

func Fatalln(v ...interface{}) {
	logger.Fatal(v...)
}

func Printf(format string, v ...interface{}) {
	logger.Infof(strings.TrimRight(format, "\n"), v...)
}

func Println(v ...interface{}) {
	logger.Info(v...)
}

func Warnf(format string, v ...interface{}) {
	logger.Warnf(strings.TrimRight(format, "\n"), v...)
}

func Debugf(format string, v ...interface{}) {
	logger.Debugf(strings.TrimRight(format, "\n"), v...)
}

// Infow logs msg with alternating key/value pairs.
func Infow(msg string, kv ...interface{}) {
	logger.Infow(msg, kv...)
}

func Warnw(msg string, kv ...interface{}) {
	logger.Warnw(msg, kv...)
}
