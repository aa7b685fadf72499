package log

/*
   Copyright 2018 Bruno Moura <brunotm@gmail.com>

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// traceLevel sits one notch below zap's DebugLevel, for the per-task
// scheduling chatter (task picked up, future polled) that is too noisy even
// for -debug.
const traceLevel = zapcore.DebugLevel - 1

var (
	config zap.Config
	root   *zap.Logger
	logger *zap.SugaredLogger
)

func init() {
	var err error
	config = zap.NewProductionConfig()
	config.EncoderConfig = zap.NewProductionEncoderConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.Sampling = nil
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder // "2006-01-02T15:04:05.000Z0700"
	// root, err = config.Build(zap.AddCallerSkip(1))
	root, err = config.Build()
	if err != nil {
		panic(err)
	}
	logger = root.Sugar()
}

// rfc3339TimeEncoder
func rfc3339TimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(time.RFC3339Nano))
}

// Logger interface
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Tracew(msg string, keysAndValues ...interface{})
}

type sugared struct {
	*zap.SugaredLogger
}

// Tracew logs below debug level; a no-op unless SetTrace has been called,
// since zap has no native level below Debug.
func (s sugared) Tracew(msg string, keysAndValues ...interface{}) {
	if ce := s.Desugar().Check(traceLevel, msg); ce != nil {
		s.SugaredLogger.Debugw(msg, keysAndValues...)
	}
}

// New returns a logger with the given structured context
func New(keysAndValues ...interface{}) Logger {
	return sugared{logger.With(keysAndValues...)}
}

// SetTrace log level (below zap's Debug; see Tracew)
func SetTrace() {
	config.Level.SetLevel(traceLevel)
}

// SetDebug log level
func SetDebug() {
	config.Level.SetLevel(zap.DebugLevel)
}

// SetInfo log level
func SetInfo() {
	config.Level.SetLevel(zap.InfoLevel)
}

// SetWarn log level
func SetWarn() {
	config.Level.SetLevel(zap.WarnLevel)
}

// SetError log level
func SetError() {
	config.Level.SetLevel(zap.ErrorLevel)
}

// Record is one telemetry event in the core's log record format: a
// timestamp, a level name, a label (the component/model/treatment that
// emitted it) and a message.
type Record struct {
	Timestamp time.Time
	Level     string
	Label     string
	Message   string
}

// String renders a Record using the default textual rendering:
// "[TS] level: label: message".
func (r Record) String() string {
	return fmt.Sprintf("[%s] %s: %s: %s", r.Timestamp.Format("2006-01-02T15:04:05.000Z0700"), r.Level, r.Label, r.Message)
}
