package bthost

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used throughout the stack.
type Logger interface {
	Info(...interface{})
	Debug(...interface{})
	Error(...interface{})
	Warn(...interface{})

	Infof(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Warnf(string, ...interface{})

	ChildLogger(tags map[string]interface{}) Logger
}

// Each module ("hci", "acl", "l2cap", ...) logs through its own logrus
// logger so its level can be raised or lowered on its own. Modules
// without an explicit level follow the base level.
var (
	logMu   sync.Mutex
	custom  Logger
	base    = newLogrus(logrus.InfoLevel)
	modules = map[string]*moduleLog{}
)

type moduleLog struct {
	log   *logrus.Logger
	fixed bool
}

func newLogrus(lvl logrus.Level) *logrus.Logger {
	return &logrus.Logger{
		Formatter: &logrus.TextFormatter{DisableTimestamp: true},
		Level:     lvl,
		Out:       os.Stderr,
		Hooks:     make(logrus.LevelHooks),
	}
}

type defaultLogger struct {
	*logrus.Entry
}

func (d *defaultLogger) ChildLogger(ff map[string]interface{}) Logger {
	return &defaultLogger{d.Entry.WithFields(ff)}
}

// SetLogger replaces the logrus backed loggers. Module levels no longer
// apply once a custom logger is set; nil restores the default.
func SetLogger(l Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	custom = l
}

// GetLogger returns the logger for messages that belong to no module.
func GetLogger() Logger {
	logMu.Lock()
	defer logMu.Unlock()
	if custom != nil {
		return custom
	}
	return &defaultLogger{logrus.NewEntry(base)}
}

// ModuleLogger returns a logger tagged with the module name and filtered
// by the module's level.
func ModuleLogger(name string) Logger {
	logMu.Lock()
	defer logMu.Unlock()
	tag := map[string]interface{}{"module": name}
	if custom != nil {
		return custom.ChildLogger(tag)
	}
	return &defaultLogger{moduleFor(name).log.WithFields(tag)}
}

func moduleFor(name string) *moduleLog {
	m := modules[name]
	if m == nil {
		m = &moduleLog{log: newLogrus(base.GetLevel())}
		m.log.Out = base.Out
		modules[name] = m
	}
	return m
}

// SetLogLevel sets the base level from its name ("debug", "info",
// "warn", ...). Modules given their own level keep it.
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logMu.Lock()
	defer logMu.Unlock()
	base.SetLevel(lvl)
	for _, m := range modules {
		if !m.fixed {
			m.log.SetLevel(lvl)
		}
	}
	return nil
}

// SetModuleLevel sets the level of one module, whether or not it has
// logged yet.
func SetModuleLevel(module, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "module %s", module)
	}
	logMu.Lock()
	defer logMu.Unlock()
	m := moduleFor(module)
	m.log.SetLevel(lvl)
	m.fixed = true
	return nil
}
