// Package logging hands out leveled component loggers backed by gommon/log, the logger echo uses.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
)

var (
	mu      sync.Mutex
	level   log.Lvl   = log.INFO
	output  io.Writer = os.Stdout
	loggers = make(map[string]*log.Logger)
)

// ParseLevel maps a config level name to a gommon level.
func ParseLevel(name string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off", "none":
		return log.OFF, nil
	}
	return log.INFO, fmt.Errorf("unknown log level %q", name)
}

// Configure sets level and output for every logger, including ones already handed out.
func Configure(lvl log.Lvl, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	level = lvl
	if w != nil {
		output = w
	}
	for _, l := range loggers {
		l.SetLevel(level)
		l.SetOutput(output)
	}
}

// New returns the logger whose lines carry component as prefix. Callers asking for the same
// component share one logger.
func New(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[component]; ok {
		return l
	}
	l := log.New(component)
	l.SetLevel(level)
	l.SetOutput(output)
	loggers[component] = l
	return l
}

// Discard silences every logger. Tests call it to keep output readable.
func Discard() {
	Configure(log.OFF, io.Discard)
}
