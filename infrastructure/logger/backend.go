package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

const normalLogSize = 512

// Flags to modify Backend's behavior.
const (
	// LogFlagLongFile modifies the logger output to include full path and line number
	// of the logging callsite, e.g. /a/b/c/main.go:123.
	LogFlagLongFile uint32 = 1 << iota

	// LogFlagShortFile modifies the logger output to include filename and line number
	// of the logging callsite, e.g. main.go:123. takes precedence over LogFlagLongFile.
	LogFlagShortFile
)

// logFlagsEnvVar names the environment variable holding the comma separated
// flags of backends created by NewBackend
const logFlagsEnvVar = "LOGFLAGS"

var logFlagsByName = map[string]uint32{
	"longfile":  LogFlagLongFile,
	"shortfile": LogFlagShortFile,
}

func flagsFromEnv() uint32 {
	var flags uint32
	for _, name := range strings.Split(os.Getenv(logFlagsEnvVar), ",") {
		flags |= logFlagsByName[strings.TrimSpace(name)]
	}
	return flags
}

const (
	defaultThresholdKB = 100 * 1000 // 100 MB logs by default.
	defaultMaxRolls    = 8          // keep 8 last logs by default.
)

// levelWriter receives every entry at or above minLevel
type levelWriter struct {
	io.WriteCloser
	minLevel Level
}

// Backend is a logging backend. Subsystem loggers created from the backend
// send their entries to a single goroutine that writes them out, so writes
// from different subsystems never interleave.
type Backend struct {
	flag      uint32
	isRunning uint32
	writers   []levelWriter
	writeChan chan logEntry
	done      sync.WaitGroup
}

// NewBackendWithFlags returns a Backend using the given flags rather than
// the ones set in the LOGFLAGS environment variable.
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{flag: flags, writeChan: make(chan logEntry)}
}

// NewBackend returns a Backend using the flags set in the LOGFLAGS
// environment variable.
func NewBackend() *Backend {
	return NewBackendWithFlags(flagsFromEnv())
}

func (b *Backend) addWriter(writer io.WriteCloser, minLevel Level) error {
	if b.IsRunning() {
		return errors.New("The logger is already running")
	}
	b.writers = append(b.writers, levelWriter{WriteCloser: writer, minLevel: minLevel})
	return nil
}

// AddLogFile adds a rotated log file, with the default rotation settings,
// receiving every entry at or above logLevel
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	return b.AddLogFileWithCustomRotator(logFile, logLevel, defaultThresholdKB, defaultMaxRolls)
}

// AddLogWriter adds logWriter as a destination of every entry at or above
// logLevel. The backend closes it on Close.
func (b *Backend) AddLogWriter(logWriter io.WriteCloser, logLevel Level) error {
	return b.addWriter(logWriter, logLevel)
}

// AddLogFileWithCustomRotator adds a log file rolled over every thresholdKB,
// keeping maxRolls old files. The file and its directory are created if
// needed.
func (b *Backend) AddLogFileWithCustomRotator(logFile string, logLevel Level, thresholdKB int64, maxRolls int) error {
	if b.IsRunning() {
		return errors.New("The logger is already running")
	}
	logDir := filepath.Dir(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		return errors.Wrapf(err, "failed to create log directory %s", logDir)
	}
	r, err := rotator.New(logFile, thresholdKB, false, maxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create file rotator for %s", logFile)
	}
	return b.addWriter(r, logLevel)
}

// Run starts writing out log entries in the background. It may only be
// called once.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 0, 1) {
		return errors.New("The logger is already running")
	}
	b.done.Add(1)
	go func() {
		defer b.done.Done()
		defer func() {
			if err := recover(); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "Fatal error in logger.Backend goroutine: %+v\n", err)
				_, _ = fmt.Fprintf(os.Stderr, "Goroutine stacktrace: %s\n", debug.Stack())
			}
		}()
		b.writeEntries()
	}()
	return nil
}

func (b *Backend) writeEntries() {
	for entry := range b.writeChan {
		for _, writer := range b.writers {
			if entry.level >= writer.minLevel {
				_, _ = writer.Write(entry.log)
			}
		}
	}
}

// IsRunning returns whether Run was called and Close wasn't
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.isRunning) != 0
}

// Close flushes the pending entries and closes all writers
func (b *Backend) Close() {
	atomic.StoreUint32(&b.isRunning, 0)
	close(b.writeChan)
	b.done.Wait()
	for _, writer := range b.writers {
		_ = writer.Close()
	}
}

// Logger returns a new logger for a particular subsystem that writes to the
// Backend b. A tag describes the subsystem and is included in all log
// messages. The logger is off until its level is set.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{LevelOff, subsystemTag, b, b.writeChan}
}
