package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/cellnet/celld/infrastructure/logger"
)

// flushTimeout bounds how long a crashing process waits for its log to flush
const flushTimeout = 5 * time.Second

// HandlePanic must be deferred directly. It recovers a panic in the named
// goroutine, logs it together with the stack trace of the spawning
// goroutine (when known), and terminates the process.
func HandlePanic(log *logger.Logger, goroutineName string, spawnStackTrace []byte) {
	err := recover()
	if err == nil {
		return
	}
	lines := []string{fmt.Sprintf("Fatal error in goroutine `%s`: %+v", goroutineName, err)}
	if spawnStackTrace != nil {
		lines = append(lines, fmt.Sprintf("Goroutine stack trace: %s", spawnStackTrace))
	}
	lines = append(lines, fmt.Sprintf("Stack trace: %s", debug.Stack()))
	terminate(log, lines)
}

// GoroutineWrapperFunc returns a function that runs its argument in a new
// goroutine, handing any panic in it to HandlePanic.
func GoroutineWrapperFunc(log *logger.Logger) func(name string, spawnedFunction func()) {
	return func(name string, spawnedFunction func()) {
		spawnStackTrace := debug.Stack()
		go func() {
			defer HandlePanic(log, name, spawnStackTrace)
			spawnedFunction()
		}()
	}
}

// Exit logs reason as critical and terminates the process.
func Exit(log *logger.Logger, reason string) {
	terminate(log, []string{reason})
}

func terminate(log *logger.Logger, lines []string) {
	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		log.Criticalf("Exiting: %s", lines[0])
		for _, line := range lines[1:] {
			log.Critical(line)
		}
		if log.Backend().IsRunning() {
			log.Backend().Close()
		}
	}()

	select {
	case <-flushed:
	case <-time.After(flushTimeout):
		fmt.Fprintln(os.Stderr, "Timed out flushing the log before exiting")
	}
	fmt.Fprintf(os.Stderr, "Exiting: %s\n", lines[0])
	os.Exit(1)
}
