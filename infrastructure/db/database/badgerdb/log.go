package badgerdb

import "github.com/cellnet/celld/infrastructure/logger"

var log = logger.RegisterSubSystem("BDGR")

// badgerLogger routes badger's internal logging to the BDGR subsystem
type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Tracef(format, args...)
}
