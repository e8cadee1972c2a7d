package chainstore

import (
	"github.com/cellnet/celld/infrastructure/logger"
)

var log = logger.RegisterSubSystem("CHST")
