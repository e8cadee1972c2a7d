package blockverifier

import (
	"github.com/cellnet/celld/infrastructure/logger"
	"github.com/cellnet/celld/util/panics"
)

var log = logger.RegisterSubSystem("BVRF")
var spawn = panics.GoroutineWrapperFunc(log)
