package main

import (
	"github.com/cellnet/celld/infrastructure/logger"
	"github.com/cellnet/celld/util/panics"
)

var (
	log   = logger.RegisterSubSystem("IMPT")
	spawn = panics.GoroutineWrapperFunc(log)
)
