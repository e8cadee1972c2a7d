package profiling

import (
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/cellnet/celld/infrastructure/logger"
	"github.com/cellnet/celld/util/panics"
)

// Start serves the pprof handlers on the given port in the background.
// The handlers are registered on their own mux, not on http.DefaultServeMux.
func Start(port string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/", http.RedirectHandler("/debug/pprof/", http.StatusSeeOther))

	spawn := panics.GoroutineWrapperFunc(log)
	spawn("profiling.Start", func() {
		listenAddr := net.JoinHostPort("", port)
		log.Infof("Profile server listening on %s", listenAddr)
		log.Error(http.ListenAndServe(listenAddr, mux))
	})
}
