package testutils

import (
	"testing"

	"github.com/cellnet/celld/domain/chainconfig"
)

// ForAllNets runs the passed testFunc with all available networks.
// Every run receives its own copy of the params, so testFunc may modify them.
func ForAllNets(t *testing.T, skipPow bool, testFunc func(*testing.T, *chainconfig.Params)) {
	allParams := []chainconfig.Params{
		chainconfig.MainnetParams,
		chainconfig.TestnetParams,
		chainconfig.SimnetParams,
		chainconfig.DevnetParams,
	}

	for i := range allParams {
		params := allParams[i].Clone()
		t.Run(params.Name, func(t *testing.T) {
			t.Parallel()
			params.SkipProofOfWork = skipPow
			t.Logf("Running test for %s", params.Name)
			testFunc(t, params)
		})
	}
}
