package main

import (
	"github.com/zintix-labs/naasii/sdk/perf"
)

func main() {
	bindVar()
	// makefile runner
	perf.RunPProf(executeSimulator, cfg.pprofmode)
}
