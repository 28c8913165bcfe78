// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/zintix-labs/naasii/presets"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/spec"
	"github.com/zintix-labs/naasii/tuner"
)

var (
	tgid      spec.GID
	target    float64
	targetStd float64
	iters     int
	seed      int64
	outDir    string
)

func main() {
	flag.Var(gidFlag{&tgid}, "game", "target game id")
	flag.Float64Var(&target, "target", 0, "target exact mean score per turn")
	flag.Float64Var(&targetStd, "target-std", 0, "optional target std dev (0 = mean only)")
	flag.IntVar(&iters, "iters", 0, "annealing iterations (0 = setting default)")
	flag.Int64Var(&seed, "seed", 0, "search seed (0 = random)")
	flag.StringVar(&outDir, "out", "", "save the full report under this dir ('' = summary only)")
	flag.Parse()

	lab, err := presets.NewNaasii()
	if err != nil {
		log.Fatal(err)
	}
	gs, err := lab.GameSettingById(tgid)
	if err != nil {
		log.Fatal(err)
	}

	// -target 蓋掉（或補上）設定檔的 tuner 區段
	if target > 0 {
		if gs.Tuner == nil {
			gs.Tuner = new(spec.TunerSetting)
		}
		gs.Tuner.TargetMean = target
	}
	if gs.Tuner == nil {
		log.Fatal("game setting has no tuner section: pass -target")
	}
	if targetStd > 0 {
		gs.Tuner.TargetStd = targetStd
	}
	if iters > 0 {
		gs.Tuner.Iterations = iters
	}
	if seed != 0 {
		gs.Tuner.Seed = uint64(seed)
	}
	if err := gs.Tuner.Init(); err != nil {
		log.Fatal(err)
	}

	tn, err := tuner.New(gs, core.Default())
	if err != nil {
		log.Fatal(err)
	}
	rep, err := tn.Run()
	if err != nil {
		log.Fatal(err)
	}
	rep.Out()
	if outDir != "" {
		path, err := rep.Save(outDir)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("report saved:", path)
	}
}

type gidFlag struct{ p *spec.GID }

func (f gidFlag) String() string { return fmt.Sprint(uint(*f.p)) }
func (f gidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.GID(uint(u))
	return nil
}
