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
	"log"

	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/presets/policy_kits"
	"github.com/zintix-labs/naasii/presets/preset_configs"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/policy"
	"github.com/zintix-labs/naasii/server"
	"github.com/zintix-labs/naasii/server/logger"
	"github.com/zintix-labs/naasii/server/svrcfg"
)

// This command is intentionally a "lab server" entrypoint for the naasii repo.
// It enables the developer panel by default.
// For production deployments, use a separate scaffold project and disable -dev.
func main() {
	cfg, err := loadConfigFromFlags()
	if err != nil {
		log.Fatal(err)
	}
	server.Run(cfg)
}

type config struct {
	LogMode      string
	TableBufSize int
	Dev          bool
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, error) {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.IntVar(&cfg.TableBufSize, "buf", 3, "number of table instances per game")
	flag.BoolVar(&cfg.Dev, "dev", true, "mount the /dev panel")

	flag.Parse()

	log, _ := logger.NewAsync(4096, cfg.norm())

	lab, err := naasii.NewAuto(
		core.Default(),
		naasii.Configs(preset_configs.FS),
		naasii.Policies(policy.Builtins(), policy_kits.Kits),
	)
	if err != nil {
		return nil, err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:          log,
		TableBufSize: cfg.TableBufSize,
		Dev:          cfg.Dev,
		Naasii:       lab,
	}
	return sCfg, nil
}

func (cfg *config) norm() logger.LogMode {
	switch cfg.LogMode {
	case "ModeDev":
		return logger.ModeDev
	case "ModeProd":
		return logger.ModeProd
	case "ModeSilence":
		return logger.ModeSilence
	default:
		return logger.ModeDev
	}
}
