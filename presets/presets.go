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

package presets

import (
	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/catalog"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/presets/policy_kits"
	"github.com/zintix-labs/naasii/presets/preset_configs"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/policy"
	"github.com/zintix-labs/naasii/server/logger"
	"github.com/zintix-labs/naasii/server/svrcfg"
)

func New() (*catalog.Catalog, error) {
	return catalog.New(preset_configs.FS)
}

func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := naasii.NewAuto(
		core.Default(),
		naasii.Configs(preset_configs.FS),
		naasii.Policies(policy.Builtins(), policy_kits.Kits),
	)
	if err != nil {
		return nil, errs.NewFatal("new naasii failed:" + err.Error())
	}
	scfg := &svrcfg.SvrCfg{
		Log:          logger.NewDefaultAsyncLogger(logger.ModeDev),
		TableBufSize: 1,
		Naasii:       lab,
	}
	return scfg, nil
}

func NewNaasii() (*naasii.Naasii, error) {
	return naasii.NewAuto(
		core.Default(),
		naasii.Configs(preset_configs.FS),
		naasii.Policies(policy.Builtins(), policy_kits.Kits),
	)
}
