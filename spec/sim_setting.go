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

package spec

import "github.com/zintix-labs/naasii/errs"

// SimSetting 描述模擬流程的參數。
//
// 模擬以「回合」為單位量測分數分布；whole-game 模擬則由
// GamePlayers × GameRounds 組成一局。Policy 決定重骰時鎖哪些骰，
// 需為 policy registry 已註冊的 key。
type SimSetting struct {
	Policy      PolicyKey `yaml:"policy"       json:"policy"`
	GamePlayers int       `yaml:"game_players" json:"game_players"`
	GameRounds  int       `yaml:"game_rounds"  json:"game_rounds"`
	initFlag    bool
}

// Init 補預設值並驗證。
func (gs *SimSetting) Init() error {
	if gs.initFlag {
		return nil
	}
	if gs.Policy == "" {
		gs.Policy = "greedy_face"
	}
	if gs.GamePlayers == 0 {
		gs.GamePlayers = 1
	}
	if gs.GameRounds == 0 {
		gs.GameRounds = DefaultRounds
	}
	if err := gs.valid(); err != nil {
		return err
	}
	gs.initFlag = true
	return nil
}

func (gs *SimSetting) valid() error {
	if gs.GamePlayers < 1 || gs.GamePlayers > MaxPlayers {
		return errs.Fatalf("sim_setting: game_players must be 1..%d, got %d", MaxPlayers, gs.GamePlayers)
	}
	if gs.GameRounds < 1 || gs.GameRounds > 99 {
		return errs.Fatalf("sim_setting: game_rounds must be 1..99, got %d", gs.GameRounds)
	}
	return nil
}
