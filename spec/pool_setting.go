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

// 官方骰池規格。
const (
	OfficialDiceCount    = 12
	OfficialFaces        = 6
	OfficialRollsPerTurn = 3
)

// PoolSetting 描述骰池的形狀。
//
// Fields:
//   - DiceCount: 一池幾顆骰（官方 12）
//   - Faces: 每顆骰幾面（官方 6）
//   - RollsPerTurn: 每回合擲骰預算（官方 3）
//
// 欄位留 0 視為採用官方值；鎖定遮罩以 uint16 承載，因此 DiceCount 上限 16。
type PoolSetting struct {
	DiceCount    int `yaml:"dice_count"     json:"dice_count"`
	Faces        int `yaml:"faces"          json:"faces"`
	RollsPerTurn int `yaml:"rolls_per_turn" json:"rolls_per_turn"`
	initFlag     bool
}

// Init 補上官方預設值並檢查合法性。
func (ps *PoolSetting) Init() error {
	if ps.initFlag {
		return nil
	}
	if ps.DiceCount == 0 {
		ps.DiceCount = OfficialDiceCount
	}
	if ps.Faces == 0 {
		ps.Faces = OfficialFaces
	}
	if ps.RollsPerTurn == 0 {
		ps.RollsPerTurn = OfficialRollsPerTurn
	}

	if ps.DiceCount < 1 || ps.DiceCount > 16 {
		return errs.Fatalf("pool_setting: dice_count must be 1..16, got %d", ps.DiceCount)
	}
	if ps.Faces < 2 || ps.Faces > 9 {
		return errs.Fatalf("pool_setting: faces must be 2..9, got %d", ps.Faces)
	}
	if ps.RollsPerTurn < 1 {
		return errs.Fatalf("pool_setting: rolls_per_turn must be at least 1, got %d", ps.RollsPerTurn)
	}
	ps.initFlag = true
	return nil
}

// IsOfficial 回報骰池形狀是否為官方規格。
func (ps *PoolSetting) IsOfficial() bool {
	return ps.DiceCount == OfficialDiceCount &&
		ps.Faces == OfficialFaces &&
		ps.RollsPerTurn == OfficialRollsPerTurn
}
