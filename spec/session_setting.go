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

const (
	// 牌局人數限制
	MinPlayers = 2
	MaxPlayers = 4

	// DefaultRounds 預設回合數
	DefaultRounds = 10
)

// SessionSetting 描述互動牌局的外圍參數（人數、回合、存檔、圖表）。
// 僅互動流程使用；模擬流程見 SimSetting。
type SessionSetting struct {
	Rounds        int    `yaml:"rounds"         json:"rounds"`
	Autosave      bool   `yaml:"autosave"       json:"autosave"`
	SaveDir       string `yaml:"save_dir"       json:"save_dir"`
	Visualization bool   `yaml:"visualization"  json:"visualization"`
	initFlag      bool
}

// Init 補預設值並驗證。
func (xs *SessionSetting) Init() error {
	if xs.initFlag {
		return nil
	}
	if xs.Rounds == 0 {
		xs.Rounds = DefaultRounds
	}
	if xs.SaveDir == "" {
		xs.SaveDir = "saves"
	}
	if err := xs.valid(); err != nil {
		return err
	}
	xs.initFlag = true
	return nil
}

func (xs *SessionSetting) valid() error {
	if xs.Rounds < 1 || xs.Rounds > 99 {
		return errs.Fatalf("session_setting: rounds must be 1..99, got %d", xs.Rounds)
	}
	return nil
}
