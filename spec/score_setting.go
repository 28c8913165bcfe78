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

// maskLen 上限對應 PoolSetting 的骰數上限（遮罩 uint16）。
const maxDiceCount = 16

// maxRunLen 對應 PoolSetting 的面數上限。
const maxRunLen = 9

// ScoreSetting 描述計分表。
//
// 官方表（Naasii official rules）：
//   - repeat_bonus:   {2: 5, 3: 10, 4: 20, 5: 30}（5 為「5 顆以上」）
//   - straight_bonus: {3: 10, 4: 20, 5: 30, 6: 50}
//   - multi_triple_bonus: 15（兩組以上三條）
//   - multi_pair_bonus:   10（三組以上對子）
//   - floor_score:        5（總分 0 但有對子時的保底）
//
// 區段整個留空視為官方表。互動牌局一律要求官方表；
// 自訂表僅供 lab 面（模擬、調表）分析使用。
type ScoreSetting struct {
	UseOfficialRules bool        `yaml:"use_official_rules" json:"use_official_rules"`
	RepeatBonus      map[int]int `yaml:"repeat_bonus"       json:"repeat_bonus"`
	StraightBonus    map[int]int `yaml:"straight_bonus"     json:"straight_bonus"`
	MultiTripleBonus int         `yaml:"multi_triple_bonus" json:"multi_triple_bonus"`
	MultiPairBonus   int         `yaml:"multi_pair_bonus"   json:"multi_pair_bonus"`
	FloorScore       int         `yaml:"floor_score"        json:"floor_score"`

	// 衍生查表：RepeatLUT 以「同面顆數」為索引、StraightLUT 以「最長連面長度」為索引。
	RepeatLUT   []int `yaml:"-" json:"-"`
	StraightLUT []int `yaml:"-" json:"-"`
	initFlag    bool
}

// OfficialScoreSetting 回傳官方計分表（已初始化）。
func OfficialScoreSetting() *ScoreSetting {
	ss := &ScoreSetting{UseOfficialRules: true}
	if err := ss.Init(); err != nil {
		panic(err) // 官方表初始化不可能失敗
	}
	return ss
}

func officialRepeatBonus() map[int]int {
	return map[int]int{2: 5, 3: 10, 4: 20, 5: 30}
}

func officialStraightBonus() map[int]int {
	return map[int]int{3: 10, 4: 20, 5: 30, 6: 50}
}

// Init 補預設值、建立查表並驗證。
func (ss *ScoreSetting) Init() error {
	if ss.initFlag {
		return nil
	}

	// 區段整個留空 = 官方表
	if ss.isEmpty() {
		ss.UseOfficialRules = true
	}
	if ss.UseOfficialRules {
		ss.RepeatBonus = officialRepeatBonus()
		ss.StraightBonus = officialStraightBonus()
		ss.MultiTripleBonus = 15
		ss.MultiPairBonus = 10
		ss.FloorScore = 5
	}

	if err := ss.valid(); err != nil {
		return err
	}

	// RepeatLUT[count]：表上最大 key 之後的顆數沿用最後一級（官方表即「5 顆以上 +30」）。
	ss.RepeatLUT = make([]int, maxDiceCount+1)
	for count := 2; count <= maxDiceCount; count++ {
		if v, ok := ss.RepeatBonus[count]; ok {
			ss.RepeatLUT[count] = v
		} else {
			ss.RepeatLUT[count] = ss.RepeatLUT[count-1]
		}
	}

	// StraightLUT[runLen]：同樣沿用最後一級（官方 6 面骰最長即 6）。
	ss.StraightLUT = make([]int, maxRunLen+1)
	for l := 3; l <= maxRunLen; l++ {
		if v, ok := ss.StraightBonus[l]; ok {
			ss.StraightLUT[l] = v
		} else {
			ss.StraightLUT[l] = ss.StraightLUT[l-1]
		}
	}

	ss.initFlag = true
	return nil
}

func (ss *ScoreSetting) isEmpty() bool {
	return !ss.UseOfficialRules &&
		ss.RepeatBonus == nil && ss.StraightBonus == nil &&
		ss.MultiTripleBonus == 0 && ss.MultiPairBonus == 0 && ss.FloorScore == 0
}

func (ss *ScoreSetting) valid() error {
	if len(ss.RepeatBonus) == 0 {
		return errs.NewFatal("score_setting: repeat_bonus is empty")
	}
	if len(ss.StraightBonus) == 0 {
		return errs.NewFatal("score_setting: straight_bonus is empty")
	}
	for count, v := range ss.RepeatBonus {
		if count < 2 || count > maxDiceCount {
			return errs.Fatalf("score_setting: repeat_bonus key must be 2..%d, got %d", maxDiceCount, count)
		}
		if v < 0 {
			return errs.Fatalf("score_setting: repeat_bonus[%d] must be non-negative", count)
		}
	}
	for l, v := range ss.StraightBonus {
		if l < 3 || l > maxRunLen {
			return errs.Fatalf("score_setting: straight_bonus key must be 3..%d, got %d", maxRunLen, l)
		}
		if v < 0 {
			return errs.Fatalf("score_setting: straight_bonus[%d] must be non-negative", l)
		}
	}
	if ss.MultiTripleBonus < 0 || ss.MultiPairBonus < 0 || ss.FloorScore < 0 {
		return errs.NewFatal("score_setting: bonus values must be non-negative")
	}

	// 官方模式必須逐項等於官方表
	if ss.UseOfficialRules && !ss.IsOfficial() {
		return errs.NewFatal("score_setting: use_official_rules=true but tables differ from the official ones")
	}
	return nil
}

// IsOfficial 逐項比對官方表。
func (ss *ScoreSetting) IsOfficial() bool {
	if ss.MultiTripleBonus != 15 || ss.MultiPairBonus != 10 || ss.FloorScore != 5 {
		return false
	}
	if !intMapEqual(ss.RepeatBonus, officialRepeatBonus()) {
		return false
	}
	return intMapEqual(ss.StraightBonus, officialStraightBonus())
}

func intMapEqual(a, b map[int]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
