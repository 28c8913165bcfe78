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

package score

import (
	"github.com/zintix-labs/naasii/spec"
)

// Engine 依設定表計分。建構後唯讀，可被多個 goroutine 共用。
//
// 計分流程（累加制，順序固定）：
//  1. 統計每面顆數 counts。
//  2. 同面加分：每個顆數 >= 2 的面，依顆數查 RepeatLUT 各加一次。
//  3. 順子加分：找最長連面（逐面顆數 >= 1，斷在顆數 0 的面），
//     查 StraightLUT 加分並暫定 category = straight_<len>。
//  4. 牌型判定（以單面最高顆數 max_count 覆寫 category）：
//     >=5 五同、==4 四同、==3 看三條組數（兩組以上加碼）、
//     ==2 看對子組數（三組以上加碼），否則保留順子或 chance。
//  5. 保底：總分 0 且 max_count >= 2 時給 floor 分、single_pair。
type Engine struct {
	diceCount int
	faces     int

	repeatLUT   []int // 索引為同面顆數
	straightLUT []int // 索引為連面長度

	multiTripleBonus int
	multiPairBonus   int
	floorScore       int
}

// NewEngine 由骰池與計分表設定建立引擎。兩個設定都必須先 Init。
func NewEngine(ps *spec.PoolSetting, ss *spec.ScoreSetting) *Engine {
	return &Engine{
		diceCount:        ps.DiceCount,
		faces:            ps.Faces,
		repeatLUT:        ss.RepeatLUT,
		straightLUT:      ss.StraightLUT,
		multiTripleBonus: ss.MultiTripleBonus,
		multiPairBonus:   ss.MultiPairBonus,
		floorScore:       ss.FloorScore,
	}
}

// NewOfficialEngine official 12 骰 6 面 + 官方計分表。
func NewOfficialEngine() *Engine {
	ps := &spec.PoolSetting{}
	if err := ps.Init(); err != nil {
		panic(err)
	}
	return NewEngine(ps, spec.OfficialScoreSetting())
}

// DiceCount 回傳引擎期望的骰數。
func (e *Engine) DiceCount() int {
	return e.diceCount
}

// Faces 回傳面數。
func (e *Engine) Faces() int {
	return e.faces
}

// Calculate 把一組最終骰面換成分數與牌型。
//
// 長度不等於骰數回傳 ErrInvalidDiceCount。面值超界的骰子「寬容處理」：
// 不報錯、不列入 counts（沿用既有對局行為，改嚴會改變歷史分數）。
func (e *Engine) Calculate(values []int) (Result, error) {
	if len(values) != e.diceCount {
		return Result{}, ErrInvalidDiceCount
	}

	counts := make([]int, e.faces)
	for _, v := range values {
		if v >= 1 && v <= e.faces {
			counts[v-1]++
		}
	}
	return e.ScoreCounts(counts), nil
}

// ScoreCounts 直接以顆數向量計分，骰型枚舉器的熱路徑走這裡
// （6188 種骰型逐一精算時不需要展開成 12 個骰面）。
// counts 長度必須等於面數，呼叫端保證。
func (e *Engine) ScoreCounts(counts []int) Result {
	sc, category := e.ScoreValue(counts)
	out := make([]int, e.faces)
	copy(out, counts)
	return Result{Category: category, Score: sc, Counts: out}
}

// ScoreValue 同 ScoreCounts 但只回傳分數與牌型，零配置。
// 調表器每輪要重算全部骰型，走這條路徑。
func (e *Engine) ScoreValue(counts []int) (int, Category) {
	sc := 0
	category := CategoryChance

	// 同面加分：每面獨立、可同時複數面成立
	for _, c := range counts {
		if c >= 2 {
			sc += e.repeatLUT[c]
		}
	}

	// 順子加分：最長連面
	maxRun, run := 0, 0
	for _, c := range counts {
		if c > 0 {
			run++
			if run > maxRun {
				maxRun = run
			}
		} else {
			run = 0
		}
	}
	if maxRun < len(e.straightLUT) && e.straightLUT[maxRun] > 0 {
		sc += e.straightLUT[maxRun]
		category = StraightCategory(maxRun)
	}

	// 牌型判定：以 max_count 覆寫暫定標籤，分數不歸零
	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	switch {
	case maxCount >= 5:
		category = CategoryFiveOrMore
	case maxCount == 4:
		category = CategoryFourOfAKind
	case maxCount == 3:
		triples := 0
		for _, c := range counts {
			if c >= 3 {
				triples++
			}
		}
		if triples >= 2 {
			category = CategoryMultipleTriples
			sc += e.multiTripleBonus
		} else {
			category = CategoryThreeOfAKind
		}
	case maxCount == 2:
		pairs := 0
		for _, c := range counts {
			if c >= 2 {
				pairs++
			}
		}
		if pairs >= 3 {
			category = CategoryMultiplePairs
			sc += e.multiPairBonus
		}
		// 不足三組時保留順子標籤或 chance
	}

	// 保底：有對子就不給 0 分
	if sc == 0 && maxCount >= 2 {
		sc = e.floorScore
		category = CategorySinglePair
	}

	return sc, category
}
