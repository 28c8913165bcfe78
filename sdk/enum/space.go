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

// Package enum 精算骰型空間。
//
// 一把擲出的結果只由「每面顆數」決定（骰子不分順序），所以不必枚舉
// faces^dice_count 種排列，只要枚舉所有顆數向量（official 12 顆 6 面
// 共 C(17,5) = 6188 種），每種配上多項式係數當權重，就能對任何計分表
// 做零抽樣誤差的精算：期望值、變異數、各牌型出現率、整條分數分布。
//
// 權重總和恆等於 faces^dice_count（official 為 6^12 = 2,176,782,336），
// 測試以此不變量把關。
package enum

import (
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/sampler"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

// Space 保存一個骰池設定下的完整骰型空間：每種顆數向量與其多項式權重。
// 權重與計分表無關，同一個 Space 可被調表器用不同引擎反覆評估。
type Space struct {
	diceCount int
	faces     int
	n         int

	// counts 以扁平方式儲存全部骰型，stride = faces，避免 6188 次小配置。
	counts  []int
	weights []int
	total   uint64

	alias *sampler.AliasTable // 首次 Sampler() 時建立
}

// NewSpace 枚舉設定下的所有骰型並計算權重。
func NewSpace(ps *spec.PoolSetting) (*Space, error) {
	if err := ps.Init(); err != nil {
		return nil, err
	}

	s := &Space{
		diceCount: ps.DiceCount,
		faces:     ps.Faces,
	}

	fact := factorials(s.diceCount)
	buf := make([]int, s.faces)
	enumerate(s.diceCount, s.faces, buf, func(counts []int) {
		s.counts = append(s.counts, counts...)
		s.weights = append(s.weights, int(multinomial(fact, counts)))
	})
	s.n = len(s.weights)

	for _, w := range s.weights {
		s.total += uint64(w)
	}
	return s, nil
}

// OfficialSpace official 12 骰 6 面的骰型空間。
func OfficialSpace() *Space {
	s, err := NewSpace(&spec.PoolSetting{})
	if err != nil {
		panic(err)
	}
	return s
}

// Len 回傳骰型種數。
func (s *Space) Len() int {
	return s.n
}

// DiceCount 回傳骰數。
func (s *Space) DiceCount() int {
	return s.diceCount
}

// Faces 回傳面數。
func (s *Space) Faces() int {
	return s.faces
}

// Total 回傳權重總和，恆等於 faces^dice_count。
func (s *Space) Total() uint64 {
	return s.total
}

// Counts 回傳第 i 個骰型的顆數向量。回傳的是內部儲存的切片視圖，唯讀。
func (s *Space) Counts(i int) []int {
	return s.counts[i*s.faces : (i+1)*s.faces]
}

// Weight 回傳第 i 個骰型的多項式權重（等價排列數）。
func (s *Space) Weight(i int) uint64 {
	return uint64(s.weights[i])
}

// Probability 回傳第 i 個骰型的出現機率。
func (s *Space) Probability(i int) float64 {
	return float64(s.weights[i]) / float64(s.total)
}

// Sampler 回傳依骰型權重抽樣的 AliasTable，首次呼叫時建表並快取。
// 權重總和乘上骰型種數必須在 int64 內，official 空間遠低於上限。
func (s *Space) Sampler() *sampler.AliasTable {
	if s.alias == nil {
		s.alias = sampler.BuildAliasTable(s.weights)
	}
	return s.alias
}

// SampleCounts 依真實機率抽出一個骰型，把顆數向量複製進 dst 並回傳骰型索引。
// dst 長度必須至少為面數。
func (s *Space) SampleCounts(c *core.Core, dst []int) int {
	idx := s.Sampler().Pick(c)
	copy(dst, s.Counts(idx))
	return idx
}

// MeanScore 以指定引擎精算期望分數。
// 調表器每輪都走這裡，不建立分布、不配置；呼叫端保證引擎與空間同形。
func (s *Space) MeanScore(e *score.Engine) float64 {
	sum := 0.0
	for i := 0; i < s.n; i++ {
		sc, _ := e.ScoreValue(s.counts[i*s.faces : (i+1)*s.faces])
		sum += float64(s.weights[i]) * float64(sc)
	}
	return sum / float64(s.total)
}

// Evaluate 以指定引擎對整個空間精算，回傳完整的分布報告。
func (s *Space) Evaluate(e *score.Engine) (*Eval, error) {
	if e.DiceCount() != s.diceCount || e.Faces() != s.faces {
		return nil, errs.Fatalf("enum: engine is %d dice / %d faces, space is %d / %d",
			e.DiceCount(), e.Faces(), s.diceCount, s.faces)
	}
	return s.evaluate(e), nil
}

// enumerate 依字典序走訪所有總和為 diceCount 的顆數向量。
// visit 收到的切片會被重用，需要保留時由 visit 自行複製。
func enumerate(diceCount, faces int, buf []int, visit func([]int)) {
	var rec func(face, remaining int)
	rec = func(face, remaining int) {
		if face == faces-1 {
			buf[face] = remaining
			visit(buf)
			return
		}
		for c := 0; c <= remaining; c++ {
			buf[face] = c
			rec(face+1, remaining-c)
		}
	}
	rec(0, diceCount)
}

// factorials 回傳 0! 到 n! 的查表。n 受骰數上限 16 約束，16! 在 uint64 內。
func factorials(n int) []uint64 {
	fact := make([]uint64, n+1)
	fact[0] = 1
	for i := 1; i <= n; i++ {
		fact[i] = fact[i-1] * uint64(i)
	}
	return fact
}

// multinomial 回傳 diceCount! / (c1! * c2! * ...)。
// 逐步除法每一步都整除，不會產生截斷誤差。
func multinomial(fact []uint64, counts []int) uint64 {
	w := fact[len(fact)-1]
	for _, c := range counts {
		w /= fact[c]
	}
	return w
}
