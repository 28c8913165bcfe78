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

package policy

import (
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/sampler"
	"github.com/zintix-labs/naasii/spec"
)

// 內建策略 key。
const (
	KeyHoldNone      spec.PolicyKey = "hold_none"
	KeyGreedyFace    spec.PolicyKey = "greedy_face"
	KeyPairsUp       spec.PolicyKey = "pairs_up"
	KeyStraightChase spec.PolicyKey = "straight_chase"
	KeyBiasedRandom  spec.PolicyKey = "biased_random"
)

// Builtins 回傳掛好全部內建策略的 Registry。
// 每個策略同時註冊擴充輸出型別；沒有擴充資料的策略掛 NoExtend。
func Builtins() *Registry {
	r := NewRegistry()
	mustRegister[*buf.NoExtend](r, KeyHoldNone, func(gs *spec.GameSetting) (Policy, error) {
		return &holdNone{}, nil
	})
	mustRegister[*buf.NoExtend](r, KeyGreedyFace, newGreedyFace)
	mustRegister[*buf.NoExtend](r, KeyPairsUp, func(gs *spec.GameSetting) (Policy, error) {
		return &pairsUp{counts: make([]int, gs.Pool.Faces)}, nil
	})
	mustRegister[*ChaseExtend](r, KeyStraightChase, func(gs *spec.GameSetting) (Policy, error) {
		return &straightChase{counts: make([]int, gs.Pool.Faces)}, nil
	})
	mustRegister[*buf.NoExtend](r, KeyBiasedRandom, newBiasedRandom)
	return r
}

// 內建策略重複註冊屬程式錯誤
func mustRegister[T buf.ExtendResult](r *Registry, key spec.PolicyKey, b Builder) {
	if err := RegisterWithExtend[T](key, b, r); err != nil {
		panic(err)
	}
}

// ------------------------------------------------------------
// hold_none：從不鎖骰，三把全重擲。分布量測的基準線。
// ------------------------------------------------------------

type holdNone struct{}

func (p *holdNone) Key() spec.PolicyKey { return KeyHoldNone }

func (p *holdNone) Decide(_ *core.Core, _ Context, _ []int) (uint16, bool) {
	return 0, false
}

// ------------------------------------------------------------
// greedy_face：鎖住顆數最多的那一面，其餘重擲，衝同面加分。
// ------------------------------------------------------------

// GreedyFaceFixed 是 greedy_face 的可調參數（放在 GameSetting.Fixed）。
type GreedyFaceFixed struct {
	// MinCount 最高顆數未達此值時不鎖任何骰，預設 2。
	MinCount int `yaml:"min_count"`
}

type greedyFace struct {
	minCount int
	counts   []int
}

func newGreedyFace(gs *spec.GameSetting) (Policy, error) {
	fixed := GreedyFaceFixed{}
	if len(gs.Fixed) > 0 {
		if err := spec.DecodeFixed(gs, &fixed); err != nil {
			return nil, err
		}
	}
	if fixed.MinCount == 0 {
		fixed.MinCount = 2
	}
	return &greedyFace{
		minCount: fixed.MinCount,
		counts:   make([]int, gs.Pool.Faces),
	}, nil
}

func (p *greedyFace) Key() spec.PolicyKey { return KeyGreedyFace }

func (p *greedyFace) Decide(_ *core.Core, ctx Context, values []int) (uint16, bool) {
	CountFaces(values, p.counts)

	bestFace, bestCount := 0, 0
	for f, c := range p.counts {
		if c > bestCount {
			bestFace, bestCount = f+1, c
		}
	}
	if bestCount < p.minCount {
		return 0, false
	}

	mask := MaskOfFace(values, bestFace)
	// 整池同面，再骰沒有意義
	return mask, mask == FullMask(ctx.DiceCount)
}

// ------------------------------------------------------------
// pairs_up：鎖住所有成對以上的面，衝多對/多三條加碼。
// ------------------------------------------------------------

type pairsUp struct {
	counts []int
}

func (p *pairsUp) Key() spec.PolicyKey { return KeyPairsUp }

func (p *pairsUp) Decide(_ *core.Core, ctx Context, values []int) (uint16, bool) {
	CountFaces(values, p.counts)

	var mask uint16
	for f, c := range p.counts {
		if c >= 2 {
			mask |= MaskOfFace(values, f+1)
		}
	}
	return mask, mask == FullMask(ctx.DiceCount)
}

// ------------------------------------------------------------
// straight_chase：每面壓一顆當順子骨架，多餘的重擲去補缺面；
// 六面到齊就全鎖收分。
// ------------------------------------------------------------

// ChaseExtend 是 straight_chase 的擴充輸出：記錄最後一次決策時的
// 追順進度，dev 介面上用來檢視策略為什麼停手。
type ChaseExtend struct {
	MissingFaces []int `json:"missing_faces"` // 仍缺的面
	Completed    bool  `json:"completed"`     // 是否到齊收分
}

func (e *ChaseExtend) Reset() {
	e.MissingFaces = e.MissingFaces[:0]
	e.Completed = false
}

// Snapshot 深拷貝一份，輸出結果與內部暫存彼此隔離。
func (e *ChaseExtend) Snapshot() any {
	return &ChaseExtend{
		MissingFaces: append([]int(nil), e.MissingFaces...),
		Completed:    e.Completed,
	}
}

type straightChase struct {
	counts []int
	ext    ChaseExtend
}

func (p *straightChase) Key() spec.PolicyKey { return KeyStraightChase }

func (p *straightChase) Extend() buf.ExtendResult { return &p.ext }

func (p *straightChase) Decide(_ *core.Core, ctx Context, values []int) (uint16, bool) {
	CountFaces(values, p.counts)

	// 每次決策整份覆寫擴充輸出
	p.ext.MissingFaces = p.ext.MissingFaces[:0]
	p.ext.Completed = false
	for f, c := range p.counts {
		if c == 0 {
			p.ext.MissingFaces = append(p.ext.MissingFaces, f+1)
		}
	}
	if len(p.ext.MissingFaces) == 0 {
		p.ext.Completed = true
		return FullMask(ctx.DiceCount), true
	}
	return FirstOfEachFace(values, ctx.Faces), false
}

// ------------------------------------------------------------
// biased_random：覆蓋度量測用。以「該骰所屬面的顆數」為權重，
// 隨機抽至多 keep_max 顆鎖住，讓模擬掃過更多中間狀態。
// ------------------------------------------------------------

// BiasedRandomFixed 是 biased_random 的可調參數。
type BiasedRandomFixed struct {
	// KeepMax 每次最多鎖幾顆，預設骰數的一半。
	KeepMax int `yaml:"keep_max"`
}

type biasedRandom struct {
	keepMax int
	counts  []int
	weights []int
}

func newBiasedRandom(gs *spec.GameSetting) (Policy, error) {
	fixed := BiasedRandomFixed{}
	if len(gs.Fixed) > 0 {
		if err := spec.DecodeFixed(gs, &fixed); err != nil {
			return nil, err
		}
	}
	if fixed.KeepMax == 0 {
		fixed.KeepMax = gs.Pool.DiceCount / 2
	}
	return &biasedRandom{
		keepMax: fixed.KeepMax,
		counts:  make([]int, gs.Pool.Faces),
		weights: make([]int, gs.Pool.DiceCount),
	}, nil
}

func (p *biasedRandom) Key() spec.PolicyKey { return KeyBiasedRandom }

func (p *biasedRandom) Decide(c *core.Core, ctx Context, values []int) (uint16, bool) {
	CountFaces(values, p.counts)

	for i, v := range values {
		w := 1
		if v >= 1 && v <= ctx.Faces {
			w = p.counts[v-1]
		}
		p.weights[i] = w
	}

	picks := sampler.WeightedSample(c, p.weights, p.keepMax)
	return MaskOfIndices(picks), false
}
