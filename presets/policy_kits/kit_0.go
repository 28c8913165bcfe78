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

package policy_kits

import (
	"log"

	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/policy"
	"github.com/zintix-labs/naasii/spec"
)

// ============================================================
// ** 註冊 **
// ============================================================

const KeyTargetFace spec.PolicyKey = "target_face"

func init() {
	kit := KeyTargetFace
	builder := buildTargetFace
	kits := Kits
	if err := policy.RegisterWithExtend[*targetExt](kit, builder, kits); err != nil {
		log.Fatalf("%s register failed: %v", kit, err)
	}
}

// ============================================================
// ** 策略介面 **
// ============================================================

// kitTarget 單面梭哈：只鎖指定面，鎖到 stop_at 顆提前收分。
type kitTarget struct {
	fixed *targetFixed
	ext   targetExt
}

func buildTargetFace(gs *spec.GameSetting) (policy.Policy, error) {
	k := &kitTarget{
		fixed: new(targetFixed),
	}
	if len(gs.Fixed) > 0 {
		if err := spec.DecodeFixed(gs, k.fixed); err != nil {
			return nil, err
		}
	}
	if k.fixed.TargetFace == 0 {
		k.fixed.TargetFace = gs.Pool.Faces
	}
	if k.fixed.StopAt == 0 {
		k.fixed.StopAt = 5
	}
	if k.fixed.TargetFace < 1 || k.fixed.TargetFace > gs.Pool.Faces {
		return nil, errs.Fatalf("target_face: target_face must be 1..%d, got %d",
			gs.Pool.Faces, k.fixed.TargetFace)
	}
	k.ext.HitSlots = make([]int, 0, gs.Pool.DiceCount)
	return k, nil
}

// ============================================================
// ** 此 kit Fixed 設定宣告 **
// ============================================================

// fixed
type targetFixed struct {
	TargetFace int `yaml:"target_face"` // 要追的面，預設最大面
	StopAt     int `yaml:"stop_at"`     // 鎖到幾顆提前收分，預設 5
}

// ============================================================
// ** kit 需要的額外結構宣告: 需要實作 Reset 以及 Snapshot **
// ============================================================

type targetExt struct {
	Reached  bool  `json:"is_reached"`
	Held     int   `json:"held,omitzero"`
	HitSlots []int `json:"hit_slots,omitzero"`
}

func (e *targetExt) Reset() {
	e.Reached = false
	e.Held = 0
	e.HitSlots = e.HitSlots[:0]
}

func (e *targetExt) Snapshot() any {
	hits := make([]int, len(e.HitSlots))
	copy(hits, e.HitSlots)
	ec := &targetExt{
		Reached:  e.Reached,
		Held:     e.Held,
		HitSlots: hits,
	}
	return ec
}

// ============================================================
// ** 決策主邏輯 **
// ============================================================

func (k *kitTarget) Key() spec.PolicyKey { return KeyTargetFace }

func (k *kitTarget) Extend() buf.ExtendResult { return &k.ext }

func (k *kitTarget) Decide(_ *core.Core, _ policy.Context, values []int) (uint16, bool) {
	ext := &k.ext
	ext.Reset()

	var mask uint16
	for i, v := range values {
		if v == k.fixed.TargetFace {
			mask |= 1 << i
			ext.Held++
			ext.HitSlots = append(ext.HitSlots, i)
		}
	}
	if ext.Held >= k.fixed.StopAt {
		ext.Reached = true
		return mask, true
	}
	return mask, false
}
