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

// Package dice 實作 Naasii 的骰池 (Pool)。
//
// 一個骰池管理固定數量的骰子（官方 12 顆 6 面骰）、每回合的重骰額度
// （官方 3 次）與逐顆鎖定狀態。鎖定以 uint16 bitmask 表示，
// 這也是 PoolSetting 將 dice_count 上限定在 16 的原因。
//
// 重骰順序固定由低索引到高索引，搭配可還原的 PRNG（見 sdk/core），
// 同一份種子與同一串鎖定操作必然重現同一串骰面，供回放與審計使用。
package dice

import (
	"math/bits"

	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/sampler"
	"github.com/zintix-labs/naasii/spec"
)

// ErrNoRollsRemaining 回合重骰額度用盡。骰池狀態保證不變。
var ErrNoRollsRemaining = errs.NewWarn("no rolls remaining")

// Pool 是單一骰池。非併發安全，一張骰桌（Table）持有一個。
type Pool struct {
	c *core.Core

	diceCount    int
	faces        int
	rollsPerTurn int

	values    []int  // 目前骰面，1..faces
	locked    uint16 // bit i 代表第 i 顆鎖定
	rollsLeft int

	roller roller
}

// roller 把「擲一顆骰」抽象出來，讓 dev 骰桌可以掛灌鉛骰。
type roller interface {
	roll(c *core.Core, faces int) int
}

// uniformRoller 公平骰：IntN(faces)+1。
type uniformRoller struct{}

func (uniformRoller) roll(c *core.Core, faces int) int {
	return c.IntN(faces) + 1
}

// weightedRoller 灌鉛骰：依面權重查 LUT，僅 dev 骰桌使用。
type weightedRoller struct {
	lut sampler.LUT
}

func (w weightedRoller) roll(c *core.Core, _ int) int {
	return w.lut.Pick(c) + 1
}

// NewPool 以設定與外部注入的 PRNG 建立骰池，初始為整回合狀態
// （全部解鎖、額度全滿）。骰面初始化為 1，第一次 RollAll 前的值
// 不具遊戲意義。
func NewPool(ps *spec.PoolSetting, rng core.PRNG) *Pool {
	p := &Pool{
		c:            core.New(rng),
		diceCount:    ps.DiceCount,
		faces:        ps.Faces,
		rollsPerTurn: ps.RollsPerTurn,
		values:       make([]int, ps.DiceCount),
		roller:       uniformRoller{},
	}
	for i := range p.values {
		p.values[i] = 1
	}
	p.ResetTurn()
	return p
}

// NewWeightedPool 建立灌鉛骰池：每面掛一個非負權重（長度須等於面數）。
// 供 dev 骰桌逼出稀有牌型（例如重壓單面製造五同）測試計分路徑。
func NewWeightedPool(ps *spec.PoolSetting, rng core.PRNG, faceWeights []int) (*Pool, error) {
	if len(faceWeights) != ps.Faces {
		return nil, errs.Fatalf("dice: face weights length %d, want %d", len(faceWeights), ps.Faces)
	}
	p := NewPool(ps, rng)
	p.roller = weightedRoller{lut: sampler.BuildLUT(faceWeights)}
	return p, nil
}

// ResetTurn 回到整回合狀態：全部解鎖、重骰額度補滿。骰面保留上回合結果。
func (p *Pool) ResetTurn() {
	p.locked = 0
	p.rollsLeft = p.rollsPerTurn
}

// RollAll 重擲所有未鎖定的骰子並扣一次額度。
// 額度用盡回傳 ErrNoRollsRemaining，且不動任何狀態。
// 全鎖定時仍會扣額度（玩家確實按了重骰）。
func (p *Pool) RollAll() error {
	if p.rollsLeft <= 0 {
		return ErrNoRollsRemaining
	}
	for i := 0; i < p.diceCount; i++ {
		if p.locked&(1<<uint(i)) != 0 {
			continue
		}
		p.values[i] = p.roller.roll(p.c, p.faces)
	}
	p.rollsLeft--
	return nil
}

// Lock 鎖定第 idx 顆骰，越界索引靜默忽略，重複鎖定為 no-op。
func (p *Pool) Lock(idx int) {
	if idx < 0 || idx >= p.diceCount {
		return
	}
	p.locked |= 1 << uint(idx)
}

// Unlock 解鎖第 idx 顆骰，越界索引靜默忽略。
func (p *Pool) Unlock(idx int) {
	if idx < 0 || idx >= p.diceCount {
		return
	}
	p.locked &^= 1 << uint(idx)
}

// LockAll 鎖定全部骰子。
func (p *Pool) LockAll() {
	p.locked = uint16(1)<<uint(p.diceCount) - 1
}

// UnlockAll 解鎖全部骰子。
func (p *Pool) UnlockAll() {
	p.locked = 0
}

// SetLockedMask 直接套用鎖定遮罩，超出骰數的位元會被裁掉。
// 模擬策略（sdk/policy）以遮罩一次下完鎖定決策。
func (p *Pool) SetLockedMask(mask uint16) {
	p.locked = mask & (uint16(1)<<uint(p.diceCount) - 1)
}

// Force 直接覆寫骰面，供 dev 骰桌與回放使用。
// 長度或面值不合法時回傳錯誤且不動狀態。
func (p *Pool) Force(values []int) error {
	if len(values) != p.diceCount {
		return errs.Fatalf("dice: force values length %d, want %d", len(values), p.diceCount)
	}
	for _, v := range values {
		if v < 1 || v > p.faces {
			return errs.Fatalf("dice: force value %d out of range 1..%d", v, p.faces)
		}
	}
	copy(p.values, values)
	return nil
}

// Values 回傳骰面快照（複本）。
func (p *Pool) Values() []int {
	out := make([]int, p.diceCount)
	copy(out, p.values)
	return out
}

// ValueAt 回傳第 idx 顆骰面，越界回傳 0。
func (p *Pool) ValueAt(idx int) int {
	if idx < 0 || idx >= p.diceCount {
		return 0
	}
	return p.values[idx]
}

// CopyValues 把骰面以 uint8 寫進 dst（熱路徑零配置），回傳寫入數量。
func (p *Pool) CopyValues(dst []uint8) int {
	n := p.diceCount
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = uint8(p.values[i])
	}
	return n
}

// ReadValues 把骰面寫進 dst（熱路徑零配置），回傳寫入數量。
func (p *Pool) ReadValues(dst []int) int {
	return copy(dst, p.values)
}

// LockedMask 回傳目前鎖定遮罩。
func (p *Pool) LockedMask() uint16 {
	return p.locked
}

// LockedIndices 回傳鎖定索引，由小到大。
func (p *Pool) LockedIndices() []int {
	out := make([]int, 0, bits.OnesCount16(p.locked))
	for i := 0; i < p.diceCount; i++ {
		if p.locked&(1<<uint(i)) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// IsLocked 回傳第 idx 顆是否鎖定，越界回傳 false。
func (p *Pool) IsLocked(idx int) bool {
	if idx < 0 || idx >= p.diceCount {
		return false
	}
	return p.locked&(1<<uint(idx)) != 0
}

// RollsLeft 回傳剩餘重骰額度。
func (p *Pool) RollsLeft() int {
	return p.rollsLeft
}

// RollsUsed 回傳已用重骰次數。
func (p *Pool) RollsUsed() int {
	return p.rollsPerTurn - p.rollsLeft
}

// DiceCount 回傳骰數。
func (p *Pool) DiceCount() int {
	return p.diceCount
}

// Faces 回傳面數。
func (p *Pool) Faces() int {
	return p.faces
}
