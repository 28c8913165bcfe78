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

// Package policy 定義模擬流程的留骰策略。
//
// 互動牌局由玩家決定鎖哪些骰；模擬沒有玩家，改由 Policy 在每次
// 重骰前給出鎖定遮罩。策略只是量測工具，用來刻畫不同玩法下的
// 分數分布，不是會學習的對手。
package policy

import (
	"fmt"

	"github.com/zintix-labs/naasii/dto"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/spec"
)

// Context 是一次決策可見的骰池形狀與回合進度。
type Context struct {
	DiceCount int
	Faces     int
	RollsLeft int
}

// Policy is the reroll decision contract.
// Decide must be fast and allocation-free on the hot path: millions of
// turns flow through it during a simulation run.
//
// Decide returns the lock mask to apply before the next roll, plus a
// stop flag: true means bank the current dice now and skip remaining
// rolls. Implementations may keep internal scratch buffers; a Policy
// instance is owned by one table and never shared across goroutines.
type Policy interface {
	Key() spec.PolicyKey
	Decide(c *core.Core, ctx Context, values []int) (mask uint16, stop bool)
}

// Extender 是 Policy 的可選介面：策略額外暴露一份擴充輸出。
// 桌面在回合開始時對其 Reset，回合結束時取 Snapshot 掛上 TurnResult。
type Extender interface {
	Extend() buf.ExtendResult
}

// Builder 以完整 GameSetting 建出綁定參數的 Policy 實例。
// 策略參數放在 gs.Fixed，由各 builder 自行 DecodeFixed。
type Builder func(gs *spec.GameSetting) (Policy, error)

// Registry 管理 key → Builder 的對應。
type Registry struct {
	builders map[spec.PolicyKey]Builder
}

func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[spec.PolicyKey]Builder, 16),
	}
}

func (r *Registry) Register(key spec.PolicyKey, b Builder) error {
	if _, ok := r.builders[key]; ok {
		return errs.NewFatal("duplicate policy builder")
	}
	r.builders[key] = b
	return nil
}

// RegisterWithExtend registers:
//  1. the policy builder for key
//  2. the DTO renderer for the extend-result type T (must match the policy Snapshot output)
//
// This is intentionally a free function (not a method) because methods cannot be generic.
func RegisterWithExtend[T buf.ExtendResult](key spec.PolicyKey, b Builder, reg *Registry) error {
	// 1) register builder
	if err := reg.Register(key, b); err != nil {
		return err
	}

	// 2) register extend result renderer
	dto.RegisterExtendRender[T](key)
	return nil
}

func (r *Registry) Build(key spec.PolicyKey, gs *spec.GameSetting) (Policy, error) {
	b, ok := r.builders[key]
	if !ok {
		return nil, errs.NewFatal(fmt.Sprintf("policy is not exist: %s", key))
	}
	return b(gs)
}

func (r *Registry) IsExist(key spec.PolicyKey) bool {
	_, ok := r.builders[key]
	return ok
}

// Keys 回傳已註冊的策略 key（無序）。
func (r *Registry) Keys() []spec.PolicyKey {
	out := make([]spec.PolicyKey, 0, len(r.builders))
	for k := range r.builders {
		out = append(out, k)
	}
	return out
}

// Merge merges multiple registries into a new one.
//
// Because function values are not comparable in Go (except to nil),
// duplicate keys are treated as an error unconditionally. This keeps
// behavior deterministic and avoids "last one wins" surprises.
func Merge(regs ...*Registry) (*Registry, error) {
	merged := NewRegistry()

	origin := make(map[spec.PolicyKey]int, 16)

	for i, r := range regs {
		if r == nil {
			continue
		}
		for key, builder := range r.builders {
			if _, ok := merged.builders[key]; ok {
				prev := origin[key]
				return nil, errs.NewFatal(fmt.Sprintf("duplicate policy key %s (registry #%d and #%d)", key, prev, i))
			}
			merged.builders[key] = builder
			origin[key] = i
		}
	}

	return merged, nil
}
