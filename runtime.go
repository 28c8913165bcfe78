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

package naasii

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/naasii/dto"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/spec"
)

type DiceRuntime struct {
	// build-time 來源（只讀引用）
	lab *Naasii // 方便取 catalog/registry/corefactory 與共用一些 helper

	// data-plane：關鍵主池（每個遊戲一個 pool）
	pools map[spec.GID]*TablePool
	ids   []spec.GID // 固定順序，用於觀測/列舉（來自 cat.IDs()）

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	// runtime 行為設定（一期先簡單，之後可擴展）
	poolSize int // 每個遊戲的池大小（Run(n) 的 n）
}

func (rt *DiceRuntime) Play(ctx context.Context, req *dto.TurnRequest) (dto.TurnResult, error) {
	select {
	case <-ctx.Done():
		// 如果通知取消
		return dto.TurnResult{}, errs.NewWarn("turn canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		// done is the source of truth; keep a fast boolean for cheap reads/telemetry.
		rt.closed.Store(true)
		return dto.TurnResult{}, errs.NewFatal("dice runtime closed: " + rt.ClosedReason())
	default:
	}

	tp, ok := rt.pools[req.GameId]
	if !ok {
		return dto.TurnResult{}, errs.NewWarn("game id not found")
	}

	// pool 自己會處理 done / close / rebuild / metrics
	return tp.PlayTurn(ctx, req)
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *DiceRuntime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and records the reason (written once).
func (rt *DiceRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
	})
}

// Closed reports whether the runtime has been closed.
func (rt *DiceRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *DiceRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
