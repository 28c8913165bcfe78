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

// Package turn 實作單一回合的狀態機。
//
// 狀態流轉：AwaitingFirstRoll → Rolled →（重複 Rolled）→ Scored。
// 額度用盡後唯一合法動作是結算；結算一回合恰好呼叫計分引擎一次，
// Scored 之後任何 Roll/Score 都是錯誤，直到 Begin 開新回合。
package turn

import (
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/dice"
	"github.com/zintix-labs/naasii/sdk/score"
)

// State 回合狀態。
type State uint8

const (
	StateAwaitingFirstRoll State = iota
	StateRolled
	StateScored
)

func (s State) String() string {
	switch s {
	case StateAwaitingFirstRoll:
		return "awaiting_first_roll"
	case StateRolled:
		return "rolled"
	case StateScored:
		return "scored"
	}
	return "unknown"
}

var (
	// ErrNotRolled 回合尚未擲出第一把就要求結算。
	ErrNotRolled = errs.NewWarn("turn not rolled yet")
	// ErrAlreadyScored 回合已結算，重複動作被拒絕。
	ErrAlreadyScored = errs.NewWarn("turn already scored")
)

// Controller 驅動一個骰池走完一回合。非併發安全，一張骰桌一個。
type Controller struct {
	pool   *dice.Pool
	engine *score.Engine

	state  State
	result score.Result
}

// NewController 綁定骰池與引擎，開在整回合狀態。
func NewController(pool *dice.Pool, engine *score.Engine) *Controller {
	tc := &Controller{pool: pool, engine: engine}
	tc.Begin()
	return tc
}

// Begin 開新回合：骰池整回合重置、狀態回到 AwaitingFirstRoll、前回合結果清空。
func (tc *Controller) Begin() {
	tc.pool.ResetTurn()
	tc.state = StateAwaitingFirstRoll
	tc.result = score.Result{}
}

// State 回傳目前狀態。
func (tc *Controller) State() State {
	return tc.state
}

// Pool 暴露底層骰池供 UI 讀取骰面與鎖定狀態。
func (tc *Controller) Pool() *dice.Pool {
	return tc.pool
}

// Roll 重擲未鎖定的骰子。
// 已結算回傳 ErrAlreadyScored；額度用盡由骰池回報且狀態不變。
func (tc *Controller) Roll() error {
	if tc.state == StateScored {
		return ErrAlreadyScored
	}
	if err := tc.pool.RollAll(); err != nil {
		return err
	}
	tc.state = StateRolled
	return nil
}

// CanRoll 回報是否還能重骰（尚未結算且額度未用盡）。
func (tc *Controller) CanRoll() bool {
	return tc.state != StateScored && tc.pool.RollsLeft() > 0
}

// Lock 鎖定骰子，越界靜默忽略。已結算後的鎖定沒有意義，直接忽略。
func (tc *Controller) Lock(indices ...int) {
	if tc.state == StateScored {
		return
	}
	for _, idx := range indices {
		tc.pool.Lock(idx)
	}
}

// Unlock 解鎖骰子，規則同 Lock。
func (tc *Controller) Unlock(indices ...int) {
	if tc.state == StateScored {
		return
	}
	for _, idx := range indices {
		tc.pool.Unlock(idx)
	}
}

// Score 結算回合：把目前骰面交給引擎，恰好一次。
// 尚未擲骰回傳 ErrNotRolled，重複結算回傳 ErrAlreadyScored。
func (tc *Controller) Score() (score.Result, error) {
	switch tc.state {
	case StateAwaitingFirstRoll:
		return score.Result{}, ErrNotRolled
	case StateScored:
		return score.Result{}, ErrAlreadyScored
	}

	res, err := tc.engine.Calculate(tc.pool.Values())
	if err != nil {
		return score.Result{}, err
	}
	tc.result = res
	tc.state = StateScored
	return res, nil
}

// Result 回傳已結算回合的結果，未結算時第二回傳值為 false。
func (tc *Controller) Result() (score.Result, bool) {
	if tc.state != StateScored {
		return score.Result{}, false
	}
	return tc.result, true
}
