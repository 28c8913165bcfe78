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

package dto

import (
	"github.com/zintix-labs/naasii/corefmt"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

type TurnResult struct {
	GameName  string         `json:"game"`             // 遊戲名稱
	GameID    spec.GID       `json:"gameid"`           // 遊戲桌編號
	Policy    spec.PolicyKey `json:"policy"`           // 本回合走的留骰策略
	Score     int            `json:"score"`            // 回合得分
	Category  score.Category `json:"category"`         // 得分牌型
	Counts    []int          `json:"counts,omitempty"` // 每面顆數（index 0 = 面 1）
	Rolls     []RollDTO      `json:"rolls,omitempty"`  // 每次擲骰的完整快照
	IsTurnEnd bool           `json:"isend"`            // 回合結束旗標
	State     TurnState      `json:"turn_state"`       // 回合狀態
	Extend    any            `json:"ext,omitempty"`    // 策略附掛資料
}

// RollDTO 為對外輸出的單次擲骰序列化結構。
type RollDTO struct {
	RollId int     `json:"roll"`           // 第幾擲（0-based）
	Values []uint8 `json:"values"`         // 擲完後的所有骰面
	Lock   uint16  `json:"lock,omitempty"` // 本擲落地後策略敲定的鎖定遮罩
}

func NewTurnResultDTO(tr *buf.TurnResult) (TurnResult, error) {
	if tr == nil {
		return TurnResult{}, errs.NewWarn("turn result is nil")
	}
	state := TurnState{}
	if tr.State != nil {
		state.StartCoreSnapB64U = corefmt.EncodeBase64URL(tr.State.StartCoreSnap)
		state.AfterCoreSnapB64U = corefmt.EncodeBase64URL(tr.State.AfterCoreSnap)
	}

	dto := TurnResult{
		GameName:  tr.GameName,
		GameID:    tr.GameID,
		Policy:    tr.Policy,
		Score:     tr.Score,
		Category:  tr.Category,
		Counts:    append([]int(nil), tr.Counts...),
		IsTurnEnd: tr.IsTurnEnd,
		State:     state,
		Extend:    renderExtendResult(tr.Policy, tr.Extend),
	}

	if tr.RollCount > 0 {
		snap := snapshotTurn(tr)
		dto.Rolls = make([]RollDTO, tr.RollCount)
		for i := range tr.RollCount {
			dto.Rolls[i] = RollDTO{
				RollId: i,
				Values: rollFromSnap(i, snap),
				Lock:   maskFromSnap(i, snap),
			}
		}
	}

	return dto, nil
}

// turnSnapshot
//
// 對於要深拷貝且零碎的物件作一次集中深拷貝快照
// 讓後續Dto時候都只對快照作切片，避免了多次make/拷貝的GC波動
type turnSnapshot struct {
	Rolls     []uint8
	LockMasks []uint16
	DiceCount int
}

func snapshotTurn(tr *buf.TurnResult) *turnSnapshot {
	s := turnSnapshot{
		DiceCount: tr.DiceCount,
	}
	// 一次性深拷貝
	s.Rolls = append([]uint8(nil), tr.Rolls...)
	s.LockMasks = append([]uint16(nil), tr.LockMasks...)
	return &s
}

func rollFromSnap(i int, snap *turnSnapshot) []uint8 {
	start := i * snap.DiceCount
	end := start + snap.DiceCount
	if start < 0 || end > len(snap.Rolls) {
		return nil
	}
	return snap.Rolls[start:end] // 不拷貝
}

func maskFromSnap(i int, snap *turnSnapshot) uint16 {
	if i < 0 || i >= len(snap.LockMasks) {
		return 0
	}
	return snap.LockMasks[i]
}

type TurnState struct {
	StartCoreSnapB64U string `json:"start_b64u"` // 必回
	AfterCoreSnapB64U string `json:"after_b64u"` // 必回
}
