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
	"github.com/zintix-labs/naasii/sdk/score"
)

// ScoreEntry 是帳本上的一筆回合紀錄：打完一個回合落一筆，落帳後不再改動。
type ScoreEntry struct {
	Round    int            `json:"round"`    // 回合（1-based）
	Score    int            `json:"score"`    // 回合得分
	Category score.Category `json:"category"` // 得分牌型
	Total    int            `json:"total"`    // 記到這筆為止的累計總分
	Player   string         `json:"player"`   // 玩家名稱（多人帳本合併時好辨識）
}

// Player 是一個座位的帳本：名字、累計總分、逐回合歷史。
// Score 恆等於 History 內各筆 Score 的總和。
type Player struct {
	Name    string       `json:"name"`
	Score   int          `json:"score"`
	History []ScoreEntry `json:"score_history"`
}

func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

// RecordScore 把一個回合的結算記進帳本並推進累計總分，回傳落帳的那筆。
func (p *Player) RecordScore(round int, sc int, cat score.Category) ScoreEntry {
	p.Score += sc
	e := ScoreEntry{
		Round:    round,
		Score:    sc,
		Category: cat,
		Total:    p.Score,
		Player:   p.Name,
	}
	p.History = append(p.History, e)
	return e
}

// Rounds 回傳已落帳的回合數。
func (p *Player) Rounds() int {
	return len(p.History)
}

// BestRound 回傳得分最高的那筆（同分取先落帳者）；還沒打過回傳 (ScoreEntry{}, false)。
func (p *Player) BestRound() (ScoreEntry, bool) {
	if len(p.History) == 0 {
		return ScoreEntry{}, false
	}
	best := p.History[0]
	for _, e := range p.History[1:] {
		if e.Score > best.Score {
			best = e
		}
	}
	return best, true
}

// AverageScore 回傳平均每回合得分；還沒打過回傳 0。
func (p *Player) AverageScore() float64 {
	if len(p.History) == 0 {
		return 0
	}
	return float64(p.Score) / float64(len(p.History))
}
