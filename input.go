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
	"strconv"
	"strings"
)

// SelectAction 是鎖骰輸入解析後的動作分類。
type SelectAction uint8

const (
	// SelectKeep 鎖住 Indices 指到的骰子
	SelectKeep SelectAction = iota
	// SelectAll 全鎖
	SelectAll
	// SelectNone 全放
	SelectNone
	// SelectDone 結束選骰
	SelectDone
)

// Selection 是一行鎖骰輸入的解析結果。
// Action == SelectKeep 時 Indices 為 0-based 骰子索引，保留輸入順序；
// 重複編號不去重，下游 Lock 本來就冪等。
type Selection struct {
	Action  SelectAction
	Indices []int
}

// ParseSelection 解析玩家的一行鎖骰輸入。
//
// 介面上骰子以 1 起算（第 1 顆到第 diceCount 顆），這裡轉回 0-based。
// 接受的輸入：
//   - "all" / "none" / "done" 關鍵字（不分大小寫）
//   - 空白分隔的 1-based 編號，如 "1 3 5"
//
// 容錯：非數字與超出 [1, diceCount] 的編號一律靜默略過，
// 一行爛輸入最多退化成「什麼都沒選」，不會中斷回合。
func ParseSelection(line string, diceCount int) Selection {
	line = strings.ToLower(strings.TrimSpace(line))
	switch line {
	case "all":
		return Selection{Action: SelectAll}
	case "none":
		return Selection{Action: SelectNone}
	case "done", "":
		return Selection{Action: SelectDone}
	}

	fields := strings.Fields(line)
	indices := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > diceCount {
			continue
		}
		indices = append(indices, n-1)
	}
	return Selection{Action: SelectKeep, Indices: indices}
}
