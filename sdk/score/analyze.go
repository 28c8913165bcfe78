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

package score

import (
	"fmt"
	"sort"
)

// Analyze 產生留骰建議，純顯示用途，永不回傳錯誤。
//
// 建議內容：
//   - 顆數 >= 2 的面當中取前三名（顆數多者優先，同顆數取小面值），
//     各給一條 "Keep N dice with value V"。
//   - 缺面 <= 2 時補一條湊順建議，列出缺少的面值。
//
// 任意長度輸入都接受（含空與畸形面值），超界面值不列入 counts
// 但會算進 Total。
func (e *Engine) Analyze(values []int) Analysis {
	counts := make([]int, e.faces)
	total := 0
	for _, v := range values {
		total += v
		if v >= 1 && v <= e.faces {
			counts[v-1]++
		}
	}

	// 面值依顆數排序，同顆數小面優先
	order := make([]int, e.faces)
	for i := range order {
		order[i] = i + 1
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]-1] > counts[order[b]-1]
	})

	suggestions := make([]string, 0, 4)
	top := 3
	if top > len(order) {
		top = len(order)
	}
	for _, face := range order[:top] {
		if c := counts[face-1]; c >= 2 {
			suggestions = append(suggestions, fmt.Sprintf("Keep %d dice with value %d", c, face))
		}
	}

	missing := []int{}
	for face := 1; face <= e.faces; face++ {
		if counts[face-1] == 0 {
			missing = append(missing, face)
		}
	}
	if len(missing) <= 2 {
		suggestions = append(suggestions, fmt.Sprintf("Near straight - need values %v", missing))
	}

	return Analysis{Counts: counts, Suggestions: suggestions, Total: total}
}
