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

// Package score 實作 Naasii 的計分引擎。
//
// 引擎是純函數：同一組 12 個骰面必然產出同一個 {category, score, counts}，
// 無亂數、無隱藏狀態。加分是「可疊加」的：同面加分、順子加分與
// 牌型加碼（multiple_triples / multiple_pairs）全部累加，中途不歸零。
package score

import (
	"strconv"

	"github.com/zintix-labs/naasii/errs"
)

// Category 為牌型標籤。
type Category string

const (
	// CategoryChance 萬用：沒有任何加分型態時的預設標籤。
	// 12 顆 6 面骰依鴿籠原理必有重複面，正規輸入走不到這裡，
	// 但畸形輸入（面值全部超界）仍會落在此。
	CategoryChance Category = "chance"

	// CategoryFiveOrMore 同面 5 顆以上。
	CategoryFiveOrMore Category = "five_or_more_of_a_kind"

	// CategoryFourOfAKind 同面恰 4 顆。
	CategoryFourOfAKind Category = "four_of_a_kind"

	// CategoryMultipleTriples 兩組以上三條，另加碼。
	CategoryMultipleTriples Category = "multiple_triples"

	// CategoryThreeOfAKind 單組三條。
	CategoryThreeOfAKind Category = "three_of_a_kind"

	// CategoryMultiplePairs 三組以上對子，另加碼。
	CategoryMultiplePairs Category = "multiple_pairs"

	// CategorySinglePair 保底牌型：總分為 0 但仍有對子時套用。
	CategorySinglePair Category = "single_pair"
)

// StraightCategory 回傳長度 n 順子的暫定標籤，例如 straight_6。
// 此標籤可能在牌型判定時被覆寫。
func StraightCategory(n int) Category {
	return Category("straight_" + strconv.Itoa(n))
}

// ErrInvalidDiceCount 輸入骰數與骰池設定不符。
var ErrInvalidDiceCount = errs.NewWarn("invalid dice count")

// Result 是一次計分的完整輸出。
//
// Counts 以 face-1 為索引（Counts[0] 為 1 點的顆數），長度等於面數。
// 面值超界的骰子不列入 Counts，因此畸形輸入下總和可能小於骰數。
type Result struct {
	Category Category
	Score    int
	Counts   []int
}

// CountOf 回傳面值 face 的顆數，超界回傳 0。
func (r *Result) CountOf(face int) int {
	if face < 1 || face > len(r.Counts) {
		return 0
	}
	return r.Counts[face-1]
}

// Analysis 是 Analyze 的輸出：與計分相同的 counts、至多數條建議文字
// 與原始骰面總和。僅供外層 UI 顯示，不影響計分。
type Analysis struct {
	Counts      []int
	Suggestions []string
	Total       int
}
