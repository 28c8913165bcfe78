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

// Package sampler 提供一系列高效能的加權抽樣演算法與工具。
//
// 本檔案 (weightitem.go) 定義了加權排序與抽樣所需的內部輔助結構。
//
// 結構說明：
//   - weightItem: 封裝原始索引 (idx) 與計算後的隨機分數 (score)。
//   - weightHeap: 實作 heap.Interface 的 Max-Heap，用於K抽樣的動態維護。
//
// 注意：如果某個weights中某一個weight = 0 ，則在WeightedShuffle當中會被排到最後，但K抽樣則永不入選
package sampler

import (
	"cmp"
	"container/heap"
	"math"
	"slices"

	"github.com/zintix-labs/naasii/sdk/core"
)

// weightItem 是加權排序中的基本單元。
type weightItem struct {
	idx   int     // 原始數據的 Index
	score float64 // 根據權重與隨機數計算出的排序分數
}

// weightHeap 實作了 heap.Interface，用於維護一個 Max-Heap (最大堆)。
//
// 用途：在 WeightedSample 中保留分數「最小」的前 K 個元素。
// 堆頂 (heap[0]) 存儲的是這 K 個元素中「分數最大」(最爛) 的那個，
// 當新元素分數比堆頂還小時就替換堆頂。
type weightHeap []weightItem

func (h weightHeap) Len() int { return len(h) }

// Less 反轉比較方向讓 h[0] 成為最大值（Go 的 heap 預設是 Min-Heap）。
func (h weightHeap) Less(i, j int) bool { return h[i].score > h[j].score }

func (h weightHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *weightHeap) Push(x any) {
	*h = append(*h, x.(weightItem))
}

func (h *weightHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// -----------------------------------------------------------------------------
// 公開 API (Public APIs)
// -----------------------------------------------------------------------------

// WeightedShuffle 加權不放回抽樣 - 全排列 (Weighted Shuffle without Replacement)
//
// 演算法：Efraimidis-Spirakis Algorithm A-ExpJ
// 參考文獻：2006, "Weighted random sampling with a reservoir"
//
// 核心邏輯：
//  1. 為每個元素 i 生成特徵分數，實作上使用 Log 轉換：Score_i = -ln(U_i) / w_i，
//     其中 -ln(U_i) 即為標準指數分佈 (ExpFloat64)。
//  2. 權重 w_i 越大，分母越大，分數越小，排名越靠前。
//  3. 按 Score 由小到大排序即為加權隨機排列。
//
// 特殊處理：
//   - 權重 < 0：Panic (視為錯誤)。
//   - 權重 == 0：分數設為 +Inf，這保證它們會被排在列表的最後面。
//
// 複雜度：時間 O(N log N)、空間 O(N)。
func WeightedShuffle(c *core.Core, weights []int) []int {
	n := len(weights)
	if n == 0 {
		return []int{}
	}

	items := make([]weightItem, n)

	for i, w := range weights {
		if w < 0 {
			panic("WeightedShuffle: negative weight")
		}
		if w == 0 {
			// 權重為 0 的處理：給予正無窮大分數 (排到最後)
			items[i] = weightItem{idx: i, score: math.Inf(1)}
			continue
		}

		score := c.ExpFloat64() / float64(w)
		items[i] = weightItem{idx: i, score: score}
	}

	slices.SortFunc(items, func(a, b weightItem) int {
		return cmp.Compare(a.score, b.score)
	})

	result := make([]int, n)
	for i, item := range items {
		result[i] = item.idx
	}

	return result
}

// WeightedShuffleWithFilter 加權不放回抽樣 - 全排列但過濾零權重
//
// 行為差異：
//   - WeightedShuffle: 回傳長度 N，權重為 0 者排在最後。
//   - WeightedShuffleWithFilter: 回傳長度 M (M <= N)，僅包含權重 > 0 的項目。
func WeightedShuffleWithFilter(c *core.Core, weights []int) []int {
	n := len(weights)
	if n == 0 {
		return []int{}
	}

	items := make([]weightItem, 0, n)

	for i, w := range weights {
		if w < 0 {
			panic("WeightedShuffleWithFilter: negative weight")
		}
		// 權重為 0 的元素直接忽略，不加入列表
		if w == 0 {
			continue
		}

		score := c.ExpFloat64() / float64(w)
		items = append(items, weightItem{idx: i, score: score})
	}

	slices.SortFunc(items, func(a, b weightItem) int {
		return cmp.Compare(a.score, b.score)
	})

	result := make([]int, len(items))
	for i, item := range items {
		result[i] = item.idx
	}

	return result
}

// WeightedSample 加權不放回抽樣 - 只取前 K 個 (Weighted Reservoir Sampling)
//
// 演算法：Efraimidis-Spirakis Algorithm A-Res
//
// 維護一個容量為 K 的 Max-Heap，存放目前分數最小的 K 個元素；
// 堆頂即是這 K 個裡「最該被淘汰」的人。
//
// 相比 WeightedShuffle 的優勢：
//  1. 空間複雜度僅為 O(K)，對 GC 友善。
//  2. 時間複雜度為 O(N log K)：當 K << N 時比全排序快得多。
//
// Naasii 的追順策略用它從重複骰面中挑出要放掉重骰的 K 顆。
func WeightedSample(c *core.Core, weights []int, k int) []int {
	n := len(weights)
	// 邊界檢查：若 k <= 0 或無資料，回傳空
	if k <= 0 || n == 0 {
		return []int{}
	}
	// 若要取的數量超過總數，邏輯上等同於全取 (但排序依據權重)
	if k > n {
		k = n
	}

	h := make(weightHeap, 0, k)

	for i, w := range weights {
		if w < 0 {
			panic("WeightedSample: negative weight")
		}
		// 權重為 0 的元素無法被選中，直接忽略
		if w == 0 {
			continue
		}

		score := c.ExpFloat64() / float64(w)

		if h.Len() < k {
			heap.Push(&h, weightItem{idx: i, score: score})
		} else {
			// 直接修改 root 並呼叫 Fix，比 Pop() + Push() 少一次 log K 操作
			if score < h[0].score {
				h[0] = weightItem{idx: i, score: score}
				heap.Fix(&h, 0)
			}
		}
	}

	// 有效(>0)權重數量 < k 時，heap 的長度會小於 k，以 h.Len() 為準。
	actualCount := h.Len()
	if actualCount == 0 {
		return []int{}
	}

	result := make([]int, actualCount)
	// Max-Heap Pop 出來的是「最大」的(最後一名)，倒序填入 result 讓回傳由小到大。
	for i := actualCount - 1; i >= 0; i-- {
		item := heap.Pop(&h).(weightItem)
		result[i] = item.idx
	}

	return result
}
