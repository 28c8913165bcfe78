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

package enum

import (
	"math"
	"sort"

	"github.com/zintix-labs/naasii/sdk/score"
)

// CategoryProb 是單一牌型的精確出現率。
type CategoryProb struct {
	Category score.Category `json:"category"`
	Weight   uint64         `json:"weight"`
	Prob     float64        `json:"prob"`
}

// ScoreProb 是分數分布上的一個點。CumProb 為 P(score <= Score)。
type ScoreProb struct {
	Score   int     `json:"score"`
	Weight  uint64  `json:"weight"`
	Prob    float64 `json:"prob"`
	CumProb float64 `json:"cum_prob"`
}

// Eval 是一次全空間精算的結果：單擲（不重擲不留骰）分數的母體統計量。
// 模擬器量到的是策略加持後的分布，這裡是策略無關的基準線。
type Eval struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	MinScore int     `json:"min_score"`
	MaxScore int     `json:"max_score"`

	// Categories 依出現率由高到低排序，同率依名稱排序。
	Categories []CategoryProb `json:"categories"`
	// Dist 依分數由低到高排序。
	Dist []ScoreProb `json:"dist"`
}

func (s *Space) evaluate(e *score.Engine) *Eval {
	catWeight := make(map[score.Category]uint64)
	scoreWeight := make(map[int]uint64)

	var sum, sumSq float64
	minScore, maxScore := math.MaxInt, math.MinInt

	for i := 0; i < s.n; i++ {
		sc, cat := e.ScoreValue(s.counts[i*s.faces : (i+1)*s.faces])
		w := uint64(s.weights[i])

		catWeight[cat] += w
		scoreWeight[sc] += w
		fw, fs := float64(w), float64(sc)
		sum += fw * fs
		sumSq += fw * fs * fs

		if sc < minScore {
			minScore = sc
		}
		if sc > maxScore {
			maxScore = sc
		}
	}

	total := float64(s.total)
	ev := &Eval{
		Mean:     sum / total,
		MinScore: minScore,
		MaxScore: maxScore,
	}
	ev.Variance = sumSq/total - ev.Mean*ev.Mean
	if ev.Variance < 0 { // 浮點誤差
		ev.Variance = 0
	}
	ev.StdDev = math.Sqrt(ev.Variance)

	for cat, w := range catWeight {
		ev.Categories = append(ev.Categories, CategoryProb{
			Category: cat,
			Weight:   w,
			Prob:     float64(w) / total,
		})
	}
	sort.Slice(ev.Categories, func(i, j int) bool {
		if ev.Categories[i].Weight != ev.Categories[j].Weight {
			return ev.Categories[i].Weight > ev.Categories[j].Weight
		}
		return ev.Categories[i].Category < ev.Categories[j].Category
	})

	for sc, w := range scoreWeight {
		ev.Dist = append(ev.Dist, ScoreProb{
			Score:  sc,
			Weight: w,
			Prob:   float64(w) / total,
		})
	}
	sort.Slice(ev.Dist, func(i, j int) bool { return ev.Dist[i].Score < ev.Dist[j].Score })
	cum := 0.0
	for i := range ev.Dist {
		cum += ev.Dist[i].Prob
		ev.Dist[i].CumProb = cum
	}

	return ev
}

// CategoryProbability 回傳指定牌型的出現率，沒出現過的牌型回傳 0。
func (ev *Eval) CategoryProbability(cat score.Category) float64 {
	for _, cp := range ev.Categories {
		if cp.Category == cat {
			return cp.Prob
		}
	}
	return 0
}

// Quantile 回傳最小的分數 x 使 P(score <= x) >= q。
// q <= 0 回傳最小分數，q >= 1 回傳最大分數。
func (ev *Eval) Quantile(q float64) int {
	if len(ev.Dist) == 0 {
		return 0
	}
	if q <= 0 {
		return ev.MinScore
	}
	for _, sp := range ev.Dist {
		if sp.CumProb >= q {
			return sp.Score
		}
	}
	return ev.MaxScore
}
