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
	"testing"

	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

func TestOfficialSpaceInvariants(t *testing.T) {
	s := OfficialSpace()

	// C(17,5) 種骰型，權重總和 6^12
	if s.Len() != 6188 {
		t.Fatalf("official space has %d shapes, expected 6188", s.Len())
	}
	if s.Total() != 2176782336 {
		t.Fatalf("total weight %d, expected 6^12", s.Total())
	}

	var sumW uint64
	sumP := 0.0
	for i := 0; i < s.Len(); i++ {
		counts := s.Counts(i)
		dice := 0
		for _, c := range counts {
			dice += c
		}
		if dice != 12 {
			t.Fatalf("shape %d sums to %d dice: %v", i, dice, counts)
		}
		sumW += s.Weight(i)
		sumP += s.Probability(i)
	}
	if sumW != s.Total() {
		t.Fatalf("weights sum %d != total %d", sumW, s.Total())
	}
	if math.Abs(sumP-1) > 1e-9 {
		t.Fatalf("probabilities sum to %v", sumP)
	}
}

func TestTinySpaceByHand(t *testing.T) {
	s, err := NewSpace(&spec.PoolSetting{DiceCount: 2, Faces: 2, RollsPerTurn: 1})
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}

	// 字典序：(0,2) (1,1) (2,0)，權重 1 2 1
	wantShapes := [][]int{{0, 2}, {1, 1}, {2, 0}}
	wantWeights := []uint64{1, 2, 1}
	if s.Len() != 3 || s.Total() != 4 {
		t.Fatalf("len=%d total=%d", s.Len(), s.Total())
	}
	for i := range wantShapes {
		got := s.Counts(i)
		if got[0] != wantShapes[i][0] || got[1] != wantShapes[i][1] {
			t.Fatalf("shape %d = %v, expected %v", i, got, wantShapes[i])
		}
		if s.Weight(i) != wantWeights[i] {
			t.Fatalf("weight %d = %d, expected %d", i, s.Weight(i), wantWeights[i])
		}
	}
}

func TestEvaluateTinyByHand(t *testing.T) {
	ps := &spec.PoolSetting{DiceCount: 2, Faces: 2, RollsPerTurn: 1}
	s, err := NewSpace(ps)
	if err != nil {
		t.Fatalf("NewSpace: %v", err)
	}
	e := score.NewEngine(ps, spec.OfficialScoreSetting())

	// (0,2) 與 (2,0) 各得對子 5 分，(1,1) 得 0 分：
	// mean = 10/4 = 2.5，variance = 12.5 - 6.25 = 6.25
	ev, err := s.Evaluate(e)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if math.Abs(ev.Mean-2.5) > 1e-12 {
		t.Fatalf("mean = %v, expected 2.5", ev.Mean)
	}
	if math.Abs(ev.Variance-6.25) > 1e-12 || math.Abs(ev.StdDev-2.5) > 1e-12 {
		t.Fatalf("variance = %v, stddev = %v", ev.Variance, ev.StdDev)
	}
	if ev.MinScore != 0 || ev.MaxScore != 5 {
		t.Fatalf("score range [%d, %d], expected [0, 5]", ev.MinScore, ev.MaxScore)
	}
	if len(ev.Dist) != 2 ||
		ev.Dist[0].Score != 0 || math.Abs(ev.Dist[0].CumProb-0.5) > 1e-12 ||
		ev.Dist[1].Score != 5 || math.Abs(ev.Dist[1].CumProb-1.0) > 1e-12 {
		t.Fatalf("dist = %+v", ev.Dist)
	}
	if q := ev.Quantile(0.5); q != 0 {
		t.Fatalf("Quantile(0.5) = %d", q)
	}
	if q := ev.Quantile(0.51); q != 5 {
		t.Fatalf("Quantile(0.51) = %d", q)
	}
}

func TestEvaluateOfficial(t *testing.T) {
	s := OfficialSpace()
	e := score.NewOfficialEngine()

	ev, err := s.Evaluate(e)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// 12 骰 6 面鴿籠必有對子，官方表下最低 5 分；最高 95（如 3+3+2+2+1+1 的滿順雙三條）
	if ev.MinScore != 5 {
		t.Fatalf("min score = %d, expected 5", ev.MinScore)
	}
	if ev.MaxScore != 95 {
		t.Fatalf("max score = %d, expected 95", ev.MaxScore)
	}

	// max_count 恆 >= 2，chance / 純順子 / 保底都不可能出現
	for _, cat := range []score.Category{
		score.CategoryChance, score.CategorySinglePair, score.StraightCategory(6),
	} {
		if p := ev.CategoryProbability(cat); p != 0 {
			t.Fatalf("category %s has prob %v, expected 0", cat, p)
		}
	}
	sumP := 0.0
	for _, cp := range ev.Categories {
		sumP += cp.Prob
	}
	if math.Abs(sumP-1) > 1e-9 {
		t.Fatalf("category probs sum to %v", sumP)
	}

	if m := s.MeanScore(e); math.Abs(m-ev.Mean) > 1e-9 {
		t.Fatalf("MeanScore %v != Eval.Mean %v", m, ev.Mean)
	}

	// 分位數單調
	prev := ev.Quantile(0)
	for _, q := range []float64{0.25, 0.5, 0.75, 1} {
		cur := ev.Quantile(q)
		if cur < prev {
			t.Fatalf("quantiles not monotone at q=%v: %d < %d", q, cur, prev)
		}
		prev = cur
	}
}

func TestEvaluateShapeMismatch(t *testing.T) {
	s := OfficialSpace()
	ps := &spec.PoolSetting{DiceCount: 4, Faces: 6, RollsPerTurn: 3}
	e := score.NewEngine(ps, spec.OfficialScoreSetting())
	if _, err := s.Evaluate(e); err == nil {
		t.Fatalf("expected shape mismatch error")
	}
}

func TestSampleCountsMatchesExactMean(t *testing.T) {
	s := OfficialSpace()
	e := score.NewOfficialEngine()
	exact := s.MeanScore(e)

	c := core.New(core.Default().New(20240817))
	dst := make([]int, s.Faces())
	const n = 100_000
	sum := 0.0
	for i := 0; i < n; i++ {
		idx := s.SampleCounts(c, dst)
		if idx < 0 || idx >= s.Len() {
			t.Fatalf("sample index %d out of range", idx)
		}
		sc, _ := e.ScoreValue(dst)
		sum += float64(sc)
	}
	got := sum / n

	// 10 萬次 bootstrap 的標準誤遠小於 0.5
	if math.Abs(got-exact) > 0.5 {
		t.Fatalf("bootstrap mean %v deviates from exact %v", got, exact)
	}
}
