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
	"slices"
	"testing"

	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/spec"
)

func mustScore(t *testing.T, e *Engine, values []int) Result {
	t.Helper()
	res, err := e.Calculate(values)
	if err != nil {
		t.Fatalf("calculate %v: %v", values, err)
	}
	return res
}

// TestSixPairs 六對：同面 6x5 + 六連順 50 + 多對加碼 10 = 90。
func TestSixPairs(t *testing.T) {
	e := NewOfficialEngine()
	res := mustScore(t, e, []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6})

	if res.Score != 90 {
		t.Fatalf("expected 90, got %d", res.Score)
	}
	if res.Category != CategoryMultiplePairs {
		t.Fatalf("expected multiple_pairs, got %s", res.Category)
	}
	for face := 1; face <= 6; face++ {
		if res.CountOf(face) != 2 {
			t.Fatalf("expected count 2 for face %d, got %d", face, res.CountOf(face))
		}
	}
}

// TestTripleOnesWithFullStraight 三條 1 加四組對子加六連順：
// 10 + 4x5 + 50 = 80，單組三條不加碼。
func TestTripleOnesWithFullStraight(t *testing.T) {
	e := NewOfficialEngine()
	res := mustScore(t, e, []int{1, 1, 1, 2, 3, 4, 5, 6, 2, 3, 4, 5})

	if res.Score != 80 {
		t.Fatalf("expected 80, got %d", res.Score)
	}
	if res.Category != CategoryThreeOfAKind {
		t.Fatalf("expected three_of_a_kind, got %s", res.Category)
	}
}

func TestMultipleTriples(t *testing.T) {
	e := NewOfficialEngine()
	// counts: 1x3, 2x3, 3x2, 4x2, 5x1, 6x1
	res := mustScore(t, e, []int{1, 1, 1, 2, 2, 2, 3, 3, 4, 4, 5, 6})

	// 同面 10+10+5+5 = 30、六連順 50、雙三條加碼 15
	if res.Score != 95 {
		t.Fatalf("expected 95, got %d", res.Score)
	}
	if res.Category != CategoryMultipleTriples {
		t.Fatalf("expected multiple_triples, got %s", res.Category)
	}
}

func TestFourOfAKind(t *testing.T) {
	e := NewOfficialEngine()
	// counts: 1x1, 2x4, 3x1, 4x1, 5x3, 6x2
	res := mustScore(t, e, []int{2, 2, 2, 2, 5, 5, 5, 6, 6, 1, 3, 4})

	// 同面 20+10+5 = 35、六連順 50
	if res.Score != 85 {
		t.Fatalf("expected 85, got %d", res.Score)
	}
	if res.Category != CategoryFourOfAKind {
		t.Fatalf("expected four_of_a_kind, got %s", res.Category)
	}
}

func TestFiveOrMoreOfAKind(t *testing.T) {
	e := NewOfficialEngine()
	// 7 顆 3 點 + 其餘五面各一
	res := mustScore(t, e, []int{3, 3, 3, 3, 3, 3, 3, 1, 2, 4, 5, 6})

	// 同面 30（5 顆以上同級）、六連順 50
	if res.Score != 80 {
		t.Fatalf("expected 80, got %d", res.Score)
	}
	if res.Category != CategoryFiveOrMore {
		t.Fatalf("expected five_or_more_of_a_kind, got %s", res.Category)
	}
}

func TestInvalidDiceCount(t *testing.T) {
	e := NewOfficialEngine()
	for _, values := range [][]int{nil, {}, {1, 2, 3}, make([]int, 13)} {
		if _, err := e.Calculate(values); err == nil {
			t.Fatalf("expected error for %d dice", len(values))
		} else if err.Error() != "invalid dice count" {
			t.Fatalf("unexpected message: %q", err.Error())
		}
	}
}

func TestDeterministic(t *testing.T) {
	e := NewOfficialEngine()
	values := []int{6, 6, 6, 1, 2, 2, 4, 4, 4, 4, 5, 3}
	first := mustScore(t, e, values)
	for i := 0; i < 10; i++ {
		res := mustScore(t, e, values)
		if res.Score != first.Score || res.Category != first.Category {
			t.Fatalf("non-deterministic result at iteration %d", i)
		}
		if !slices.Equal(res.Counts, first.Counts) {
			t.Fatalf("counts diverged at iteration %d", i)
		}
	}
}

// TestScoreNeverZero 鴿籠原理：12 顆 6 面骰必有同面，合法輸入分數恆 > 0。
func TestScoreNeverZero(t *testing.T) {
	e := NewOfficialEngine()
	c := core.New(core.Default().New(77))
	values := make([]int, 12)
	for trial := 0; trial < 2000; trial++ {
		for i := range values {
			values[i] = c.IntN(6) + 1
		}
		res := mustScore(t, e, values)
		if res.Score <= 0 {
			t.Fatalf("zero score for valid roll %v", values)
		}
		sum := 0
		for _, cnt := range res.Counts {
			sum += cnt
		}
		if sum != 12 {
			t.Fatalf("counts sum %d for valid roll %v", sum, values)
		}
	}
}

// TestMalformedValuesTolerated 面值超界不報錯，只是不列入 counts。
func TestMalformedValuesTolerated(t *testing.T) {
	e := NewOfficialEngine()

	res := mustScore(t, e, []int{0, 7, 0, 7, 0, 7, 0, 7, 0, 7, 0, 7})
	if res.Score != 0 || res.Category != CategoryChance {
		t.Fatalf("expected chance/0 for all-malformed input, got %s/%d", res.Category, res.Score)
	}

	// 超界骰擠掉正常骰後，max_count <= 1 仍可留下順子標籤
	res = mustScore(t, e, []int{9, 9, 9, 9, 9, 9, 9, 9, 9, 1, 2, 3})
	if res.Category != StraightCategory(3) || res.Score != 10 {
		t.Fatalf("expected straight_3/10, got %s/%d", res.Category, res.Score)
	}
}

// TestSinglePairFloor 保底僅在自訂零分表下可達：官方表對子必有 5 分。
func TestSinglePairFloor(t *testing.T) {
	ps := &spec.PoolSetting{}
	if err := ps.Init(); err != nil {
		t.Fatalf("pool init: %v", err)
	}
	ss := &spec.ScoreSetting{
		RepeatBonus:   map[int]int{2: 0, 3: 0, 4: 0, 5: 0},
		StraightBonus: map[int]int{3: 0, 4: 0, 5: 0, 6: 0},
		FloorScore:    5,
	}
	if err := ss.Init(); err != nil {
		t.Fatalf("score setting init: %v", err)
	}

	e := NewEngine(ps, ss)
	res := mustScore(t, e, []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6})
	if res.Score != 5 || res.Category != CategorySinglePair {
		t.Fatalf("expected single_pair/5 floor, got %s/%d", res.Category, res.Score)
	}
}

func TestScoreCountsMatchesCalculate(t *testing.T) {
	e := NewOfficialEngine()
	c := core.New(core.Default().New(99))
	values := make([]int, 12)
	counts := make([]int, 6)
	for trial := 0; trial < 500; trial++ {
		for i := range counts {
			counts[i] = 0
		}
		for i := range values {
			values[i] = c.IntN(6) + 1
			counts[values[i]-1]++
		}
		a := mustScore(t, e, values)
		b := e.ScoreCounts(counts)
		if a.Score != b.Score || a.Category != b.Category {
			t.Fatalf("ScoreCounts diverged for %v: %s/%d vs %s/%d",
				values, a.Category, a.Score, b.Category, b.Score)
		}
	}
}

func TestAnalyzeSuggestions(t *testing.T) {
	e := NewOfficialEngine()

	// 4 顆 6、3 顆 2、2 顆 4，缺 3 與 5
	an := e.Analyze([]int{6, 6, 6, 6, 2, 2, 2, 4, 4, 1, 1, 1})
	want := []string{
		"Keep 4 dice with value 6",
		"Keep 3 dice with value 1",
		"Keep 3 dice with value 2",
		"Near straight - need values [3 5]",
	}
	if !slices.Equal(an.Suggestions, want) {
		t.Fatalf("unexpected suggestions:\n got %v\nwant %v", an.Suggestions, want)
	}
	if an.Total != 4*6+3*2+2*4+3*1 {
		t.Fatalf("unexpected total %d", an.Total)
	}
}

func TestAnalyzeNeverErrors(t *testing.T) {
	e := NewOfficialEngine()

	// 任意長度與畸形面值都要接受
	for _, values := range [][]int{nil, {}, {1}, {0, 7, -3}, make([]int, 40)} {
		an := e.Analyze(values)
		if len(an.Counts) != 6 {
			t.Fatalf("expected 6 counts, got %d", len(an.Counts))
		}
	}

	// 缺面 > 2 時不給湊順建議
	an := e.Analyze([]int{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3})
	for _, s := range an.Suggestions {
		if s == "Near straight - need values [4 5 6]" {
			t.Fatalf("near-straight hint should be absent with 3 faces missing")
		}
	}
	if len(an.Suggestions) != 3 {
		t.Fatalf("expected exactly 3 keep suggestions, got %v", an.Suggestions)
	}

	// 六面俱全時湊順建議列空集合
	full := e.Analyze([]int{1, 2, 3, 4, 5, 6, 1, 2, 3, 4, 5, 6})
	found := false
	for _, s := range full.Suggestions {
		if s == "Near straight - need values []" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected empty-need near-straight hint, got %v", full.Suggestions)
	}
}
