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

package stats_test

import (
	"math"
	"testing"

	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
	"github.com/zintix-labs/naasii/stats"
)

// buildStatReport constructs a StatReport from turn scores and rolls used.
// All turns are tagged chance to keep category bookkeeping trivial.
func buildStatReport(scores []int, rollsPerTurn int, rollsUsed []int) *stats.StatReport {
	L := len(stats.Buckets.ScoreBucketStr())
	bucket := stats.Buckets.Bucket()
	collect := make([]int, L)
	ru := make([]int, rollsPerTurn+1)

	var total, sqSum, zero int
	minSc, maxSc := math.MaxInt, 0
	for i, sc := range scores {
		collect[bucket.Index(sc)]++
		ru[rollsUsed[i]]++
		total += sc
		sqSum += sc * sc
		if sc == 0 {
			zero++
		}
		if sc < minSc {
			minSc = sc
		}
		if sc > maxSc {
			maxSc = sc
		}
	}

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:   "TestGame",
			GameId:     spec.GID(0),
			Policy:     spec.PolicyKey("hold_none"),
			TotalScore: total,
			ScoreSqSum: sqSum,
			MinScore:   minSc,
			MaxScore:   maxSc,
			ZeroTurns:  zero,
			HitRate:    1.0 - float64(zero)/float64(len(scores)),
			Turns:      len(scores),
		},
		Rolls: &stats.RollReport{
			RollsUsedCollect: ru,
			RollsUsedDist:    make([]float64, len(ru)),
		},
		Dist: &stats.DistReport{
			ScoreBucket:  stats.Buckets.ScoreBucketStr(),
			ScoreCollect: collect,
			ScoreDist:    make([]float64, L),
		},
		Categories: &stats.CategoryReport{
			Category:     []score.Category{score.CategoryChance},
			Collect:      []int{len(scores)},
			Dist:         []float64{1.0},
			MostFrequent: score.CategoryChance,
		},
	}
	report.Done()
	return report
}

func TestScoreBucketIndex(t *testing.T) {
	labels := stats.Buckets.ScoreBucketStr()
	if len(labels) != 14 {
		t.Fatalf("bucket labels length got %d want 14", len(labels))
	}
	b := stats.Buckets.Bucket()
	cases := []struct {
		score int
		idx   int
	}{
		{0, 0}, {1, 1}, {4, 1}, {5, 2}, {9, 2}, {10, 3}, {14, 3},
		{15, 4}, {20, 5}, {30, 6}, {50, 8}, {80, 11}, {94, 11},
		{95, 12}, {119, 12}, {120, 13}, {100000, 13},
	}
	for _, c := range cases {
		if got := b.Index(c.score); got != c.idx {
			t.Fatalf("Index(%d) got %d (%s) want %d (%s)", c.score, got, labels[got], c.idx, labels[c.idx])
		}
	}
}

func TestStatReportCoreMetrics(t *testing.T) {
	rep := buildStatReport([]int{5, 25}, 3, []int{1, 3})

	wantMean := 15.0
	if got := rep.Mean(); math.Abs(got-wantMean) > 1e-12 {
		t.Fatalf("mean got %.12f want %.12f", got, wantMean)
	}

	variance := ((5.0*5.0 + 25.0*25.0) - (5.0+25.0)*(5.0+25.0)/2) / (2 - 1)
	wantStd := math.Sqrt(variance)
	if got := rep.Std(); math.Abs(got-wantStd) > 1e-12 {
		t.Fatalf("std got %.12f want %.12f", got, wantStd)
	}

	wantCV := wantStd / wantMean
	if got := rep.Cv(); math.Abs(got-wantCV) > 1e-12 {
		t.Fatalf("cv got %.12f want %.12f", got, wantCV)
	}

	// lower CI bound is clamped at zero for this tiny noisy sample
	ci := rep.Ci()
	if ci.Lo != 0 {
		t.Fatalf("CI.Lo got %.4f want 0", ci.Lo)
	}
	if want := wantMean + 1.96*wantStd/math.Sqrt(2); math.Abs(ci.Hi-want) > 1e-9 {
		t.Fatalf("CI.Hi got %.6f want %.6f", ci.Hi, want)
	}

	if got := rep.Rolls.MeanRolls; math.Abs(got-2.0) > 1e-12 {
		t.Fatalf("mean rolls got %.3f want 2.0", got)
	}
	if got := rep.Rolls.StopEarlyRate; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("stop early rate got %.3f want 0.5", got)
	}

	// Distribution lengths and sums
	if len(rep.Dist.ScoreCollect) != len(rep.Dist.ScoreBucket) {
		t.Fatalf("score buckets length mismatch")
	}
	totalTurns := 0
	for _, c := range rep.Dist.ScoreCollect {
		totalTurns += c
	}
	if totalTurns != rep.Summary.Turns {
		t.Fatalf("distribution total %d != turns %d", totalTurns, rep.Summary.Turns)
	}

	rep.Done() // idempotent
	if rep.Summary.MeanScore != wantMean {
		t.Fatalf("mean changed after second Done")
	}
}

func TestEstimatorGameExp(t *testing.T) {
	// Build 100 single-turn games with mean scores 0..99
	reports := make([]*stats.StatReport, 0, 100)
	for i := 0; i < 100; i++ {
		reports = append(reports, buildStatReport([]int{i}, 3, []int{3}))
	}

	est := stats.EstimatorGameExp(reports)
	if math.Abs(est.ScoreStat.ExpMedian.Hat-50.0) > 2.5 {
		t.Fatalf("median mean expected ~50, got %.3f", est.ScoreStat.ExpMedian.Hat)
	}
	if math.Abs(est.ScoreStat.ExpPerc.ExpP90.Hat-90.0) > 2.5 {
		t.Fatalf("P90 mean expected ~90, got %.3f", est.ScoreStat.ExpPerc.ExpP90.Hat)
	}
	// means 0..10 sit at or below the 10 point benchmark
	if got := est.ScoreStat.MeanPerc.Mean10.Hat; math.Abs(got-0.11) > 1e-12 {
		t.Fatalf("<=10 pts proportion got %.3f want 0.11", got)
	}

	// Outcome: 3 cold, 2 warm, 5 hot games by best turn score
	outcomeSamples := make([]*stats.StatReport, 10)
	for i := 0; i < 10; i++ {
		var maxSc int
		switch {
		case i < 3:
			maxSc = 10 // cold
		case i < 5:
			maxSc = 40 // warm
		default:
			maxSc = 80 // hot
		}
		outcomeSamples[i] = buildStatReport([]int{maxSc}, 3, []int{3})
	}
	est2 := stats.EstimatorGameExp(outcomeSamples)
	if est2.OutcomeStat.Cold.Hat != 0.3 {
		t.Fatalf("cold rate got %.2f want 0.30", est2.OutcomeStat.Cold.Hat)
	}
	if est2.OutcomeStat.Warm.Hat != 0.2 {
		t.Fatalf("warm rate got %.2f want 0.20", est2.OutcomeStat.Warm.Hat)
	}
	if est2.OutcomeStat.Hot.Hat != 0.5 {
		t.Fatalf("hot rate got %.2f want 0.50", est2.OutcomeStat.Hot.Hat)
	}

	// Five-of-a-kind events: 7 games saw none, 2 saw one, 1 saw two
	fiveSamples := make([]*stats.StatReport, 10)
	for i := 0; i < 10; i++ {
		r := buildStatReport([]int{30}, 3, []int{3})
		k := 0
		switch {
		case i >= 9:
			k = 2
		case i >= 7:
			k = 1
		}
		if k > 0 {
			r.Categories = &stats.CategoryReport{
				Category:     []score.Category{score.CategoryFiveOrMore},
				Collect:      []int{k},
				Dist:         []float64{1.0},
				MostFrequent: score.CategoryFiveOrMore,
			}
		}
		fiveSamples[i] = r
	}
	est3 := stats.EstimatorGameExp(fiveSamples)
	if est3.EventStat.FiveKind.Zero.Hat != 0.7 {
		t.Fatalf("zero five-kind rate got %.2f want 0.70", est3.EventStat.FiveKind.Zero.Hat)
	}
	if est3.EventStat.FiveKind.One.Hat != 0.2 {
		t.Fatalf("one five-kind rate got %.2f want 0.20", est3.EventStat.FiveKind.One.Hat)
	}
	if est3.EventStat.FiveKind.Two.Hat != 0.1 {
		t.Fatalf("two five-kind rate got %.2f want 0.10", est3.EventStat.FiveKind.Two.Hat)
	}
}
