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

package stats

import (
	"fmt"
	"sort"

	"github.com/zintix-labs/naasii/sdk/score"
	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// 對局體驗評估
type EstimatorGames struct {
	ScoreStat   ScoreStat
	EventStat   EventStat
	OutcomeStat OutcomeStat
}

// 得分敘事
type ScoreStat struct {
	ExpMedian PointStat // 描述體驗的中位數
	ExpPerc   ExpPerc   // 描述對局的分布(對應平均得分)
	MeanPerc  MeanPerc  // 描述平均得分的分布(對應多少比例的對局)
}

// 用對局體驗分位數視角看: 最差10％對局的平均得分 最差33%對局的平均得分 ...
type ExpPerc struct {
	ExpP10 PointStat
	ExpP33 PointStat
	ExpP67 PointStat
	ExpP90 PointStat
}

// 用平均得分視角看對局: 有多少對局平均不到10分 有多少對局平均不到15分 ...
type MeanPerc struct {
	Mean10 PointStat
	Mean15 PointStat
	Mean20 PointStat
	Mean25 PointStat
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64
	CI  CI
}

// 事件敘事
type EventStat struct {
	FiveKind EventCount
	Bucket   BucketEvent
}

// 事件點估計
type EventCount struct {
	Zero PointStat
	One  PointStat
	Two  PointStat
	More PointStat
}

// 對應分桶的統計
type BucketEvent struct {
	BucketLable []string     // 分桶標籤
	BucketCount []EventCount // 分桶事件點估計
}

// 對局結果敘事
type OutcomeStat struct {
	Cold PointStat // 整局最高分不到30
	Warm PointStat // 介於兩者之間
	Hot  PointStat // 至少一回合拿到50分以上
}

// 對局冷熱分界線
const (
	coldLine int = 30
	hotLine  int = 50
)

// ============================================================
// ** 對外 : 對局體驗評估 **
// ============================================================

// EstimatorGameExp 對局體驗評估
//
// 1. Score 敘事 : 描述整批對局的單回合平均得分分布
//
// 2. Event 敘事 : 描述對局遇到某些事件(擲出五同、回合落在某得分區間所對應的機率)
//
// 3. Outcome 敘事 : 描述對局整體手感偏冷、普通、偏熱的機率
func EstimatorGameExp(sts []*StatReport) *EstimatorGames {
	// 0. 防禦：空輸入
	n := len(sts)
	out := &EstimatorGames{}
	if n == 0 {
		return out
	}

	// ------------------------------------------------------------
	// 1) Score 敘事：收集每場對局的平均得分並做分位/CI
	// ------------------------------------------------------------
	mean := make([]float64, n)
	for i, s := range sts {
		mean[i] = s.Mean()
	}

	// 中位數 (點估計 + 95% CI)
	medHat := quantilePoint(mean, 0.5)
	medLo, medHi := quantileCI(mean, 0.5, 0.95)

	// P10, P33, P67, P90 (點估計 + 95% CI)
	p10Hat := quantilePoint(mean, 0.10)
	p10Lo, p10Hi := quantileCI(mean, 0.10, 0.95)

	p33Hat := quantilePoint(mean, 1.0/3.0)
	p33Lo, p33Hi := quantileCI(mean, 1.0/3.0, 0.95)

	p67Hat := quantilePoint(mean, 2.0/3.0)
	p67Lo, p67Hi := quantileCI(mean, 2.0/3.0, 0.95)

	p90Hat := quantilePoint(mean, 0.90)
	p90Lo, p90Hi := quantileCI(mean, 0.90, 0.95)

	// 平均得分對標：≤ 10/15/20/25 分的對局比例（CP 95% CI）
	m10Hat, m10CI := percentileCIForValue(mean, 10.0, 0.95)
	m15Hat, m15CI := percentileCIForValue(mean, 15.0, 0.95)
	m20Hat, m20CI := percentileCIForValue(mean, 20.0, 0.95)
	m25Hat, m25CI := percentileCIForValue(mean, 25.0, 0.95)

	out.ScoreStat = ScoreStat{
		ExpMedian: PointStat{Hat: medHat, CI: CI{Lo: medLo, Hi: medHi}},
		ExpPerc: ExpPerc{
			ExpP10: PointStat{Hat: p10Hat, CI: CI{Lo: p10Lo, Hi: p10Hi}},
			ExpP33: PointStat{Hat: p33Hat, CI: CI{Lo: p33Lo, Hi: p33Hi}},
			ExpP67: PointStat{Hat: p67Hat, CI: CI{Lo: p67Lo, Hi: p67Hi}},
			ExpP90: PointStat{Hat: p90Hat, CI: CI{Lo: p90Lo, Hi: p90Hi}},
		},
		MeanPerc: MeanPerc{
			Mean10: PointStat{Hat: m10Hat, CI: m10CI},
			Mean15: PointStat{Hat: m15Hat, CI: m15CI},
			Mean20: PointStat{Hat: m20Hat, CI: m20CI},
			Mean25: PointStat{Hat: m25Hat, CI: m25CI},
		},
	}

	// ------------------------------------------------------------
	// 2) Event 敘事：五同次數分布 + 各桶次數分布（0/1/2/3+）
	// ------------------------------------------------------------
	// 2.1 五同（0/1/2/3+）
	var c0, c1, c2, c3p int
	for _, s := range sts {
		t := s.CategoryCount(score.CategoryFiveOrMore)
		switch {
		case t == 0:
			c0++
		case t == 1:
			c1++
		case t == 2:
			c2++
		default:
			c3p++
		}
	}
	_, ci0 := proportionCICP(c0, n, 0.95)
	_, ci1 := proportionCICP(c1, n, 0.95)
	_, ci2 := proportionCICP(c2, n, 0.95)
	_, ci3 := proportionCICP(c3p, n, 0.95)

	out.EventStat.FiveKind = EventCount{
		Zero: PointStat{Hat: float64(c0) / float64(n), CI: ci0},
		One:  PointStat{Hat: float64(c1) / float64(n), CI: ci1},
		Two:  PointStat{Hat: float64(c2) / float64(n), CI: ci2},
		More: PointStat{Hat: float64(c3p) / float64(n), CI: ci3},
	}

	// 2.2 分桶
	labels := Buckets.ScoreBucketStr() // 長度 = len(scoreBucket)+1
	L := len(labels)
	out.EventStat.Bucket = BucketEvent{BucketLable: labels, BucketCount: make([]EventCount, L)}

	// 對每個桶，統計對局中 0/1/2/3+ 次數比例
	for bi := 0; bi < L; bi++ {
		var b0, b1, b2, b3p int
		for _, s := range sts {
			cnt := 0
			if bi < len(s.Dist.ScoreCollect) {
				cnt = s.Dist.ScoreCollect[bi]
			}
			switch {
			case cnt == 0:
				b0++
			case cnt == 1:
				b1++
			case cnt == 2:
				b2++
			default:
				b3p++
			}
		}
		_, ciB0 := proportionCICP(b0, n, 0.95)
		_, ciB1 := proportionCICP(b1, n, 0.95)
		_, ciB2 := proportionCICP(b2, n, 0.95)
		_, ciB3 := proportionCICP(b3p, n, 0.95)

		out.EventStat.Bucket.BucketCount[bi] = EventCount{
			Zero: PointStat{Hat: float64(b0) / float64(n), CI: ciB0},
			One:  PointStat{Hat: float64(b1) / float64(n), CI: ciB1},
			Two:  PointStat{Hat: float64(b2) / float64(n), CI: ciB2},
			More: PointStat{Hat: float64(b3p) / float64(n), CI: ciB3},
		}
	}

	// ------------------------------------------------------------
	// 3) Outcome 敘事：Cold / Warm / Hot 比例 + CP 95% CI
	// ------------------------------------------------------------
	var coldK, warmK, hotK int
	for _, s := range sts {
		switch {
		case s.Summary.MaxScore >= hotLine:
			hotK++
		case s.Summary.MaxScore < coldLine:
			coldK++
		default:
			warmK++
		}
	}

	coldHat, coldCI := proportionCICP(coldK, n, 0.95)
	warmHat, warmCI := proportionCICP(warmK, n, 0.95)
	hotHat, hotCI := proportionCICP(hotK, n, 0.95)

	out.OutcomeStat = OutcomeStat{
		Cold: PointStat{Hat: coldHat, CI: coldCI},
		Warm: PointStat{Hat: warmHat, CI: warmCI},
		Hot:  PointStat{Hat: hotHat, CI: hotCI},
	}

	return out
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// 問題：給定樣本 data 與門檻 x0，估計 p = P(X ≤ x0) 的點估計與 CI 區間
// 回傳 (pHat, CI)
func percentileCIForValue(data []float64, x0 float64, confidence float64) (pHat float64, ci CI) {
	n := len(data)
	if n == 0 {
		return 0, CI{Lo: 0, Hi: 0}
	}
	// k = 數到 <= x0 的個數
	k := 0
	for _, v := range data {
		if v <= x0 {
			k++
		}
	}
	return proportionCICP(k, n, confidence)
}

// 想估「第 q 分位」的上下界。做法：把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
// 回傳 (loValue, hiValue)
func quantileCI(data []float64, q, confidence float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0, 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	// 以 CP 思想反推 p 範圍
	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	if li < 0 {
		li = 0
	}
	if li > n-1 {
		li = n - 1
	}
	if ui < 0 {
		ui = 0
	}
	if ui > n-1 {
		ui = n - 1
	}
	return cp[li], cp[ui]
}

// quantilePoint returns the empirical quantile point estimate at q.
func quantilePoint(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	// 最近秩法
	idx := int(q * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return cp[idx]
}

// ============================================================
// ** 輸出函數 **
// ============================================================

func (est *EstimatorGames) Out() {
	// 1) Mean Score (Game Experience)
	fmt.Println("=== Mean Score (Game Experience) ===")
	scoreKeys := []string{
		"Median Mean",
		"P10 Mean",
		"P33 Mean",
		"P67 Mean",
		"P90 Mean",
		"≤10 pts (games)",
		"≤15 pts (games)",
		"≤20 pts (games)",
		"≤25 pts (games)",
	}
	scoreMsg := map[string]string{
		"Median Mean":     fmtHatCIpts(est.ScoreStat.ExpMedian.Hat, est.ScoreStat.ExpMedian.CI),
		"P10 Mean":        fmtHatCIpts(est.ScoreStat.ExpPerc.ExpP10.Hat, est.ScoreStat.ExpPerc.ExpP10.CI),
		"P33 Mean":        fmtHatCIpts(est.ScoreStat.ExpPerc.ExpP33.Hat, est.ScoreStat.ExpPerc.ExpP33.CI),
		"P67 Mean":        fmtHatCIpts(est.ScoreStat.ExpPerc.ExpP67.Hat, est.ScoreStat.ExpPerc.ExpP67.CI),
		"P90 Mean":        fmtHatCIpts(est.ScoreStat.ExpPerc.ExpP90.Hat, est.ScoreStat.ExpPerc.ExpP90.CI),
		"≤10 pts (games)": fmtHatCIpct01(est.ScoreStat.MeanPerc.Mean10.Hat, est.ScoreStat.MeanPerc.Mean10.CI),
		"≤15 pts (games)": fmtHatCIpct01(est.ScoreStat.MeanPerc.Mean15.Hat, est.ScoreStat.MeanPerc.Mean15.CI),
		"≤20 pts (games)": fmtHatCIpct01(est.ScoreStat.MeanPerc.Mean20.Hat, est.ScoreStat.MeanPerc.Mean20.CI),
		"≤25 pts (games)": fmtHatCIpct01(est.ScoreStat.MeanPerc.Mean25.Hat, est.ScoreStat.MeanPerc.Mean25.CI),
	}
	printTable("Mean Score (Game Experience)", scoreKeys, scoreMsg)

	// 2) Events: Five-of-a-kind turns per game
	fmt.Println("\n=== Events: Five-of-a-kind turns per game ===")
	fiveKeys := []string{"0 times", "1 time", "2 times", "3+ times"}
	fiveMsg := map[string]string{
		"0 times":  fmtHatCIpct01(est.EventStat.FiveKind.Zero.Hat, est.EventStat.FiveKind.Zero.CI),
		"1 time":   fmtHatCIpct01(est.EventStat.FiveKind.One.Hat, est.EventStat.FiveKind.One.CI),
		"2 times":  fmtHatCIpct01(est.EventStat.FiveKind.Two.Hat, est.EventStat.FiveKind.Two.CI),
		"3+ times": fmtHatCIpct01(est.EventStat.FiveKind.More.Hat, est.EventStat.FiveKind.More.CI),
	}
	printTable("Events: Five-of-a-kind turns per game", fiveKeys, fiveMsg)

	// 3) Events: Buckets (per game turns in bucket)
	fmt.Println("\n=== Events: Buckets (per game turns in bucket) ===")
	for i, label := range est.EventStat.Bucket.BucketLable {
		ec := est.EventStat.Bucket.BucketCount[i]
		fmt.Printf("%-20s : %s\n", label, fmtEventCount(ec))
	}

	// 4) Game Outcome
	fmt.Println("\n=== Game Outcome ===")
	outcomeKeys := []string{"Cold", "Warm", "Hot"}
	outcomeMsg := map[string]string{
		"Cold": fmtHatCIpct01(est.OutcomeStat.Cold.Hat, est.OutcomeStat.Cold.CI),
		"Warm": fmtHatCIpct01(est.OutcomeStat.Warm.Hat, est.OutcomeStat.Warm.CI),
		"Hot":  fmtHatCIpct01(est.OutcomeStat.Hot.Hat, est.OutcomeStat.Hot.CI),
	}
	printTable("Game Outcome", outcomeKeys, outcomeMsg)
}

func printTable(title string, keys []string, msg map[string]string) {
	fmt.Println(title)
	maxKeyLen := 0
	for _, k := range keys {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}
	for _, k := range keys {
		fmt.Printf("  %-*s : %s\n", maxKeyLen, k, msg[k])
	}
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtPts(x float64) string {
	return fmt.Sprintf("%.2f", x)
}

func fmtHatCIpct01(hat float64, ci CI) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(hat), fmtPct01(ci.Lo), fmtPct01(ci.Hi))
}

func fmtHatCIpts(hat float64, ci CI) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPts(hat), fmtPts(ci.Lo), fmtPts(ci.Hi))
}

func fmtEventCount(ec EventCount) string {
	return fmt.Sprintf("0x: %s | 1x: %s | 2x: %s | 3+x: %s",
		fmtHatCIpct01(ec.Zero.Hat, ec.Zero.CI),
		fmtHatCIpct01(ec.One.Hat, ec.One.CI),
		fmtHatCIpct01(ec.Two.Hat, ec.Two.CI),
		fmtHatCIpct01(ec.More.Hat, ec.More.CI),
	)
}
