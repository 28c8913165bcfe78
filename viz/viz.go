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

// Package viz 把對局快照畫成終端圖表：
//   - 逐回合累計分數表（看走勢）
//   - 回合得分分桶長條圖（看分布）
//   - 牌型出現頻率長條圖（看手感）
//   - 逐玩家統計摘要面板
//
// 輸入一律吃 store.GameSave，活局（Session.Snapshot）與讀回的存檔
// 共用同一條渲染路徑。所有函數皆為純渲染，不改動輸入。
package viz

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/zintix-labs/naasii/stats"
	"github.com/zintix-labs/naasii/store"
	"gonum.org/v1/gonum/stat"
)

// ============================================================
// ** 對外 : 圖表渲染 **
// ============================================================

// Progression 渲染逐回合累計分數表：一列一回合，一欄一玩家。
// 玩家還沒打到的回合以 "-" 呈現。
func Progression(save store.GameSave) (string, error) {
	if len(save.Players) == 0 {
		return pterm.Info.Sprintln("no players in this save"), nil
	}
	maxRound := 0
	for _, p := range save.Players {
		for _, r := range p.History {
			maxRound = max(maxRound, r.Round)
		}
	}
	if maxRound == 0 {
		return pterm.Info.Sprintln("no rounds recorded yet"), nil
	}

	header := make([]string, 0, len(save.Players)+1)
	header = append(header, "Round")
	for _, p := range save.Players {
		header = append(header, p.Name)
	}

	td := pterm.TableData{header}
	for round := 1; round <= maxRound; round++ {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(round))
		for _, p := range save.Players {
			cell := "-"
			// 累計分取「該回合之前（含）最後一筆」的 Total
			for _, r := range p.History {
				if r.Round > round {
					break
				}
				cell = strconv.Itoa(r.Total)
			}
			row = append(row, cell)
		}
		td = append(td, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(td).Srender()
}

// Distribution 渲染回合得分的分桶長條圖（全玩家合併）。
// 桶距沿用報表層的得分分桶，跨工具對得上同一條刻度。
func Distribution(save store.GameSave) (string, error) {
	scores := allRoundScores(save)
	if len(scores) == 0 {
		return pterm.Info.Sprintln("no rounds recorded yet"), nil
	}

	labels := stats.Buckets.ScoreBucketStr()
	counts := make([]int, len(labels))
	b := stats.Buckets.Bucket()
	for _, s := range scores {
		counts[b.Index(s)]++
	}

	bars := make(pterm.Bars, 0, len(labels))
	for i, label := range labels {
		if counts[i] == 0 {
			continue
		}
		bars = append(bars, pterm.Bar{Label: label, Value: counts[i]})
	}
	return pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Srender()
}

// CategoryFrequency 渲染牌型出現頻率長條圖（全玩家合併），
// 次數由高至低，同次數依標籤排序。
func CategoryFrequency(save store.GameSave) (string, error) {
	freq := map[string]int{}
	for _, p := range save.Players {
		for _, r := range p.History {
			freq[string(r.Category)]++
		}
	}
	if len(freq) == 0 {
		return pterm.Info.Sprintln("no rounds recorded yet"), nil
	}

	labels := make([]string, 0, len(freq))
	for k := range freq {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		if freq[labels[i]] != freq[labels[j]] {
			return freq[labels[i]] > freq[labels[j]]
		}
		return labels[i] < labels[j]
	})

	bars := make(pterm.Bars, 0, len(labels))
	for _, label := range labels {
		bars = append(bars, pterm.Bar{Label: label, Value: freq[label]})
	}
	return pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Srender()
}

// Summary 渲染逐玩家統計摘要：總分、平均、最佳/最差回合、
// 標準差與最常見牌型，一人一個盒子排進面板。
func Summary(save store.GameSave) (string, error) {
	if len(save.Players) == 0 {
		return pterm.Info.Sprintln("no players in this save"), nil
	}

	pbox := pterm.DefaultBox.WithHorizontalPadding(2).WithTopPadding(1).WithBottomPadding(1)
	boxes := make([]pterm.Panel, 0, len(save.Players))
	for _, p := range save.Players {
		boxes = append(boxes, pterm.Panel{Data: pbox.WithTitle(pterm.LightCyan(p.Name)).WithTitleTopLeft().Sprint(playerSummary(p))})
	}

	// 一排兩個盒子，跟終端寬度妥協
	var rows [][]pterm.Panel
	for i := 0; i < len(boxes); i += 2 {
		rows = append(rows, boxes[i:min(i+2, len(boxes))])
	}
	return pterm.DefaultPanel.WithPanels(rows).Srender()
}

// Show 依序渲染全部圖表到標準輸出。
func Show(save store.GameSave) error {
	sections := []struct {
		title  string
		render func(store.GameSave) (string, error)
	}{
		{"Score Progression", Progression},
		{"Score Distribution", Distribution},
		{"Category Frequency", CategoryFrequency},
		{"Player Summary", Summary},
	}
	for _, sec := range sections {
		pterm.DefaultSection.Println(sec.title)
		out, err := sec.render(save)
		if err != nil {
			return err
		}
		pterm.Print(out)
	}
	return nil
}

// ============================================================
// ** 內部方法 **
// ============================================================

func allRoundScores(save store.GameSave) []int {
	var out []int
	for _, p := range save.Players {
		for _, r := range p.History {
			out = append(out, r.Score)
		}
	}
	return out
}

func playerSummary(p store.PlayerState) string {
	n := len(p.History)
	if n == 0 {
		return "no rounds played"
	}

	scores := make([]float64, n)
	best, worst := p.History[0].Score, p.History[0].Score
	freq := map[string]int{}
	for i, r := range p.History {
		scores[i] = float64(r.Score)
		best = max(best, r.Score)
		worst = min(worst, r.Score)
		freq[string(r.Category)]++
	}
	mean, std := stat.PopMeanStdDev(scores, nil)

	topCat := ""
	for k, v := range freq {
		if topCat == "" || v > freq[topCat] || (v == freq[topCat] && k < topCat) {
			topCat = k
		}
	}

	return fmt.Sprintf("Total Score : %d\nAverage     : %.2f\nBest Round  : %d\nWorst Round : %d\nStd Dev     : %.2f\nTop Category: %s",
		p.Score, mean, best, worst, std, topCat)
}
