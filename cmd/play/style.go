package main

import (
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/sdk/dice"
	"github.com/zintix-labs/naasii/sdk/score"
	"gonum.org/v1/gonum/stat"
)

// renderDice 把骰面畫成每列六顆：上行 1-based 編號、下行骰面，
// 鎖住的骰子標 K 並上色。
func renderDice(pool *dice.Pool) {
	n := pool.DiceCount()
	values := pool.Values()

	var b strings.Builder
	for row := 0; row < n; row += 6 {
		end := min(row+6, n)
		for i := row; i < end; i++ {
			b.WriteString(pterm.Sprintf(" %2d  ", i+1))
		}
		b.WriteString("\n")
		for i := row; i < end; i++ {
			cell := pterm.Sprintf("[ %d ]", values[i])
			if pool.IsLocked(i) {
				cell = pterm.LightGreen(pterm.Sprintf("[ %dK]", values[i]))
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	pterm.Print(b.String())
}

// renderStandings 回合間排名表，總分高者在前。
func renderStandings(players []*naasii.Player) {
	td := pterm.TableData{{"Rank", "Player", "Total", "Avg", "Best"}}
	for i, p := range players {
		best := "-"
		if e, ok := p.BestRound(); ok {
			best = pterm.Sprintf("%d (r%d)", e.Score, e.Round)
		}
		td = append(td, []string{
			strconv.Itoa(i + 1),
			p.Name,
			strconv.Itoa(p.Score),
			pterm.Sprintf("%.1f", p.AverageScore()),
			best,
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(td).Srender()
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	pterm.Println(out)
}

// showWinner 收盤面板：冠軍一行 + 各家戰績一行一人。
func showWinner(s *naasii.Session) {
	w := s.Winner()
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)

	lines := pterm.Sprintfln("%s wins with %d points!", pterm.LightCyan(w.Name), w.Score)
	for i, p := range s.Standings() {
		best, _ := p.BestRound()
		lines += pterm.Sprintfln("%d. %s  total %d  avg %.1f  best %d",
			i+1, p.Name, p.Score, p.AverageScore(), best.Score)
	}
	pterm.Println(pbox.WithTitle(pterm.LightGreen("|GAME OVER|")).WithTitleTopCenter().Sprint(strings.TrimRight(lines, "\n")))
}

// showAnalysis 結算前的留骰建議與本把骰面的平均/標準差（純顯示）。
func showAnalysis(an score.Analysis, values []int) {
	fv := make([]float64, len(values))
	for i, v := range values {
		fv[i] = float64(v)
	}
	mean, std := stat.PopMeanStdDev(fv, nil)

	lines := pterm.Sprintfln("faces mean %.2f, std %.2f", mean, std)
	for _, sug := range an.Suggestions {
		lines += pterm.Sprintfln("hint: %s", sug)
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(2)
	pterm.Println(pbox.WithTitle(pterm.LightYellow("|ANALYSIS|")).WithTitleTopCenter().Sprint(strings.TrimRight(lines, "\n")))
}
