package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 遊戲統計報告
type StatReport struct {
	Summary    *SummaryReport  `json:"Summary"`
	Rolls      *RollReport     `json:"Rolls"`
	Dist       *DistReport     `json:"Dist"`
	Categories *CategoryReport `json:"Categories"`
	Game       *GameReport     `json:"Game,omitzero"`
	isDone     bool
}

type SummaryReport struct {
	GameName   string         `json:"GameName"`
	GameId     spec.GID       `json:"GameId"`
	Policy     spec.PolicyKey `json:"Policy"`
	TotalScore int            `json:"TotalScore"`
	ScoreSqSum int            `json:"ScoreSqSum"` // 平方和
	MeanScore  float64        `json:"MeanScore"`
	MeanCI     CI             `json:"MeanCI"`
	Std        float64        `json:"Std"`
	Cv         float64        `json:"Cv"`
	MinScore   int            `json:"MinScore"`
	MaxScore   int            `json:"MaxScore"`
	ZeroTurns  int            `json:"ZeroTurns"`
	HitRate    float64        `json:"HitRate"`
	Turns      int            `json:"Turns"`
}

// RollReport 擲骰次數統計
//
// 紀錄時只累積int計數，避免轉型成本。紀錄完成後Done()會將比率整理填入
type RollReport struct {
	RollsUsedCollect []int     `json:"RollsUsedCollect"` // index = 當回合實際擲骰次數
	RollsUsedDist    []float64 `json:"RollsUsedDist"`
	MeanRolls        float64   `json:"MeanRolls"`
	StopEarlyRate    float64   `json:"StopEarlyRate"`
}

// DistReport 分數區間落點統計
type DistReport struct {
	ScoreBucket  []string  `json:"ScoreBucket"`
	ScoreCollect []int     `json:"ScoreCollect"`
	ScoreDist    []float64 `json:"ScoreDist"`
}

// CategoryReport 牌型落點統計
//
// Category 依出現次數由高到低排序，同次數依名稱排序
type CategoryReport struct {
	Category     []score.Category `json:"Category"`
	Collect      []int            `json:"Collect"`
	Dist         []float64        `json:"Dist"`
	MostFrequent score.Category   `json:"MostFrequent"`
}

// GameReport 整局遊戲統計
//
// 需使用RecordGame 才會統計
type GameReport struct {
	Games            int     `json:"Games"`
	TotalGameScore   int     `json:"TotalGameScore"`
	GameScoreSqSum   int     `json:"GameScoreSqSum"` // 平方和
	BestTurnScoreSum int     `json:"BestTurnScoreSum"`
	MeanGameScore    float64 `json:"MeanGameScore"`
	StdGameScore     float64 `json:"StdGameScore"`
	MeanBestTurn     float64 `json:"MeanBestTurn"`
	MaxGameScore     int     `json:"MaxGameScore"`
	MinGameScore     int     `json:"MinGameScore"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 所有遊戲統計過程因為性能原因只處理int的紀錄，所以統計完成後
//
// 請使用 Done 來通知 Statistician 統計已經完成，可以一次性計算統計結果
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	// Summary
	s.Summary.MeanScore = s.Mean()
	s.Summary.MeanCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()

	// Rolls
	s.Rolls.MeanRolls = s.MeanRolls()
	s.Rolls.StopEarlyRate = s.StopEarlyRate()

	// Game
	if s.Game != nil {
		s.Game.done()
	}

	s.isDone = true
}

// Mean 回傳平均單回合得分（總得分 / 總回合數）
func (s *StatReport) Mean() float64 {
	if s.Summary.Turns == 0 {
		return 0
	}
	return (float64(s.Summary.TotalScore) / float64(s.Summary.Turns))
}

// Std 回傳單回合得分的標準差
func (s *StatReport) Std() float64 {
	if s.Summary.Turns < 2 {
		return 0
	}
	turns := float64(s.Summary.Turns)

	totalPow := float64(s.Summary.TotalScore) * float64(s.Summary.TotalScore)
	variance := (float64(s.Summary.ScoreSqSum) - totalPow/turns) / (turns - 1)

	if variance < 0 {
		variance = 0
	}

	std := math.Sqrt(variance)
	return std
}

// Cv 回傳單回合得分的變異係數
func (s *StatReport) Cv() float64 {
	mean := s.Mean()
	std := s.Std()
	if mean <= 0 {
		return 0
	}
	return (std / mean)
}

// Ci 回傳(95% 平均得分)信賴區間
func (s *StatReport) Ci() CI {
	mean := s.Mean()
	std := s.Std()
	meanSe := float64(0)
	if s.Summary.Turns > 1 {
		meanSe = std / math.Sqrt(float64(s.Summary.Turns))
	}
	ci := CI{
		Lo: max(mean-1.96*meanSe, 0.0),
		Hi: mean + 1.96*meanSe,
	}
	return ci
}

// MeanRolls 回傳平均每回合實際使用的擲骰次數
func (s *StatReport) MeanRolls() float64 {
	if s.Summary.Turns == 0 {
		return 0
	}
	total := 0
	for n, c := range s.Rolls.RollsUsedCollect {
		total += n * c
	}
	return float64(total) / float64(s.Summary.Turns)
}

// StopEarlyRate 回傳提前停擲的回合比例（未用滿可擲次數即計分）
func (s *StatReport) StopEarlyRate() float64 {
	n := len(s.Rolls.RollsUsedCollect)
	if s.Summary.Turns == 0 || n == 0 {
		return 0
	}
	early := 0
	for i := 0; i < n-1; i++ {
		early += s.Rolls.RollsUsedCollect[i]
	}
	return float64(early) / float64(s.Summary.Turns)
}

// CategoryCount 回傳指定牌型的出現次數，未出現回傳 0
func (s *StatReport) CategoryCount(c score.Category) int {
	for i, k := range s.Categories.Category {
		if k == c {
			return s.Categories.Collect[i]
		}
	}
	return 0
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *StatReport) StdOut(ut time.Duration) {
	formatDuration(ut, s.Summary.Turns)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.GameName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (g *GameReport) done() {
	if g.Games == 0 {
		return
	}
	gf := float64(g.Games)
	g.MeanGameScore = float64(g.TotalGameScore) / gf
	g.MeanBestTurn = float64(g.BestTurnScoreSum) / gf
	if g.Games < 2 {
		return
	}
	totalPow := float64(g.TotalGameScore) * float64(g.TotalGameScore)
	variance := (float64(g.GameScoreSqSum) - totalPow/gf) / (gf - 1)
	if variance < 0 {
		variance = 0
	}
	g.StdGameScore = math.Sqrt(variance)
}

func formatDuration(d time.Duration, turns int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	tps := int(float64(turns) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ntps : %d turns/sec\n", sec, tps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\ntps : %d turns/sec\n", m, s, tps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ntps : %d turns/sec\n", h, m, s, tps)
}

// StdOut

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Game Name":    p.Sprintf("%s", s.Summary.GameName),
		"Game ID":      fmt.Sprintf("%d", s.Summary.GameId),
		"Policy":       string(s.Summary.Policy),
		"Total Turns":  p.Sprintf("%d", s.Summary.Turns),
		"Mean Score":   p.Sprintf("%.3f", s.Summary.MeanScore),
		"Mean 95% CI":  p.Sprintf("[%.3f,%.3f]", s.Summary.MeanCI.Lo, s.Summary.MeanCI.Hi),
		"Total Score":  p.Sprintf("%d", s.Summary.TotalScore),
		"Min Score":    p.Sprintf("%d", s.Summary.MinScore),
		"Max Score":    p.Sprintf("%d", s.Summary.MaxScore),
		"Zero Turns":   p.Sprintf("%d", s.Summary.ZeroTurns),
		"Hit Rate":     p.Sprintf("%.2f %%", 100.0*s.Summary.HitRate),
		"Mean Rolls":   p.Sprintf("%.3f", s.Rolls.MeanRolls),
		"Stop Early":   p.Sprintf("%.2f %%", 100.0*s.Rolls.StopEarlyRate),
		"Top Category": string(s.Categories.MostFrequent),
		"STD":          p.Sprintf("%.3f", s.Summary.Std),
		"CV":           p.Sprintf("%.3f", s.Summary.Cv),
	}
	keys := []string{"Game Name", "Game ID", "Policy", "Total Turns", "Mean Score", "Mean 95% CI", "Total Score", "Min Score", "Max Score", "Zero Turns", "Hit Rate", "Mean Rolls", "Stop Early", "Top Category", "STD", "CV"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
