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

package recorder

import (
	"fmt"
	"math"
	"sort"

	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
	"github.com/zintix-labs/naasii/stats"
)

// TurnRecorder 遊戲紀錄員
//
// TurnRecorder 負責紀錄回合結果，並透過Done輸出統計報表
type TurnRecorder struct {
	GameName     string
	GameId       spec.GID
	Policy       spec.PolicyKey
	RollsPerTurn int
	Basic        *BasicRecord
	Dist         *DistRecord
	Cats         *CategoryRecord
	Game         *GameRecord
}

// BasicRecord 基本回合資料紀錄
type BasicRecord struct {
	TotalScore int
	ScoreSqSum int // 平方和
	MinScore   int
	MaxScore   int
	ZeroTurns  int
	Turns      int
}

// DistRecord 分數區間落點統計
//
// 紀錄時紀錄int資訊
type DistRecord struct {
	Bucket           *stats.ScoreBucket
	ScoreCollect     []int
	RollsUsedCollect []int
}

// CategoryRecord 牌型落點統計
type CategoryRecord struct {
	Collect map[score.Category]int
}

// GameRecord 整局遊戲統計
type GameRecord struct {
	Games            int
	TotalGameScore   int
	GameScoreSqSum   int // 平方和
	BestTurnScoreSum int
	MaxGameScore     int
	MinGameScore     int
}

func NewTurnRecorder(name string, id spec.GID, policy spec.PolicyKey, rollsPerTurn int) (*TurnRecorder, error) {
	s := new(TurnRecorder)

	if name == "" {
		return s, errs.NewFatal("game name must not be empty")
	}

	if rollsPerTurn < 1 {
		return s, errs.NewFatal(fmt.Sprintf("rolls per turn err %d", rollsPerTurn))
	}

	// 通過valid
	s.GameName = name
	s.GameId = id
	s.Policy = policy
	s.RollsPerTurn = rollsPerTurn
	s.Basic = newBasicRecord()
	s.Dist = newDistRecord(rollsPerTurn)
	s.Cats = newCategoryRecord()
	s.Game = newGameRecord()

	return s, nil
}

func MergeTurnRecorder(r []*TurnRecorder) (*TurnRecorder, error) {
	r0 := r[0]
	s, err := NewTurnRecorder(r0.GameName, r0.GameId, r0.Policy, r0.RollsPerTurn)
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.GameName != r0.GameName {
			return s, errs.NewFatal("merge turn record err : different game name")
		}
		if v.Policy != r0.Policy {
			return s, errs.NewFatal("merge turn record err : different policy")
		}
		if v.RollsPerTurn != r0.RollsPerTurn {
			return s, errs.NewFatal("merge turn record err : different rolls per turn")
		}
		s.Basic.TotalScore += v.Basic.TotalScore
		s.Basic.ScoreSqSum += v.Basic.ScoreSqSum
		s.Basic.ZeroTurns += v.Basic.ZeroTurns
		s.Basic.Turns += v.Basic.Turns
		if v.Basic.MinScore < s.Basic.MinScore {
			s.Basic.MinScore = v.Basic.MinScore
		}
		if v.Basic.MaxScore > s.Basic.MaxScore {
			s.Basic.MaxScore = v.Basic.MaxScore
		}

		// 整合Dist
		for i := range len(v.Dist.ScoreCollect) {
			s.Dist.ScoreCollect[i] += v.Dist.ScoreCollect[i]
		}
		for i := range len(v.Dist.RollsUsedCollect) {
			s.Dist.RollsUsedCollect[i] += v.Dist.RollsUsedCollect[i]
		}

		// 整合Cats
		for c, n := range v.Cats.Collect {
			s.Cats.Collect[c] += n
		}

		// 整合Game
		s.Game.Games += v.Game.Games
		s.Game.TotalGameScore += v.Game.TotalGameScore
		s.Game.GameScoreSqSum += v.Game.GameScoreSqSum
		s.Game.BestTurnScoreSum += v.Game.BestTurnScoreSum
		if v.Game.MaxGameScore > s.Game.MaxGameScore {
			s.Game.MaxGameScore = v.Game.MaxGameScore
		}
		if v.Game.MinGameScore < s.Game.MinGameScore {
			s.Game.MinGameScore = v.Game.MinGameScore
		}
	}
	return s, nil
}

// Record 以單次 TurnResult 更新回合統計
func (t *TurnRecorder) Record(tr *buf.TurnResult) {
	t.recordBasic(tr) // Basic
	t.recordDist(tr)  // Dist
	t.recordCats(tr)  // Cats
}

// RecordGame 在逐回合統計之外，額外累積一場完整對局的整局統計
func (t *TurnRecorder) RecordGame(gr *buf.GameResult) {
	g := t.Game
	total := gr.TotalScore

	g.Games++
	g.TotalGameScore += total
	g.GameScoreSqSum += total * total
	if total > g.MaxGameScore {
		g.MaxGameScore = total
	}
	if total < g.MinGameScore {
		g.MinGameScore = total
	}
	if idx, best := gr.BestTurn(); idx >= 0 {
		g.BestTurnScoreSum += best
	}
}

func (t *TurnRecorder) Done() *stats.StatReport {
	minScore := t.Basic.MinScore
	if t.Basic.Turns == 0 {
		minScore = 0
	}

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:   t.GameName,
			GameId:     t.GameId,
			Policy:     t.Policy,
			TotalScore: t.Basic.TotalScore,
			ScoreSqSum: t.Basic.ScoreSqSum,
			MeanScore:  t.mean(),
			MinScore:   minScore,
			MaxScore:   t.Basic.MaxScore,
			ZeroTurns:  t.Basic.ZeroTurns,
			HitRate:    t.hitRate(),
			Turns:      t.Basic.Turns,
		},
		Rolls: &stats.RollReport{
			RollsUsedCollect: t.Dist.RollsUsedCollect,
			RollsUsedDist:    nil,
		},
		Dist: &stats.DistReport{
			ScoreBucket:  stats.Buckets.ScoreBucketStr(),
			ScoreCollect: t.Dist.ScoreCollect,
			ScoreDist:    nil,
		},
		Categories: t.doneCats(),
	}
	if t.Game.Games > 0 {
		report.Game = &stats.GameReport{
			Games:            t.Game.Games,
			TotalGameScore:   t.Game.TotalGameScore,
			GameScoreSqSum:   t.Game.GameScoreSqSum,
			BestTurnScoreSum: t.Game.BestTurnScoreSum,
			MaxGameScore:     t.Game.MaxGameScore,
			MinGameScore:     t.Game.MinGameScore,
		}
	}

	length := len(report.Dist.ScoreBucket)
	scoreF := make([]float64, length)
	rollsF := make([]float64, len(report.Rolls.RollsUsedCollect))
	if tf := float64(report.Summary.Turns); tf > 0 {
		for i := range length {
			scoreF[i] = float64(report.Dist.ScoreCollect[i]) / tf
		}
		for i := range len(rollsF) {
			rollsF[i] = float64(report.Rolls.RollsUsedCollect[i]) / tf
		}
	}
	report.Dist.ScoreDist = scoreF
	report.Rolls.RollsUsedDist = rollsF

	return report
}

func (t *TurnRecorder) mean() float64 {
	if t.Basic.Turns == 0 {
		return 0
	}
	return (float64(t.Basic.TotalScore) / float64(t.Basic.Turns))
}

func (t *TurnRecorder) hitRate() float64 {
	if t.Basic.Turns == 0 {
		return 0
	}
	return 1.0 - (float64(t.Basic.ZeroTurns) / float64(t.Basic.Turns))
}

func (t *TurnRecorder) recordBasic(res *buf.TurnResult) {
	sc := res.Score

	// Basic
	t.Basic.TotalScore += sc
	t.Basic.ScoreSqSum += sc * sc
	if sc == 0 {
		t.Basic.ZeroTurns++
	}
	if sc < t.Basic.MinScore {
		t.Basic.MinScore = sc
	}
	if sc > t.Basic.MaxScore {
		t.Basic.MaxScore = sc
	}
	t.Basic.Turns++
}

func (t *TurnRecorder) recordDist(res *buf.TurnResult) {
	d := t.Dist
	d.ScoreCollect[d.Bucket.Index(res.Score)]++

	ru := res.RollCount
	if ru > t.RollsPerTurn {
		ru = t.RollsPerTurn
	}
	d.RollsUsedCollect[ru]++
}

func (t *TurnRecorder) recordCats(res *buf.TurnResult) {
	t.Cats.Collect[res.Category]++
}

// doneCats 把牌型map整理成排序後的報表區塊
func (t *TurnRecorder) doneCats() *stats.CategoryReport {
	keys := make([]score.Category, 0, len(t.Cats.Collect))
	for c := range t.Cats.Collect {
		keys = append(keys, c)
	}
	// 次數由高到低，同次數依名稱排序
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := t.Cats.Collect[keys[i]], t.Cats.Collect[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})

	rep := &stats.CategoryReport{
		Category: keys,
		Collect:  make([]int, len(keys)),
		Dist:     make([]float64, len(keys)),
	}
	if len(keys) > 0 {
		rep.MostFrequent = keys[0]
	}
	tf := float64(t.Basic.Turns)
	for i, c := range keys {
		rep.Collect[i] = t.Cats.Collect[c]
		if tf > 0 {
			rep.Dist[i] = float64(rep.Collect[i]) / tf
		}
	}
	return rep
}

func newBasicRecord() *BasicRecord {
	b := new(BasicRecord)
	b.MinScore = math.MaxInt
	return b
}

func newDistRecord(rolls int) *DistRecord {
	d := new(DistRecord)
	d.Bucket = stats.Buckets.Bucket()
	d.ScoreCollect = make([]int, len(stats.Buckets.ScoreBucketStr()))
	d.RollsUsedCollect = make([]int, rolls+1)
	return d
}

func newCategoryRecord() *CategoryRecord {
	c := new(CategoryRecord)
	c.Collect = make(map[score.Category]int)
	return c
}

func newGameRecord() *GameRecord {
	g := new(GameRecord)
	g.MinGameScore = math.MaxInt
	return g
}
