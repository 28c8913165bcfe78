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

package tuner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/enum"
	"github.com/zintix-labs/naasii/spec"
)

// Candidate 是一張候選表與它的精算結果。
type Candidate struct {
	Score    *spec.ScoreSetting `json:"score"`
	Mean     float64            `json:"mean"`
	StdDev   float64            `json:"std_dev"`
	Distance float64            `json:"distance"` // 對目標的能量值
}

// Report 是一次調表搜尋的完整輸出。
// Best.Score 只是分析產物，引擎不會拿它開桌。
type Report struct {
	GameName   string   `json:"game_name"`
	GameId     spec.GID `json:"game_id"`
	Seed       int64    `json:"seed"`
	TargetMean float64  `json:"target_mean"`
	TargetStd  float64  `json:"target_std,omitempty"`
	Tolerance  float64  `json:"tolerance"`

	Official Candidate `json:"official"`
	Best     Candidate `json:"best"`

	// Eval 是最佳候選的完整分布精算（牌型出現率、分數分布）。
	Eval *enum.Eval `json:"eval"`

	Iterations int  `json:"iterations"`
	Accepted   int  `json:"accepted"`
	Improved   int  `json:"improved"`
	Hit        bool `json:"hit"` // 最佳能量是否進到 tolerance
}

func (t *Tuner) report(official knobs, baseMean, baseStd float64,
	best knobs, bestMean, bestStd, bestE float64,
	iters, accepted, improved int) (*Report, error) {

	offSS, err := official.setting()
	if err != nil {
		return nil, err
	}
	bestSS, err := best.setting()
	if err != nil {
		return nil, err
	}
	eng, err := t.engine(best)
	if err != nil {
		return nil, err
	}
	ev, err := t.space.Evaluate(eng)
	if err != nil {
		return nil, err
	}

	return &Report{
		GameName:   t.gameName,
		GameId:     t.gameId,
		Seed:       t.initSeed,
		TargetMean: t.cfg.TargetMean,
		TargetStd:  t.cfg.TargetStd,
		Tolerance:  t.cfg.Tolerance,
		Official: Candidate{
			Score:    offSS,
			Mean:     baseMean,
			StdDev:   baseStd,
			Distance: t.energy(baseMean, baseStd),
		},
		Best: Candidate{
			Score:    bestSS,
			Mean:     bestMean,
			StdDev:   bestStd,
			Distance: bestE,
		},
		Eval:       ev,
		Iterations: iters,
		Accepted:   accepted,
		Improved:   improved,
		Hit:        bestE <= t.cfg.Tolerance,
	}, nil
}

// Out 把報告摘要印到標準輸出。
func (r *Report) Out() {
	fmt.Printf("game     : %s (gid=%d) seed=%d\n", r.GameName, r.GameId, r.Seed)
	fmt.Printf("target   : mean=%.4f", r.TargetMean)
	if r.TargetStd > 0 {
		fmt.Printf(" std=%.4f", r.TargetStd)
	}
	fmt.Printf(" tolerance=%.4f\n", r.Tolerance)
	fmt.Printf("official : mean=%.4f std=%.4f distance=%.4f\n",
		r.Official.Mean, r.Official.StdDev, r.Official.Distance)
	fmt.Printf("best     : mean=%.4f std=%.4f distance=%.4f hit=%t\n",
		r.Best.Mean, r.Best.StdDev, r.Best.Distance, r.Hit)
	fmt.Printf("search   : iterations=%d accepted=%d improved=%d\n",
		r.Iterations, r.Accepted, r.Improved)
	fmt.Println("best table:")
	fmt.Printf("  repeat_bonus       : 2:%d 3:%d 4:%d 5+:%d\n",
		r.Best.Score.RepeatBonus[2], r.Best.Score.RepeatBonus[3],
		r.Best.Score.RepeatBonus[4], r.Best.Score.RepeatBonus[5])
	fmt.Printf("  straight_bonus     : 3:%d 4:%d 5:%d 6:%d\n",
		r.Best.Score.StraightBonus[3], r.Best.Score.StraightBonus[4],
		r.Best.Score.StraightBonus[5], r.Best.Score.StraightBonus[6])
	fmt.Printf("  multi_triple_bonus : %d\n", r.Best.Score.MultiTripleBonus)
	fmt.Printf("  multi_pair_bonus   : %d\n", r.Best.Score.MultiPairBonus)
	fmt.Printf("  floor_score        : %d\n", r.Best.Score.FloorScore)
}

// Save 把完整報告存成 zstd 壓縮的 JSON，回傳輸出路徑。
// dir 為空時落在 ./build/tuner。
func (r *Report) Save(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join("build", "tuner")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(err, "save: mkdir output dir")
	}

	b, err := json.Marshal(r)
	if err != nil {
		return "", errs.Wrap(err, "save: marshal report json")
	}

	path := filepath.Join(dir, fmt.Sprintf("tuner_report_%d.json.zst", r.GameId))
	f, err := os.Create(path)
	if err != nil {
		return "", errs.Wrap(err, "save: create report file")
	}
	defer func() { _ = f.Close() }()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return "", errs.Wrap(err, "save: create zstd writer")
	}
	if _, err := zw.Write(b); err != nil {
		_ = zw.Close()
		return "", errs.Wrap(err, "save: write report")
	}
	if err := zw.Close(); err != nil {
		return "", errs.Wrap(err, "save: close zstd writer")
	}
	if err := f.Close(); err != nil {
		return "", errs.Wrap(err, "save: close report file")
	}
	return path, nil
}
