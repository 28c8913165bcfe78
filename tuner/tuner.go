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

// Package tuner 對「假想計分表」做設計分析搜尋：
// 在官方表附近退火遊走加分階梯，讓全空間精算的單擲期望分
// 貼上 target_mean（可選配 target_std 同時釘住分布離散度）。
//
// 精算器（sdk/enum）是精確目標函數，不經過模擬、無抽樣誤差；
// 退火溫度走 core.ExpFloat64 的指數接受法則，同 seed 必出同結果。
//
// 調表器只產報告，永遠不回寫任何 GameSetting：
// 真人對局能玩的表只有官方表。
package tuner

import (
	"crypto/rand"
	"math"
	"math/big"

	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/enum"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

// 加分階梯的扳手位：repeat 4 級（2/3/4/5+ 顆）、straight 4 級
// （連 3/4/5/6 面）、兩個牌型加碼、一個保底，共 11 個。
const knobCount = 11

// 單步最大擾動量
const maxStep = 3

// knobs 是一張候選計分表的全部可調參數，攤平成固定欄位
// 方便鄰域擾動與單調修復。
type knobs struct {
	repeat   [4]int // 同面 2/3/4/5+ 顆
	straight [4]int // 連面長 3/4/5/6
	triple   int    // multiple_triples 加碼
	pair     int    // multiple_pairs 加碼
	floor    int    // 零分保底
}

// Tuner 調表器主體。一個 Tuner 綁一張桌的骰池與目標，
// Run 可重入（每次從官方表重新出發）。
type Tuner struct {
	gameName string
	gameId   spec.GID
	pool     *spec.PoolSetting
	cfg      *spec.TunerSetting
	space    *enum.Space
	core     *core.Core
	initSeed int64

	energy func(mean, std float64) float64
}

// New 以 GameSetting 的 tuner 區段建立調表器。
// cfg.Seed 為 0 時抽 crypto seed；結果仍可由報告內的 seed 重現。
func New(gs *spec.GameSetting, cf core.PRNGFactory) (*Tuner, error) {
	if gs.Tuner == nil {
		return nil, errs.NewWarn("tuner section required in game setting")
	}
	if cf == nil {
		return nil, errs.NewWarn("core factory required")
	}
	space, err := enum.NewSpace(&gs.Pool)
	if err != nil {
		return nil, err
	}

	seed := int64(gs.Tuner.Seed)
	if seed == 0 {
		s, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			return nil, errs.Wrap(err, "new crypto seed error in go std lib")
		}
		seed = s.Int64()
	}

	t := &Tuner{
		gameName: gs.GameName,
		gameId:   gs.GameID,
		pool:     &gs.Pool,
		cfg:      gs.Tuner,
		space:    space,
		core:     core.New(cf.New(seed)),
		initSeed: seed,
	}
	t.energy = t.targetEnergy
	return t, nil
}

// RegisterEnergy 替換目標函數（研究用）。簽名吃精算出的
// mean/std，回傳越小越好的能量值。
func (t *Tuner) RegisterEnergy(fn func(mean, std float64) float64) {
	t.energy = fn
}

// Seed 回傳本次搜尋使用的 seed。
func (t *Tuner) Seed() int64 {
	return t.initSeed
}

// Run 執行退火搜尋並回傳報告。
//
// 流程：
//  1. 官方表精算當基準線
//  2. 從官方表出發退火 cfg.Iterations 步（能量進 tolerance 提前收工）
//  3. 對最佳候選做完整分布精算出報告
func (t *Tuner) Run() (*Report, error) {
	official := officialKnobs()
	baseMean, baseStd, err := t.moments(official)
	if err != nil {
		return nil, err
	}

	cur := official
	curMean, curStd := baseMean, baseStd
	curE := t.energy(curMean, curStd)

	best := cur
	bestMean, bestStd := curMean, curStd
	bestE := curE

	temp := t.cfg.InitTemp
	iters, accepted, improved := 0, 0, 0

	for i := 0; i < t.cfg.Iterations; i++ {
		iters++
		if bestE <= t.cfg.Tolerance {
			break
		}

		cand := t.neighbor(cur)
		mean, std, err := t.moments(cand)
		if err != nil {
			return nil, err
		}
		e := t.energy(mean, std)

		// Metropolis 接受法則的指數版：
		// P(X > dE/T) = exp(-dE/T)，X ~ Exp(1)，劣化步依溫度放行。
		dE := e - curE
		if dE <= 0 || t.core.ExpFloat64() > dE/temp {
			cur, curMean, curStd, curE = cand, mean, std, e
			accepted++
			if curE < bestE {
				best, bestMean, bestStd, bestE = cur, curMean, curStd, curE
				improved++
			}
		}
		temp *= t.cfg.Cooling
	}

	return t.report(official, baseMean, baseStd, best, bestMean, bestStd, bestE, iters, accepted, improved)
}

// neighbor 擾動一個扳手位後修復階梯單調性。
func (t *Tuner) neighbor(k knobs) knobs {
	step := 1 + t.core.IntN(maxStep)
	if t.core.IntN(2) == 0 {
		step = -step
	}

	switch pos := t.core.IntN(knobCount); {
	case pos < 4:
		k.repeat[pos] = t.clamp(k.repeat[pos] + step)
	case pos < 8:
		k.straight[pos-4] = t.clamp(k.straight[pos-4] + step)
	case pos == 8:
		k.triple = t.clamp(k.triple + step)
	case pos == 9:
		k.pair = t.clamp(k.pair + step)
	default:
		k.floor = t.clamp(k.floor + step)
	}

	// 階梯必須不遞減：更多同面顆數 / 更長順子不能更便宜
	for i := 1; i < 4; i++ {
		k.repeat[i] = max(k.repeat[i], k.repeat[i-1])
		k.straight[i] = max(k.straight[i], k.straight[i-1])
	}
	return k
}

func (t *Tuner) clamp(v int) int {
	return max(0, min(v, t.cfg.MaxBonus))
}

// moments 對候選表做全空間精算，回傳精確 mean/std。
func (t *Tuner) moments(k knobs) (mean, std float64, err error) {
	e, err := t.engine(k)
	if err != nil {
		return 0, 0, err
	}
	var sum, sumSq float64
	for i := 0; i < t.space.Len(); i++ {
		sc, _ := e.ScoreValue(t.space.Counts(i))
		w, fs := float64(t.space.Weight(i)), float64(sc)
		sum += w * fs
		sumSq += w * fs * fs
	}
	total := float64(t.space.Total())
	mean = sum / total
	v := sumSq/total - mean*mean
	if v < 0 { // 浮點誤差
		v = 0
	}
	return mean, math.Sqrt(v), nil
}

func (t *Tuner) engine(k knobs) (*score.Engine, error) {
	ss, err := k.setting()
	if err != nil {
		return nil, err
	}
	return score.NewEngine(t.pool, ss), nil
}

func (t *Tuner) targetEnergy(mean, std float64) float64 {
	e := math.Abs(mean - t.cfg.TargetMean)
	if t.cfg.TargetStd > 0 {
		e += stdWeight * math.Abs(std-t.cfg.TargetStd)
	}
	return e
}

// 離散度項的固定權重：mean 是主目標，std 只做牽引。
const stdWeight = 0.5

// setting 把扳手位展開成完整 ScoreSetting（含 LUT）。
func (k knobs) setting() (*spec.ScoreSetting, error) {
	ss := &spec.ScoreSetting{
		RepeatBonus: map[int]int{
			2: k.repeat[0], 3: k.repeat[1], 4: k.repeat[2], 5: k.repeat[3],
		},
		StraightBonus: map[int]int{
			3: k.straight[0], 4: k.straight[1], 5: k.straight[2], 6: k.straight[3],
		},
		MultiTripleBonus: k.triple,
		MultiPairBonus:   k.pair,
		FloorScore:       k.floor,
	}
	if err := ss.Init(); err != nil {
		return nil, err
	}
	return ss, nil
}

func officialKnobs() knobs {
	return knobs{
		repeat:   [4]int{5, 10, 20, 30},
		straight: [4]int{10, 20, 30, 50},
		triple:   15,
		pair:     10,
		floor:    5,
	}
}
