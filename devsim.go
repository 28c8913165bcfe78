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

package naasii

import (
	"github.com/zintix-labs/naasii/corefmt"
	"github.com/zintix-labs/naasii/dto"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/stats"
)

// DevSimulator
//
// 只提供給Dev模式使用的模擬器，單線(不併發)，重點在可審計、可重現
type DevSimulator struct {
	sim      *Simulator // 只開放Sim功能
	t        *Table     // 同步seed
	before   []byte
	after    []byte
	before64 string
	after64  string
}

type DevTurnReport struct {
	Before     string           `json:"start_b64u"`
	After      string           `json:"after_b64u"`
	Turns      int              `json:"turns"`
	MeanScore  float64          `json:"mean_score"`
	TotalScore int              `json:"total_score"`
	BestScore  int              `json:"best_score"`
	ZeroTurns  int              `json:"zero_turns"`
	Results    []dto.TurnResult `json:"results"`
}

func (d *DevSimulator) turnOne() (dto.TurnResult, error) {
	req := &dto.TurnRequest{
		GameName: d.t.gameName,
		GameId:   d.t.gameId,
	}
	return d.t.PlayTurn(req)
}

func (d *DevSimulator) Turns(turns int) (DevTurnReport, error) {
	// 限制檢查
	if turns < 1 || turns > 5000 {
		return DevTurnReport{}, errs.NewWarn("turns must be between 1 and 5,000")
	}

	// play
	ds := make([]dto.TurnResult, 0, turns)
	for range turns {
		result, err := d.turnOne()
		if err != nil {
			return DevTurnReport{}, errs.Wrap(err, "turn error")
		}
		ds = append(ds, result)
	}
	// 統計
	total, best, zero := 0, 0, 0
	for _, r := range ds {
		total += r.Score
		best = max(best, r.Score)
		if r.Score == 0 {
			zero++
		}
	}

	de := DevTurnReport{
		Before:     ds[0].State.StartCoreSnapB64U,
		After:      ds[len(ds)-1].State.AfterCoreSnapB64U,
		Turns:      len(ds),
		MeanScore:  float64(total) / float64(len(ds)),
		TotalScore: total,
		BestScore:  best,
		ZeroTurns:  zero,
		Results:    ds,
	}
	return de, nil
}

func (d *DevSimulator) RestoreTurns(be64 string, turns int) (DevTurnReport, error) {
	// 限制檢查
	if turns < 1 || turns > 5000 {
		return DevTurnReport{}, errs.NewWarn("turns must be between 1 and 5,000")
	}
	// 解析seed
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevTurnReport{}, errs.NewWarn("decode seed failed" + err.Error())
	}
	// restore
	if err := d.t.RestoreCore(be); err != nil {
		return DevTurnReport{}, errs.NewWarn("table restore failed")
	}
	return d.Turns(turns)
}

type DevSimReport struct {
	Before string            `json:"before"`
	After  string            `json:"after"`
	Stat   *stats.StatReport `json:"statistic"`
}

func (d *DevSimulator) Sim(turns int) (DevSimReport, error) {
	// 先存 before 快照
	t := d.sim.tBuf[0]
	be, err := t.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	be64 := corefmt.EncodeBase64URL(be)
	d.before = be
	d.before64 = be64

	// play
	if turns < 1 || turns > 3_000_000 {
		return DevSimReport{}, errs.NewWarn("turns must be between 1 and 3,000,000")
	}
	stat, _, err := d.sim.Sim(turns, false)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "sim failed")
	}

	// 再存 after 快照
	af, err := t.SnapshotCore()
	if err != nil {
		return DevSimReport{}, err
	}
	af64 := corefmt.EncodeBase64URL(af)
	d.after = af
	d.after64 = af64

	return DevSimReport{
		Before: be64,
		After:  af64,
		Stat:   stat,
	}, nil
}

func (d *DevSimulator) RestoreSim(be64 string, turns int) (DevSimReport, error) {
	// 反解析 string -> []byte
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevSimReport{}, errs.Wrap(err, "decode seed failed")
	}
	d.before = be
	d.before64 = be64

	// restore
	if err := d.sim.tBuf[0].RestoreCore(be); err != nil {
		return DevSimReport{}, errs.Wrap(err, "restore simulator failed")
	}

	return d.Sim(turns)
}
