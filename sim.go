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
	"crypto/rand"
	"io"
	"math"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/recorder"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/policy"
	"github.com/zintix-labs/naasii/spec"
	"github.com/zintix-labs/naasii/stats"
)

const capPrepare int = 100

// Simulator 用於模擬擲骰行為，可建立多張桌台並平行紀錄統計。
type Simulator struct {
	GameName  string                   // 遊戲名稱
	GameId    spec.GID                 // 遊戲名稱enum
	gs        *spec.GameSetting        // 方便重用建立Statistician
	reg       *policy.Registry         // 策略註冊表
	cf        core.PRNGFactory         // 亂數生成器
	initSeed  int64                    // 初始下的種子
	seedmaker *seedMaker               // 種子生成器
	tBuf      []*Table                 // 併發執行桌台實例
	rBuf      []*recorder.TurnRecorder // 併發遊戲紀錄員
	sBuf      []*stats.StatReport      // 併發統計結果報表(僅Games需要)
}

func newSimulator(gs *spec.GameSetting, reg *policy.Registry, cf core.PRNGFactory) (*Simulator, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, reg, cf, seed.Int64())
}

func newSimulatorWithSeed(gs *spec.GameSetting, reg *policy.Registry, cf core.PRNGFactory, seed int64) (*Simulator, error) {
	s := &Simulator{
		GameName:  gs.GameName,
		GameId:    gs.GameID,
		gs:        gs,
		reg:       reg,
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		tBuf:      make([]*Table, 1, capPrepare),
		rBuf:      make([]*recorder.TurnRecorder, 0, capPrepare),
		sBuf:      make([]*stats.StatReport, 0, capPrepare),
	}
	t, err := newTableWithSeed(gs, reg, cf, s.initSeed, true)
	if err != nil {
		return nil, err
	}
	s.tBuf[0] = t
	return s, nil
}

// Sim 單線模擬器：以一張桌台連續跑指定 turns 並回傳統計結果與用時
func (s *Simulator) Sim(turns int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if turns < 1 {
		return nil, 0, errs.NewWarn("turns must > 0")
	}
	if len(s.rBuf) == 0 {
		r, err := recorder.NewTurnRecorder(s.GameName, s.GameId, s.gs.Sim.Policy, s.gs.Pool.RollsPerTurn)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}
	r := s.rBuf[0]
	t := s.tBuf[0]

	bar := pb.StartNew(turns)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < turns; i++ {
		tr := t.TurnInternal()
		r.Record(tr)
		bar.Increment()
	}
	used := time.Since(bar.StartTime())
	bar.Finish()
	result := r.Done()
	result.Done()

	return result, used, nil
}

// SimMP 平行執行多張桌台，總計 turns*mp 個回合，合併統計結果後 回傳統計結果與用時
func (s *Simulator) SimMP(turns int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if turns < 1 {
		return nil, 0, errs.NewWarn("turns must > 0")
	}
	for len(s.tBuf) < mp {
		t, err := newTableWithSeed(s.gs, s.reg, s.cf, s.seedmaker.next(), true)
		if err != nil {
			return nil, 0, err
		}
		s.tBuf = append(s.tBuf, t)
	}

	for len(s.rBuf) < mp {
		r, err := recorder.NewTurnRecorder(s.GameName, s.GameId, s.gs.Sim.Policy, s.gs.Pool.RollsPerTurn)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(turns * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			t := s.tBuf[i]
			st := s.rBuf[i]
			for r := 0; r < turns; r++ {
				tr := t.TurnInternal()
				st.Record(tr)
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	st, _ := recorder.MergeTurnRecorder(s.rBuf)
	result := st.Done()
	result.Done()

	return result, used, nil
}

// SimGames 模擬多場完整對局（每場 GamePlayers 位玩家、各打 GameRounds 回合），
// 並產出桌台基準報表與對局層級的估計報表。
func (s *Simulator) SimGames(mp int, games int, showpb bool) (*stats.StatReport, *stats.EstimatorGames, time.Duration, error) {
	defer s.reset()
	if games < 1 || mp < 1 {
		return nil, nil, 0, errs.NewWarn("invalid param")
	}

	// 	準備並行桌台
	for len(s.tBuf) < mp {
		t, err := newTableWithSeed(s.gs, s.reg, s.cf, s.seedmaker.next(), true)
		if err != nil {
			return nil, nil, 0, err
		}
		s.tBuf = append(s.tBuf, t)
	}

	// 準備對局
	s.sBuf = make([]*stats.StatReport, games)
	for len(s.rBuf) < games {
		r, err := recorder.NewTurnRecorder(s.GameName, s.GameId, s.gs.Sim.Policy, s.gs.Pool.RollsPerTurn)
		if err != nil {
			return nil, nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}
	// 作一個2048大小的緩衝channel 使對局依序處理
	jobs := make(chan *recorder.TurnRecorder, 2048)

	wg := new(sync.WaitGroup)
	wg.Add(mp) // 併發桌台

	bar := pb.StartNew(games)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	// 併發執行
	for w := 0; w < mp; w++ {
		go simGame(wg, s.tBuf[w], jobs, s.gs, bar)
	}
	// 此時併發已經完成，但由於所有workers都無法從jobs當中取出j(還沒塞進去) 所以不會結束

	// 塞進對局，開始模擬
	for _, j := range s.rBuf {
		jobs <- j
	}
	close(jobs) // 對局送完處理完畢關閉通道 通知所有桌台不會再有新資料
	wg.Wait()   // 等待桌台都執行完任務
	used := time.Since(bar.StartTime())
	bar.Finish()

	// 桌台基準報表
	record, err := recorder.MergeTurnRecorder(s.rBuf)
	if err != nil {
		return nil, nil, 0, err
	}
	st := record.Done()
	st.Done()

	// 對局分析報表
	for i, r := range s.rBuf {
		s.sBuf[i] = r.Done()
		s.sBuf[i].Done()
	}
	est := stats.EstimatorGameExp(s.sBuf)
	return st, est, used, nil
}

func simGame(wg *sync.WaitGroup, t *Table, jobs chan *recorder.TurnRecorder, gs *spec.GameSetting, bar *pb.ProgressBar) {
	defer wg.Done()
	gr := buf.NewGameResult(gs)
	for j := range jobs { // j := <- jobs
		for range gs.Sim.GamePlayers {
			gr.Reset()
			gr.Policy = gs.Sim.Policy
			for range gs.Sim.GameRounds {
				tr := t.TurnInternal()
				j.Record(tr)
				gr.AppendTurn(tr)
			}
			gr.End()
			j.RecordGame(gr)
		}
		bar.Increment()
	}
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
	s.sBuf = s.sBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫（例如 SimMP / SimGames）。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
