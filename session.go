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
	"math"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/zintix-labs/naasii/corefmt"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/dice"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/sdk/turn"
	"github.com/zintix-labs/naasii/spec"
	"github.com/zintix-labs/naasii/store"
)

// 真人對局回合數上下限。設定檔的 rounds 跨度較寬（模擬用），
// 但實際開桌給人打時壓回可玩範圍。
const (
	minLiveRounds = 3
	maxLiveRounds = 10
)

// Session 是一場真人對局：2~4 位玩家共用一副骰池，輪流打完固定回合數。
//
// 與 Table 的分工：
//   - Table 服務策略驅動的單座模擬 / API 入口，結果進可重用 buffer。
//   - Session 服務互動式對局：人在回合內自己擲骰/鎖骰/喊結算，
//     成績直接落進各玩家的帳本（Player.History）。
//
// 所有玩家共用同一 PRNG 實體，骰序只跟「操作順序」有關，
// 跟誰坐哪個位子無關；同 seed + 同操作序列 = 同結果。
//
// Session 不是併發安全結構，一場對局由單一 goroutine 驅動。
type Session struct {
	setting *spec.GameSetting
	core    *core.Core
	pool    *dice.Pool
	engine  *score.Engine
	ctrl    *turn.Controller

	players []*Player
	store   *store.Store // Autosave 開啟時才有，nil 表示不落地

	round      int // 進行中的回合（1-based）；> maxRounds 表示已收盤
	maxRounds  int
	totalRolls int
	started    time.Time
}

// NewSession 以隨機 seed 開一場對局。
func NewSession(gs *spec.GameSetting, cf core.PRNGFactory, names ...string) (*Session, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return NewSessionWithSeed(gs, cf, seed.Int64(), names...)
}

// NewSessionWithSeed 以指定 seed 開一場對局（可重現入口）。
func NewSessionWithSeed(gs *spec.GameSetting, cf core.PRNGFactory, seed int64, names ...string) (*Session, error) {
	players, err := buildPlayers(names)
	if err != nil {
		return nil, err
	}
	// 自訂計分表只給 lab 面分析用，真人對局一律官方表
	if !gs.IsOfficialTable() {
		return nil, errs.NewWarn("live games require the official pool and score tables")
	}
	rounds := gs.Session.Rounds
	if rounds < minLiveRounds || rounds > maxLiveRounds {
		return nil, errs.Warnf("rounds must be %d..%d for a live game, got %d", minLiveRounds, maxLiveRounds, rounds)
	}

	prng := cf.New(seed)
	s := &Session{
		setting:   gs,
		core:      core.New(prng),
		pool:      dice.NewPool(&gs.Pool, prng),
		engine:    score.NewEngine(&gs.Pool, &gs.Score),
		players:   players,
		round:     1,
		maxRounds: rounds,
		started:   time.Now(),
	}
	s.ctrl = turn.NewController(s.pool, s.engine)

	if gs.Session.Autosave {
		st, err := store.New(gs.Session.SaveDir)
		if err != nil {
			return nil, err
		}
		s.store = st
	}
	return s, nil
}

func buildPlayers(names []string) ([]*Player, error) {
	if len(names) < spec.MinPlayers || len(names) > spec.MaxPlayers {
		return nil, errs.Warnf("players must be %d..%d, got %d", spec.MinPlayers, spec.MaxPlayers, len(names))
	}
	seen := make(map[string]struct{}, len(names))
	players := make([]*Player, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, errs.NewWarn("player name must not be empty")
		}
		if _, dup := seen[name]; dup {
			return nil, errs.NewWarn("duplicate player name: " + name)
		}
		seen[name] = struct{}{}
		players = append(players, NewPlayer(name))
	}
	return players, nil
}

// Players 回傳入座順序的玩家列表（底層 slice，讀用勿改）。
func (s *Session) Players() []*Player {
	return s.players
}

func (s *Session) Setting() *spec.GameSetting {
	return s.setting
}

// Round 回傳進行中的回合（1-based）。
func (s *Session) Round() int {
	return s.round
}

func (s *Session) MaxRounds() int {
	return s.maxRounds
}

// Finished 回傳整場對局是否已收盤。
func (s *Session) Finished() bool {
	return s.round > s.maxRounds
}

// TotalRolls 回傳全場累計擲骰次數（跨玩家）。
func (s *Session) TotalRolls() int {
	return s.totalRolls
}

// Elapsed 回傳開桌至今的時間。
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.started)
}

// StartTurn 重置骰池並進入新回合，把狀態機交給呼叫端自由操作
// （Roll / Lock / Unlock），打完由 ScoreTurn 收帳。
func (s *Session) StartTurn() (*turn.Controller, error) {
	if s.Finished() {
		return nil, errs.NewWarn("game is already finished")
	}
	s.ctrl.Begin()
	return s.ctrl, nil
}

// ScoreTurn 結算目前回合並把成績記進指定玩家的帳本。
func (s *Session) ScoreTurn(p *Player) (ScoreEntry, score.Result, error) {
	if !s.owns(p) {
		return ScoreEntry{}, score.Result{}, errs.NewWarn("player is not in this session")
	}
	res, err := s.ctrl.Score()
	if err != nil {
		return ScoreEntry{}, score.Result{}, err
	}
	s.totalRolls += s.pool.RollsUsed()
	entry := p.RecordScore(s.round, res.Score, res.Category)
	return entry, res, nil
}

// owns 以指標比對：帳本只認本場 Session 發出的 Player 實體。
func (s *Session) owns(p *Player) bool {
	for _, q := range s.players {
		if q == p {
			return true
		}
	}
	return false
}

// Analyze 以目前桌面的計分設定產生留骰建議（純顯示，不影響狀態）。
func (s *Session) Analyze(values []int) score.Analysis {
	return s.engine.Analyze(values)
}

// EndRound 收掉目前回合並推進到下一回合。
// Autosave 開啟時每回合落一份快照，回傳存檔路徑（未開啟回傳空字串）。
func (s *Session) EndRound() (string, error) {
	s.round++
	if s.store == nil {
		return "", nil
	}
	return s.store.Autosave(s.Snapshot())
}

// Standings 回傳總分由高至低的排名。同分時維持入座順序（穩定排序）。
func (s *Session) Standings() []*Player {
	out := make([]*Player, len(s.players))
	copy(out, s.players)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Winner 回傳目前領先者（同分取先入座者）。
func (s *Session) Winner() *Player {
	return s.Standings()[0]
}

// Snapshot 把整場對局打包成存檔快照（含 RNG 核心狀態，供原 seed 續玩）。
func (s *Session) Snapshot() store.GameSave {
	players := make([]store.PlayerState, len(s.players))
	for i, p := range s.players {
		hist := make([]store.ScoreRecord, len(p.History))
		for j, e := range p.History {
			hist[j] = store.ScoreRecord{
				Round:    e.Round,
				Score:    e.Score,
				Category: e.Category,
				Total:    e.Total,
				Player:   e.Player,
			}
		}
		players[i] = store.PlayerState{Name: p.Name, Score: p.Score, History: hist}
	}
	save := store.GameSave{
		Players:      players,
		CurrentRound: s.round,
		MaxRounds:    s.maxRounds,
		GameDate:     time.Now().Format(time.RFC3339),
		Version:      store.Version,
	}
	// Snapshot 失敗只代表續玩時骰序不可重現，比分資料仍完整可讀。
	if snap, err := s.core.Snapshot(); err == nil {
		save.CoreSnapB64U = corefmt.EncodeBase64URL(snap)
	}
	return save
}

// RestoreSession 從存檔快照還原一場對局：比分與回合數照搬，
// 有 CoreSnapB64U 時連骰序都回到存檔當下。
func RestoreSession(gs *spec.GameSetting, cf core.PRNGFactory, save store.GameSave) (*Session, error) {
	if save.CurrentRound < 1 {
		return nil, errs.Warnf("save current_round must >= 1, got %d", save.CurrentRound)
	}
	if save.MaxRounds < minLiveRounds || save.MaxRounds > maxLiveRounds {
		return nil, errs.Warnf("save max_rounds must be %d..%d, got %d", minLiveRounds, maxLiveRounds, save.MaxRounds)
	}

	names := make([]string, len(save.Players))
	for i, ps := range save.Players {
		names[i] = ps.Name
	}
	s, err := NewSession(gs, cf, names...)
	if err != nil {
		return nil, err
	}
	s.round = save.CurrentRound
	s.maxRounds = save.MaxRounds

	for i, ps := range save.Players {
		p := s.players[i]
		p.Score = ps.Score
		p.History = make([]ScoreEntry, len(ps.History))
		for j, r := range ps.History {
			p.History[j] = ScoreEntry{
				Round:    r.Round,
				Score:    r.Score,
				Category: r.Category,
				Total:    r.Total,
				Player:   r.Player,
			}
		}
	}

	if save.CoreSnapB64U != "" {
		snap, err := corefmt.DecodeBase64URL(save.CoreSnapB64U)
		if err != nil {
			return nil, errs.Wrap(err, "decode core snapshot failed")
		}
		if err := s.core.Restore(snap); err != nil {
			return nil, errs.Wrap(err, "restore core failed")
		}
	}
	return s, nil
}
