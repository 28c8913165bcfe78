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

package naasii_test

import (
	"testing"

	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
	"github.com/zintix-labs/naasii/store"
)

// 官方表 + 3 回合 + 關 Autosave，測試不落地任何檔案。
const liveYAML = `
game_name: livetest
game_id: 9
session:
  rounds: 3
  autosave: false
`

func liveSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs, err := spec.GetGameSettingByYAML([]byte(liveYAML))
	if err != nil {
		t.Fatalf("game setting: %v", err)
	}
	return gs
}

// playRound 每位玩家擲一把、鎖一顆、再擲一把後結算，走完一個回合。
func playRound(t *testing.T, s *naasii.Session) {
	t.Helper()
	for _, p := range s.Players() {
		ctrl, err := s.StartTurn()
		if err != nil {
			t.Fatalf("start turn: %v", err)
		}
		if err := ctrl.Roll(); err != nil {
			t.Fatalf("first roll: %v", err)
		}
		ctrl.Lock(0)
		if err := ctrl.Roll(); err != nil {
			t.Fatalf("second roll: %v", err)
		}
		if _, _, err := s.ScoreTurn(p); err != nil {
			t.Fatalf("score turn: %v", err)
		}
	}
	if _, err := s.EndRound(); err != nil {
		t.Fatalf("end round: %v", err)
	}
}

// TestSessionFullGame 以固定 seed 打完一整場三回合對局，
// 驗證帳本、排名與回合推進的完整性。
func TestSessionFullGame(t *testing.T) {
	s, err := naasii.NewSessionWithSeed(liveSetting(t), core.Default(), 42, "ann", "bo")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if s.Round() != 1 || s.MaxRounds() != 3 {
		t.Fatalf("fresh session at %d/%d, want 1/3", s.Round(), s.MaxRounds())
	}

	for !s.Finished() {
		before := s.Round()
		playRound(t, s)
		if s.Round() != before+1 {
			t.Fatalf("round stuck at %d", s.Round())
		}
	}

	if _, err := s.StartTurn(); err == nil {
		t.Fatalf("expected refusal to start a turn after the final round")
	}
	if s.TotalRolls() != 12 {
		t.Fatalf("2 players x 3 rounds x 2 rolls, logged %d", s.TotalRolls())
	}

	for _, p := range s.Players() {
		if p.Rounds() != 3 {
			t.Fatalf("%s played %d rounds, want 3", p.Name, p.Rounds())
		}
		sum := 0
		for i, e := range p.History {
			if e.Round != i+1 {
				t.Fatalf("%s entry %d holds round %d", p.Name, i, e.Round)
			}
			// 12 顆 6 面骰必有同面，官方表至少給對子分
			if e.Score <= 0 || e.Category == "" {
				t.Fatalf("%s round %d: score %d category %q", p.Name, e.Round, e.Score, e.Category)
			}
			sum += e.Score
			if e.Total != sum {
				t.Fatalf("%s round %d: total %d, want %d", p.Name, e.Round, e.Total, sum)
			}
			if e.Player != p.Name {
				t.Fatalf("entry for %q landed on %s's ledger", e.Player, p.Name)
			}
		}
		if p.Score != sum {
			t.Fatalf("%s total %d, history sums to %d", p.Name, p.Score, sum)
		}
	}

	st := s.Standings()
	for i := 1; i < len(st); i++ {
		if st[i-1].Score < st[i].Score {
			t.Fatalf("standings not descending at %d", i)
		}
	}
	if s.Winner() != st[0] {
		t.Fatalf("winner differs from the standings leader")
	}
}

// TestSameSeedSameGame 同 seed 同操作序列必然產出同一份帳本。
func TestSameSeedSameGame(t *testing.T) {
	cf := core.Default()
	a, err := naasii.NewSessionWithSeed(liveSetting(t), cf, 1234, "x", "y")
	if err != nil {
		t.Fatalf("session a: %v", err)
	}
	b, err := naasii.NewSessionWithSeed(liveSetting(t), cf, 1234, "x", "y")
	if err != nil {
		t.Fatalf("session b: %v", err)
	}

	for !a.Finished() {
		playRound(t, a)
		playRound(t, b)
	}
	for i := range a.Players() {
		pa, pb := a.Players()[i], b.Players()[i]
		if pa.Score != pb.Score {
			t.Fatalf("%s diverged: %d vs %d", pa.Name, pa.Score, pb.Score)
		}
		for j := range pa.History {
			if pa.History[j] != pb.History[j] {
				t.Fatalf("%s round %d diverged", pa.Name, j+1)
			}
		}
	}
}

func TestSessionRejectsBadLineups(t *testing.T) {
	cf := core.Default()
	cases := []struct {
		name  string
		names []string
	}{
		{"solo", []string{"one"}},
		{"five seats", []string{"a", "b", "c", "d", "e"}},
		{"duplicate", []string{"dup", "dup"}},
		{"blank", []string{"ok", "   "}},
	}
	for _, c := range cases {
		if _, err := naasii.NewSessionWithSeed(liveSetting(t), cf, 1, c.names...); err == nil {
			t.Fatalf("%s lineup accepted", c.name)
		}
	}
}

// TestSessionRejectsLabSettings 互動對局只收官方表與可玩回合數，
// lab 面的自訂配置一律擋在門外。
func TestSessionRejectsLabSettings(t *testing.T) {
	cf := core.Default()

	short := liveSetting(t)
	short.Session.Rounds = 1
	if _, err := naasii.NewSessionWithSeed(short, cf, 1, "a", "b"); err == nil {
		t.Fatalf("1-round live game accepted")
	}

	long := liveSetting(t)
	long.Session.Rounds = 42
	if _, err := naasii.NewSessionWithSeed(long, cf, 1, "a", "b"); err == nil {
		t.Fatalf("42-round live game accepted")
	}

	house := liveSetting(t)
	house.Score.RepeatBonus[2] = 99
	if _, err := naasii.NewSessionWithSeed(house, cf, 1, "a", "b"); err == nil {
		t.Fatalf("house score table accepted")
	}
}

func TestScoreTurnRejectsForeignPlayer(t *testing.T) {
	s, err := naasii.NewSessionWithSeed(liveSetting(t), core.Default(), 5, "a", "b")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, _, err := s.ScoreTurn(naasii.NewPlayer("ghost")); err == nil {
		t.Fatalf("foreign player scored")
	}
}

// TestStandingsTieKeepsSeatingOrder 同分排名維持入座順序（穩定排序）。
func TestStandingsTieKeepsSeatingOrder(t *testing.T) {
	s, err := naasii.NewSessionWithSeed(liveSetting(t), core.Default(), 7, "east", "south", "west")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	ps := s.Players()
	ps[0].RecordScore(1, 30, score.CategoryThreeOfAKind)
	ps[1].RecordScore(1, 55, score.CategoryFiveOrMore)
	ps[2].RecordScore(1, 55, score.CategoryFiveOrMore)

	st := s.Standings()
	if st[0].Name != "south" || st[1].Name != "west" || st[2].Name != "east" {
		t.Fatalf("standings order %s/%s/%s", st[0].Name, st[1].Name, st[2].Name)
	}
	if s.Winner().Name != "south" {
		t.Fatalf("winner %s, want south", s.Winner().Name)
	}
}

func TestPlayerLedger(t *testing.T) {
	p := naasii.NewPlayer("solo")
	if _, ok := p.BestRound(); ok {
		t.Fatalf("fresh ledger has a best round")
	}

	p.RecordScore(1, 10, score.CategorySinglePair)
	p.RecordScore(2, 25, score.CategoryFourOfAKind)
	e := p.RecordScore(3, 25, score.CategoryFourOfAKind)
	if e.Total != 60 || p.Score != 60 {
		t.Fatalf("running total %d / %d, want 60", e.Total, p.Score)
	}
	if p.Rounds() != 3 {
		t.Fatalf("rounds %d, want 3", p.Rounds())
	}

	best, ok := p.BestRound()
	if !ok || best.Round != 2 {
		t.Fatalf("best round %d, want the earlier 25 (round 2)", best.Round)
	}
	if got := p.AverageScore(); got != 20 {
		t.Fatalf("average %v, want 20", got)
	}
}

func TestParseSelection(t *testing.T) {
	cases := []struct {
		in     string
		action naasii.SelectAction
		idx    []int
	}{
		{"all", naasii.SelectAll, nil},
		{"  ALL ", naasii.SelectAll, nil},
		{"none", naasii.SelectNone, nil},
		{"done", naasii.SelectDone, nil},
		{"", naasii.SelectDone, nil},
		{"1 3 12", naasii.SelectKeep, []int{0, 2, 11}},
		{"12 1", naasii.SelectKeep, []int{11, 0}},
		{"0 13 x 2 2", naasii.SelectKeep, []int{1, 1}},
		{"7.5 banana", naasii.SelectKeep, nil},
	}
	for _, c := range cases {
		got := naasii.ParseSelection(c.in, 12)
		if got.Action != c.action {
			t.Fatalf("%q: action %d, want %d", c.in, got.Action, c.action)
		}
		if len(got.Indices) != len(c.idx) {
			t.Fatalf("%q: indices %v, want %v", c.in, got.Indices, c.idx)
		}
		for i := range c.idx {
			if got.Indices[i] != c.idx[i] {
				t.Fatalf("%q: indices %v, want %v", c.in, got.Indices, c.idx)
			}
		}
	}
}

// TestSnapshotRestoreContinuesDiceStream 快照含 RNG 核心狀態：
// 從第 1 回合結束的快照還原後，重打的第 2 回合骰序必須與原局一致。
func TestSnapshotRestoreContinuesDiceStream(t *testing.T) {
	cf := core.Default()
	s1, err := naasii.NewSessionWithSeed(liveSetting(t), cf, 99, "ann", "bo")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	playRound(t, s1)

	save := s1.Snapshot()
	if save.CurrentRound != 2 || save.MaxRounds != 3 {
		t.Fatalf("snapshot at round %d/%d, want 2/3", save.CurrentRound, save.MaxRounds)
	}
	if save.Version != store.Version {
		t.Fatalf("snapshot version %q, want %q", save.Version, store.Version)
	}
	if save.CoreSnapB64U == "" {
		t.Fatalf("snapshot missing the rng core state")
	}

	// 原局打完第 2 回合留作對照組
	playRound(t, s1)
	want := make([]naasii.ScoreEntry, 0, 2)
	for _, p := range s1.Players() {
		want = append(want, p.History[1])
	}

	s2, err := naasii.RestoreSession(liveSetting(t), cf, save)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s2.Round() != 2 {
		t.Fatalf("restored at round %d, want 2", s2.Round())
	}
	playRound(t, s2)
	for i, p := range s2.Players() {
		if got := p.History[1]; got != want[i] {
			t.Fatalf("replayed round 2 diverged for %s: %+v vs %+v", p.Name, got, want[i])
		}
	}
}

func TestRestoreRejectsBadSave(t *testing.T) {
	cf := core.Default()
	two := []store.PlayerState{{Name: "a"}, {Name: "b"}}

	bad := store.GameSave{CurrentRound: 0, MaxRounds: 3, Players: two}
	if _, err := naasii.RestoreSession(liveSetting(t), cf, bad); err == nil {
		t.Fatalf("current_round 0 accepted")
	}
	bad = store.GameSave{CurrentRound: 1, MaxRounds: 42, Players: two}
	if _, err := naasii.RestoreSession(liveSetting(t), cf, bad); err == nil {
		t.Fatalf("max_rounds 42 accepted")
	}
	bad = store.GameSave{CurrentRound: 1, MaxRounds: 3, Players: two, CoreSnapB64U: "%%not-base64%%"}
	if _, err := naasii.RestoreSession(liveSetting(t), cf, bad); err == nil {
		t.Fatalf("garbage core snapshot accepted")
	}
}
