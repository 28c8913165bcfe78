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

package dice

import (
	"errors"
	"slices"
	"testing"

	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/spec"
)

func officialPool(t *testing.T, seed int64) *Pool {
	t.Helper()
	ps := &spec.PoolSetting{}
	if err := ps.Init(); err != nil {
		t.Fatalf("pool setting init: %v", err)
	}
	return NewPool(ps, core.Default().New(seed))
}

func TestRollAllRange(t *testing.T) {
	p := officialPool(t, 1)
	if err := p.RollAll(); err != nil {
		t.Fatalf("first roll: %v", err)
	}
	for i, v := range p.Values() {
		if v < 1 || v > 6 {
			t.Fatalf("die %d out of range: %d", i, v)
		}
	}
	if p.RollsLeft() != 2 {
		t.Fatalf("expected 2 rolls left, got %d", p.RollsLeft())
	}
}

// TestLockedDiceSurviveReroll 鎖定 0、2、4 後重骰，三顆骰面必須原封不動。
func TestLockedDiceSurviveReroll(t *testing.T) {
	p := officialPool(t, 2)
	if err := p.RollAll(); err != nil {
		t.Fatalf("first roll: %v", err)
	}
	before := p.Values()

	p.Lock(0)
	p.Lock(2)
	p.Lock(4)
	if err := p.RollAll(); err != nil {
		t.Fatalf("second roll: %v", err)
	}

	after := p.Values()
	for _, idx := range []int{0, 2, 4} {
		if before[idx] != after[idx] {
			t.Fatalf("locked die %d changed: %d -> %d", idx, before[idx], after[idx])
		}
	}
}

func TestNoRollsRemaining(t *testing.T) {
	p := officialPool(t, 3)
	for i := 0; i < 3; i++ {
		if err := p.RollAll(); err != nil {
			t.Fatalf("roll %d: %v", i+1, err)
		}
	}

	snapshot := p.Values()
	mask := p.LockedMask()
	err := p.RollAll()
	if !errors.Is(err, ErrNoRollsRemaining) {
		t.Fatalf("expected ErrNoRollsRemaining, got %v", err)
	}
	if err.Error() != "no rolls remaining" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	// 失敗的重骰不得動到任何狀態
	if !slices.Equal(snapshot, p.Values()) {
		t.Fatalf("values mutated by failed roll")
	}
	if mask != p.LockedMask() {
		t.Fatalf("lock mask mutated by failed roll")
	}
	if p.RollsLeft() != 0 {
		t.Fatalf("rolls left mutated by failed roll")
	}
}

func TestResetTurnRestoresAllowance(t *testing.T) {
	p := officialPool(t, 4)
	_ = p.RollAll()
	p.LockAll()
	p.ResetTurn()

	if p.RollsLeft() != 3 {
		t.Fatalf("expected full allowance after reset, got %d", p.RollsLeft())
	}
	if p.LockedMask() != 0 {
		t.Fatalf("expected no locks after reset, got %016b", p.LockedMask())
	}
}

func TestLockUnlockBounds(t *testing.T) {
	p := officialPool(t, 5)

	// 越界索引靜默忽略
	p.Lock(-1)
	p.Lock(12)
	p.Lock(99)
	if p.LockedMask() != 0 {
		t.Fatalf("out-of-range lock mutated mask: %016b", p.LockedMask())
	}
	p.Unlock(-1)
	p.Unlock(12)

	p.Lock(3)
	p.Lock(3) // 重複鎖定為 no-op
	if got := p.LockedIndices(); !slices.Equal(got, []int{3}) {
		t.Fatalf("unexpected locked indices: %v", got)
	}
	if !p.IsLocked(3) || p.IsLocked(2) {
		t.Fatalf("IsLocked mismatch")
	}

	p.Unlock(3)
	if p.LockedMask() != 0 {
		t.Fatalf("unlock failed")
	}
}

func TestLockAllStillConsumesRoll(t *testing.T) {
	p := officialPool(t, 6)
	_ = p.RollAll()
	before := p.Values()

	p.LockAll()
	if got := len(p.LockedIndices()); got != 12 {
		t.Fatalf("expected 12 locked, got %d", got)
	}
	if err := p.RollAll(); err != nil {
		t.Fatalf("roll with all locked: %v", err)
	}
	if !slices.Equal(before, p.Values()) {
		t.Fatalf("values changed with all dice locked")
	}
	if p.RollsLeft() != 1 {
		t.Fatalf("expected allowance consumed, got %d left", p.RollsLeft())
	}
}

func TestLockedIndicesAscending(t *testing.T) {
	p := officialPool(t, 7)
	for _, idx := range []int{9, 1, 5, 0, 11} {
		p.Lock(idx)
	}
	got := p.LockedIndices()
	if !slices.IsSorted(got) {
		t.Fatalf("indices not ascending: %v", got)
	}
	if !slices.Equal(got, []int{0, 1, 5, 9, 11}) {
		t.Fatalf("unexpected indices: %v", got)
	}
}

// TestDeterministicReplay 同種子同操作序列必須重現同一串骰面。
func TestDeterministicReplay(t *testing.T) {
	run := func() [][]int {
		p := officialPool(t, 42)
		var rolls [][]int
		_ = p.RollAll()
		rolls = append(rolls, p.Values())
		p.Lock(0)
		p.Lock(5)
		_ = p.RollAll()
		rolls = append(rolls, p.Values())
		p.UnlockAll()
		_ = p.RollAll()
		rolls = append(rolls, p.Values())
		return rolls
	}

	a, b := run(), run()
	for i := range a {
		if !slices.Equal(a[i], b[i]) {
			t.Fatalf("replay diverged at roll %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSetLockedMaskTrimsHighBits(t *testing.T) {
	p := officialPool(t, 8)
	p.SetLockedMask(0xFFFF)
	if got := len(p.LockedIndices()); got != 12 {
		t.Fatalf("expected mask trimmed to 12 dice, got %d locked", got)
	}
}

func TestForceValidates(t *testing.T) {
	p := officialPool(t, 9)
	if err := p.Force([]int{1, 2, 3}); err == nil {
		t.Fatalf("expected length error")
	}
	bad := []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 7}
	if err := p.Force(bad); err == nil {
		t.Fatalf("expected range error")
	}
	good := []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6}
	if err := p.Force(good); err != nil {
		t.Fatalf("force: %v", err)
	}
	if !slices.Equal(p.Values(), good) {
		t.Fatalf("force did not apply")
	}
}

// TestWeightedPoolBias 灌鉛骰應明顯偏向高權重面。
func TestWeightedPoolBias(t *testing.T) {
	ps := &spec.PoolSetting{}
	if err := ps.Init(); err != nil {
		t.Fatalf("pool setting init: %v", err)
	}
	// 第 6 面權重 20 倍
	p, err := NewWeightedPool(ps, core.Default().New(10), []int{1, 1, 1, 1, 1, 20})
	if err != nil {
		t.Fatalf("new weighted pool: %v", err)
	}

	sixes, total := 0, 0
	for turn := 0; turn < 500; turn++ {
		p.ResetTurn()
		if err := p.RollAll(); err != nil {
			t.Fatalf("roll: %v", err)
		}
		for _, v := range p.Values() {
			total++
			if v == 6 {
				sixes++
			}
		}
	}
	rate := float64(sixes) / float64(total)
	// 理論值 20/25 = 0.80
	if rate < 0.7 {
		t.Fatalf("expected heavy bias toward face 6, got rate %.3f", rate)
	}

	if _, err := NewWeightedPool(ps, core.Default().New(11), []int{1, 2}); err == nil {
		t.Fatalf("expected weight length error")
	}
}
