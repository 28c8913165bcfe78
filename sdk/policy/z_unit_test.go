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

package policy

import (
	"math/bits"
	"testing"

	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/spec"
)

func testSetting(t *testing.T, yml string) *spec.GameSetting {
	t.Helper()
	gs, err := spec.GetGameSettingByYAML([]byte(yml))
	if err != nil {
		t.Fatalf("load setting: %v", err)
	}
	return gs
}

func officialSetting(t *testing.T) *spec.GameSetting {
	return testSetting(t, "game_name: policy_test\ngame_id: 1\n")
}

func officialCtx() Context {
	return Context{DiceCount: 12, Faces: 6, RollsLeft: 2}
}

func TestBuiltinsRegistered(t *testing.T) {
	r := Builtins()
	for _, key := range []spec.PolicyKey{
		KeyHoldNone, KeyGreedyFace, KeyPairsUp, KeyStraightChase, KeyBiasedRandom,
	} {
		if !r.IsExist(key) {
			t.Fatalf("builtin %s missing", key)
		}
	}
	if len(r.Keys()) != 5 {
		t.Fatalf("expected 5 builtins, got %d", len(r.Keys()))
	}

	if err := r.Register(KeyHoldNone, func(*spec.GameSetting) (Policy, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate register error")
	}
	if _, err := r.Build("nope", officialSetting(t)); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestMergeDetectsDuplicates(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	nop := func(*spec.GameSetting) (Policy, error) { return &holdNone{}, nil }
	_ = a.Register("x", nop)
	_ = b.Register("x", nop)

	if _, err := Merge(a, b); err == nil {
		t.Fatalf("expected duplicate key error")
	}
	m, err := Merge(a, nil, NewRegistry())
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !m.IsExist("x") {
		t.Fatalf("merged registry lost key")
	}
}

func TestHoldNone(t *testing.T) {
	p, err := Builtins().Build(KeyHoldNone, officialSetting(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	mask, stop := p.Decide(nil, officialCtx(), []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	if mask != 0 || stop {
		t.Fatalf("hold_none must never lock, got mask=%016b stop=%v", mask, stop)
	}
}

func TestGreedyFace(t *testing.T) {
	p, err := Builtins().Build(KeyGreedyFace, officialSetting(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// 面 3 四顆（索引 0,1,2,8）
	values := []int{3, 3, 3, 1, 2, 4, 5, 6, 3, 2, 1, 6}
	mask, stop := p.Decide(nil, officialCtx(), values)
	want := uint16(1<<0 | 1<<1 | 1<<2 | 1<<8)
	if mask != want {
		t.Fatalf("expected mask %016b, got %016b", want, mask)
	}
	if stop {
		t.Fatalf("unexpected stop")
	}

	// 全池同面時直接收分
	all := []int{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5}
	mask, stop = p.Decide(nil, officialCtx(), all)
	if mask != FullMask(12) || !stop {
		t.Fatalf("expected full mask + stop, got %016b/%v", mask, stop)
	}
}

func TestGreedyFaceMinCountFixed(t *testing.T) {
	gs := testSetting(t, "game_name: policy_test\ngame_id: 1\nfixed:\n  min_count: 5\n")
	p, err := Builtins().Build(KeyGreedyFace, gs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// 最高顆數 4 < min_count 5 → 不鎖
	values := []int{3, 3, 3, 1, 2, 4, 5, 6, 3, 2, 1, 6}
	if mask, _ := p.Decide(nil, officialCtx(), values); mask != 0 {
		t.Fatalf("expected no locks below min_count, got %016b", mask)
	}
}

func TestPairsUp(t *testing.T) {
	p, err := Builtins().Build(KeyPairsUp, officialSetting(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// 成對面：1(x2) 2(x2) 3(x4) 6(x2)；單張：4 5
	values := []int{3, 3, 3, 1, 2, 4, 5, 6, 3, 2, 1, 6}
	mask, stop := p.Decide(nil, officialCtx(), values)
	var want uint16
	for i, v := range values {
		if v != 4 && v != 5 {
			want |= 1 << uint(i)
		}
	}
	if mask != want {
		t.Fatalf("expected mask %016b, got %016b", want, mask)
	}
	if stop {
		t.Fatalf("unexpected stop with singles present")
	}
}

func TestStraightChase(t *testing.T) {
	p, err := Builtins().Build(KeyStraightChase, officialSetting(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ex, ok := p.(Extender)
	if !ok {
		t.Fatalf("straight_chase must expose an extend")
	}

	// 缺面 5、6：每個出現過的面留最低索引那顆
	values := []int{2, 2, 1, 3, 3, 4, 1, 2, 4, 1, 3, 2}
	mask, stop := p.Decide(nil, officialCtx(), values)
	want := uint16(1<<0 | 1<<2 | 1<<3 | 1<<5) // 面2@0、面1@2、面3@3、面4@5
	if mask != want {
		t.Fatalf("expected mask %016b, got %016b", want, mask)
	}
	if stop {
		t.Fatalf("unexpected stop with missing faces")
	}
	snap, ok := ex.Extend().Snapshot().(*ChaseExtend)
	if !ok || snap.Completed || len(snap.MissingFaces) != 2 ||
		snap.MissingFaces[0] != 5 || snap.MissingFaces[1] != 6 {
		t.Fatalf("chase extend mid-turn: %+v", snap)
	}

	// 六面到齊 → 全鎖收分
	full := []int{1, 2, 3, 4, 5, 6, 1, 2, 3, 4, 5, 6}
	mask, stop = p.Decide(nil, officialCtx(), full)
	if mask != FullMask(12) || !stop {
		t.Fatalf("expected bank on complete straight, got %016b/%v", mask, stop)
	}
	snap, ok = ex.Extend().Snapshot().(*ChaseExtend)
	if !ok || !snap.Completed || len(snap.MissingFaces) != 0 {
		t.Fatalf("chase extend after bank: %+v", snap)
	}

	ex.Extend().Reset()
	if snap := ex.Extend().Snapshot().(*ChaseExtend); snap.Completed || len(snap.MissingFaces) != 0 {
		t.Fatalf("chase extend not reset: %+v", snap)
	}
}

func TestBiasedRandom(t *testing.T) {
	gs := testSetting(t, "game_name: policy_test\ngame_id: 1\nfixed:\n  keep_max: 4\n")
	p, err := Builtins().Build(KeyBiasedRandom, gs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	c := core.New(core.Default().New(5))
	values := []int{3, 3, 3, 1, 2, 4, 5, 6, 3, 2, 1, 6}
	for i := 0; i < 200; i++ {
		mask, stop := p.Decide(c, officialCtx(), values)
		if stop {
			t.Fatalf("biased_random must not stop early")
		}
		if n := bits.OnesCount16(mask); n > 4 {
			t.Fatalf("kept %d dice, keep_max is 4", n)
		}
	}
}

func TestMaskHelpers(t *testing.T) {
	values := []int{6, 1, 6, 2}
	if got := MaskOfFace(values, 6); got != 0b0101 {
		t.Fatalf("MaskOfFace: %04b", got)
	}
	if got := MaskOfIndices([]int{0, 3, -1, 40}); got != 0b1001 {
		t.Fatalf("MaskOfIndices: %04b", got)
	}
	if got := FirstOfEachFace(values, 6); got != 0b1011 {
		t.Fatalf("FirstOfEachFace: %04b", got)
	}
	if FullMask(12) != 0x0FFF {
		t.Fatalf("FullMask(12) = %04x", FullMask(12))
	}

	counts := make([]int, 6)
	CountFaces([]int{1, 1, 9, 0, 6}, counts)
	if counts[0] != 2 || counts[5] != 1 {
		t.Fatalf("CountFaces: %v", counts)
	}
}
