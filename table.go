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
	"sync"

	"github.com/zintix-labs/naasii/dto"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/dice"
	"github.com/zintix-labs/naasii/sdk/policy"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/sdk/turn"
	"github.com/zintix-labs/naasii/spec"
)

// Table 封裝一張「可對外提供 PlayTurn 的骰桌」。
//
// 你可以把 Table 視為回合引擎的「外殼（shell）」：
//   - 對外：提供 PlayTurn 入口（HTTP/模擬器通常只操作 Table）。
//   - 對內：持有 RNG（Core）、骰池（sdk/dice.Pool）、回合狀態機
//     （sdk/turn.Controller）與計分引擎（sdk/score.Engine）。
//
// 並發語意：
//   - Table 預設不是 lock-free 結構；它內含可重用的 result buffer（熱路徑），
//     因此同一張 Table 不應被多 goroutine 同時 PlayTurn。
//   - 若要併發模擬，由更高層建立多張 Table 分散到不同 worker 並管理其生命週期。
//
// Buffer 語意（非常重要，影響 DX 與正確性）：
//   - TurnResult 會被重用（避免 GC），每次 PlayTurn 會覆寫內容。
//   - 你若需要在 PlayTurn 後保留結果，請在離開臨界區前轉成 DTO
//     （或自行 copy 你需要的欄位）。
//
// initseed 用於記錄出生時的 seed（追溯/重現的基礎資訊）；
// 完整審計仍以 Core 的 Snapshot/Restore 為準。
type Table struct {
	gameName string           // 遊戲名稱（來自 GameSetting.GameName，主要用於觀測/日誌）
	gameId   spec.GID         // 遊戲 ID（Catalog 內唯一；用於路由與查表）
	core     *core.Core       // RNG 核心（PRNG + Snapshot/Restore 合約；熱路徑會頻繁取樣）
	pool     *dice.Pool       // 骰池（與 core 共用同一個 PRNG 實體）
	engine   *score.Engine    // 計分引擎（純函數，可跨桌共用）
	ctrl     *turn.Controller // 回合狀態機（擲骰/鎖骰/結算的合法順序）
	setting  *spec.GameSetting

	reg        *policy.Registry
	defaultKey spec.PolicyKey                  // 桌面預設策略（來自 Sim.Policy）
	policies   map[spec.PolicyKey]policy.Policy // 已建實例快取，一桌一份不跨桌共用

	TurnResult *buf.TurnResult // 可重用的結果 buffer（熱路徑；每次 PlayTurn 會覆寫）

	vals []int // 餵給策略 Decide 的骰面 scratch

	mu       sync.Mutex // 防併發鎖：保護可重用 buffers 與核心狀態一致性
	initseed int64      // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
	isSim    bool       // 模擬模式下不落地 Extend 副本
}

// newTable 以「隨機 seed」建立 Table。
//
// 這裡使用 crypto/rand 產生 seed 是為了：
//   - 在對外服務情境避免可預測 RNG
//   - 同時保留可追溯性（seed 會被記錄在 Table.initseed）
//
// seed 只保證了新建骰桌的起點，如果需要在任意回合後將骰桌"重設"到任意
// Core 節點，請利用 Snapshot Restore 來操作
func newTable(gs *spec.GameSetting, reg *policy.Registry, cf core.PRNGFactory, isSim bool) (*Table, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return newTableWithSeed(gs, reg, cf, seed.Int64(), isSim)
}

// newTableWithSeed 以指定 seed 建立 Table。
//
// 這是最常用的「可重現」入口：同一份 GameSetting + 同一個 seed，
// 應能得到一致的隨機序列（取決於 Core 實作）。
//
// 建立流程（概念）：
//  1. cf.New(seed) 建出 PRNG，core 與骰池共用同一個實體
//  2. 依設定建出骰池、計分引擎與回合狀態機
//  3. 以 Sim.Policy 預建桌面預設策略（吃桌面 Fixed 參數）
//  4. 初始化可重用的 TurnResult buffer
func newTableWithSeed(gs *spec.GameSetting, reg *policy.Registry, cf core.PRNGFactory, seed int64, isSim bool) (*Table, error) {
	prng := cf.New(seed)
	t := &Table{
		gameName: gs.GameName,
		gameId:   gs.GameID,
		core:     core.New(prng),
		pool:     dice.NewPool(&gs.Pool, prng),
		engine:   score.NewEngine(&gs.Pool, &gs.Score),
		setting:  gs,
		reg:      reg,
		policies: make(map[spec.PolicyKey]policy.Policy, 4),
		vals:     make([]int, gs.Pool.DiceCount),
		initseed: seed,
		isSim:    isSim,
	}
	t.ctrl = turn.NewController(t.pool, t.engine)

	t.defaultKey = gs.Sim.Policy
	def, err := reg.Build(t.defaultKey, gs)
	if err != nil {
		return nil, err
	}
	t.policies[t.defaultKey] = def

	t.TurnResult = buf.NewTurnResult(gs)
	return t, nil
}

// PlayTurn 為主要公開入口，會驗證回合請求，打完一整個回合並回傳結果。
func (t *Table) PlayTurn(r *dto.TurnRequest) (dto.TurnResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// 1. 校驗請求合法性
	if err := t.valid(r); err != nil {
		return dto.TurnResult{}, err
	}
	// 2. parse dto to inner turn request
	req, err := r.Parse()
	if err != nil {
		return dto.TurnResult{}, err
	}
	pol, err := t.policyFor(req.Policy)
	if err != nil {
		return dto.TurnResult{}, err
	}

	// 3. get start snapshot
	startsnap, err := t.SnapshotCore()
	if err != nil {
		return dto.TurnResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}
	rem := startsnap
	if req.StartState != nil && len(req.StartState.StartCoreSnap) != 0 {
		startsnap = req.StartState.StartCoreSnap
		if err := t.RestoreCore(req.StartState.StartCoreSnap); err != nil {
			return dto.TurnResult{}, errs.NewWarn("restore core err " + err.Error())
		}
	}

	// 4. get inner turnResult
	tr, err := t.playTurn(pol)
	if err != nil {
		if e := t.RestoreCore(rem); e != nil {
			return dto.TurnResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.TurnResult{}, err
	}

	// 5. get after snapshot
	aftersnap, err := t.SnapshotCore()
	if err != nil {
		if e := t.RestoreCore(rem); e != nil {
			return dto.TurnResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.TurnResult{}, errs.NewWarn("after snapshot error " + err.Error())
	}
	state := tr.State
	state.StartCoreSnap = startsnap
	state.AfterCoreSnap = aftersnap

	// 6. restore if needed
	if req.StartState != nil && len(req.StartState.StartCoreSnap) != 0 {
		if err := t.RestoreCore(rem); err != nil {
			return dto.TurnResult{}, errs.NewFatal("restore core back err " + err.Error())
		}
	}

	// 7. dto
	return dto.NewTurnResultDTO(tr)
}

// TurnInternal 直接取得內部 TurnResult；常用於模擬器或測試
//
// 請勿在正式環境使用
//
// 此行為跳過所有檢查，並使用桌面預設策略
func (t *Table) TurnInternal() *buf.TurnResult {
	tr, _ := t.playTurn(t.policies[t.defaultKey])
	return tr
}

// playTurn 打完一整個回合：
// 擲骰 → 策略決定鎖定遮罩 → 重骰 →（至多 rolls_per_turn 把）→ 結算。
// 每一把落地骰面快照與遮罩；計分引擎恰好呼叫一次。
func (t *Table) playTurn(pol policy.Policy) (*buf.TurnResult, error) {
	tr := t.TurnResult
	tr.Reset()
	tr.Policy = pol.Key()

	if ex, ok := pol.(policy.Extender); ok {
		ex.Extend().Reset()
	}

	tc := t.ctrl
	tc.Begin()

	p := t.pool
	ctx := policy.Context{
		DiceCount: p.DiceCount(),
		Faces:     p.Faces(),
	}

	for {
		if err := tc.Roll(); err != nil {
			return nil, err
		}
		p.ReadValues(t.vals)
		ctx.RollsLeft = p.RollsLeft()

		// 最後一把也要問策略：遮罩只在還有下一把時生效，
		// 但 Extend 輸出要反映最終盤面。
		mask, stop := pol.Decide(t.core, ctx, t.vals)
		tr.AppendRoll(t.vals, mask)
		if stop || !tc.CanRoll() {
			break
		}
		p.SetLockedMask(mask)
	}

	res, err := tc.Score()
	if err != nil {
		return nil, err
	}
	tr.SetScore(res)

	if !t.isSim {
		if ex, ok := pol.(policy.Extender); ok {
			tr.SetExtend(ex.Extend())
		}
	}
	tr.End()
	return tr, nil
}

func (t *Table) valid(req *dto.TurnRequest) error {
	if t.gameId != req.GameId {
		return errs.NewWarn("game id is not matched")
	}
	if t.gameName != req.GameName {
		return errs.NewWarn("game name is not matched")
	}
	if req.Policy != "" && !t.reg.IsExist(req.Policy) {
		return errs.NewWarn("policy is not registered")
	}
	if req.Round < 0 {
		return errs.NewWarn("round must be non-negative")
	}
	return nil
}

// policyFor 取出（或建出並快取）指定 key 的策略實例。
// 空 key 走桌面預設；臨時覆寫的策略不吃桌面 Fixed 參數，用各自預設值。
func (t *Table) policyFor(key spec.PolicyKey) (policy.Policy, error) {
	if key == "" {
		key = t.defaultKey
	}
	if p, ok := t.policies[key]; ok {
		return p, nil
	}
	bare := *t.setting
	bare.Fixed = nil
	p, err := t.reg.Build(key, &bare)
	if err != nil {
		return nil, err
	}
	t.policies[key] = p
	return p, nil
}

// Setting 回傳骰桌綁定的完整設定（唯讀使用）。
func (t *Table) Setting() *spec.GameSetting {
	return t.setting
}

// SnapshotCore 取得Core狀態暫存 當前僅提供取得Core狀態
//
// 之後要實作斷線續玩時候提供checkpoint加入必要恢復資訊時實作
// SnapShot() <- 保留語意
func (t *Table) SnapshotCore() ([]byte, error) {
	return t.core.Snapshot()
}

// RestoreCore 恢復Core狀態暫存 當前僅提供恢復Core狀態
//
// 之後要實作斷線續玩時候提供checkpoint加入必要恢復資訊時實作
// Restore() <- 保留語意
func (t *Table) RestoreCore(src []byte) error {
	return t.core.Restore(src)
}
