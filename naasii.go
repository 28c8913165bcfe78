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

// Package naasii 提供 Naasii 引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// 你可以把 Naasii 視為一個「可被後端/模擬器使用的 runtime」，它負責把下列三個必需的地基組裝在一起，並提供建立 Table 的入口：
//  1. Catalog：遊戲目錄（Single Source of Truth / SSOT），定義有哪些桌、各自對應的設定檔名稱（ConfigName）。
//  2. Policy Registry：策略註冊表，提供「如何依據設定（PolicyKey）建出留骰策略」的 builders。
//  3. PRNGFactory：亂數核心工廠（PRNG factory），保證可重現（reproducible）與可審計（auditable）。
//
// 設計重點：
//   - Naasii 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Naasii 會持有一份 Catalog（你要跑哪一批桌/設定檔）與一份 Registry（你支援哪些留骰策略）。
//   - Table 是對外提供 PlayTurn 的最小單位；策略開發者主要操作的是 sdk 內的型別與資料結構。
//
// 典型使用情境：
//   - 後端服務（HTTP / gRPC）：由 Naasii 建立 Table，Table 對外提供 PlayTurn。
//   - 模擬器（sim）：由 Naasii 建立多張 Table 進行大量模擬。
//
// 注意：此套引擎目前以 Naasii 骰局領域為中心（Turn -> Result），不是泛用遊戲框架。
package naasii

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io/fs"
	"math"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/naasii/catalog"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/policy"
	"github.com/zintix-labs/naasii/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 你可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//   - 甚至可以用自製的 MultiFS 來合併多個來源。
//
// Naasii 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Policies 用來把一或多個策略註冊表（Registry）打包成 New() 需要的參數。
//
// 一個 Registry 代表「一個策略模組」提供的 builders 集合。
// 例如：
//   - sdk/policy 模組提供內建策略的 builders
//   - presets/policy_kits 模組提供實驗性 kit 的 builders
//
// New() 會把多個 registries 合併成單一 registry；若出現重複 PolicyKey，會以 error 直接失敗（避免行為不確定）。
func Policies(regs ...*policy.Registry) []*policy.Registry {
	return regs
}

// Naasii 是「組裝器（assembler）」與「運行入口（runtime entry）」：
//
// 它把三個必需的地基組合起來：
//  1. Catalog：遊戲目錄（Single Source of Truth / SSOT），定義有哪些桌、各自對應的設定檔名稱。
//  2. Policy Registry：策略註冊表，提供「如何依據設定（PolicyKey）建出留骰策略」的 builders。
//  3. PRNGFactory：亂數核心工廠（PRNG factory），保證可重現（reproducible）與可審計（auditable）。
//
// Naasii 本身不綁定任何「檔案路徑」概念：設定檔來源一律由 fs.FS 提供。
//
// 使用流程通常分成兩階段：
//   - 註冊/組裝階段（registration/build）：建立 catalog、合併 registries、檢查重複與缺漏。
//   - 執行階段（runtime）：依據遊戲 ID 產生 Table，並在 Table 上執行 PlayTurn。
//
// 重要設計原則：
//   - Catalog 的 ID 唯一性只保證在「同一個 Naasii instance」內（不同 Naasii 之間不做全域保證）。
//   - 你要跑哪一批桌、哪一套設定檔、哪一批策略，必須由 New() 的參數明確決定。
//   - runtime 一旦開始（例如已建立 Table 並對外服務），不建議再變更 Catalog/Registry（避免非預期行為）。
//
// 實務例子（概念示意，細節依你的實作為準）：
//
//	// 1) 準備 configs（通常是 go:embed 或 DirFS）
//	// 2) 準備一或多個策略模組的 Registry
//	// 3) 組裝 Naasii，取得可建立 Table 的入口
//	//	lab, _ := naasii.New(cf, naasii.Configs(cfgFS), naasii.Policies(reg1, reg2))
//	//	t, _ := lab.NewTable(1, false)
//	//	// t.PlayTurn(...) -> 取得結果（通常再轉成 DTO 回傳）
type Naasii struct {
	cat *catalog.Catalog
	reg *policy.Registry
	cf  core.PRNGFactory
	sum []catalog.Summary
}

// New 建立一個 Naasii instance。
//
// 這是「組裝階段（registration/build）」的入口：
//   - 會建立 Catalog（通常同時做檔名存在性/重複性檢查，避免 runtime 才爆）。
//   - 會合併多個 Registry 成為單一 registry（重複 PolicyKey 直接視為錯誤）。
//   - 會保存 PRNGFactory，確保由這個 Naasii 建出來的 Table 在 RNG 行為上具有一致性。
//
// 參數要求（是合約的一部分）：
//   - cf 不能為 nil：沒有 RNG 工廠就無法建立可重現/可審計的核心。
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 GameSetting。
//   - policies 至少一個：沒有策略 builders，就算解析出設定也無法建出可執行的留骰策略。
//
// 回傳的 Naasii 會持有：cat（目錄）、reg（合併後 registry）、cf（RNG 工廠）。
func New(cf core.PRNGFactory, cfgs []fs.FS, policies []*policy.Registry) (*Naasii, error) {
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	if len(policies) == 0 {
		return nil, errs.NewFatal("policy registry required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	reg, err := policy.Merge(policies...)
	if err != nil {
		return nil, err
	}
	lab := &Naasii{
		cat: cata,
		reg: reg,
		cf:  cf,
	}
	return lab, nil
}

// NewAuto 建立一個直接進入執行階段的 Naasii instance。
//
// 回傳的 Naasii 會持有：cat（目錄）、reg（合併後 registry）、cf（RNG 工廠）。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS, policies []*policy.Registry) (*Naasii, error) {
	lab, err := New(cf, cfgs, policies)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (p *Naasii) Register(ents ...catalog.Entry) error {
	return p.cat.Register(ents...)
}

// RegisterAll
//
// 會掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）嘗試解析成
// *spec.GameSetting，並用設定檔內宣告的 GameID/GameName 產生對應的 catalog.Entry 來批次註冊。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error（不會忽略、也不會繼續掃完）。
//  2. 原子性：只有當「全部檔案」都成功解析並通過基本檢查時，才會呼叫 Register(...) 一次性寫入。
//     因此不會出現只註冊了一半、導致 catalog 處於半完成狀態的情況。
//  3. 穩定性：會依檔名排序後再處理，確保行為 determinism（方便重現與除錯）。
//
// 注意：
//   - RegisterAll 只負責「把設定檔宣告的遊戲資訊放進 Catalog」。
//
// 留骰策略（Builder / Registry）是否支援該 PolicyKey，屬於後續 Naasii 組裝/建桌時的責任。
func (p *Naasii) RegisterAll() error {
	cfgs := p.cat.Cfg()
	sources := cfgs.Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 64)
	seenID := map[spec.GID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.NewFatal(fmt.Sprintf("configs must be flat (nested path): %q", path))
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}

			var (
				gs   *spec.GameSetting
				gerr error
			)
			switch ext {
			case ".yaml", ".yml":
				gs, gerr = spec.GetGameSettingByYAML(raw)
			case ".json":
				gs, gerr = spec.GetGameSettingByJSON(raw)
			default:
				return errs.NewFatal(fmt.Sprintf("unsupported config format: %q", base))
			}
			if gerr != nil {
				return errs.NewFatal(fmt.Sprintf("parse gamesetting failed: %s", base))
			}

			name := strings.TrimSpace(gs.GameName)
			if name == "" {
				return errs.NewFatal(fmt.Sprintf("game name required: %s", base))
			}

			id := gs.GameID
			if prev, ok := seenID[id]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate game id: %d (config=%s and %s)", id, prev, base))
			}
			if _, ok := p.cat.GetByID(id); ok {
				return errs.NewFatal(fmt.Sprintf("game id already registered: %d (config=%s)", id, base))
			}
			seenID[id] = base

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate game name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := p.cat.GetByName(name); ok {
				return errs.NewFatal(fmt.Sprintf("game name already registered: %s (config=%s)", name, base))
			}
			seenName[nameKey] = base

			if gs.Sim.Policy == "" {
				return errs.NewFatal(fmt.Sprintf("policy key required: %s", base))
			}
			if !p.reg.IsExist(gs.Sim.Policy) {
				return errs.NewFatal(fmt.Sprintf("policy not registered: policy_key=%s (config=%s)", gs.Sim.Policy, base))
			}

			entries = append(entries, catalog.Entry{
				GID:        id,
				Name:       name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return p.cat.Register(entries...)
}

func (p *Naasii) Freeze() {
	p.cat.Freeze()
}

func (p *Naasii) EntryById(id spec.GID) (catalog.Entry, bool) {
	return p.cat.GetByID(id)
}

func (p *Naasii) EntryByName(name string) (catalog.Entry, bool) {
	return p.cat.GetByName(name)
}

func (p *Naasii) IDs() []spec.GID {
	return p.cat.IDs()
}

func (p *Naasii) All() []catalog.Entry {
	return p.cat.All()
}

// GameSettingById 取出指定桌台的完整設定。
//
// 每次呼叫都會重新解析設定檔，回傳的物件呼叫端可安全修改（不會影響 Catalog）。
func (p *Naasii) GameSettingById(id spec.GID) (*spec.GameSetting, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return p.cat.GameSettingById(id)
}

func (p *Naasii) Summary() ([]catalog.Summary, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if p.sum != nil {
		return p.sum, nil
	}
	ids := p.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		gs, err := p.cat.GameSettingById(id)
		if err != nil {
			return nil, errs.NewFatal("parse game setting failed")
		}
		cs = append(cs, catalog.SummaryOf(id, gs))
	}
	p.sum = cs
	return p.sum, nil
}

// NewTable 依據 Catalog 內的遊戲 ID 建立一張 Table。
//
// 行為：
//  1. 由 Catalog 取得對應的 GameSetting（通常來自 fs.FS 內的 YAML/JSON）。
//  2. 以 PRNGFactory 產生 RNG 核心（seed 由 crypto/rand 產生）。
//  3. 透過 Registry 依據 GameSetting 內的 PolicyKey 建出可執行的留骰策略。
//
// isSim 用於區分「模擬/分析」與「對外服務」的執行模式（例如：某些dto深拷貝行為可能只在 prod 開啟以增加 sim 的性能）。
//
// 注意：seed 會被記錄在 Table 內（initseed），用於追溯/重現；真正的可審計能力以 Core 的 Snapshot/Restore 合約為準。
func (p *Naasii) NewTable(id spec.GID, isSim bool) (*Table, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newTable(gs, p.reg, p.cf, isSim)
}

// NewTableWithSeed 與 NewTable 相同，但由呼叫端指定初始 seed。
//
// 使用情境：
//   - 可重現的測試：同一份設定 + 同一個 seed，應產生一致的隨機序列（取決於 Core 實作）。
//
// 注意：seed 只是「出生入口」。若要在任意時間點完整重現，請使用 Core 的 Snapshot/Restore（以 []byte 交換狀態）。
func (p *Naasii) NewTableWithSeed(id spec.GID, seed int64, isSim bool) (*Table, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newTableWithSeed(gs, p.reg, p.cf, seed, isSim)
}

func (p *Naasii) NewTableByJSON(raw []byte, seed int64) (*Table, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newTableWithSeed(cfg, p.reg, p.cf, seed, true)
}

func (p *Naasii) NewTableByYAML(raw []byte, seed int64) (*Table, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newTableWithSeed(cfg, p.reg, p.cf, seed, true)
}

func (p *Naasii) validCfg(cfg *spec.GameSetting) error {
	ent, ok := p.cat.GetByID(cfg.GameID)
	if !ok {
		return errs.NewWarn("gid not exist")
	}
	ent2, ok := p.cat.GetByName(cfg.GameName)
	if !ok {
		return errs.NewWarn("game name not exist")
	}
	if ent.GID != ent2.GID {
		return errs.NewWarn("game id is not matched game name")
	}
	if !p.reg.IsExist(cfg.Sim.Policy) {
		return errs.NewWarn("game policy not exist")
	}
	return nil
}

func (p *Naasii) NewSimulator(id spec.GID) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(gs, p.reg, p.cf)
}

func (p *Naasii) NewSimulatorWithSeed(id spec.GID, seed int64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	gs, err := p.cat.GameSettingById(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, p.reg, p.cf, seed)
}

func (p *Naasii) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, p.reg, p.cf, seed)
}

func (p *Naasii) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetGameSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(cfg, p.reg, p.cf, seed)
}

func (p *Naasii) BuildRuntime(poolSize int) (*DiceRuntime, error) {
	// 1. 進入 runtime 前，catalog 必須 Freeze
	p.Freeze()

	ids := p.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no games registered")
	}

	rt := &DiceRuntime{
		lab:      p,
		pools:    make(map[spec.GID]*TablePool, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	// 2. 先全建好（fail-fast + cleanup）
	for _, id := range ids {
		gs, err := p.cat.GameSettingById(id)
		if err != nil {
			return nil, err
		}

		seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		tp, err := newTablePool(rt.poolSize, gs, p.reg, p.cf, seed.Int64())
		if err != nil {
			return nil, err
		}
		rt.pools[id] = tp
	}
	return rt, nil
}

// NewDevSimulator
//
// 注意只能由Naasii起
// 只提供給Dev模式使用的模擬器，重點是保持單桌模式所以保持可重現性
func (p *Naasii) NewDevSimulator(gid spec.GID, seed int64) (*DevSimulator, error) {
	sim, err := p.NewSimulatorWithSeed(gid, seed)
	if err != nil {
		return nil, err
	}
	t, err := p.NewTableWithSeed(gid, seed, false)
	if err != nil {
		return nil, err
	}
	simBe, err := sim.tBuf[0].SnapshotCore()
	if err != nil {
		return nil, err
	}
	tBe, err := t.SnapshotCore()
	if err != nil {
		return nil, err
	}
	simBe64 := base64.StdEncoding.EncodeToString(simBe)
	tBe64 := base64.StdEncoding.EncodeToString(tBe)
	if tBe64 != simBe64 {
		return nil, errs.NewFatal("seeds are not equal")
	}
	dev := &DevSimulator{
		sim:      sim,
		t:        t,
		before:   tBe,
		before64: tBe64,
	}
	return dev, nil
}
