// Package dev 提供 Naasii 的「內部 Dev Panel」HTTP endpoints。
//
// 目的（ explain the why ）：
//   - 給數學家 / 後端在開發期快速驗證：指定骰桌、Seed / Snap，然後執行 Turn 或 Sim。
//   - 支援可回放（replay）：把 Snapshot（Snap）以字串形式在前端顯示，並可貼回後端做 Restore。
//
// 注意（ contract ）：
//   - 這不是 production API；它偏向 debug / tooling，行為允許更寬鬆，但仍需維持 deterministic concludes。
//   - 這裡的錯誤處理走 `httperr.Errs`（以 errs.Warn/errs.Fatal 對應 HTTP response）。
//   - Seed/Snap 的互斥與優先級由前端 + 後端共同保證（Snap takes precedence）。
package dev

import (
	"crypto/rand"
	"embed"
	"encoding/json"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/catalog"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/server/httperr"
	"github.com/zintix-labs/naasii/server/netsvr"
	"github.com/zintix-labs/naasii/server/svrcfg"
	"github.com/zintix-labs/naasii/spec"
)

// devRequest 是 Dev Panel 的「輸入 payload」。
//
// 欄位語意：
//   - `gid` 與 `game` 兩者擇一即可；若兩者同時存在，後端會優先使用 gid 做解析。
//
// Seed / Snap：
//   - Seed（int64 string）用於 deterministic 起始；若為空字串則自動生成（crypto/rand）。
//   - Snap（base64url string）代表 core snapshot；若提供 Snap，則後端以 Snap Restore 為準（Snap precedence）。
//
// 注意：
//   - 這個 struct 是 API 邊界用的 DTO；不要把它滲透到 dice logic / math domain。
type devRequest struct {
	GID   int64  `json:"gid"`
	Game  string `json:"game"`
	Turns int    `json:"turns"`
	Seed  string `json:"seed"`
	Snap  string `json:"snap"`
}

// Register 註冊 Dev Panel 的 routes。
//
// Routes：
//   - GET  /dev        ：Dev Panel HTML（內嵌 JS）。
//   - GET  /dev/meta   ：回傳 Catalog summary（供前端下拉選單：骰桌清單）。
//   - POST /dev/turns  ：執行 N 個回合並回傳每回合結果（含 start_b64u/after_b64u）。
//   - POST /dev/sim    ：執行 N 回合的 Sim 並回傳統計報表（不回傳逐回合 results）。
//
// 依賴（dependency）：
//   - 需要 cfg.Naasii 已被上層組裝完成並注入；否則會回 errs.Fatal。
func Register(svr netsvr.NetRouter, cfg *svrcfg.SvrCfg) {
	svr.Get("/dev", devPage)
	svr.Get("/favicon.svg", favicon)
	svr.Get("/dev/meta", devMeta(cfg))
	svr.Post("/dev/turns", devTurns(cfg))
	svr.Post("/dev/sim", devSim(cfg))
}

// devPageHTML 是內嵌的 Dev Panel UI。
//
// UI 行為（contract）：
//   - 骰桌：由 /dev/meta 動態載入。
//   - Seed/Snap 互斥：
//   - Snap 非空 → Seed 會被清空並 disable。
//   - Seed 非空 → Snap 會被清空並 disable。
//   - Snap takes precedence（後端也會以 Snap 為準）。
//   - Turns：
//   - Turn：前端會 cap 在 5,000 以避免回傳 payload 過大。
//   - Sim ：前端會 cap 在 3,000,000 以避免長時間阻塞（仍屬 dev tooling）。
//
// 回傳呈現：
//   - Turn：Summary 區顯示整體統計；Turn Results 展開後可點選查看 raw TurnResult JSON。
//   - Sim ：僅顯示統計（statistic/stats/stat），不顯示逐回合 results。
const devPageHTML = `<!doctype html>
<html lang="zh-Hant">
<head>
  <meta charset="utf-8" />
  <link rel="icon" type="image/svg+xml" href="/favicon.svg" />
  <title>Naasii Dev</title>
  <style>
    body { font-family: -apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif; background:#0f172a; color:#e2e8f0; margin:0; }
    .wrap { max-width: 980px; margin: 24px auto; padding: 16px 20px; background:#111827; border:1px solid #1f2937; border-radius:12px; box-shadow:0 12px 50px rgba(0,0,0,0.35); }
    h1 { margin: 0 0 16px; font-size: 22px; letter-spacing: 0.3px; }
    .grid { display:grid; grid-template-columns: repeat(auto-fit, minmax(180px,1fr)); gap:12px; margin-bottom:12px; }
    label { display:flex; flex-direction:column; gap:6px; font-size: 13px; color:#cbd5e1; }
    input, select { background:#0b1224; color:#e2e8f0; border:1px solid #1f2738; border-radius:8px; padding:10px 12px; font-size:14px; }
    input:focus, select:focus { outline:1px solid #38bdf8; border-color:#38bdf8; }
    .actions { position:relative; display:flex; gap:10px; align-items:center; justify-content:flex-end; margin: 8px 0 14px; }
    button { cursor:pointer; border:none; border-radius:10px; padding:10px 14px; font-weight:600; letter-spacing:0.2px; }
    #btn-turn { background:#38bdf8; color:#0b1224; }
    #btn-sim { background:#22c55e; color:#0b1224; }
    #btn-clear { background:#1f2937; color:#e2e8f0; border:1px solid #334155; }
    button:disabled { opacity:0.6; cursor:not-allowed; }
    input:disabled, select:disabled {
      opacity: 0.55;
      cursor: not-allowed;
      filter: grayscale(0.25);
    }
    label.is-disabled { opacity: 0.55; }
    label.is-disabled input, label.is-disabled select { pointer-events: none; }
    .hint { font-size: 12px; color:#94a3b8; margin-top:4px; }
    .info { position:absolute; left:50%; transform:translateX(-50%); font-size:13px; color:#94a3b8; }
    .info.warn { color:#f87171; font-weight:600; }
    #summary { background:#0b1224; border:1px solid #1f2738; border-radius:12px; padding:14px; min-height:120px; overflow:auto; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; white-space:pre-wrap; margin-bottom:12px; }
    #turnsBox { border:1px solid #1f2737; border-radius:12px; padding:10px; background:#0b1224; margin-bottom:12px; max-height: calc(60vh - 56px); overflow:auto; }
    #turnList { max-height: calc(60vh - 136px); overflow:auto; }
    .turn-item { display:grid; grid-template-columns: minmax(3.5em, max-content) minmax(80px, max-content) max-content; align-items:center; column-gap:8px; width:100%; text-align:left; background:none; border:none; padding:6px 10px; color:#e2e8f0; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; cursor:pointer; border-left: 4px solid transparent; }
    .turn-item:hover { background:#1f2937; border-left-color:#38bdf8; }
    .turn-item.selected { background:#2563eb; border-left-color:#60a5fa; }
    .turn-index { color:#94a3b8; text-align:right; justify-self:end; min-width:3.5em; font-variant-numeric: tabular-nums; }
    .turn-score { text-align:right; justify-self:end; font-variant-numeric: tabular-nums; }
    .turn-score.zero { color:#94a3b8; }
    .turn-cat { text-align:right; justify-self:end; color:#94a3b8; }
    .cat-big { color:#22c55e; font-weight:600; }
    #detail { background:#0b1224; border:1px solid #1f2738; border-radius:12px; padding:14px; min-height:220px; overflow:auto; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; white-space:pre-wrap; display:none; }
    .note { font-size:12px; color:#94a3b8; margin-top:4px; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>Naasii Dev Panel</h1>
    <div class="grid">
      <label>Dice Game
        <select id="game"></select>
      </label>
      <label>Seed (int64)
   <input id="seed" type="text" inputmode="numeric" placeholder="Empty = auto" />
      </label>
      <label>Snap(base64url)
        <input id="snap" type="text" placeholder="Paste snap (base64url)" />
      </label>
      <label>Turns
        <input id="turns" type="number" min="1" max="3000000" value="1" />
      </label>
    </div>
    <div class="actions">
      <button id="btn-turn">Turn</button>
      <button id="btn-sim">Sim</button>
      <button id="btn-clear">Clear</button>
      <span class="info" id="info"></span>
    </div>

    <pre id="summary"></pre>

    <details id="turnsBox" style="display:none;">
      <summary>Turn Results</summary>
      <div id="turnList"></div>
    </details>

    <pre id="detail" style="display:none;"></pre>
  </div>
<script>
const state = { meta: null, results: [] };
const gameSel = document.getElementById('game');
const seedInput = document.getElementById('seed');
const snapInput = document.getElementById('snap');
const turnsInput = document.getElementById('turns');
const summary = document.getElementById('summary');
const turnsBox = document.getElementById('turnsBox');
const turnList = document.getElementById('turnList');
const detail = document.getElementById('detail');
const infoEl = document.getElementById('info');
const btnTurn = document.getElementById('btn-turn');
const btnSim = document.getElementById('btn-sim');
const btnClear = document.getElementById('btn-clear');
const numberFormatter = new Intl.NumberFormat('en-US');

function setDisabled(el, disabled) {
  el.disabled = disabled;
  const label = el.closest('label');
  if (label) label.classList.toggle('is-disabled', disabled);
}

function syncInputLocks() {
  const seedValue = seedInput.value.trim();
  const snapValue = snapInput.value.trim();

  if (snapValue !== '') {
    seedInput.value = '';
    setDisabled(seedInput, true);
    setDisabled(snapInput, false);
    return;
  }
  if (seedValue !== '') {
    snapInput.value = '';
    setDisabled(snapInput, true);
    setDisabled(seedInput, false);
    return;
  }
  setDisabled(seedInput, false);
  setDisabled(snapInput, false);
}

function formatScore(value) {
  if (typeof value !== 'number' || !Number.isFinite(value)) return '0';
  return numberFormatter.format(value);
}

async function loadMeta() {
  try {
    const res = await fetch('/dev/meta');
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();
    const games = Array.isArray(data) ? data : (data.games || data.summary || []);
    state.meta = { games };
    gameSel.innerHTML = '';
    state.meta.games.forEach((g) => {
      const opt = document.createElement('option');
      const gid = g.gid ?? g.id ?? g.GID;
      opt.value = gid != null ? String(gid) : (g.name || g.game || '');
      const dice = (g.dice_count && g.faces) ? ' (' + g.dice_count + 'd' + g.faces + ')' : '';
      opt.textContent = (g.name || g.game || String(opt.value)) + dice;
      opt.dataset.name = g.name || g.game || '';
      gameSel.appendChild(opt);
    });
    summary.textContent = '';
    turnsBox.style.display = 'none';
    detail.style.display = 'none';
    setInfo('', false);
  } catch (err) {
    summary.textContent = 'Failed to load meta: ' + err.message;
  }
}

function getSelectedGame() {
  if (!state.meta || !state.meta.games) return null;
  const value = gameSel.value;
  return state.meta.games.find((g) => String(g.gid ?? g.id ?? g.GID) === value)
    || state.meta.games.find((g) => (g.name || g.game || '') === value);
}

function setInfo(text, isWarn) {
  infoEl.textContent = text;
  if (isWarn) {
    infoEl.classList.add('warn');
  } else {
    infoEl.classList.remove('warn');
  }
}

function setLoading(isLoading) {
  btnTurn.disabled = isLoading;
  btnSim.disabled = isLoading;
  if (isLoading) {
    setInfo('Running…', false);
  }
}

function clearSelection() {
  summary.textContent = '';
  turnsBox.style.display = 'none';
  detail.style.display = 'none';
  turnList.innerHTML = '';
  state.results = [];
}

function renderDetail(index) {
  if (!state.results || !state.results[index]) {
    detail.textContent = '';
    detail.style.display = 'none';
    return;
  }
  const result = state.results[index];
  detail.textContent = JSON.stringify(result, null, 2);
  detail.style.display = 'block';

  // highlight selected
  const buttons = turnList.querySelectorAll('.turn-item');
  buttons.forEach((btn, idx) => {
    if (idx === index) {
      btn.classList.add('selected');
    } else {
      btn.classList.remove('selected');
    }
  });
}

function buildPayload(cap) {
  const seed = seedInput.value.trim();
  const snap = snapInput.value.trim();
  const inputTurns = Number(turnsInput.value) || 1;
  const selectedGame = getSelectedGame();
  const payload = {
    turns: Math.min(inputTurns, cap),
  };
  const gid = Number(gameSel.value);
  if (Number.isFinite(gid)) {
    payload.gid = gid;
  }
  if (selectedGame && selectedGame.name) {
    payload.game = selectedGame.name;
  } else if (gameSel.value) {
    payload.game = gameSel.value;
  }
  if (snap) {
    payload.snap = snap;
  } else if (seed) {
    payload.seed = seed;
  }
  return { payload, inputTurns };
}

async function runTurns() {
  setLoading(true);
  clearSelection();
  const { payload, inputTurns } = buildPayload(5000);
  try {
    const res = await fetch('/dev/turns', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(payload),
    });
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();

    const summaryObj = { ...data };
    delete summaryObj.results;
    summary.textContent = JSON.stringify(summaryObj, null, 2);

    if (inputTurns > 5000) {
      setInfo('Turn records are capped at 5,000 turns.', true);
    } else {
      setInfo('', false);
    }

    const results = Array.isArray(data.results) ? data.results : [];
    if (results.length > 0) {
      state.results = results;
      turnList.innerHTML = '';
      results.forEach((dto, idx) => {
        const score = (typeof dto.score === 'number') ? dto.score : 0;
        const cat = dto.category || '';
        const scoreText = formatScore(score);
        const btn = document.createElement('button');
        btn.type = 'button';
        btn.className = 'turn-item';
        btn.textContent = '';
        const idxSpan = document.createElement('span');
        idxSpan.className = 'turn-index';
        idxSpan.textContent = '#' + (idx + 1);
        const scoreSpan = document.createElement('span');
        scoreSpan.className = 'turn-score' + (score === 0 ? ' zero' : '');
        scoreSpan.textContent = scoreText;
        const catSpan = document.createElement('span');
        catSpan.className = 'turn-cat' + (score >= 30 ? ' cat-big' : '');
        catSpan.textContent = cat;
        btn.appendChild(idxSpan);
        btn.appendChild(scoreSpan);
        btn.appendChild(catSpan);
        btn.title = 'Turn ' + (idx + 1) + ' | score=' + scoreText + (cat ? ' | ' + cat : '');
        btn.addEventListener('click', () => {
          renderDetail(idx);
        });
        turnList.appendChild(btn);
      });
      turnsBox.style.display = 'block';
      renderDetail(0);
    } else {
      turnsBox.style.display = 'none';
      detail.style.display = 'none';
      state.results = [];
    }
  } catch (err) {
    summary.textContent = 'Request failed: ' + err.message;
    setInfo('', false);
  } finally {
    setLoading(false);
  }
}

async function runSim() {
  setLoading(true);
  clearSelection();
  const { payload, inputTurns } = buildPayload(3000000);
  try {
    const res = await fetch('/dev/sim', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(payload),
    });
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();
    const summaryObj = data.statistic || data.stats || data.stat || data;
    summary.textContent = JSON.stringify(summaryObj, null, 2);
    if (inputTurns > 3000000) {
      setInfo('Sim statistics are capped at 3,000,000 turns.', true);
    } else {
      setInfo('', false);
    }
  } catch (err) {
    summary.textContent = 'Request failed: ' + err.message;
    setInfo('', false);
  } finally {
    setLoading(false);
  }
}

btnTurn.addEventListener('click', runTurns);
btnSim.addEventListener('click', runSim);
btnClear.addEventListener('click', () => {
  clearSelection();
  setInfo('', false);
});
seedInput.addEventListener('input', syncInputLocks);
snapInput.addEventListener('input', syncInputLocks);

syncInputLocks();
loadMeta();
</script>
</body>
</html>`

// devPage 回傳內嵌 HTML（single page）。這裡不做 templating，降低 dev tool 維護成本。
func devPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(devPageHTML))
}

// favicon 提供 Dev Panel 的 favicon.svg。
func favicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(faviconSVG))
}

// devMeta 回傳 Catalog summary（JSON）。
//
// 前端依賴欄位：
//   - gid / id / GID
//   - name / game
//   - dice_count / faces（顯示用，可缺省）
func devMeta(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		pb, ok := getNaasii(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("naasii is required"))
			return
		}
		sum, err := pb.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// devTurns 執行「可回放」的回合。
//
// 流程（high level）：
//  1. decode devRequest（JSON body）
//  2. resolve game（gid/name）→ catalog.Summary
//  3. resolve seed（empty = auto）
//  4. 建立 DevSimulator → Turns() 或 RestoreTurns()
//
// Snap precedence：若 snap 非空，會走 RestoreTurns(snap, ...)。
func devTurns(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := new(devRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		pb, ok := getNaasii(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("naasii is required"))
			return
		}
		sum, err := resolveSummary(pb, req)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Turns < 1 {
			httperr.Errs(w, errs.NewWarn("turns is required"))
			return
		}
		snap := strings.TrimSpace(req.Snap)
		seed, err := resolveSeed(req.Seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		sim, err := pb.NewDevSimulator(sum.GID, seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		var report naasii.DevTurnReport
		if snap != "" {
			report, err = sim.RestoreTurns(snap, req.Turns)
		} else {
			report, err = sim.Turns(req.Turns)
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}

// devSim 執行統計模擬（simulation）。
//
// 和 devTurns 的差異：
//   - devSim 不回逐回合 results（降低 response size），僅回 DevSimReport（statistic）。
//   - 若提供 snap，會走 RestoreSim(snap, ...)。
func devSim(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := new(devRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		pb, ok := getNaasii(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("naasii is required"))
			return
		}
		sum, err := resolveSummary(pb, req)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Turns < 1 {
			httperr.Errs(w, errs.NewWarn("turns is required"))
			return
		}
		snap := strings.TrimSpace(req.Snap)
		seed, err := resolveSeed(req.Seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		sim, err := pb.NewDevSimulator(sum.GID, seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		var report naasii.DevSimReport
		if snap != "" {
			report, err = sim.RestoreSim(snap, req.Turns)
		} else {
			report, err = sim.Sim(req.Turns)
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}

// getNaasii 從 server config 取得已組裝的 Naasii instance。
// Dev routes 不負責組裝（assembler），只負責使用（runtime entry）。
func getNaasii(cfg *svrcfg.SvrCfg) (*naasii.Naasii, bool) {
	if cfg == nil || cfg.Naasii == nil {
		return nil, false
	}
	return cfg.Naasii, true
}

// resolveSummary 解析使用者指定的遊戲：
//   - 若 gid > 0：以 gid 精準匹配（fast path）。
//   - 否則若 game(name) 非空：先做 case-insensitive name 匹配；也允許把 game 當作數字字串解析成 gid。
//
// 回傳 catalog.Summary 作為後續建立 DevSimulator 的依據。
func resolveSummary(pb *naasii.Naasii, req *devRequest) (catalog.Summary, error) {
	sums, err := pb.Summary()
	if err != nil {
		return catalog.Summary{}, err
	}
	if req.GID > 0 {
		gid := spec.GID(req.GID)
		for _, s := range sums {
			if s.GID == gid {
				return s, nil
			}
		}
		return catalog.Summary{}, errs.NewWarn("gid not found")
	}
	name := strings.TrimSpace(req.Game)
	if name != "" {
		for _, s := range sums {
			if strings.EqualFold(s.Name, name) {
				return s, nil
			}
		}
		if gid, err := strconv.ParseUint(name, 10, 64); err == nil {
			sg := spec.GID(gid)
			for _, s := range sums {
				if s.GID == sg {
					return s, nil
				}
			}
		}
		return catalog.Summary{}, errs.NewWarn("game not found")
	}
	return catalog.Summary{}, errs.NewWarn("game is required")
}

// resolveSeed 解析 seed（int64 string）。
//   - 空字串：自動生成 seed（crypto/rand），方便快速測試。
//   - 非空：必須為合法 int64。
func resolveSeed(seed string) (int64, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return randomSeed()
	}
	v, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return 0, errs.NewWarn("seed must be int64")
	}
	return v, nil
}

// randomSeed 使用 crypto/rand 產生 [0, MaxInt64) 的種子。
// 目的：避免 math/rand 的 deterministic 來源造成 seed 品質偏差（dev tool 也要可依賴）。
func randomSeed() (int64, error) {
	rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.NewWarn("seed generate failed")
	}
	return rnd.Int64(), nil
}

//go:embed favicon.svg
var faviconSVG string

// keep embed imported even if only used for directives
var _ embed.FS
