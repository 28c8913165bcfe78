package buf

import (
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

// TurnResult 保存一回合的完整軌跡：每次擲骰後的盤面快照、當時的鎖定遮罩
// 與最終計分。熱路徑上由 Table 重用同一份實體，擲骰快照以扁平 []uint8
// 儲存（stride = DiceCount），回合間 Reset 保留容量不重新配置。
type TurnResult struct {
	GameName string         // 遊戲名稱
	GameID   spec.GID       // 遊戲Id
	Policy   spec.PolicyKey // 走哪個重擲策略

	DiceCount int      // 骰數（快照 stride）
	RollCount int      // 已落地的擲骰次數
	Rolls     []uint8  // 扁平快照：第 i 次擲骰後的所有骰面
	LockMasks []uint16 // 第 i 次擲骰後策略敲定的鎖定遮罩

	Score     int            // 回合得分
	Category  score.Category // 牌型
	Counts    []int          // 每面顆數（計分當下）
	IsTurnEnd bool           // 回合結束旗標

	State  *TurnState // 回合前後的 Core 快照
	Extend any        // 策略附掛資料（Snapshot 後的副本）
}

// TurnState 保存回合前後的 RNG Core 快照（原始位元組）。
// 回放/續玩/審計都以此為準，對外輸出時由 dto 轉 Base64URL。
type TurnState struct {
	StartCoreSnap []byte // 回合起點快照
	AfterCoreSnap []byte // 回合結束快照
}

// NewTurnResult 建立指定桌的 TurnResult 實體，依設定預配快照容量。
func NewTurnResult(gs *spec.GameSetting) *TurnResult {
	dc := gs.Pool.DiceCount
	rolls := gs.Pool.RollsPerTurn
	return &TurnResult{
		GameName:  gs.GameName,
		GameID:    gs.GameID,
		DiceCount: dc,
		Rolls:     make([]uint8, 0, dc*rolls),
		LockMasks: make([]uint16, 0, rolls),
		Counts:    make([]int, 0, gs.Pool.Faces),
		State:     &TurnState{},
	}
}

// AppendRoll 落地一次擲骰：快照當前所有骰面與策略敲定的鎖定遮罩。
func (t *TurnResult) AppendRoll(values []int, lockMask uint16) {
	if t.IsTurnEnd {
		panic("turn is already end, but still send new roll")
	}
	for _, v := range values {
		t.Rolls = append(t.Rolls, uint8(v))
	}
	t.LockMasks = append(t.LockMasks, lockMask)
	t.RollCount++
}

// SetScore 落地回合計分結果。
func (t *TurnResult) SetScore(res score.Result) {
	if t.IsTurnEnd {
		panic("turn is already end, but still send score")
	}
	t.Score = res.Score
	t.Category = res.Category
	t.Counts = append(t.Counts[:0], res.Counts...)
}

// SetExtend 附掛策略自訂資料，內部只保存 Snapshot 副本。
func (t *TurnResult) SetExtend(ext ExtendResult) {
	if ext == nil {
		return
	}
	t.Extend = ext.Snapshot()
}

// End : 結束回合
func (t *TurnResult) End() {
	t.IsTurnEnd = true
}

// Reset 重置累積資料，保留已配置的內部切片容量。
func (t *TurnResult) Reset() {
	t.Policy = ""
	t.RollCount = 0
	t.Rolls = t.Rolls[:0]
	t.LockMasks = t.LockMasks[:0]
	t.Score = 0
	t.Category = ""
	t.Counts = t.Counts[:0]
	t.IsTurnEnd = false
	t.State.StartCoreSnap = nil
	t.State.AfterCoreSnap = nil
	t.Extend = nil
}

// Roll 回傳第 i 次擲骰後的盤面快照（內部儲存的視圖，唯讀）。
// i 超界回傳 nil。
func (t *TurnResult) Roll(i int) []uint8 {
	if i < 0 || i >= t.RollCount {
		return nil
	}
	return t.Rolls[i*t.DiceCount : (i+1)*t.DiceCount]
}

// LastRoll 回傳最後一次擲骰的盤面快照，尚未擲骰回傳 nil。
func (t *TurnResult) LastRoll() []uint8 {
	return t.Roll(t.RollCount - 1)
}

// Mask 回傳第 i 次擲骰後敲定的鎖定遮罩，i 超界回傳 0。
func (t *TurnResult) Mask(i int) uint16 {
	if i < 0 || i >= len(t.LockMasks) {
		return 0
	}
	return t.LockMasks[i]
}

// Game

// GameResult 保存一場完整對局（rounds 個回合）的逐回合摘要。
// 與 TurnResult 一樣由呼叫端重用，AppendTurn 只複製必要欄位不持有指標。
type GameResult struct {
	GameName string
	GameID   spec.GID
	Policy   spec.PolicyKey

	Rounds     int              // 已落地的回合數
	TurnScores []int            // 逐回合得分
	Categories []score.Category // 逐回合牌型
	RollsUsed  []uint8          // 逐回合實際擲骰次數
	TotalScore int              // 總分
	bestTurn   int              // 最高分回合索引，尚無回合時為 -1
	IsGameEnd  bool
}

// NewGameResult 建立指定桌的 GameResult 實體，依設定預配回合容量。
func NewGameResult(gs *spec.GameSetting) *GameResult {
	rounds := gs.Session.Rounds
	return &GameResult{
		GameName:   gs.GameName,
		GameID:     gs.GameID,
		TurnScores: make([]int, 0, rounds),
		Categories: make([]score.Category, 0, rounds),
		RollsUsed:  make([]uint8, 0, rounds),
		bestTurn:   -1,
	}
}

// AppendTurn 把一個回合的摘要累積進對局。
func (g *GameResult) AppendTurn(t *TurnResult) {
	if g.IsGameEnd {
		panic("game is already end, but still send new turn")
	}
	if g.bestTurn < 0 || t.Score > g.TurnScores[g.bestTurn] {
		g.bestTurn = g.Rounds
	}
	g.TurnScores = append(g.TurnScores, t.Score)
	g.Categories = append(g.Categories, t.Category)
	g.RollsUsed = append(g.RollsUsed, uint8(t.RollCount))
	g.TotalScore += t.Score
	g.Rounds++
}

// BestTurn 回傳最高分回合的索引與得分，尚無回合時回傳 (-1, 0)。
func (g *GameResult) BestTurn() (int, int) {
	if g.bestTurn < 0 {
		return -1, 0
	}
	return g.bestTurn, g.TurnScores[g.bestTurn]
}

// End : 結束對局
func (g *GameResult) End() {
	g.IsGameEnd = true
}

// Reset 重置累積資料，保留已配置的內部切片容量。
func (g *GameResult) Reset() {
	g.Policy = ""
	g.Rounds = 0
	g.TurnScores = g.TurnScores[:0]
	g.Categories = g.Categories[:0]
	g.RollsUsed = g.RollsUsed[:0]
	g.TotalScore = 0
	g.bestTurn = -1
	g.IsGameEnd = false
}

// ExtendResult 定義策略附掛資料必須具備的行為。
//
// 策略若要在結果上附掛自訂欄位（例如追順策略回報缺面清單），
// 必須同時實作 Reset 與 Snapshot，確保 Sim/Server 兩種模式都正確運作。
type ExtendResult interface {
	// Reset 需要做到「完全清空到初始狀態」：
	//	- 由策略自行決定要不要重用記憶體，以避免 GC 負擔。
	//	- 保證下一次 Snapshot 不會帶著上一回合遺留狀態。
	Reset()
	// Snapshot 建立快照：
	//  - 呼叫端一律只呼叫 Snapshot，不需要知道 isSim 的存在。
	//  - 策略實作者可以在內部判斷 isSim 以回傳 nil (觸發 JSON omitempty)，
	//    省去深拷貝 CPU 成本與流量。
	//  - 回傳型別使用 any 是為了相容 JSON 序列化，避免強轉型。
	Snapshot() any
}

// NoExtend 是「無附加資料」的佔位型別：
// - 允許策略以最小成本滿足 ExtendResult，避免到處 nil 判斷。
// - Reset/Snapshot 皆為空操作，行為可預期且 thread-safe。
type NoExtend struct{}

// Reset 是 NoExtend 的空實作，保留方法是為了滿足介面契約。
func (e *NoExtend) Reset() {}

// Snapshot 永遠回傳 nil，JSON 輸出時對應欄位會被完全省略 (omitempty)。
func (e *NoExtend) Snapshot() any {
	return nil
}
