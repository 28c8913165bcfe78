package buf

import "github.com/zintix-labs/naasii/spec"

// TurnRequest 是一回合的內部請求格式。
//
// wire 層（dto.TurnRequest）解碼 HTTP 請求並 Parse 成這個結構後，
// 才會進入 Table/Runtime；到這裡快照已是原始位元組，不再有 Base64URL。
type TurnRequest struct {
	UID      string         // 唯一識別碼
	GameName string         // 要玩的遊戲
	GameId   spec.GID       // 遊戲桌編號
	Policy   spec.PolicyKey // 本回合的留骰策略（留空走桌面設定）
	Round    int            // 第幾回合（帳務對帳用，引擎不解讀）

	StartState *StartState // nil=新回合；帶快照=回放/續玩
}

// StartState 是由業務端帶入的「引擎可恢復狀態」解碼後的內部格式。
//
// 引擎維持純計算器（stateless / deterministic）：可回放所需的狀態由
// 業務端保存，透過這裡回送。
type StartState struct {
	// StartCoreSnap：RNG Core 的起始快照。
	//   - 空：新回合，引擎自行延續內部 RNG 流水。
	//   - 有值：回放/續玩，引擎先 restore 再擲，結束後恢復原流水。
	StartCoreSnap []byte
}
