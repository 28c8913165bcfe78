package policy_kits

import "github.com/zintix-labs/naasii/sdk/policy"

// Kits 收束本套件所有實驗性 kit 的註冊，
// 由 naasii.Policies 與 sdk/policy 的內建策略合併。
var Kits = policy.NewRegistry()
