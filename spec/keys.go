package spec

import "strconv"

// GID 是設定目錄（catalog）中的桌台設定編號，對外 API 以此定位設定。
type GID uint

func (g GID) String() string {
	return strconv.FormatUint(uint64(g), 10)
}

// PolicyKey 是持骰策略（hold policy）的註冊鍵。
// 內建策略在 sdk/policy，實驗性 kit 由 presets/policy_kits 以 init() 註冊。
type PolicyKey string
