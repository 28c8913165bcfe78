package policy_kits

import (
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/policy"
	"github.com/zintix-labs/naasii/spec"
)

// ============================================================
// ** 註冊 **
// ============================================================

const KeyTripleHunt spec.PolicyKey = "triple_hunt"

func init() {
	policy.RegisterWithExtend[*buf.NoExtend](
		KeyTripleHunt,
		buildTripleHunt,
		Kits,
	)
}

// ============================================================
// ** 策略介面 **
// ============================================================

type tripleHunt struct {
	counts []int
	held   []int
}

func buildTripleHunt(gs *spec.GameSetting) (policy.Policy, error) {
	return &tripleHunt{
		counts: make([]int, gs.Pool.Faces),
		held:   make([]int, gs.Pool.Faces),
	}, nil
}

// ============================================================
// ** 決策主邏輯 **
// ============================================================

func (p *tripleHunt) Key() spec.PolicyKey { return KeyTripleHunt }

// 兩組三條 (10+10+15) 比一組四條 (20) 值錢，
// 所以每面最多鎖三顆，多出來的放掉去湊下一組。
func (p *tripleHunt) Decide(_ *core.Core, ctx policy.Context, values []int) (uint16, bool) {
	policy.CountFaces(values, p.counts)
	for i := range p.held {
		p.held[i] = 0
	}

	var mask uint16
	for i, v := range values {
		f := v - 1
		if p.counts[f] >= 2 && p.held[f] < 3 {
			mask |= 1 << i
			p.held[f]++
		}
	}
	return mask, mask == policy.FullMask(ctx.DiceCount)
}
