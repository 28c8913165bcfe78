package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/presets"
	"github.com/zintix-labs/naasii/spec"
)

// replay 重播器：同 seed 或同核心快照必然重現同一條骰序，
// 逐回合把擲骰與鎖骰軌跡攤開來看。
//
//	go run ./cmd/replay -game 1 -seed 42 -turns 3
//	go run ./cmd/replay -game 1 -snap <after_b64u> -turns 3

var (
	rgid   spec.GID
	seed   int64
	snap   string
	turns  int
	asJSON bool
)

func main() {
	flag.Var(gidFlag{&rgid}, "game", "target game id")
	flag.Int64Var(&seed, "seed", 1, "int64 seed for the table core")
	flag.StringVar(&snap, "snap", "", "base64url core snapshot to resume from (overrides -seed stream position)")
	flag.IntVar(&turns, "turns", 10, "turns to replay")
	flag.BoolVar(&asJSON, "json", false, "dump the full report as JSON instead of the trace")
	flag.Parse()

	lab, err := presets.NewNaasii()
	if err != nil {
		log.Fatal(err)
	}
	dev, err := lab.NewDevSimulator(rgid, seed)
	if err != nil {
		log.Fatal(err)
	}

	var rep naasii.DevTurnReport
	if snap != "" {
		rep, err = dev.RestoreTurns(snap, turns)
	} else {
		rep, err = dev.Turns(turns)
	}
	if err != nil {
		log.Fatal(err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Fatal(err)
		}
		return
	}
	trace(rep)
}

func trace(rep naasii.DevTurnReport) {
	for i, r := range rep.Results {
		fmt.Printf("#%04d policy=%s score=%d category=%s\n", i+1, r.Policy, r.Score, r.Category)
		for _, roll := range r.Rolls {
			fmt.Printf("  roll %d: %v", roll.RollId, roll.Values)
			if roll.Lock != 0 {
				fmt.Printf(" keep %s", keptDice(roll.Lock))
			}
			fmt.Println()
		}
	}
	fmt.Printf("turns=%d total=%d mean=%.2f best=%d zero=%d\n",
		rep.Turns, rep.TotalScore, rep.MeanScore, rep.BestScore, rep.ZeroTurns)
	fmt.Println("before:", rep.Before)
	fmt.Println("after :", rep.After)
}

// keptDice 把鎖定遮罩轉成 1-based 骰子編號清單（對齊互動介面的慣例）。
func keptDice(mask uint16) string {
	out := "{"
	for i := 0; mask != 0; i++ {
		if mask&1 == 1 {
			if len(out) > 1 {
				out += ","
			}
			out += strconv.Itoa(i + 1)
		}
		mask >>= 1
	}
	return out + "}"
}

type gidFlag struct{ p *spec.GID }

func (f gidFlag) String() string { return fmt.Sprint(uint(*f.p)) }
func (f gidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.GID(uint(u))
	return nil
}
