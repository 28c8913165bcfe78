package main

import (
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/presets/policy_kits"
	"github.com/zintix-labs/naasii/presets/preset_configs"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/policy"
	"github.com/zintix-labs/naasii/spec"
	"github.com/zintix-labs/naasii/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name      string
	id        spec.GID
	policy    string
	workers   int
	turns     int
	games     int
	seed      int64
	render    string
	out       string
	pprofmode string
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

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.Var(gidFlag{&cfg.id}, "game", "target game id")
	flag.StringVar(&cfg.policy, "policy", "", "override hold policy key (default: the game's sim policy)")
	flag.IntVar(&cfg.workers, "workers", 1, "number of workers")
	flag.IntVar(&cfg.turns, "turns", 10000000, "turns to simulate")
	flag.IntVar(&cfg.games, "games", 0, "whole games to simulate (0 = per-turn mode)")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.render, "render", "", "report format: '', json, yaml")
	flag.StringVar(&cfg.out, "out", "", "report output path ('' = stdout)")
	flag.StringVar(&cfg.pprofmode, "pprof", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() {
	cfg.valid() // 基本檢查

	lab, err := naasii.NewAuto(
		core.Default(),
		naasii.Configs(preset_configs.FS),
		naasii.Policies(policy.Builtins(), policy_kits.Kits),
	)
	if err != nil {
		log.Fatal(err)
	}
	gs, err := lab.GameSettingById(cfg.id)
	if err != nil {
		log.Fatal(err)
	}
	s, err := buildSimulator(lab, gs)
	if err != nil {
		log.Fatal(err)
	}
	cfg.name = gs.GameName
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	if cfg.games == 0 { // 純回合模擬
		if cfg.workers == 1 { // 單線程
			p.Printf("%s[GAME:%s] [POLICY:%s] [TURNS:%d]%s\n", green, cfg.name, gs.Sim.Policy, cfg.turns, reset)
			st, used, _ := s.Sim(cfg.turns, true)
			render(st, used)
		} else {
			p.Printf("%s[WORKERS:%d] [GAME:%s] [POLICY:%s] [TURNS:%d]%s\n", green, cfg.workers, cfg.name, gs.Sim.Policy, cfg.workers*cfg.turns, reset)
			st, used, _ := s.SimMP(cfg.turns, cfg.workers, true) // 併發
			render(st, used)
		}
	} else { // 模擬整局對戰
		p.Printf("%s[WORKERS:%d] [GAME:%s] [POLICY:%s] [PLAYERS:%d ROUNDS:%d GAMES:%d]%s\n", green, cfg.workers, cfg.name, gs.Sim.Policy, gs.Sim.GamePlayers, gs.Sim.GameRounds, cfg.games, reset)
		st, est, used, _ := s.SimGames(cfg.workers, cfg.games, true)
		render(st, used)
		est.Out()
	}
}

// -policy 蓋掉設定檔的預設策略時走 ByJSON 路線，
// 讓 registry 的存在性檢查自然把打錯的 key 擋下來。
func buildSimulator(lab *naasii.Naasii, gs *spec.GameSetting) (*naasii.Simulator, error) {
	if cfg.policy == "" {
		return lab.NewSimulatorWithSeed(cfg.id, cfg.seed)
	}
	gs.Sim.Policy = spec.PolicyKey(cfg.policy)
	raw, err := json.Marshal(gs)
	if err != nil {
		return nil, err
	}
	return lab.NewSimulatorByJSON(raw, cfg.seed)
}

func render(st *stats.StatReport, used time.Duration) {
	if cfg.render == "" {
		st.StdOut(used)
		return
	}
	var rep stats.StatReportRender
	switch cfg.render {
	case "json":
		rep = &stats.JsonStatReportRender{}
	case "yaml":
		rep = &stats.YAMLStatReportRender{}
	}

	w := os.Stdout
	if cfg.out != "" {
		f, err := os.Create(cfg.out)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		w = f
	}
	if err := st.WriteWith(w, rep); err != nil {
		log.Fatal(err)
	}
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.workers < 1 {
		log.Fatal("value err : workers must > 0")
	}

	// 局數檢查
	if cfg.games < 0 {
		log.Fatal("value err : games must >= 0")
	}
	// 局數太多 resize
	if cfg.games > 100000 {
		p.Printf("too much games: %d resized to 100k games\n", cfg.games)
		cfg.games = 100000
	}

	// 回合數檢查
	if cfg.games == 0 && cfg.turns < 1 {
		log.Fatal("value err : turns must > 0")
	}

	// 報表格式檢查
	switch cfg.render {
	case "", "json", "yaml":
	default:
		log.Fatal("value err : render must be '', json or yaml")
	}
}
