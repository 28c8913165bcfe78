package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"gopkg.in/yaml.v3"

	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/presets"
	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/dice"
	"github.com/zintix-labs/naasii/sdk/turn"
	"github.com/zintix-labs/naasii/spec"
	"github.com/zintix-labs/naasii/store"
	"github.com/zintix-labs/naasii/viz"
)

// 主選單與回合選單的選項字串，InteractiveSelect 直接比對這些值。
const (
	menuNew      = "New Game"
	menuLoad     = "Load Game"
	menuSettings = "Settings"
	menuStats    = "Statistics"
	menuExit     = "Exit"

	actRoll       = "Roll"
	actKeep       = "Select dice to keep"
	actRelease    = "Release dice"
	actKeepAll    = "Keep all"
	actReleaseAll = "Release all"
	actScore      = "Score now"
)

func main() {
	// pterm 的 slog 橋接：引擎層錯誤跟 UI 輸出走同一套配色
	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)
	pterm.Print("\n")

	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Naa", pterm.FgCyan.ToStyle()),
		putils.LettersFromStringWithStyle("sii", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err != nil {
		logger.Error(err.Error())
	}
	pterm.Print(title)

	lab, err := presets.NewNaasii()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	for {
		pterm.Println()
		choice, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText("Main Menu").
			WithOptions([]string{menuNew, menuLoad, menuSettings, menuStats, menuExit}).Show()
		switch choice {
		case menuNew:
			newGame(lab)
		case menuLoad:
			loadGame(lab)
		case menuSettings:
			showSettings(lab)
		case menuStats:
			showStatistics(lab)
		case menuExit:
			pterm.Println("Thank you for playing...")
			pterm.Print(title)
			return
		}
	}
}

// ============================================================
// ** 開局 / 續局 **
// ============================================================

func newGame(lab *naasii.Naasii) {
	gs, err := pickPreset(lab, "Pick a table")
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}

	countStr, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("How many players?").
		WithOptions([]string{"2", "3", "4"}).Show()
	count, _ := strconv.Atoi(countStr)

	names := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		name, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(pterm.Sprintf("Player %d name", i)).
			WithDefaultValue(pterm.Sprintf("Player %d", i)).Show()
		names = append(names, name)
	}

	roundsStr, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText("Rounds to play").
		WithDefaultValue(strconv.Itoa(gs.Session.Rounds)).Show()
	if rounds, convErr := strconv.Atoi(strings.TrimSpace(roundsStr)); convErr == nil {
		gs.Session.Rounds = rounds
	}

	// 人數上下限、名字重複與回合範圍都由 Session 把關
	s, err := naasii.NewSession(gs, core.Default(), names...)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	runGame(s)
}

func loadGame(lab *naasii.Naasii) {
	gs, err := pickPreset(lab, "Which table was the game on?")
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	save, ok := pickSave(gs.Session.SaveDir)
	if !ok {
		return
	}
	s, err := naasii.RestoreSession(gs, core.Default(), save)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	pterm.Info.Printfln("Resuming at round %d / %d", s.Round(), s.MaxRounds())
	runGame(s)
}

// ============================================================
// ** 對局主迴圈 **
// ============================================================

func runGame(s *naasii.Session) {
	for !s.Finished() {
		pterm.DefaultSection.Printfln("Round %d / %d", s.Round(), s.MaxRounds())
		for _, p := range s.Players() {
			if err := playTurn(s, p); err != nil {
				pterm.Error.Println(err.Error())
				return
			}
		}
		renderStandings(s.Standings())
		path, err := s.EndRound()
		if err != nil {
			pterm.Error.Println("autosave failed: " + err.Error())
		} else if path != "" {
			pterm.Info.Printfln("autosaved: %s", path)
		}
	}

	showWinner(s)
	if s.Setting().Session.Visualization {
		if ok, _ := pterm.DefaultInteractiveConfirm.
			WithDefaultText("Show the game charts?").WithDefaultValue(true).Show(); ok {
			if err := viz.Show(s.Snapshot()); err != nil {
				pterm.Error.Println(err.Error())
			}
		}
	}
}

func playTurn(s *naasii.Session, p *naasii.Player) error {
	ctrl, err := s.StartTurn()
	if err != nil {
		return err
	}
	pool := ctrl.Pool()
	pterm.Println()
	pterm.Info.Printfln("%s's turn", pterm.LightCyan(p.Name))

	for {
		if ctrl.State() != turn.StateAwaitingFirstRoll {
			renderDice(pool)
		}
		choice, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText(pterm.Sprintf("Rolls left: %d", pool.RollsLeft())).
			WithOptions(turnOptions(ctrl)).Show()
		switch choice {
		case actRoll:
			if err := ctrl.Roll(); err != nil {
				pterm.Error.Println(err.Error())
			}
		case actKeep:
			line, _ := pterm.DefaultInteractiveTextInput.
				WithDefaultText("Dice to keep (e.g. 1 3 12, all, none)").Show()
			applySelection(ctrl, line, true)
		case actRelease:
			line, _ := pterm.DefaultInteractiveTextInput.
				WithDefaultText("Dice to release (e.g. 2 4, all)").Show()
			applySelection(ctrl, line, false)
		case actKeepAll:
			pool.LockAll()
		case actReleaseAll:
			pool.UnlockAll()
		case actScore:
			return scoreNow(s, p, pool)
		}
	}
}

// turnOptions 依狀態機給出合法動作：第一擲前只能擲，
// 額度用盡後唯一出路是結算。
func turnOptions(ctrl *turn.Controller) []string {
	if ctrl.State() == turn.StateAwaitingFirstRoll {
		return []string{actRoll}
	}
	if !ctrl.CanRoll() {
		return []string{actScore}
	}
	return []string{actRoll, actKeep, actRelease, actKeepAll, actReleaseAll, actScore}
}

// applySelection 套用一行選骰輸入。keep 為 true 走鎖定方向，
// false 走釋放方向（"all" 跟著方向解讀成全鎖/全放）。
func applySelection(ctrl *turn.Controller, line string, keep bool) {
	pool := ctrl.Pool()
	sel := naasii.ParseSelection(line, pool.DiceCount())
	switch sel.Action {
	case naasii.SelectAll:
		if keep {
			pool.LockAll()
		} else {
			pool.UnlockAll()
		}
	case naasii.SelectNone, naasii.SelectDone:
	case naasii.SelectKeep:
		if keep {
			ctrl.Lock(sel.Indices...)
		} else {
			ctrl.Unlock(sel.Indices...)
		}
	}
}

func scoreNow(s *naasii.Session, p *naasii.Player, pool *dice.Pool) error {
	values := pool.Values()
	showAnalysis(s.Analyze(values), values)
	entry, res, err := s.ScoreTurn(p)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("%s scored %d with %s (total %d)", p.Name, res.Score, res.Category, entry.Total)
	return nil
}

// ============================================================
// ** 設定 / 統計 **
// ============================================================

func showSettings(lab *naasii.Naasii) {
	gs, err := pickPreset(lab, "Which table?")
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	raw, err := yaml.Marshal(gs)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(2).WithTopPadding(1).WithBottomPadding(1)
	pterm.Println(pbox.WithTitle(pterm.LightCyan(gs.GameName)).WithTitleTopLeft().Sprint(strings.TrimRight(string(raw), "\n")))
}

func showStatistics(lab *naasii.Naasii) {
	gs, err := pickPreset(lab, "Which table's saves?")
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	save, ok := pickSave(gs.Session.SaveDir)
	if !ok {
		return
	}
	if err := viz.Show(save); err != nil {
		pterm.Error.Println(err.Error())
	}
}

// ============================================================
// ** 共用輸入 **
// ============================================================

func pickPreset(lab *naasii.Naasii, prompt string) (*spec.GameSetting, error) {
	entries := lab.All()
	options := make([]string, len(entries))
	for i, e := range entries {
		options[i] = e.Name
	}
	name, _ := pterm.DefaultInteractiveSelect.WithDefaultText(prompt).WithOptions(options).Show()
	ent, ok := lab.EntryByName(name)
	if !ok {
		return nil, errs.NewWarn("unknown table: " + name)
	}
	return lab.GameSettingById(ent.GID)
}

func pickSave(dir string) (store.GameSave, bool) {
	st, err := store.New(dir)
	if err != nil {
		pterm.Error.Println(err.Error())
		return store.GameSave{}, false
	}
	names, err := st.List()
	if err != nil {
		pterm.Error.Println(err.Error())
		return store.GameSave{}, false
	}
	if len(names) == 0 {
		pterm.Info.Println("no saves found in " + st.Dir())
		return store.GameSave{}, false
	}
	name, _ := pterm.DefaultInteractiveSelect.WithDefaultText("Pick a save").WithOptions(names).Show()
	save, err := st.Load(name)
	if err != nil {
		pterm.Error.Println(err.Error())
		return store.GameSave{}, false
	}
	return save, true
}
