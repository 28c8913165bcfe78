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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : 錯誤分級，讓最上層（HTTP handler / TablePool / CLI）能依嚴重度決定處置。
//
//   - Fatal: 狀態不可信，必須中止或淘汰（例如桌台內部不變量被破壞）
//   - Warn : 呼叫端問題，可預期且可回報（例如 no rolls remaining、invalid dice count）
//   - Log  : 僅記錄，不影響流程
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

// ErrLv 回傳分級的字串表示；未知分級回傳空字串。
func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// E 是整個 repo 統一的錯誤型別。
//
// Message 為主訊息（規則錯誤的訊息文字即是對外契約，例如 "no rolls remaining"）；
// Extra 為呼叫端追加的上下文；Cause 串接下層錯誤；ErrLv 為分級。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

// Error 實作 error 介面。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 以指定分級建立錯誤。
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 以新訊息包裝底層錯誤。
//
// ErrLevel 規則：
//   - 若 cause 鏈上已有 *E，沿用其 ErrLv（包裝不升級也不降級）。
//   - 否則（標準庫或三方錯誤）一律視為 Fatal。
//
// 若錯誤是可預期且可處理的情境，請直接用 New / NewWarn 指定分級，不要 Wrap。
func Wrap(cause error, msg string) *E {
	r := New(levelOf(cause), msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 與 Wrap 相同，另附加上下文字串。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := NewWithExtra(levelOf(cause), msg, extra)
	r.Cause = cause
	return r
}

// AsErr 往錯誤鏈找出第一個 *E。
func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// LevelOf 回傳錯誤鏈上的分級；非 *E 的錯誤視為 Fatal，nil 為 None。
func LevelOf(err error) ErrLevel {
	if err == nil {
		return None
	}
	return levelOf(err)
}

// IsFatal 回報錯誤是否代表「狀態不可信」。非 *E 的錯誤一律視為 Fatal。
func IsFatal(err error) bool {
	return LevelOf(err) == Fatal
}

func levelOf(cause error) ErrLevel {
	var e *E
	if errors.As(cause, &e) {
		return e.ErrLv
	}
	return Fatal
}
