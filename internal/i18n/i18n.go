// Package i18n holds the localized progress and result messages printed by
// the command-line shell.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	LogLoaded     = "LogLoaded"
	LogStart      = "LogStart"
	LogDetectBpm  = "LogDetectBpm"
	LogManualBpm  = "LogManualBpm"
	LogGenerating = "LogGenerating"
	LogResult     = "LogResult"
	LogDone       = "LogDone"
	LogSaving     = "LogSaving"
	MsgSuccess    = "MsgSuccess"
	MsgSaveError  = "MsgSaveError"
	MsgError      = "MsgError"
)

var (
	TraditionalChinese = language.MustParse("zh-TW")
	SimplifiedChinese  = language.MustParse("zh-CN")
)

// Supported lists the message languages. The first entry is the fallback.
var Supported = []language.Tag{language.English, TraditionalChinese, SimplifiedChinese, language.Japanese}

var messages = map[language.Tag]map[string]string{
	language.English: {
		LogLoaded:     "Loaded: %s",
		LogStart:      "Analyzing audio...",
		LogDetectBpm:  "Detected BPM: %d",
		LogManualBpm:  "Using manual BPM: %d",
		LogGenerating: "Generating %s (BPM %d)...",
		LogResult:     "%s done: level %s, %d notes",
		LogDone:       "All charts generated.",
		LogSaving:     "Saving to %s",
		MsgSuccess:    "Song folder saved.",
		MsgSaveError:  "Save failed: %v",
		MsgError:      "Error: %v",
	},
	TraditionalChinese: {
		LogLoaded:     "已載入：%s",
		LogStart:      "正在分析音訊...",
		LogDetectBpm:  "偵測到 BPM：%d",
		LogManualBpm:  "使用手動 BPM：%d",
		LogGenerating: "正在生成 %s（BPM %d）...",
		LogResult:     "%s 完成：等級 %s，%d 個音符",
		LogDone:       "所有譜面生成完成。",
		LogSaving:     "正在儲存至 %s",
		MsgSuccess:    "歌曲資料夾已儲存。",
		MsgSaveError:  "儲存失敗：%v",
		MsgError:      "錯誤：%v",
	},
	SimplifiedChinese: {
		LogLoaded:     "已加载：%s",
		LogStart:      "正在分析音频...",
		LogDetectBpm:  "检测到 BPM：%d",
		LogManualBpm:  "使用手动 BPM：%d",
		LogGenerating: "正在生成 %s（BPM %d）...",
		LogResult:     "%s 完成：等级 %s，%d 个音符",
		LogDone:       "所有谱面生成完成。",
		LogSaving:     "正在保存到 %s",
		MsgSuccess:    "歌曲文件夹已保存。",
		MsgSaveError:  "保存失败：%v",
		MsgError:      "错误：%v",
	},
	language.Japanese: {
		LogLoaded:     "読み込み完了：%s",
		LogStart:      "音声を解析中...",
		LogDetectBpm:  "検出BPM：%d",
		LogManualBpm:  "手動BPM：%d",
		LogGenerating: "%s を生成中（BPM %d）...",
		LogResult:     "%s 完了：レベル %s、ノーツ数 %d",
		LogDone:       "すべての譜面を生成しました。",
		LogSaving:     "%s に保存中",
		MsgSuccess:    "楽曲フォルダを保存しました。",
		MsgSaveError:  "保存に失敗しました：%v",
		MsgError:      "エラー：%v",
	},
}

var (
	cat     = newCatalog()
	matcher = language.NewMatcher(Supported)
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Match picks the supported language for a locale string. POSIX forms such
// as "zh_TW.UTF-8" are accepted; anything unknown gets English.
func Match(locale string) language.Tag {
	_, i := language.MatchStrings(matcher, normalize(locale))
	return Supported[i]
}

func normalize(locale string) string {
	s, _, _ := strings.Cut(locale, ".")
	s, _, _ = strings.Cut(s, "@")
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}

// Printer formats messages in one language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// NewPrinter returns a Printer for the language best matching locale.
func NewPrinter(locale string) *Printer {
	tag := Match(locale)
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Language returns the matched language.
func (p *Printer) Language() language.Tag { return p.tag }

// Sprintf formats the message stored under key.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}
