package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

// --- Matching ---

func TestMatch(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"", language.English},
		{"C", language.English},
		{"POSIX", language.English},
		{"en_US.UTF-8", language.English},
		{"fr_FR.UTF-8", language.English},
		{"zh_TW.UTF-8", TraditionalChinese},
		{"zh-TW", TraditionalChinese},
		{"zh_CN.UTF-8", SimplifiedChinese},
		{"ja_JP.UTF-8", language.Japanese},
		{"ja", language.Japanese},
		{"de_DE@euro", language.English},
	}
	for _, tt := range tests {
		if got := Match(tt.locale); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.locale, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"zh_TW.UTF-8", "zh-TW"},
		{"de_DE@euro", "de-DE"},
		{"C.UTF-8", ""},
		{"ja", "ja"},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- Messages ---

func TestEveryLanguageHasEveryKey(t *testing.T) {
	for key := range messages[language.English] {
		for _, tag := range Supported {
			if _, ok := messages[tag][key]; !ok {
				t.Errorf("%v is missing %s", tag, key)
			}
		}
	}
}

func TestSprintf(t *testing.T) {
	tests := []struct {
		locale string
		key    string
		args   []any
		want   string
	}{
		{"en", LogDetectBpm, []any{128}, "Detected BPM: 128"},
		{"en_US", LogResult, []any{"MASTER", "12+", 640}, "MASTER done: level 12+, 640 notes"},
		{"ja_JP.UTF-8", LogDetectBpm, []any{128}, "検出BPM：128"},
		{"zh_TW.UTF-8", LogSaving, []any{"out/Song"}, "正在儲存至 out/Song"},
		{"zh_CN.UTF-8", LogDone, nil, "所有谱面生成完成。"},
	}
	for _, tt := range tests {
		p := NewPrinter(tt.locale)
		if got := p.Sprintf(tt.key, tt.args...); got != tt.want {
			t.Errorf("%s %s = %q, want %q", tt.locale, tt.key, got, tt.want)
		}
	}
}

func TestPrinterLanguage(t *testing.T) {
	if got := NewPrinter("ja_JP").Language(); got != language.Japanese {
		t.Errorf("Language = %v, want ja", got)
	}
}
