// Package maidata renders and saves simai song folders.
package maidata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/satindergrewal/simaigen/internal/chart"
)

// FallbackTitle names the song folder when the title has no usable characters.
const FallbackTitle = "AutoSimai_Song"

// File names inside a song folder.
const (
	TrackFile   = "track.mp3"
	ImageFile   = "bg.jpg"
	MaidataFile = "maidata.txt"
)

// Entry is one difficulty slot of a song.
type Entry struct {
	Enabled bool
	Rating  string // level estimate, e.g. "12+"
	Chart   string // chart transcript
}

// Song is everything maidata.txt records.
type Song struct {
	Title    string
	Artist   string
	Designer string
	BPM      int
	Levels   [chart.NumLevels]Entry
}

const maidataTemplate = `&title={{ .Title | replace "\n" " " }}
&artist={{ .Artist | replace "\n" " " }}
&wholebpm={{ .BPM }}
&first=0
&pv_nome=` + ImageFile + `

{{ range $i, $l := .Levels }}&lv_{{ add1 $i }}={{ if $l.Enabled }}{{ $l.Rating | default "0" }}{{ else }}0{{ end }}
{{ end }}
{{ range $i, $l := .Levels }}&des_{{ add1 $i }}={{ $.Designer | replace "\n" " " }}
{{ end }}
{{ range $i, $l := .Levels }}{{ if $l.Enabled }}&inote_{{ add1 $i }}=
{{ $l.Chart }}
{{ end }}{{ end }}`

var tmpl = template.Must(template.New("maidata").Funcs(sprig.TxtFuncMap()).Parse(maidataTemplate))

// Render returns the maidata.txt content for s. Disabled levels keep their
// &lv_ and &des_ lines, with a level of 0, but get no &inote_ block.
func Render(s Song) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, s); err != nil {
		return "", fmt.Errorf("render maidata: %w", err)
	}
	return b.String(), nil
}

// SanitizeTitle replaces characters that are not allowed in file names
// with '_'. Trailing dots and spaces are dropped so the result is always a
// single path element below the output root.
func SanitizeTitle(title string) string {
	safe := strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, title)
	safe = strings.TrimRight(safe, ". ")
	if strings.Trim(safe, ". ") == "" {
		return FallbackTitle
	}
	return safe
}

// FolderFor returns the song folder path under root.
func FolderFor(root, title string) string {
	return filepath.Join(root, SanitizeTitle(title))
}

// WriteFolder creates the song folder under root and fills it with the
// track, the optional background image and maidata.txt. It returns the
// folder path.
func WriteFolder(root string, s Song, trackPath, imagePath string) (string, error) {
	content, err := Render(s)
	if err != nil {
		return "", err
	}
	dir := FolderFor(root, s.Title)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create song folder: %w", err)
	}
	if err := copyFile(trackPath, filepath.Join(dir, TrackFile)); err != nil {
		return "", err
	}
	if imagePath != "" {
		if _, err := os.Stat(imagePath); err == nil {
			if err := copyFile(imagePath, filepath.Join(dir, ImageFile)); err != nil {
				return "", err
			}
		}
	}
	if err := os.WriteFile(filepath.Join(dir, MaidataFile), []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", MaidataFile, err)
	}
	return dir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
