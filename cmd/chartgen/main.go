package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/satindergrewal/simaigen/internal/audio"
	"github.com/satindergrewal/simaigen/internal/chart"
	"github.com/satindergrewal/simaigen/internal/config"
	"github.com/satindergrewal/simaigen/internal/i18n"
	"github.com/satindergrewal/simaigen/internal/maidata"
	"github.com/satindergrewal/simaigen/internal/studio"
	"github.com/satindergrewal/simaigen/internal/version"
)

func main() {
	cfg := config.Load()

	bpm := flag.Int("bpm", 0, "Whole-song BPM. 0 detects it from the audio.")
	levels := flag.String("levels", "all", "Comma-separated difficulties to generate, by name (EASY, Re:MASTER) or index 0-5.")
	levelBPMs := flag.String("level-bpm", "", "Per-difficulty BPM overrides, e.g. EASY=60,MASTER=180. Others follow the BPM ratios.")
	outDir := flag.String("o", cfg.OutputDir, "Directory the song folder is created in.")
	title := flag.String("title", "", "Song title. Defaults to the file name.")
	artist := flag.String("artist", "", "Song artist.")
	designer := flag.String("designer", cfg.Designer, "Chart designer written for every difficulty.")
	image := flag.String("image", "", "Background image copied to bg.jpg.")
	report := flag.String("report", "", "Print an analysis report to standard output: txt, json or yaml.")
	midiDir := flag.String("midi", "", "Also write one MIDI preview per difficulty into this directory.")
	play := flag.String("play", "", "Play the track with clicks on the notes of this difficulty after saving.")
	noSave := flag.Bool("n", false, "Do not write the song folder.")
	seed := flag.Uint64("seed", cfg.Seed, "Random seed. 0 picks one; the seed used is shown in the report.")
	lang := flag.String("lang", cfg.Lang, "Message language: en, zh-TW, zh-CN or ja.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg.Lang = *lang
	cfg.Designer = *designer
	msg := i18n.NewPrinter(cfg.Lang)
	fail := func(key string, err error) {
		fmt.Fprintln(os.Stderr, msg.Sprintf(key, err))
		os.Exit(1)
	}

	req := studio.Request{
		Path:   flag.Arg(0),
		Title:  *title,
		Artist: *artist,
		Image:  *image,
		BPM:    *bpm,
		Seed:   *seed,
	}
	var err error
	if req.Levels, err = parseLevels(*levels); err != nil {
		fail(i18n.MsgError, err)
	}
	if req.LevelBPMs, err = parseLevelBPMs(*levelBPMs); err != nil {
		fail(i18n.MsgError, err)
	}
	var playLevel chart.Level
	if *play != "" {
		if playLevel, err = chart.ParseLevel(*play); err != nil {
			fail(i18n.MsgError, err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dec := audio.NewDecoder(cfg.FFmpegBin, cfg.FFprobeBin)
	set, err := studio.New(dec, cfg).Build(ctx, req)
	if err != nil {
		fail(i18n.MsgError, err)
	}

	if *report != "" {
		if err := set.WriteReport(os.Stdout, *report); err != nil {
			fail(i18n.MsgError, err)
		}
	}

	if !*noSave {
		log.Print(msg.Sprintf(i18n.LogSaving, maidata.FolderFor(*outDir, set.Title)))
		if _, err := set.Save(*outDir); err != nil {
			fail(i18n.MsgSaveError, err)
		}
		fmt.Println(msg.Sprintf(i18n.MsgSuccess))
	}

	if *midiDir != "" {
		if err := writeMIDI(set, *midiDir); err != nil {
			fail(i18n.MsgError, err)
		}
	}

	if *play != "" {
		if err := audition(ctx, set, dec, playLevel, cfg.ClickGain); err != nil && ctx.Err() == nil {
			fail(i18n.MsgError, err)
		}
	}
}

func writeMIDI(set *studio.Set, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create midi directory: %w", err)
	}
	for _, res := range set.Charts {
		if res == nil {
			continue
		}
		f, err := os.Create(filepath.Join(dir, midiName(set.Title, res.Level)))
		if err != nil {
			return err
		}
		if err := set.WriteMIDI(f, res.Level); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func audition(ctx context.Context, set *studio.Set, dec *audio.Decoder, level chart.Level, gain float64) error {
	a, err := set.Audition(level, gain)
	if err != nil {
		return err
	}
	samples, err := audio.NewPipeline(dec).Render(a)
	if err != nil {
		return err
	}
	log.Printf("Playing %s %s (notes: %d)", a.Info.Title, a.Info.Level, a.Info.Notes)
	return audio.Play(ctx, samples)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "chartgen creates a simai song folder with generated charts for an audio file.\nUsage: %s [flags] track.mp3\n", os.Args[0])
	flag.PrintDefaults()
}
