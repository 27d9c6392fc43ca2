// parlons is a terminal language-drill player: pick a category, hear each
// prompt, answer out loud, then hear the answer.
//
// Usage:
//
//	parlons [-config file] [-verbose] [-quiet] [-offline] [-voice] [-engine name]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/hammamikhairi/parlons/internal/config"
	"github.com/hammamikhairi/parlons/internal/display"
	"github.com/hammamikhairi/parlons/internal/domain"
	"github.com/hammamikhairi/parlons/internal/eventloop"
	"github.com/hammamikhairi/parlons/internal/library"
	"github.com/hammamikhairi/parlons/internal/localstore"
	"github.com/hammamikhairi/parlons/internal/logger"
	"github.com/hammamikhairi/parlons/internal/rehearsal"
	"github.com/hammamikhairi/parlons/internal/remote"
	"github.com/hammamikhairi/parlons/internal/speech"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "", "file to write logs to (overrides log.file; \"stderr\" for console)")
	offline := flag.Bool("offline", false, "do not contact the category server")
	voice := flag.Bool("voice", false, "enable spoken commands via local Whisper STT")
	engineName := flag.String("engine", "", "speech engine: auto, azure, say, espeak or silent")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *offline {
		cfg.Client.Offline = true
	}
	if *voice {
		cfg.Voice.Enabled = true
	}
	if *engineName != "" {
		cfg.Speech.Engine = *engineName
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logLevel, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Logs go to a file by default so the UI stays clean.
	if cfg.Log.File == "" {
		cfg.Log.File = ".parlons-logs/parlons.log"
	}
	logOut, closeLog := openLog(cfg.Log.File)
	defer closeLog()

	// Route the standard log package (used by the whisper transcriber)
	// to the same place.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := eventloop.New(log)
	loop.Start(ctx)
	defer loop.Stop()

	// Categories: server first, local copy as fallback.
	local, err := localstore.Open(cfg.Client.LocalDB, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer local.Close()

	var store domain.CategoryStore
	if !cfg.Client.Offline {
		store = remote.New(cfg.Client.ServerURL, log)
	}
	lib := library.New(store, local, log)
	lib.Load(ctx)
	if lib.Offline() {
		log.Info("running offline with the local copy")
	}

	// Speech.
	engine := buildEngine(cfg.Speech, log)
	driver := speech.NewDriver(engine, loop, log,
		speech.WithPreferQuality(cfg.Speech.PreferQuality...),
		speech.WithDefaultLanguage(cfg.Speech.DrillLanguage),
	)
	driver.Start(ctx)

	// The observer runs on the loop; ui is assigned before the first
	// state change, which only happens in response to UI input.
	var ui *display.UI
	seq := rehearsal.New(nil, driver, loop, log,
		rehearsal.WithDelays(cfg.Rehearsal.PromptPause, cfg.Rehearsal.AnswerPause, cfg.Rehearsal.NextPause),
		rehearsal.WithLanguage(cfg.Speech.DrillLanguage),
		rehearsal.WithRateBounds(cfg.Speech.MinRate, cfg.Speech.MaxRate),
		rehearsal.WithRate(cfg.Speech.Rate),
		rehearsal.WithObserver(func(st rehearsal.State) { ui.Notify(st) }),
	)
	ui = display.NewUI(lib, seq, loop, log,
		display.WithRateStep(cfg.Speech.RateStep),
	)

	if cfg.Voice.Enabled {
		if err := startEar(ctx, cfg.Voice, driver, loop, ui, log); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	// Bubble Tea owns the terminal. Blocks until quit.
	if err := ui.Run(ctx); err != nil {
		log.Error("display: %v", err)
	}

	loop.Do(seq.Close)
	cancel()
}

// startEar wires the optional voice listener: it stays quiet while the
// driver speaks, silences the driver when the wake word is heard and
// forwards commands to the UI.
func startEar(ctx context.Context, cfg config.Voice, driver *speech.Driver, loop *eventloop.Loop, ui *display.UI, log *logger.Logger) error {
	if _, err := os.Stat(cfg.WhisperModel); err != nil {
		return fmt.Errorf("whisper model not found at %s", cfg.WhisperModel)
	}

	opts := []speech.EarOption{
		speech.WithRecordDuration(time.Duration(cfg.RecordSecs) * time.Second),
		speech.WithBusy(driver.IsSpeaking),
		speech.WithOnWake(func() { loop.Post(driver.Cancel) }),
	}
	if len(cfg.WakeWords) > 0 {
		opts = append(opts, speech.WithWakeWords(cfg.WakeWords...))
	}
	ear := speech.NewEar(cfg.WhisperBin, cfg.WhisperModel, log, opts...)
	go ear.Run(ctx)

	go func() {
		ui.WaitReady()
		for {
			select {
			case <-ctx.Done():
				return
			case text := <-ear.C():
				ui.Voice(text)
			}
		}
	}()

	log.Info("voice input enabled (bin=%s, model=%s, chunk=%ds)", cfg.WhisperBin, cfg.WhisperModel, cfg.RecordSecs)
	return nil
}

// openLog opens path for appending, creating its directory. "stderr" or
// a failure to open falls back to stderr.
func openLog(path string) (io.Writer, func()) {
	if path == "stderr" {
		return os.Stderr, func() {}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return os.Stderr, func() {}
	}
	return f, func() { f.Close() }
}
