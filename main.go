// ABOUTME: Entry point for the PracticeSharp player
// ABOUTME: Parses CLI flags, sets up logging and runs the application
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pzkpfw38t/practicesharp/internal/app"
	"github.com/pzkpfw38t/practicesharp/internal/version"
	"github.com/pzkpfw38t/practicesharp/pkg/audio"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/output"
	"github.com/pzkpfw38t/practicesharp/pkg/audio/stretch"
)

var (
	file        = flag.String("file", "", "Audio file to play (mp3, wav, aiff, ogg, flac, wma)")
	toneFreq    = flag.Float64("tone", 440, "Test tone frequency when no file is given")
	toneLength  = flag.Duration("tone-length", 30*time.Second, "Test tone duration")
	tempo       = flag.Float64("tempo", 1.0, "Playback speed (0.1-3.0)")
	pitch       = flag.Float64("pitch", 0, "Pitch shift in semitones (-12 to 12)")
	volume      = flag.Float64("volume", 1.0, "Volume (0-1)")
	channelMode = flag.String("channels", "both", "Input channels: both, left, right, dual-mono")
	loop        = flag.Bool("loop", false, "Loop between -start and -end")
	start       = flag.Duration("start", 0, "Start marker")
	end         = flag.Duration("end", 0, "End marker (0 = end of file)")
	cue         = flag.Duration("cue", 0, "Count-in before each pass from the start marker")
	profile     = flag.String("profile", "default", "Time stretch profile")
	outputName  = flag.String("output", "oto", "Audio output")
	sampleRate  = flag.Int("rate", audio.DefaultSampleRate, "Engine sample rate")
	logFile     = flag.String("log-file", "practicesharp.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "\nProfiles: %v\nOutputs: %v\n", stretch.ProfileNames(), output.Names())
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatal("Error opening log file", "err", err)
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	if !useTUI {
		// Streaming logs mode: log to both stdout and file
		w = io.MultiWriter(os.Stdout, f)
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "practicesharp",
		ReportTimestamp: true,
	})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)

	if !useTUI {
		logger.Info("Starting", "product", version.Product, "version", version.Version)
		logger.Info("TUI disabled - streaming logs")
	}

	player, err := app.New(app.Config{
		File:          *file,
		ToneFrequency: *toneFreq,
		ToneDuration:  *toneLength,
		Tempo:         *tempo,
		Pitch:         *pitch,
		Volume:        *volume,
		ChannelMode:   *channelMode,
		Loop:          *loop,
		Start:         *start,
		End:           *end,
		Cue:           *cue,
		Profile:       *profile,
		Output:        *outputName,
		SampleRate:    *sampleRate,
		UseTUI:        useTUI,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Handle shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := player.Run(ctx); err != nil {
		logger.Error("Player failed", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Info("Player stopped")
}
