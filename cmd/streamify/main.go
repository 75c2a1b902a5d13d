package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/streamify/streamify/internal/audio"
	"github.com/streamify/streamify/internal/cache"
	"github.com/streamify/streamify/internal/config"
	"github.com/streamify/streamify/internal/engine"
	"github.com/streamify/streamify/internal/router"
	"github.com/streamify/streamify/internal/song"
	"github.com/streamify/streamify/internal/source"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	debugFlag   = flag.Bool("debug", false, "Enable debug logging")
	playFlag    = flag.String("play", "", "Search for a query and start playing the first result")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s v%s - %s\n\n", config.AppName, config.AppVersion, config.AppDescription)
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()

		configPath, err := config.GetConfigPath()
		if err == nil {
			if _, statErr := os.Stat(configPath); statErr == nil {
				fmt.Fprintf(os.Stderr, "\nConfig file: %s\n", configPath)
			} else {
				fmt.Fprintf(os.Stderr, "\nConfig file will be created on first use.\n")
			}
		}
	}
}

func setupLogging() {
	if *debugFlag {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)

		cacheDir, err := cache.GetCacheDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not get cache dir: %v\n", err)
			cacheDir = os.TempDir()
		}
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create log dir: %v\n", err)
		}
		logPath := filepath.Join(cacheDir, "debug.log")
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create log file: %v\n", err)
			logFile = os.Stderr
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, TimeFormat: "15:04:05"})
		fmt.Printf("Debug log: %s\n", logPath)
		log.Info().Msgf("Starting %s v%s (debug mode)", config.AppName, config.AppVersion)
		return
	}

	// Keep the prompt clean: only errors, straight to stderr.
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		fmt.Println(config.AppDescription)
		os.Exit(0)
	}

	setupLogging()

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Using default configuration")
	}

	audioCache, err := cache.NewCache()
	if err != nil {
		log.Warn().Err(err).Msg("Audio cache unavailable, continuing without it")
		audioCache = nil
	} else if err := audioCache.CleanExpired(); err != nil {
		log.Debug().Err(err).Msg("Cache cleanup failed")
	}

	backendURL := cfg.BackendURL
	if backendURL == "" {
		backendURL = source.DefaultBackendURL
	}

	rt := router.New(
		source.NewPiped(),
		source.NewInvidious(),
		source.NewBackend(backendURL),
		source.NewSoundCloud(),
		source.NewEmbedded(),
	)
	rt.StartPeriodicChartsRefresh(10*time.Minute, nil)
	defer rt.StopPeriodicChartsRefresh()

	graph := audio.NewGraph()
	fetcher := audio.NewFetcher(audioCache)
	element := audio.NewStreamElement(fetcher)
	graph.Bind(element)

	eng := engine.New(rt, graph, element, fetcher)
	eng.SetVolume(float64(config.ClampVolume(cfg.Volume)) / 100)
	eng.SetGaplessEnabled(cfg.Gapless)
	eng.SetCrossfadeDuration(cfg.CrossfadeSeconds)
	eng.SetRadioMode(cfg.RadioMode)
	if err := eng.ApplyEQPreset(cfg.EQPreset); err != nil {
		log.Warn().Err(err).Str("preset", cfg.EQPreset).Msg("Falling back to flat equalizer")
		_ = eng.ApplyEQPreset(config.DefaultEQPreset)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		runPrompt(eng, rt, cfg)
		close(done)
	}()

	if *playFlag != "" {
		startQuery(eng, *playFlag)
	}

	select {
	case <-sigChan:
		log.Info().Msg("Received shutdown signal")
	case <-done:
	}

	saveConfig(eng, cfg)
}

func startQuery(eng *engine.Engine, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	results := eng.Search(ctx, query, 20)
	if len(results) == 0 {
		fmt.Printf("No results for %q\n", query)
		return
	}

	eng.SetQueue(results, 0)
	eng.Play()
	printNowPlaying(eng)
}

func saveConfig(eng *engine.Engine, cfg *config.Config) {
	cfg.Volume = int(eng.Volume() * 100)
	cfg.Gapless = eng.GaplessEnabled()
	cfg.CrossfadeSeconds = eng.CrossfadeDuration()
	cfg.RadioMode = eng.RadioMode()
	if err := cfg.Save(); err != nil {
		log.Warn().Err(err).Msg("Failed to save config")
	}
}

func printNowPlaying(eng *engine.Engine) {
	if s, ok := eng.CurrentSong(); ok {
		fmt.Printf("[%s] %s - %s (%s)\n", eng.State(), s.Artist, s.Title, s.Source)
	} else {
		fmt.Printf("[%s] queue empty\n", eng.State())
	}
}

func printSongs(songs []song.Song) {
	for i, s := range songs {
		fmt.Printf("%3d. %s - %s [%s] %s\n", i+1, s.Artist, s.Title, s.Duration, s.Source)
	}
}

const promptHelp = `Commands:
  /query        search and play results
  p             toggle play/pause
  n | b         next / previous track
  s <seconds>   seek to position
  v <0-100>     set volume
  m <mode>      normal | shuffle | repeat-one | repeat-all
  eq <preset>   flat rock pop jazz classical electronic bassBoost vocalBoost
  charts        show trending songs
  rec           recommendations for the current song
  sleep <min>   sleep timer (0 cancels)
  queue         print the queue
  stats         per-source performance scores
  q             quit`

func runPrompt(eng *engine.Engine, rt *router.Router, cfg *config.Config) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("%s v%s. Type a /query to search, ? for help.\n", config.AppName, config.AppVersion)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			startQuery(eng, strings.TrimPrefix(line, "/"))
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "?", "help":
			fmt.Println(promptHelp)
		case "p":
			eng.TogglePlay()
			printNowPlaying(eng)
		case "n":
			eng.Next()
			printNowPlaying(eng)
		case "b":
			eng.Previous()
			printNowPlaying(eng)
		case "s":
			if len(args) == 1 {
				if secs, err := strconv.ParseFloat(args[0], 64); err == nil {
					eng.Seek(secs)
				}
			}
		case "v":
			if len(args) == 1 {
				if vol, err := strconv.Atoi(args[0]); err == nil {
					eng.SetVolume(float64(config.ClampVolume(vol)) / 100)
					fmt.Printf("Volume %d%%\n", config.ClampVolume(vol))
				}
			}
		case "m":
			if len(args) == 1 {
				switch engine.Mode(args[0]) {
				case engine.ModeNormal, engine.ModeShuffle, engine.ModeRepeatOne, engine.ModeRepeatAll:
					eng.SetMode(engine.Mode(args[0]))
					fmt.Printf("Mode %s\n", args[0])
				default:
					fmt.Println("Unknown mode")
				}
			}
		case "eq":
			if len(args) == 1 {
				if err := eng.ApplyEQPreset(args[0]); err != nil {
					fmt.Println(err)
				} else {
					cfg.EQPreset = args[0]
				}
			}
		case "charts":
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			printSongs(eng.Charts(ctx))
			cancel()
		case "rec":
			id := ""
			if s, ok := eng.CurrentSong(); ok {
				id = s.ID
			}
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			printSongs(eng.Recommendations(ctx, id))
			cancel()
		case "sleep":
			if len(args) == 1 {
				if mins, err := strconv.Atoi(args[0]); err == nil {
					if mins <= 0 {
						eng.ClearSleepTimer()
						fmt.Println("Sleep timer cancelled")
					} else {
						eng.SetSleepTimer(time.Duration(mins) * time.Minute)
						fmt.Printf("Sleeping in %dm\n", mins)
					}
				}
			}
		case "queue":
			printSongs(eng.Queue())
		case "stats":
			for src, score := range rt.SourceStats() {
				fmt.Printf("%-12s %6.1f\n", src, score)
			}
		case "q", "quit", "exit":
			return
		default:
			fmt.Println("Unknown command, ? for help")
		}
	}
}
