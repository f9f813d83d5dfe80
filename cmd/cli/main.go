package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"math"
	"os"
	"time"

	"github.com/eligwz/spectrogram"
	"github.com/soundglide/soundglide/internal/audio"
	"github.com/soundglide/soundglide/internal/model"
	"github.com/soundglide/soundglide/internal/tracking"
	"github.com/soundglide/soundglide/pkg/logger"
	"github.com/soundglide/soundglide/pkg/soundglide"
)

// Global flags
var (
	dbPath     string
	tempDir    string
	sampleRate int
)

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("SOUNDGLIDE_DB_PATH", "soundglide.sqlite3"), "Path to the SQLite database file")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("SOUNDGLIDE_TEMP_DIR", "/tmp"), "Directory for temporary audio conversion files")
	flag.IntVar(&sampleRate, "rate", audio.DefaultSampleRate, "Audio sample rate for analysis")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func createService() (soundglide.Service, error) {
	return soundglide.NewService(
		soundglide.WithDBPath(dbPath),
		soundglide.WithTempDir(tempDir),
		soundglide.WithSampleRate(sampleRate),
	)
}

func main() {
	log := logger.GetLogger()

	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Infof("Executing command: %s", command)

	switch command {
	case "analyze":
		handleAnalyze()
	case "path":
		handlePath()
	case "list":
		handleList()
	case "scores":
		handleScores()
	case "delete":
		handleDelete()
	case "render":
		handleRender()
	case "simulate":
		handleSimulate()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
  ____                           _  ____ _ _     _
 / ___|  ___  _   _ _ __   __| |/ ___| (_) __| | ___
 \___ \ / _ \| | | | '_ \ / _' | |  _| | |/ _' |/ _ \
  ___) | (_) | |_| | | | | (_| | |_| | | | (_| |  __/
 |____/ \___/ \__,_|_| |_|\__,_|\____|_|_|\__,_|\___|

           Music Flight Analysis CLI
`
	fmt.Println(banner)
}

func handleAnalyze() {
	log := logger.GetLogger()

	analyzeCmd := flag.NewFlagSet("analyze", flag.ExitOnError)
	force := analyzeCmd.Bool("force", false, "Re-analyze even if a cached analysis exists")
	args, audioPath := splitPathAndFlags(os.Args[2:])
	analyzeCmd.Parse(args)

	if audioPath == "" {
		fmt.Println("Usage: soundglide analyze <audio_file> [--force]")
		os.Exit(1)
	}

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Fatalf("Service initialization failed: %v", err)
	}
	defer svc.Close()

	fmt.Println("Analyzing audio file...")
	fmt.Println("   This may take a few moments for large files")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	track, songMap, err := svc.AnalyzeFile(ctx, audioPath, *force, func(fraction float64) {
		fmt.Printf("\r   Progress: %3.0f%%", fraction*100)
	})
	fmt.Println()
	if err != nil {
		fmt.Printf("Failed to analyze: %v\n", err)
		log.Fatalf("AnalyzeFile failed: %v", err)
	}

	fmt.Println("\nAnalysis complete!")
	fmt.Printf("   ID:           %s\n", track.ID)
	fmt.Printf("   Title:        %s\n", track.Title)
	fmt.Printf("   Duration:     %s\n", formatDuration(track.DurationMs))
	fmt.Printf("   BPM:          %d\n", songMap.BPM)
	fmt.Printf("   Key:          %s\n", songMap.Key)
	fmt.Printf("   Danceability: %.2f\n", songMap.Danceability)
	fmt.Printf("   Beats:        %d\n", len(songMap.Beats))
	fmt.Printf("   Onsets:       %d\n", len(songMap.Onsets))
	fmt.Printf("   Sections:     %d\n", len(songMap.Sections))
	fmt.Printf("   Path points:  %d\n", len(songMap.IdealPath))
	for _, sec := range songMap.Sections {
		fmt.Printf("     %7.1fs - %7.1fs  %-7s (energy %.2f)\n",
			sec.StartTime, sec.EndTime, sec.Label, sec.Energy)
	}
}

func handlePath() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: soundglide path <track_id>")
		os.Exit(1)
	}
	trackID := os.Args[2]

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Fatalf("Service initialization failed: %v", err)
	}
	defer svc.Close()

	_, songMap, err := svc.GetTrack(trackID)
	if err != nil {
		fmt.Printf("Track not found: %v\n", err)
		log.Fatalf("GetTrack failed: %v", err)
	}

	fmt.Printf("\nIdeal path: %d points over %.1fs\n\n", len(songMap.IdealPath), songMap.Duration)
	step := len(songMap.IdealPath) / 20
	if step < 1 {
		step = 1
	}
	for i := 0; i < len(songMap.IdealPath); i += step {
		p := songMap.IdealPath[i]
		fmt.Printf("  t=%6.2fs  x=%+6.2f  y=%5.2f  z=%8.2f\n",
			p.Time, p.Position.X, p.Position.Y, p.Position.Z)
	}
}

func handleList() {
	log := logger.GetLogger()

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Fatalf("Service initialization failed: %v", err)
	}
	defer svc.Close()

	tracks, err := svc.ListTracks()
	if err != nil {
		fmt.Printf("Failed to list tracks: %v\n", err)
		log.Fatalf("ListTracks failed: %v", err)
	}

	if len(tracks) == 0 {
		fmt.Println("\nNo analyzed tracks in database")
		return
	}

	fmt.Printf("\nFound %d track(s):\n\n", len(tracks))
	for i, track := range tracks {
		fmt.Printf("%d. %s (ID: %s)\n", i+1, track.Title, track.ID)
		fmt.Printf("   %.1f BPM | %s %s | danceability %.2f | %s\n",
			track.BPM, track.KeyName, track.KeyScale, track.Danceability,
			formatDuration(track.DurationMs))
		fmt.Println()
	}
	log.Infof("Listed %d tracks", len(tracks))
}

func handleScores() {
	log := logger.GetLogger()

	scoresCmd := flag.NewFlagSet("scores", flag.ExitOnError)
	limit := scoresCmd.Int("limit", 10, "Maximum number of scores to show")
	args, trackID := splitPathAndFlags(os.Args[2:])
	scoresCmd.Parse(args)

	if trackID == "" {
		fmt.Println("Usage: soundglide scores <track_id> [--limit <n>]")
		os.Exit(1)
	}

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Fatalf("Service initialization failed: %v", err)
	}
	defer svc.Close()

	scores, err := svc.TopScores(trackID, *limit)
	if err != nil {
		fmt.Printf("Failed to fetch scores: %v\n", err)
		log.Fatalf("TopScores failed: %v", err)
	}

	if len(scores) == 0 {
		fmt.Println("\nNo recorded runs for this track")
		return
	}

	fmt.Printf("\nTop %d run(s):\n\n", len(scores))
	for i, s := range scores {
		fmt.Printf("%d. %3d  %-16s %s\n", i+1, s.Score, s.Rating,
			s.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func handleDelete() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: soundglide delete <track_id>")
		os.Exit(1)
	}
	trackID := os.Args[2]

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Fatalf("Service initialization failed: %v", err)
	}
	defer svc.Close()

	track, _, err := svc.GetTrack(trackID)
	if err != nil {
		fmt.Printf("Track not found (ID: %s)\n", trackID)
		log.Fatalf("Track %s not found: %v", trackID, err)
	}

	if err := svc.DeleteTrack(trackID); err != nil {
		fmt.Printf("Failed to delete track: %v\n", err)
		log.Fatalf("DeleteTrack failed: %v", err)
	}

	fmt.Printf("\nDeleted track:\n")
	fmt.Printf("   ID:    %s\n", track.ID)
	fmt.Printf("   Title: %s\n", track.Title)
	log.Infof("Deleted track ID=%s (%s)", track.ID, track.Title)
}

// handleRender writes a spectrogram PNG for a WAV file, useful for checking
// what the analyzer sees.
func handleRender() {
	log := logger.GetLogger()

	renderCmd := flag.NewFlagSet("render", flag.ExitOnError)
	out := renderCmd.String("out", "", "Output PNG path (default: <input>.png)")
	width := renderCmd.Int("width", 2048, "Spectrogram image width")
	height := renderCmd.Int("height", 512, "Spectrogram image height")
	args, wavPath := splitPathAndFlags(os.Args[2:])
	renderCmd.Parse(args)

	if wavPath == "" {
		fmt.Println("Usage: soundglide render <wav_file> [--out <png>] [--width <px>] [--height <px>]")
		os.Exit(1)
	}
	outputPath := *out
	if outputPath == "" {
		outputPath = wavPath + ".png"
	}

	buf, err := audio.ReadWAV(wavPath)
	if err != nil {
		fmt.Printf("Failed to read WAV: %v\n", err)
		log.Fatalf("ReadWAV failed: %v", err)
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, *width, *height))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		buf.Samples,
		uint32(buf.SampleRate),
		uint32(*height), // bins
		false,           // RECTANGLE (use Hamming window)
		false,           // DFT (use FFT instead)
		true,            // MAG (magnitude)
		false,           // LOG10 (linear scale)
	)

	if err := spectrogram.SavePng(img, outputPath); err != nil {
		fmt.Printf("Failed to save PNG: %v\n", err)
		log.Fatalf("SavePng failed: %v", err)
	}

	fmt.Printf("\nSaved spectrogram to %s\n", outputPath)
}

// handleSimulate plays a synthetic 60fps run against a stored track's path
// with a fixed lateral drift and records the resulting score.
func handleSimulate() {
	log := logger.GetLogger()

	simCmd := flag.NewFlagSet("simulate", flag.ExitOnError)
	drift := simCmd.Float64("drift", 0.0, "Constant lateral offset from the ideal path")
	wobble := simCmd.Float64("wobble", 0.0, "Amplitude of sinusoidal wobble around the path")
	record := simCmd.Bool("record", false, "Record the simulated score for the track")
	args, trackID := splitPathAndFlags(os.Args[2:])
	simCmd.Parse(args)

	if trackID == "" {
		fmt.Println("Usage: soundglide simulate <track_id> [--drift <m>] [--wobble <m>] [--record]")
		os.Exit(1)
	}

	svc, err := createService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Fatalf("Service initialization failed: %v", err)
	}
	defer svc.Close()

	_, songMap, err := svc.GetTrack(trackID)
	if err != nil {
		fmt.Printf("Track not found: %v\n", err)
		log.Fatalf("GetTrack failed: %v", err)
	}
	path := songMap.IdealPath
	if len(path) == 0 {
		fmt.Println("Track has no ideal path")
		os.Exit(1)
	}

	tracker := soundglide.NewTracker()
	dt := 1.0 / 60.0
	duration := path[len(path)-1].Time
	cursor := 0
	for now := 0.0; now <= duration; now += dt {
		for cursor+1 < len(path) && path[cursor+1].Time <= now {
			cursor++
		}
		target := path[cursor].Position
		pos := model.Vec3{
			X: target.X + *drift + *wobble*math.Sin(now*2.0),
			Y: target.Y,
			Z: target.Z,
		}
		tracker.Update(pos, path, now, dt)
	}

	score := tracker.FinalScore()
	rating := tracking.Rating(score)
	fmt.Printf("\nSimulated run over %.1fs (drift %.2f, wobble %.2f)\n", duration, *drift, *wobble)
	fmt.Printf("   Score:  %d\n", score)
	fmt.Printf("   Rating: %s\n", rating)

	if *record {
		if _, err := svc.RecordScore(trackID, score); err != nil {
			fmt.Printf("Failed to record score: %v\n", err)
			log.Fatalf("RecordScore failed: %v", err)
		}
		fmt.Println("   Recorded.")
	}
}

// splitPathAndFlags separates the leading positional argument from flags so
// "cmd <arg> --flag" and "cmd --flag <arg>" both work.
func splitPathAndFlags(args []string) (flags []string, positional string) {
	for i, arg := range args {
		if len(arg) > 0 && arg[0] != '-' && positional == "" {
			positional = arg
			continue
		}
		flags = append(flags, args[i])
	}
	return flags, positional
}

func formatDuration(ms int) string {
	s := ms / 1000
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func printUsage() {
	fmt.Println("SoundGlide - Music Flight Analysis CLI")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --db <path>        Path to SQLite database (env: SOUNDGLIDE_DB_PATH, default: soundglide.sqlite3)")
	fmt.Println("  --temp <dir>       Temporary directory for audio conversion (env: SOUNDGLIDE_TEMP_DIR, default: /tmp)")
	fmt.Println("  --rate <hz>        Audio sample rate for analysis (default: 22050)")
	fmt.Println("\nUsage:")
	fmt.Println("  soundglide [global-options] analyze <audio_file> [--force]")
	fmt.Println("  soundglide [global-options] path <track_id>")
	fmt.Println("  soundglide [global-options] list")
	fmt.Println("  soundglide [global-options] scores <track_id> [--limit <n>]")
	fmt.Println("  soundglide [global-options] delete <track_id>")
	fmt.Println("  soundglide [global-options] render <wav_file> [--out <png>]")
	fmt.Println("  soundglide [global-options] simulate <track_id> [--drift <m>] [--wobble <m>] [--record]")
	fmt.Println("\nExamples:")
	fmt.Println("  # Analyze a song into a flight map")
	fmt.Println("  soundglide --db mydb.sqlite3 analyze song.mp3")
	fmt.Println()
	fmt.Println("  # Inspect the generated path")
	fmt.Println("  soundglide path 3f6c9a4e-...")
	fmt.Println()
	fmt.Println("  # Dry-run a flight with some drift and save the score")
	fmt.Println("  soundglide simulate 3f6c9a4e-... --drift 1.5 --record")
}
