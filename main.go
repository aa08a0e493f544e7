// Package main provides the entry point for the voxbook CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/voxbook/voxbook/internal/pipeline"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	debug       bool
	outputDir   string
	format      string
	quality     float64
	voiceSpeed  float64
	voicePitch  float64
	sampleRate  int
	workers     int
	chunkSize   int
	noCache     bool
	cacheDir    string
	keepLayout  bool
	quiet       bool

	keyword = lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Background(lipgloss.Color("235")).Render

	rootCmd = &cobra.Command{
		Use:   "voxbook EPUB",
		Short: "Convert an EPUB into a per-chapter audiobook",
		Long: paragraph(
			fmt.Sprintf("\nConvert an EPUB into a %s audiobook: one directory per chapter, numbered audio segments, and an M3U playlist.", keyword("listen-anywhere")),
		),
		SilenceErrors: false,
		SilenceUsage:  true,
		Args:          cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLog()
			return nil
		},
		RunE: runConvert,
	}
)

func paragraph(s string) string {
	return lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render(s)
}

// setupLog configures logging level and destination from flags and env.
func setupLog() {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)
	if debug || os.Getenv("VOXBOOK_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
		log.SetReportCaller(true)
	} else if quiet {
		log.SetLevel(log.ErrorLevel)
	}
}

// buildConfig assembles the run configuration. Viper resolves precedence:
// flags beat environment variables beat the config file beat defaults.
func buildConfig() (pipeline.Config, error) {
	cfg := pipeline.Config{
		Format:            viper.GetString("format"),
		Quality:           viper.GetFloat64("quality"),
		VoiceSpeed:        viper.GetFloat64("speed"),
		VoicePitch:        viper.GetFloat64("pitch"),
		SampleRate:        viper.GetInt("sample_rate"),
		Workers:           viper.GetInt("workers"),
		ChunkSize:         viper.GetInt("chunk_size"),
		CacheEnabled:      !viper.GetBool("no_cache"),
		CacheDir:          viper.GetString("cache_dir"),
		AggressiveCleanup: !viper.GetBool("keep_layout"),
	}
	if cfg.Workers < 1 {
		cfg.Workers = pipeline.DefaultConfig().Workers
	}
	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, err
	}
	return cfg, nil
}

func runConvert(_ *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	inputPath := args[0]
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("unable to open input: %w", err)
	}

	out := outputDir
	if out == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		out = base + "_audio"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		reportProgress(p.Events())
	}()

	result, err := p.Run(ctx, inputPath, out)
	<-done
	if err != nil {
		return err
	}

	log.Info("audiobook written",
		"dir", result.OutputDir,
		"playlist", result.PlaylistPath,
		"elapsed", result.Elapsed.Round(time.Second),
	)
	if len(result.Warnings) > 0 {
		log.Warn("some segments failed", "count", len(result.Warnings))
		for _, w := range result.Warnings {
			log.Warn(w)
		}
	}
	return nil
}

// reportProgress drains the pipeline event stream until it closes.
func reportProgress(events <-chan pipeline.ProgressEvent) {
	for ev := range events {
		switch ev.Stage {
		case pipeline.StageSynthesizing:
			if ev.ChaptersTotal == 0 {
				log.Info(ev.Stage.String(), "msg", ev.Message)
				continue
			}
			fields := []any{
				"progress", fmt.Sprintf("%d/%d", ev.ChaptersDone, ev.ChaptersTotal),
			}
			if ev.ETA > 0 {
				fields = append(fields, "eta", humanize.Time(time.Now().Add(ev.ETA)))
			}
			if ev.Message != "" {
				fields = append(fields, "chapter", ev.Message)
			}
			log.Info("synthesizing", fields...)
		case pipeline.StageFailed:
			// Run's error return carries the details.
		default:
			log.Info(ev.Stage.String(), "msg", ev.Message)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	defaults := pipeline.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default <book>_audio)")
	rootCmd.Flags().StringVarP(&format, "format", "f", defaults.Format, "output format: vorbis, flac, mp3, or wav")
	rootCmd.Flags().Float64VarP(&quality, "quality", "q", defaults.Quality, "encoder quality, 0.0-1.0")
	rootCmd.Flags().Float64Var(&voiceSpeed, "speed", defaults.VoiceSpeed, "voice speed multiplier")
	rootCmd.Flags().Float64Var(&voicePitch, "pitch", defaults.VoicePitch, "voice pitch multiplier")
	rootCmd.Flags().IntVar(&sampleRate, "sample-rate", defaults.SampleRate, "output sample rate in Hz")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", defaults.Workers, "parallel chapter workers")
	rootCmd.Flags().IntVar(&chunkSize, "chunk-size", defaults.ChunkSize, "soft segment size limit in bytes")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the waveform cache")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", defaults.CacheDir, "waveform cache directory")
	rootCmd.Flags().BoolVar(&keepLayout, "keep-layout", false, "skip abbreviation expansion and hyphenation repair")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "only log errors")

	_ = viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("quality", rootCmd.Flags().Lookup("quality"))
	_ = viper.BindPFlag("speed", rootCmd.Flags().Lookup("speed"))
	_ = viper.BindPFlag("pitch", rootCmd.Flags().Lookup("pitch"))
	_ = viper.BindPFlag("sample_rate", rootCmd.Flags().Lookup("sample-rate"))
	_ = viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("chunk_size", rootCmd.Flags().Lookup("chunk-size"))
	_ = viper.BindPFlag("no_cache", rootCmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("cache_dir", rootCmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("keep_layout", rootCmd.Flags().Lookup("keep-layout"))

	viper.SetDefault("format", defaults.Format)
	viper.SetDefault("quality", defaults.Quality)
	viper.SetDefault("speed", defaults.VoiceSpeed)
	viper.SetDefault("pitch", defaults.VoicePitch)
	viper.SetDefault("sample_rate", defaults.SampleRate)
	viper.SetDefault("workers", defaults.Workers)
	viper.SetDefault("chunk_size", defaults.ChunkSize)
	viper.SetDefault("cache_dir", defaults.CacheDir)

	rootCmd.AddCommand(configCmd, depsCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "voxbook")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "voxbook")}, dirs...)
	}

	if c := os.Getenv("VOXBOOK_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("voxbook")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("voxbook")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "voxbook.yml")
}
