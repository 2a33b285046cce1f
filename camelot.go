package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	InitializeLogger(os.Stderr, zerolog.InfoLevel)
}

// Populated by ldflags (ugh)
var (
	version            string
	buildUnixTimestamp string
	commitHash         string
)

func main() {
	ts, _ := strconv.ParseInt(buildUnixTimestamp, 10, 64)
	buildInfo := BuildInfo{
		Version:    version,
		BuildTime:  time.Unix(ts, 0),
		CommitHash: commitHash,
	}

	var flags Flags
	versionFlag := flag.Bool("version", false, "Print version")
	systemdFlag := flag.Bool("systemd", false, "Print systemd service file")
	flag.StringVar(&flags.ConfigPath, "config", "", "Path to the TOML config file (default "+DefaultConfigPath+")")
	flag.StringVar(&flags.Script, "script", "", "Run a command script against a fresh table and exit; - reads stdin")
	flag.BoolVar(&flags.Serve, "serve", false, "Serve the HTTP API")
	flag.Parse()

	if *versionFlag {
		fmt.Println("Camelot version:", buildInfo.Version)
		fmt.Println("Built on:", buildInfo.BuildTime)
		fmt.Println("Commit hash:", buildInfo.CommitHash)
		return
	}

	if *systemdFlag {
		if err := SystemdServiceFile(os.Stdout, flags.ConfigPath); err != nil {
			log.Fatal().Err(err).Msg("Could not render systemd service file")
		}
		return
	}

	fs := NewCamelotOSFS()

	config, err := NewConfig(fs, flags, os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("Config initialization failed")
	}
	InitializeLogger(os.Stderr, config.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.Script != "" {
		f, err := OpenScript(fs, flags.Script, os.Stdin)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open script")
		}
		defer f.Close()

		if err := RunScript(ctx, f, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if !flags.Serve {
		flag.Usage()
		os.Exit(2)
	}

	log.Info().
		Str("version", buildInfo.Version).
		Str("build_timestamp", buildInfo.BuildTime.Format(time.RFC3339)).
		Str("commit_hash", buildInfo.CommitHash).
		Str("config", config.Path()).
		Msg("Initializing Camelot")

	tables := NewTables(ctx, config.HistorySize())
	defer tables.Close()

	if err := tables.Seed(ctx, config.Tables()); err != nil {
		log.Fatal().Err(err).Msg("Could not seat configured tables")
	}

	if err := StartServer(ctx, config, buildInfo, tables); err != nil {
		log.Err(err).Msg("Server closed with error")
	}
}
