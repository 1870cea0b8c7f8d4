package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/ironsheep/tello-linetrace/internal/config"
	"github.com/ironsheep/tello-linetrace/internal/console"
	"github.com/ironsheep/tello-linetrace/internal/control"
	"github.com/ironsheep/tello-linetrace/internal/detection"
	"github.com/ironsheep/tello-linetrace/internal/follower"
	"github.com/ironsheep/tello-linetrace/internal/imaging"
	"github.com/ironsheep/tello-linetrace/internal/tello"
	"github.com/ironsheep/tello-linetrace/internal/util"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("linetrace - visual line follower for the Tello quadrotor")
	fmt.Println()
	fmt.Println("Usage: linetrace [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config PATH          YAML configuration file")
	fmt.Println("  --replay DIR           Read frames from an image directory instead of the drone")
	fmt.Println("  --backend NAME         Detector backend: native or opencv")
	fmt.Println("  --dry-run              Log commands instead of sending them")
	fmt.Println("  --console-addr ADDR    Operator console HTTP address (empty disables it)")
	fmt.Println("  --stdio                Serve the operator console on stdin/stdout")
	fmt.Println("  --version, -v          Print version information")
	fmt.Println("  --help, -h             Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Enable debug logging\n", config.EnvLogLevel)
	fmt.Println()
	fmt.Println("Keys (console method \"key\"):")
	keys := control.Keys()
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  %-4s %s\n", k, keys[k])
	}
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("linetrace %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	var (
		configPath  string
		replayDir   string
		backend     string
		dryRun      bool
		consoleAddr string
		stdio       bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config.")
	flag.StringVar(&replayDir, "replay", "", "Replay frames from this directory.")
	flag.StringVar(&backend, "backend", "", "Override detector backend.")
	flag.BoolVar(&dryRun, "dry-run", false, "Log commands instead of sending them.")
	flag.StringVar(&consoleAddr, "console-addr", "-", "Override console HTTP address.")
	flag.BoolVar(&stdio, "stdio", false, "Serve the console on stdin/stdout.")
	flag.Usage = usage
	flag.Parse()

	// Configure logging to stderr (stdout may carry the console protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if replayDir != "" {
		cfg.Replay.Dir = replayDir
	}
	if backend != "" {
		cfg.Detection.Backend = backend
	}
	if consoleAddr != "-" {
		cfg.Console.Addr = consoleAddr
	}
	if stdio {
		cfg.Console.Stdio = true
	}
	util.SetDebug(cfg.Debug())
	util.Debug("linetrace v%s (built %s, commit %s)", Version, BuildTime, GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, dryRun); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, dryRun bool) error {
	bands := imaging.NewBandStore(cfg.Threshold)

	det, err := detection.New(cfg.Detection.Backend, cfg.Segmenter())
	if err != nil {
		return err
	}

	source, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}

	var vehicle follower.Vehicle
	if dryRun {
		rec := tello.NewRecorder()
		rec.Echo = true
		vehicle = rec
	} else {
		client, err := tello.Dial(cfg.Tello.LocalAddr, cfg.Tello.Addr)
		if err != nil {
			return err
		}
		vehicle = client
	}

	hub := console.NewHub(cfg.Console.StreamFPS)
	loop, err := follower.New(source, det, bands, vehicle, hub, cfg.LoopOptions())
	if err != nil {
		vehicle.Close()
		return err
	}
	loop.Telemetry().Publish("linetrace")

	srv := console.New(loop, bands, loop.Telemetry(), hub)
	srv.Version = Version

	go hub.Run(ctx)

	if cfg.Console.Addr != "" {
		hs := console.NewHTTPServer(cfg.Console.Addr, srv)
		go func() {
			if err := hs.ListenAndServe(ctx); err != nil {
				util.Error("console: %v", err)
			}
		}()
	}
	if cfg.Console.Stdio {
		go func() {
			if err := srv.Run(); err != nil {
				util.Error("console stdio: %v", err)
			}
		}()
	}

	util.Info("following with %s detector, band %+v", det.Name(), bands.Get())
	return loop.Run(ctx)
}

// openSource returns the replay directory when one is configured and the
// live video stream otherwise.
func openSource(ctx context.Context, cfg *config.Config) (follower.FrameSource, error) {
	if cfg.Replay.Dir != "" {
		dir, err := imaging.NewFrameDir(cfg.Replay.Dir, nil)
		if err != nil {
			return nil, err
		}
		dir.Interval = cfg.Replay.Interval.D()
		dir.Loop = cfg.Replay.Loop
		util.Info("replaying %d frames from %s", dir.Len(), cfg.Replay.Dir)
		return dir, nil
	}

	video := tello.NewVideoStream(cfg.Tello.VideoURL, cfg.Tello.VideoWidth, cfg.Tello.VideoHeight)
	if err := video.Start(ctx); err != nil {
		return nil, err
	}
	go func() {
		<-video.Done()
		if err := video.Err(); err != nil {
			util.Error("video stream ended: %v", err)
		}
	}()
	return video, nil
}
