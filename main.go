package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/lanerunner/prefabs"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	physics := flag.Bool("physics", false, "draw the trigger space on the minimap")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	gameSpec := flag.String("game", "game.yaml", "game spec in prefabs/")
	player := flag.String("player", "", "player prefab, e.g. player_parabolic.yaml")
	camera := flag.String("camera", "", "camera prefab, e.g. camera_rig.yaml")
	seed := flag.Uint64("seed", 0, "track seed (0 uses the game spec)")
	prefabDir := flag.String("prefabs", "prefabs", "directory with prefab overrides; empty disables overrides")
	watch := flag.Bool("watch", true, "restart the run when prefab files change")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	prefabs.SetOverrideDir(*prefabDir)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	if err := run(Options{
		GameSpec:    *gameSpec,
		Player:      *player,
		Camera:      *camera,
		Seed:        *seed,
		Watch:       *watch && *prefabDir != "",
		PhysicsDraw: *physics,
		Logger:      logger,
	}); err != nil {
		logger.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(opts Options) error {
	game, err := NewGame(opts)
	if err != nil {
		return err
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(game.spec.Screen.Width, game.spec.Screen.Height)

	return ebiten.RunGame(game)
}
