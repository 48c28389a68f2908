// Command lanesim runs a lane runner session without a window and prints a
// YAML summary of the run.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
	"github.com/milk9111/lanerunner/ecs/entity"
	"github.com/milk9111/lanerunner/ecs/system"
	"github.com/milk9111/lanerunner/prefabs"
	"gopkg.in/yaml.v3"
)

type summary struct {
	Player    string         `yaml:"player"`
	Policy    string         `yaml:"policy"`
	Seconds   float64        `yaml:"seconds"`
	Score     int            `yaml:"score"`
	Distance  float64        `yaml:"distance"`
	Lane      int            `yaml:"lane"`
	Collected map[string]int `yaml:"collected"`
	Camera    [3]float64     `yaml:"camera,flow"`
	Steps     uint64         `yaml:"fixed_steps"`
}

func main() {
	gameSpec := flag.String("game", "game.yaml", "game spec in prefabs/")
	player := flag.String("player", "", "player prefab override")
	camera := flag.String("camera", "", "camera prefab override")
	seed := flag.Uint64("seed", 0, "track seed (0 uses the game spec)")
	seconds := flag.Float64("seconds", 30, "simulated seconds")
	tps := flag.Int("tps", 60, "ticks per simulated second")
	inputs := flag.String("inputs", "", `scripted actions, e.g. "0.5:left,1.2:jump"`)
	prefabDir := flag.String("prefabs", "prefabs", "directory with prefab overrides; empty uses the embedded prefabs")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	prefabs.SetOverrideDir(*prefabDir)

	if err := run(*gameSpec, *player, *camera, *seed, *seconds, *tps, *inputs, logger); err != nil {
		logger.Error("lanesim", "err", err)
		os.Exit(1)
	}
}

func run(gameSpec, playerPrefab, cameraPrefab string, seed uint64, seconds float64, tps int, inputs string, logger *slog.Logger) error {
	spec, err := prefabs.LoadGameSpec(gameSpec)
	if err != nil {
		return err
	}
	if playerPrefab != "" {
		spec.Player = playerPrefab
	}
	if cameraPrefab != "" {
		spec.Camera = cameraPrefab
	}
	if seed != 0 {
		spec.Track.Seed = seed
	}

	input, err := parseScript(inputs, tps)
	if err != nil {
		return err
	}

	w := ecs.NewWorld()
	player, err := entity.NewPlayer(w, spec.Player)
	if err != nil {
		return err
	}
	if _, err := entity.NewScore(w, spec.Score); err != nil {
		return err
	}
	p, _ := ecs.Get(w, player, component.PlayerComponent.Kind())

	cfg := system.PipelineConfig{
		FixedStep:   spec.FixedStep,
		MaxSubsteps: spec.MaxSubsteps,
		Workers:     spec.Workers,
		CameraSeed:  spec.CameraSeed,
		MinSwipe:    spec.MinSwipe,
		CullBehind:  spec.Track.DespawnBehind,
		Input:       input,
		Logger:      logger,
	}
	if spec.Camera != "" {
		cfg.CameraSpawner = entity.CameraSpawner(spec.Camera)
	}
	pipeline := system.NewPipeline(cfg)

	out := summary{Player: spec.Player, Policy: p.Config.Policy.String(), Seconds: seconds, Collected: map[string]int{}}
	dt := 1 / float64(tps)
	trackEnd := 0.0
	for tick := 0; float64(tick)*dt < seconds; tick++ {
		pt, _ := ecs.Get(w, player, component.TransformComponent.Kind())
		for trackEnd < pt.Position.Z()+spec.Track.LookAhead {
			if _, err := entity.SpawnTrack(w, entity.TrackParams{
				Script:    spec.Track.Script,
				Seed:      spec.Track.Seed,
				Start:     trackEnd,
				Length:    spec.Track.SegmentLength,
				Spacing:   spec.Track.Spacing,
				LaneWidth: p.Config.LaneWidth,
			}); err != nil {
				return fmt.Errorf("spawn track at %v: %w", trackEnd, err)
			}
			trackEnd += spec.Track.SegmentLength
		}

		pipeline.Update(w, dt)

		for _, evt := range w.Events().Drain() {
			if c, ok := evt.Data.(ecs.CollectedEvent); ok && evt.Type == ecs.EventCollected {
				out.Collected[c.Kind]++
				out.Score = c.Score
			}
		}
	}

	out.Distance = p.DistanceTravelled
	out.Lane = p.Lane.Current
	out.Steps = pipeline.Fixed.Steps()
	if cam, ok := ecs.First(w, component.CameraTagComponent.Kind()); ok {
		if ct, ok := ecs.Get(w, cam, component.TransformComponent.Kind()); ok {
			out.Camera = [3]float64{ct.Position.X(), ct.Position.Y(), ct.Position.Z()}
		}
	}

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	return enc.Encode(out)
}
