package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
	"github.com/milk9111/lanerunner/ecs/entity"
	"github.com/milk9111/lanerunner/ecs/system"
	"github.com/milk9111/lanerunner/prefabs"
)

const flashSeconds = 0.6

type Options struct {
	GameSpec    string
	Player      string
	Camera      string
	Seed        uint64
	Watch       bool
	PhysicsDraw bool
	Logger      *slog.Logger
}

type hudState struct {
	flash      string
	flashTimer float64
}

// session is one run: a world, its pipeline and the track streamed so far.
type session struct {
	world     *ecs.World
	pipeline  *system.Pipeline
	player    ecs.Entity
	score     ecs.Entity
	laneWidth float64
	trackEnd  float64
	trackErr  bool
}

type Game struct {
	opts   Options
	spec   prefabs.GameSpec
	logger *slog.Logger

	input    *EbitenInput
	sess     *session
	renderer *renderer
	chimes   *chimes
	pauseUI  *ebitenui.UI
	watcher  *prefabs.Watcher

	paused  bool
	restart string
	hud     hudState
}

func NewGame(opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.GameSpec == "" {
		opts.GameSpec = "game.yaml"
	}

	g := &Game{opts: opts, logger: logger, chimes: newChimes()}
	g.input = NewEbitenInput(func() (int, int) { return g.spec.Screen.Width, g.spec.Screen.Height })

	if err := g.load(); err != nil {
		return nil, err
	}

	if opts.Watch {
		g.startWatcher()
	}
	return g, nil
}

// load reads the game spec and starts a fresh session. On error the current
// session is kept.
func (g *Game) load() error {
	spec, err := prefabs.LoadGameSpec(g.opts.GameSpec)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if g.opts.Player != "" {
		spec.Player = g.opts.Player
	}
	if g.opts.Camera != "" {
		spec.Camera = g.opts.Camera
	}
	if g.opts.Seed != 0 {
		spec.Track.Seed = g.opts.Seed
	}

	sess, err := newSession(spec, g.input, g.logger)
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}

	g.spec = spec
	g.sess = sess
	g.renderer = newRenderer(spec, g.opts.PhysicsDraw)
	g.pauseUI = NewPauseUI(g, spec.Screen.Width, spec.Screen.Height)
	g.hud = hudState{}
	ebiten.SetWindowTitle(spec.Title)
	g.logger.Info("session started", "player", spec.Player, "camera", spec.Camera, "seed", spec.Track.Seed)
	return nil
}

func newSession(spec prefabs.GameSpec, input system.RawInputSource, logger *slog.Logger) (*session, error) {
	w := ecs.NewWorld()

	player, err := entity.NewPlayer(w, spec.Player)
	if err != nil {
		return nil, err
	}
	score, err := entity.NewScore(w, spec.Score)
	if err != nil {
		return nil, err
	}

	laneWidth := 0.0
	if p, ok := ecs.Get(w, player, component.PlayerComponent.Kind()); ok {
		laneWidth = p.Config.LaneWidth
	}

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

	return &session{
		world:     w,
		pipeline:  system.NewPipeline(cfg),
		player:    player,
		score:     score,
		laneWidth: laneWidth,
	}, nil
}

func (g *Game) startWatcher() {
	dir := prefabs.OverrideDir()
	dirs := []string{dir}
	if info, err := os.Stat(filepath.Join(dir, "scripts")); err == nil && info.IsDir() {
		dirs = append(dirs, filepath.Join(dir, "scripts"))
	}
	watcher, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		g.logger.Warn("prefab hot reload disabled", "dir", dir, "err", err)
		return
	}
	g.watcher = watcher
	g.logger.Info("watching prefabs", "dirs", dirs)
}

func (g *Game) requestRestart(reason string) {
	g.restart = reason
}

// pollWatcher drains pending file events without blocking.
func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Info("prefab changed", "file", name)
			g.requestRestart("reload")
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Warn("prefab watcher", "err", err)
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.requestRestart("key")
	}

	if g.restart != "" {
		reason := g.restart
		g.restart = ""
		if err := g.load(); err != nil {
			g.logger.Error("restart failed, keeping current session", "reason", reason, "err", err)
		}
	}

	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	dt := 1 / float64(ebiten.TPS())
	g.streamTrack()
	g.sess.pipeline.Update(g.sess.world, dt)
	g.drainEvents(dt)
	return nil
}

// streamTrack keeps collectibles generated ahead of the runner. The pipeline
// culls the ones left behind.
func (g *Game) streamTrack() {
	s := g.sess
	t, ok := ecs.Get(s.world, s.player, component.TransformComponent.Kind())
	if !ok {
		return
	}
	z := t.Position.Z()
	track := g.spec.Track

	for !s.trackErr && s.trackEnd < z+track.LookAhead {
		spawned, err := entity.SpawnTrack(s.world, entity.TrackParams{
			Script:    track.Script,
			Seed:      track.Seed,
			Start:     s.trackEnd,
			Length:    track.SegmentLength,
			Spacing:   track.Spacing,
			LaneWidth: s.laneWidth,
		})
		if err != nil {
			g.logger.Error("track spawn failed", "start", s.trackEnd, "err", err)
			s.trackErr = true
			break
		}
		g.logger.Debug("track segment spawned", "start", s.trackEnd, "items", len(spawned))
		s.trackEnd += track.SegmentLength
	}
}

func (g *Game) drainEvents(dt float64) {
	if g.hud.flashTimer > 0 {
		g.hud.flashTimer -= dt
	}
	for _, evt := range g.sess.world.Events().Drain() {
		if evt.Type != ecs.EventCollected {
			continue
		}
		c, ok := evt.Data.(ecs.CollectedEvent)
		if !ok {
			continue
		}
		g.chimes.play(c.Kind)
		g.hud.flash = c.Kind
		g.hud.flashTimer = flashSeconds
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.draw(screen, g.sess, g.spec.Screen.Width, g.spec.Screen.Height)
	g.renderer.drawHUD(screen, g.sess, g.hud)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return float64(g.spec.Screen.Width), float64(g.spec.Screen.Height)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
