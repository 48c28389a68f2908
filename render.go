package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/lanerunner/ecs"
	"github.com/milk9111/lanerunner/ecs/component"
	"github.com/milk9111/lanerunner/prefabs"
	"golang.org/x/image/colornames"
)

const (
	nearPlane       = 0.1
	laneDrawAhead   = 120.0
	laneDrawBehind  = 4.0
	laneDrawStep    = 4.0
	minimapWidth    = 120
	minimapHeight   = 200
	minimapMargin   = 10
	debugCircleSegs = 24
)

type palette struct {
	background color.Color
	lane       color.Color
	player     color.Color
	camera     color.Color
	coin       color.Color
	powerUp    color.Color
	text       color.Color
}

func newPalette(spec prefabs.PaletteSpec) palette {
	return palette{
		background: spec.Background.Or(colornames.Black),
		lane:       spec.Lane.Or(colornames.Darkslategray),
		player:     spec.Player.Or(colornames.Gold),
		camera:     spec.Camera.Or(colornames.Deepskyblue),
		coin:       spec.Coin.Or(colornames.Khaki),
		powerUp:    spec.PowerUp.Or(colornames.Orchid),
		text:       spec.Text.Or(colornames.White),
	}
}

// renderer draws a session through the follow camera plus a top-down minimap.
type renderer struct {
	colors      palette
	ppu         float64
	physicsDraw bool
}

func newRenderer(spec prefabs.GameSpec, physicsDraw bool) *renderer {
	ppu := spec.Screen.PixelsPerUnit
	if ppu <= 0 {
		ppu = 8
	}
	return &renderer{
		colors:      newPalette(spec.Palette),
		ppu:         ppu,
		physicsDraw: physicsDraw || spec.Palette.PhysicsDraw,
	}
}

// projector maps world points through a camera pose. The camera looks down
// its local +Z with +X to the right.
type projector struct {
	eye    mgl64.Vec3
	inv    mgl64.Quat
	focal  float64
	cx, cy float64
}

func newProjector(t component.Transform, lens component.CameraLens, width, height int) projector {
	fov := lens.FOV
	if fov <= 0 || fov >= 180 {
		fov = 60
	}
	half := mgl64.DegToRad(fov) / 2
	return projector{
		eye:   t.Position,
		inv:   t.Rotation.Normalize().Conjugate(),
		focal: float64(height) / 2 / math.Tan(half),
		cx:    float64(width) / 2,
		cy:    float64(height) / 2,
	}
}

func (p projector) project(pt mgl64.Vec3) (x, y, depth float64, ok bool) {
	local := p.inv.Rotate(pt.Sub(p.eye))
	if local.Z() < nearPlane {
		return 0, 0, 0, false
	}
	return p.cx + local.X()/local.Z()*p.focal, p.cy - local.Y()/local.Z()*p.focal, local.Z(), true
}

func (r *renderer) draw(screen *ebiten.Image, s *session, width, height int) {
	screen.Fill(r.colors.background)
	if s == nil || s.world == nil {
		return
	}
	w := s.world

	playerT, ok := ecs.Get(w, s.player, component.TransformComponent.Kind())
	if !ok {
		return
	}

	if cam, ok := ecs.First(w, component.CameraTagComponent.Kind()); ok {
		camT, okT := ecs.Get(w, cam, component.TransformComponent.Kind())
		lens, okL := ecs.Get(w, cam, component.CameraLensComponent.Kind())
		if okT && okL {
			proj := newProjector(*camT, *lens, width, height)
			r.drawLanes(screen, proj, s.laneWidth, playerT.Position.Z())
			r.drawCollectibles(screen, w, proj)
			r.drawPlayer(screen, w, proj, s.player)
		}
	}

	r.drawMinimap(screen, s, playerT.Position, width, height)
}

func (r *renderer) drawLanes(screen *ebiten.Image, proj projector, laneWidth, z float64) {
	for lane := component.MinLane; lane <= component.MaxLane+1; lane++ {
		x := (float64(lane) - 0.5) * laneWidth
		for z0 := z - laneDrawBehind; z0 < z+laneDrawAhead; z0 += laneDrawStep {
			ax, ay, _, okA := proj.project(mgl64.Vec3{x, 0, z0})
			bx, by, _, okB := proj.project(mgl64.Vec3{x, 0, z0 + laneDrawStep})
			if !okA || !okB {
				continue
			}
			vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), 2, r.colors.lane, true)
		}
	}
}

func (r *renderer) drawCollectibles(screen *ebiten.Image, w *ecs.World, proj projector) {
	ecs.ForEach3(w, component.CollectibleComponent.Kind(), component.TransformComponent.Kind(), component.TriggerVolumeComponent.Kind(),
		func(_ ecs.Entity, c *component.Collectible, t *component.Transform, vol *component.TriggerVolume) {
			x, y, depth, ok := proj.project(t.Position)
			if !ok {
				return
			}
			radius := vol.Radius / depth * proj.focal
			clr := r.colors.coin
			if c.Kind.PowerUp() != component.PowerUpNone {
				clr = r.colors.powerUp
			}
			vector.DrawFilledCircle(screen, float32(x), float32(y), float32(radius), clr, true)
		})
}

func (r *renderer) drawPlayer(screen *ebiten.Image, w *ecs.World, proj projector, player ecs.Entity) {
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return
	}
	vol, ok := ecs.Get(w, player, component.TriggerVolumeComponent.Kind())
	if !ok {
		return
	}

	feet := t.Position.Add(mgl64.Vec3{0, vol.Bottom, 0})
	head := t.Position.Add(mgl64.Vec3{0, vol.Top, 0})
	fx, fy, depth, okF := proj.project(feet)
	hx, hy, _, okH := proj.project(head)
	if !okF || !okH {
		return
	}
	half := vol.Radius / depth * proj.focal
	top := math.Min(fy, hy)
	clr := r.colors.player
	if p, ok := ecs.Get(w, player, component.PlayerComponent.Kind()); ok && p.PowerUp.Active() {
		clr = r.colors.powerUp
	}
	vector.DrawFilledRect(screen, float32(fx-half), float32(top), float32(2*half), float32(math.Abs(fy-hy)), clr, true)
	vector.StrokeLine(screen, float32(fx), float32(fy), float32(hx), float32(hy), 1, r.colors.text, true)
}

// minimap maps the track plane (X, Z) to a panel anchored bottom right, with
// the player a quarter of the way up.
type minimap struct {
	x0, y0, w, h float64
	ppu          float64
	origin       mgl64.Vec3
}

func (m minimap) toScreen(x, z float64) (float64, float64) {
	return m.x0 + m.w/2 + (x-m.origin.X())*m.ppu, m.y0 + m.h*0.75 - (z-m.origin.Z())*m.ppu
}

func (m minimap) contains(sx, sy float64) bool {
	return sx >= m.x0 && sx <= m.x0+m.w && sy >= m.y0 && sy <= m.y0+m.h
}

func (r *renderer) drawMinimap(screen *ebiten.Image, s *session, playerPos mgl64.Vec3, width, height int) {
	m := minimap{
		x0:     float64(width - minimapWidth - minimapMargin),
		y0:     float64(height - minimapHeight - minimapMargin),
		w:      minimapWidth,
		h:      minimapHeight,
		ppu:    r.ppu,
		origin: playerPos,
	}
	vector.DrawFilledRect(screen, float32(m.x0), float32(m.y0), float32(m.w), float32(m.h), color.NRGBA{A: 180}, false)
	vector.StrokeRect(screen, float32(m.x0), float32(m.y0), float32(m.w), float32(m.h), 1, r.colors.lane, false)

	for lane := component.MinLane; lane <= component.MaxLane+1; lane++ {
		x := (float64(lane) - 0.5) * s.laneWidth
		sx, _ := m.toScreen(x, 0)
		vector.StrokeLine(screen, float32(sx), float32(m.y0), float32(sx), float32(m.y0+m.h), 1, r.colors.lane, false)
	}

	w := s.world
	ecs.ForEach2(w, component.CollectibleComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, c *component.Collectible, t *component.Transform) {
		sx, sy := m.toScreen(t.Position.X(), t.Position.Z())
		if !m.contains(sx, sy) {
			return
		}
		clr := r.colors.coin
		if c.Kind.PowerUp() != component.PowerUpNone {
			clr = r.colors.powerUp
		}
		vector.DrawFilledCircle(screen, float32(sx), float32(sy), 2, clr, false)
	})

	px, py := m.toScreen(playerPos.X(), playerPos.Z())
	vector.DrawFilledCircle(screen, float32(px), float32(py), 4, r.colors.player, false)

	ecs.ForEach2(w, component.CameraTagComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.CameraTag, t *component.Transform) {
		sx, sy := m.toScreen(t.Position.X(), t.Position.Z())
		if !m.contains(sx, sy) {
			return
		}
		vector.StrokeCircle(screen, float32(sx), float32(sy), 3, 1, r.colors.camera, false)
	})

	if r.physicsDraw && s.pipeline != nil && s.pipeline.Physics.Space() != nil {
		cp.DrawSpace(s.pipeline.Physics.Space(), &physicsDebugDrawer{screen: screen, view: m})
	}
}

func (r *renderer) drawHUD(screen *ebiten.Image, s *session, hud hudState) {
	if s == nil || s.world == nil {
		return
	}
	w := s.world

	score := 0
	if e, ok := ecs.First(w, component.ScoreComponent.Kind()); ok {
		if sc, ok := ecs.Get(w, e, component.ScoreComponent.Kind()); ok {
			score = sc.Value
		}
	}

	status := fmt.Sprintf("Score: %d    FPS: %.1f", score, ebiten.ActualFPS())
	if p, ok := ecs.Get(w, s.player, component.PlayerComponent.Kind()); ok {
		status += fmt.Sprintf("\nLane: %d -> %d (%.2f)  Height: %.2f  Distance: %.1f  [%s]",
			p.Lane.Current, p.Lane.Target, p.Lane.Progress, p.Vertical.Position, p.DistanceTravelled, p.Config.Policy)
		if p.PowerUp.Active() {
			status += fmt.Sprintf("\nPower-up: %s %.1fs", p.PowerUp.Kind, p.PowerUp.Remaining)
		}
	}
	if hud.flashTimer > 0 {
		status += "\n+" + hud.flash
	}
	ebitenutil.DebugPrintAt(screen, status, 10, 10)
}

// physicsDebugDrawer draws the trigger space onto the minimap.
type physicsDebugDrawer struct {
	screen *ebiten.Image
	view   minimap
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	sx, sy := d.view.toScreen(pos.X, pos.Y)
	vector.DrawFilledCircle(d.screen, float32(sx), float32(sy), float32(math.Max(size/2, 1)), toNRGBA(fill), false)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape != nil && shape.Sensor() {
		return cp.FColor{R: 1, G: 0.85, B: 0.2, A: 0.9}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 0.9}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, clr cp.FColor) {
	x1, y1 := d.view.toScreen(a.X, a.Y)
	x2, y2 := d.view.toScreen(b.X, b.Y)
	if !d.view.contains(x1, y1) && !d.view.contains(x2, y2) {
		return
	}
	vector.StrokeLine(d.screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, toNRGBA(clr), false)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, clr cp.FColor) {
	for i := range verts {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, clr cp.FColor) {
	points := make([]cp.Vector, 0, debugCircleSegs)
	for i := 0; i < debugCircleSegs; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegs))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, clr)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
