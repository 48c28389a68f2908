package main

import (
	"encoding/binary"
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	sampleRate  = 44100
	chimeVolume = 0.35
)

// tone is a short sine sweep with a linear fade out.
type tone struct {
	from, to float64 // Hz
	duration float64 // seconds
}

var chimeTones = map[string]tone{
	"coin":          {from: 880, to: 1320, duration: 0.08},
	"magnet":        {from: 440, to: 880, duration: 0.25},
	"invincibility": {from: 330, to: 990, duration: 0.3},
}

// chimes plays a pickup sound per collectible kind. The audio context can
// only be created once per process, so chimes outlive sessions.
type chimes struct {
	players map[string]*audio.Player
}

func newChimes() *chimes {
	ctx := audio.NewContext(sampleRate)
	c := &chimes{players: make(map[string]*audio.Player, len(chimeTones))}
	for kind, t := range chimeTones {
		p := ctx.NewPlayerFromBytes(synthesize(t))
		p.SetVolume(chimeVolume)
		c.players[kind] = p
	}
	return c
}

func (c *chimes) play(kind string) {
	if c == nil {
		return
	}
	p, ok := c.players[kind]
	if !ok {
		return
	}
	if err := p.Rewind(); err != nil {
		return
	}
	p.Play()
}

// synthesize renders t as 16-bit little endian stereo PCM.
func synthesize(t tone) []byte {
	n := int(t.duration * sampleRate)
	buf := make([]byte, n*4)
	phase := 0.0
	for i := 0; i < n; i++ {
		k := float64(i) / float64(n)
		freq := t.from + (t.to-t.from)*k
		phase += 2 * math.Pi * freq / sampleRate
		v := int16(math.Sin(phase) * (1 - k) * math.MaxInt16 * 0.8)
		binary.LittleEndian.PutUint16(buf[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(buf[i*4+2:], uint16(v))
	}
	return buf
}
