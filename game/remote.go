package game

import (
	"log/slog"

	"github.com/pthm-cable/sph/server"
	"github.com/pthm-cable/sph/ui"
)

// drainUpdates applies every pending remote update without blocking.
func (g *Game) drainUpdates() {
	if g.updates == nil {
		return
	}
	for {
		select {
		case u, ok := <-g.updates:
			if !ok {
				g.updates = nil
				return
			}
			g.applyRemote(u)
		default:
			return
		}
	}
}

// applyRemote applies one client update. Time step and particle count are
// clamped to the panel's ranges; engine parameters go through validation.
func (g *Game) applyRemote(u server.ParamUpdate) {
	var change ui.ParamsChange

	if u.ChangesParams() {
		g.settings.Params = u.Apply(g.settings.Params)
		change.Params = true
	}
	if u.DT != nil {
		dt := ui.FieldRange{Min: float32(g.cfg.Physics.DTMin), Max: float32(g.cfg.Physics.DTMax)}
		g.settings.DT = dt.Clamp(*u.DT)
	}
	if u.Particles != nil {
		n := min(max(*u.Particles, g.cfg.Particles.Min), g.cfg.Particles.Max)
		if n != g.settings.ParticleCount {
			g.settings.ParticleCount = n
			change.Count = true
		}
	}
	change.Reset = u.Reset

	slog.Info("remote parameter update",
		"params", change.Params,
		"dt", g.settings.DT,
		"particles", g.settings.ParticleCount,
		"reset", u.Reset,
	)
	g.applySettings(change)
}
