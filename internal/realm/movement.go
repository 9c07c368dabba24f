package realm

import (
	"math"
	"time"

	"github.com/embervale/realm/internal/wire"
)

// systemMovement applies every pending MoveCmd (spec §4.4 step 3).
// Commands whose entity no longer exists (e.g. disconnected mid-batch)
// are silently dropped.
func systemMovement(w *World, dt time.Duration) {
	for _, cmd := range w.Pending.Moves {
		tr, ok := w.Transforms[cmd.Entity]
		if !ok {
			continue
		}
		ident, ok := w.Identities[cmd.Entity]
		if !ok {
			continue
		}

		theta := wire.DecodeYaw(cmd.Yaw)
		tr.Yaw = float32(theta)

		forward := float64(cmd.Forward) / 127.0
		sideways := float64(cmd.Sideways) / 127.0

		// forward is the -Z convention: a forward command of +1 moves the
		// entity toward -Z in its own facing direction (spec §8 scenario 2).
		fwdX, fwdZ := -math.Sin(theta), -math.Cos(theta)
		rightX, rightZ := math.Cos(theta), -math.Sin(theta)

		speed := float64(ident.MovementSpeed)
		dtSecs := dt.Seconds()

		tr.X += float32((forward*fwdX + sideways*rightX) * speed * dtSecs)
		tr.Z += float32((forward*fwdZ + sideways*rightZ) * speed * dtSecs)

		w.Transforms[cmd.Entity] = tr
	}
}
