package realm

import (
	"time"

	"github.com/embervale/realm/internal/wire"
)

// MaxSayDistance bounds proximity chat, handled by the realm rather
// than the social hub (spec §4.6).
const MaxSayDistance = 32

// systemSpellCast validates and starts casts for pending CastCmds, ticks
// down cooldowns, and advances/resolves casts already in flight (spec
// §4.4 step 4). moving holds every entity with a pending MoveCmd this
// tick, so CastableWhileMoving can be enforced against the same motion
// systemMovement is about to apply.
func systemSpellCast(w *World, dt time.Duration, moving map[EntityID]struct{}) {
	for id, cooldowns := range w.Cooldowns {
		for spellID, remaining := range cooldowns {
			remaining -= dt
			if remaining > 0 {
				cooldowns[spellID] = remaining
				continue
			}
			delete(cooldowns, spellID)
		}
		if len(cooldowns) == 0 {
			delete(w.Cooldowns, id)
		}
	}

	for _, cmd := range w.Pending.Casts {
		startCast(w, cmd, moving)
	}

	for id, cast := range w.Casts {
		cast.Remaining -= dt
		if cast.Remaining > 0 {
			w.Casts[id] = cast
			continue
		}
		resolveCast(w, id, cast)
		delete(w.Casts, id)
	}
}

func startCast(w *World, cmd CastCmd, moving map[EntityID]struct{}) {
	if _, ok := w.Transforms[cmd.Entity]; !ok {
		return
	}
	targetTr, ok := w.Transforms[cmd.TargetID]
	if !ok {
		return
	}
	def, ok := w.SpellDefs[cmd.SpellID]
	if !ok {
		return
	}
	casterTr := w.Transforms[cmd.Entity]
	if distance2(casterTr, targetTr) > float64(def.Range)*float64(def.Range) {
		return
	}
	if _, busy := w.Casts[cmd.Entity]; busy {
		return
	}
	if remaining := w.Cooldowns[cmd.Entity][cmd.SpellID]; remaining > 0 {
		return
	}
	if !def.CastableWhileMoving {
		if _, isMoving := moving[cmd.Entity]; isMoving {
			return
		}
	}

	w.Casts[cmd.Entity] = Casting{
		SpellID:   cmd.SpellID,
		CasterID:  cmd.Entity,
		TargetID:  cmd.TargetID,
		Remaining: def.CastTime,
	}
	if def.Cooldown > 0 {
		if w.Cooldowns[cmd.Entity] == nil {
			w.Cooldowns[cmd.Entity] = make(map[int32]time.Duration)
		}
		w.Cooldowns[cmd.Entity][cmd.SpellID] = def.Cooldown
	}
	w.broadcastToInterested(cmd.Entity, wire.StartCastingEvent{EntityID: uint64(cmd.Entity), SpellID: cmd.SpellID}, true)
}

func resolveCast(w *World, caster EntityID, cast Casting) {
	def, ok := w.SpellDefs[cast.SpellID]
	if !ok {
		return
	}
	vit, ok := w.Vitals[cast.TargetID]
	if !ok {
		return
	}
	vit.HP -= def.Damage
	w.Vitals[cast.TargetID] = vit

	if def.Damage > 0 {
		if _, tapped := w.Tapped[cast.TargetID]; !tapped {
			w.Tapped[cast.TargetID] = Tapped{OwnerID: caster, Set: true}
		}
	}

	w.broadcastToInterested(cast.TargetID, wire.SpellImpactEvent{
		TargetID: uint64(cast.TargetID),
		SpellID:  cast.SpellID,
		Amount:   def.Damage,
	}, true)
}
