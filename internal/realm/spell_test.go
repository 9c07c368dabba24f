package realm

import (
	"testing"
	"time"
)

func defSpell(w *World, id int32, rng float32, castTime, cooldown time.Duration, castableWhileMoving bool, damage int32) {
	w.SpellDefs[id] = SpellDef{
		ID:                  id,
		Range:               rng,
		CastTime:            castTime,
		Cooldown:            cooldown,
		CastableWhileMoving: castableWhileMoving,
		Damage:              damage,
	}
}

func TestSystemSpellCastEnforcesCooldown(t *testing.T) {
	w := NewWorld()
	caster := newTestPlayer(w, 1, 0, 0)
	target := newTestPlayer(w, 2, 1, 0)
	defSpell(w, 7, 100, 2*time.Second, 5*time.Second, true, 10)

	w.Pending.Casts = append(w.Pending.Casts, CastCmd{Entity: caster, SpellID: 7, TargetID: target})
	systemSpellCast(w, 0, nil)
	if _, casting := w.Casts[caster]; !casting {
		t.Fatalf("expected cast to start")
	}
	if remaining := w.Cooldowns[caster][7]; remaining <= 0 {
		t.Fatalf("expected cooldown to be set when the cast starts, got %v", remaining)
	}

	systemSpellCast(w, 2*time.Second, nil) // resolve the cast
	if _, casting := w.Casts[caster]; casting {
		t.Fatalf("expected cast to have resolved")
	}

	w.Pending.Casts = append(w.Pending.Casts, CastCmd{Entity: caster, SpellID: 7, TargetID: target})
	systemSpellCast(w, 0, nil)
	if _, casting := w.Casts[caster]; casting {
		t.Fatalf("expected recast to be rejected while on cooldown")
	}

	systemSpellCast(w, 5*time.Second, nil)
	if remaining, onCooldown := w.Cooldowns[caster][7]; onCooldown && remaining > 0 {
		t.Fatalf("expected cooldown to have elapsed, got %v", remaining)
	}

	w.Pending.Casts = append(w.Pending.Casts, CastCmd{Entity: caster, SpellID: 7, TargetID: target})
	systemSpellCast(w, 0, nil)
	if _, casting := w.Casts[caster]; !casting {
		t.Fatalf("expected recast to succeed once cooldown elapsed")
	}
}

func TestSystemSpellCastBlocksNonCastableWhileMoving(t *testing.T) {
	w := NewWorld()
	caster := newTestPlayer(w, 1, 0, 0)
	target := newTestPlayer(w, 2, 1, 0)
	defSpell(w, 7, 100, time.Second, 0, false, 10)

	moving := map[EntityID]struct{}{caster: {}}
	w.Pending.Casts = append(w.Pending.Casts, CastCmd{Entity: caster, SpellID: 7, TargetID: target})
	systemSpellCast(w, 0, moving)
	if _, casting := w.Casts[caster]; casting {
		t.Fatalf("expected cast to be rejected while moving")
	}

	w.Pending.Casts = append(w.Pending.Casts, CastCmd{Entity: caster, SpellID: 7, TargetID: target})
	systemSpellCast(w, 0, nil)
	if _, casting := w.Casts[caster]; !casting {
		t.Fatalf("expected cast to start when not moving")
	}
}

func TestSystemSpellCastAllowsCastableWhileMoving(t *testing.T) {
	w := NewWorld()
	caster := newTestPlayer(w, 1, 0, 0)
	target := newTestPlayer(w, 2, 1, 0)
	defSpell(w, 7, 100, time.Second, 0, true, 10)

	moving := map[EntityID]struct{}{caster: {}}
	w.Pending.Casts = append(w.Pending.Casts, CastCmd{Entity: caster, SpellID: 7, TargetID: target})
	systemSpellCast(w, 0, moving)
	if _, casting := w.Casts[caster]; !casting {
		t.Fatalf("expected cast to start since spell is castable while moving")
	}
}

func TestResolveCastAppliesDamageAndTap(t *testing.T) {
	w := NewWorld()
	caster := newTestPlayer(w, 1, 0, 0)
	target := newTestPlayer(w, 2, 1, 0)
	defSpell(w, 7, 100, 0, 0, true, 25)

	w.Pending.Casts = append(w.Pending.Casts, CastCmd{Entity: caster, SpellID: 7, TargetID: target})
	systemSpellCast(w, 0, nil)
	systemSpellCast(w, time.Millisecond, nil)

	if got := w.Vitals[target].HP; got != 75 {
		t.Fatalf("target hp = %d, want 75", got)
	}
	if tap := w.Tapped[target]; !tap.Set || tap.OwnerID != caster {
		t.Fatalf("tap = %+v, want owner %v", tap, caster)
	}
}
