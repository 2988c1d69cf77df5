package daynight

import "github.com/df07/voxel-timelapse/pkg/core"

// skyKey holds the sky colors at one time of day
type skyKey struct {
	t       float64 // Normalized time, ascending, wraps from the last key to the first
	zenith  core.Vec3
	horizon core.Vec3
}

// skyKeys defines the sky through the day. The segment after the last key
// interpolates back to the first one at t+1.
var skyKeys = []skyKey{
	{ // midnight
		t:       0.00,
		zenith:  core.NewVec3(0.06, 0.08, 0.12),
		horizon: core.NewVec3(0.10, 0.10, 0.16),
	},
	{ // pre-dawn
		t:       0.20,
		zenith:  core.NewVec3(0.08, 0.09, 0.18),
		horizon: core.NewVec3(0.34, 0.25, 0.36),
	},
	{ // sunrise
		t:       0.27,
		zenith:  core.NewVec3(0.35, 0.45, 0.75),
		horizon: core.NewVec3(1.00, 0.70, 0.55),
	},
	{ // morning
		t:       0.38,
		zenith:  core.NewVec3(0.55, 0.75, 1.00),
		horizon: core.NewVec3(0.90, 0.95, 1.00),
	},
	{ // afternoon
		t:       0.62,
		zenith:  core.NewVec3(0.55, 0.75, 1.00),
		horizon: core.NewVec3(0.90, 0.95, 1.00),
	},
	{ // sunset
		t:       0.73,
		zenith:  core.NewVec3(0.33, 0.40, 0.70),
		horizon: core.NewVec3(1.00, 0.62, 0.45),
	},
	{ // twilight
		t:       0.80,
		zenith:  core.NewVec3(0.10, 0.10, 0.22),
		horizon: core.NewVec3(0.68, 0.50, 0.72),
	},
}

// samplePalette linearly interpolates the two keys surrounding t in [0,1)
func samplePalette(t float64) skyKey {
	n := len(skyKeys)
	for i := 0; i < n; i++ {
		a := skyKeys[i]
		b := skyKeys[(i+1)%n]
		tb := b.t
		if i == n-1 {
			tb += 1
		}

		ta := a.t
		tt := t
		if i == n-1 && t < a.t {
			tt += 1
		}
		if tt < ta || tt >= tb {
			continue
		}

		k := (tt - ta) / (tb - ta)
		return skyKey{
			t:       t,
			zenith:  a.zenith.Lerp(b.zenith, k),
			horizon: a.horizon.Lerp(b.horizon, k),
		}
	}
	// Only reachable for t before the first key, which wraps from the last one
	last := skyKeys[n-1]
	first := skyKeys[0]
	k := (t + 1 - last.t) / (first.t + 1 - last.t)
	return skyKey{
		t:       t,
		zenith:  last.zenith.Lerp(first.zenith, k),
		horizon: last.horizon.Lerp(first.horizon, k),
	}
}
