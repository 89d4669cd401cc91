package weather

import (
	"fmt"
	"testing"
)

// literalFetch is the flag logic as the command line has always evaluated it.
func literalFetch(f Flags) map[Kind]bool {
	now, rain, forecast, life := f.Now, f.Rain, f.Forecast, f.Life
	return map[Kind]bool{
		KindForecast: (!now && !rain && !life) || forecast,
		KindWarning:  !now && !rain && !forecast && !life,
		KindRain:     (!now && !forecast && !life) || rain,
		KindRealtime: (!rain && !forecast && !life) || now,
		KindLife:     (!now && !rain && !forecast) || life,
	}
}

func literalMode(f Flags) Mode {
	switch {
	case f.Now:
		return ModeNow
	case f.Rain:
		return ModeRain
	case f.Forecast:
		return ModeForecast
	case f.Life:
		return ModeLife
	}
	return ModeNone
}

func TestResolveEveryFlagCombination(t *testing.T) {
	for bits := 0; bits < 16; bits++ {
		f := Flags{
			Now:      bits&1 != 0,
			Rain:     bits&2 != 0,
			Forecast: bits&4 != 0,
			Life:     bits&8 != 0,
		}
		t.Run(fmt.Sprintf("now=%t,rain=%t,forecast=%t,life=%t", f.Now, f.Rain, f.Forecast, f.Life), func(t *testing.T) {
			sel := Resolve(f)
			if want := literalMode(f); sel.Mode != want {
				t.Fatalf("mode = %q, want %q", sel.Mode, want)
			}
			want := literalFetch(f)
			for _, k := range Kinds {
				if sel.Wants(k) != want[k] {
					t.Fatalf("fetch %s = %t, want %t", k, sel.Wants(k), want[k])
				}
			}
		})
	}
}

func TestResolveNoFlagsFetchesEverything(t *testing.T) {
	sel := Resolve(Flags{})
	if sel.Mode != ModeNone {
		t.Fatalf("expected composite mode, got %q", sel.Mode)
	}
	for _, k := range Kinds {
		if !sel.Wants(k) {
			t.Fatalf("composite mode must fetch %s", k)
		}
	}
}

func TestResolveSingleModes(t *testing.T) {
	cases := []struct {
		mode Mode
		only Kind
	}{
		{ModeNow, KindRealtime},
		{ModeRain, KindRain},
		{ModeForecast, KindForecast},
		{ModeLife, KindLife},
	}
	for _, tc := range cases {
		sel := SelectionForMode(tc.mode)
		if sel.Mode != tc.mode {
			t.Fatalf("SelectionForMode(%q).Mode = %q", tc.mode, sel.Mode)
		}
		for _, k := range Kinds {
			if sel.Wants(k) != (k == tc.only) {
				t.Fatalf("mode %q: fetch %s = %t", tc.mode, k, sel.Wants(k))
			}
		}
	}
}
