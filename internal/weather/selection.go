package weather

// Flags mirrors the command line switches. They are independent booleans;
// CheckRain short-circuits the others.
type Flags struct {
	Now       bool
	Rain      bool
	Forecast  bool
	Life      bool
	CheckRain bool
}

// Kind identifies one of the five snapshots.
type Kind int

const (
	KindForecast Kind = iota
	KindWarning
	KindRain
	KindRealtime
	KindLife
)

func (k Kind) String() string {
	switch k {
	case KindForecast:
		return "forecast"
	case KindWarning:
		return "warning"
	case KindRain:
		return "rain"
	case KindRealtime:
		return "realtime"
	case KindLife:
		return "life"
	default:
		return "unknown"
	}
}

// Kinds lists every snapshot in fetch order.
var Kinds = []Kind{KindForecast, KindWarning, KindRain, KindRealtime, KindLife}

type flag int

const (
	flagNow flag = iota
	flagRain
	flagForecast
	flagLife
)

func (f Flags) has(fl flag) bool {
	switch fl {
	case flagNow:
		return f.Now
	case flagRain:
		return f.Rain
	case flagForecast:
		return f.Forecast
	case flagLife:
		return f.Life
	}
	return false
}

// fetchRule: a snapshot is fetched when its forcing flag is set, or when
// none of its suppressing flags are.
type fetchRule struct {
	suppressedBy []flag
	forcedBy     *flag
}

func forced(f flag) *flag { return &f }

var fetchTable = map[Kind]fetchRule{
	KindForecast: {suppressedBy: []flag{flagNow, flagRain, flagLife}, forcedBy: forced(flagForecast)},
	KindWarning:  {suppressedBy: []flag{flagNow, flagRain, flagForecast, flagLife}},
	KindRain:     {suppressedBy: []flag{flagNow, flagForecast, flagLife}, forcedBy: forced(flagRain)},
	KindRealtime: {suppressedBy: []flag{flagRain, flagForecast, flagLife}, forcedBy: forced(flagNow)},
	KindLife:     {suppressedBy: []flag{flagNow, flagRain, flagForecast}, forcedBy: forced(flagLife)},
}

// modeTable is checked in order; the first set flag wins.
var modeTable = []struct {
	flag flag
	mode Mode
}{
	{flagNow, ModeNow},
	{flagRain, ModeRain},
	{flagForecast, ModeForecast},
	{flagLife, ModeLife},
}

// Selection is the resolved output mode and the snapshots to fetch.
type Selection struct {
	Mode  Mode
	Fetch map[Kind]bool
}

// Wants reports whether snapshot k is fetched.
func (s Selection) Wants(k Kind) bool {
	return s.Fetch[k]
}

// Resolve maps command line flags to a Selection.
func Resolve(f Flags) Selection {
	sel := Selection{Mode: ModeNone, Fetch: make(map[Kind]bool, len(Kinds))}

	for _, entry := range modeTable {
		if f.has(entry.flag) {
			sel.Mode = entry.mode
			break
		}
	}

	for _, k := range Kinds {
		rule := fetchTable[k]
		if rule.forcedBy != nil && f.has(*rule.forcedBy) {
			sel.Fetch[k] = true
			continue
		}
		suppressed := false
		for _, fl := range rule.suppressedBy {
			if f.has(fl) {
				suppressed = true
				break
			}
		}
		sel.Fetch[k] = !suppressed
	}

	return sel
}

// SelectionForMode is the selection a single-mode request resolves to; an
// empty mode selects the composite report.
func SelectionForMode(m Mode) Selection {
	var f Flags
	switch m {
	case ModeNow:
		f.Now = true
	case ModeRain:
		f.Rain = true
	case ModeForecast:
		f.Forecast = true
	case ModeLife:
		f.Life = true
	}
	return Resolve(f)
}
