package domain

// DepthKind discriminates the special depth sentinels from an ordinary
// kilometer reading.
type DepthKind int

const (
	DepthKnown DepthKind = iota
	DepthShallow          // upstream code 0
	DepthUnknown          // upstream code -1, or "震源要素不明"
	DepthOver700          // upstream code 700
)

// Depth carries either a known depth in kilometers or one of the sentinel
// kinds described in spec §3.
type Depth struct {
	Kind DepthKind
	KM   int // meaningful only when Kind == DepthKnown
}

func KnownDepthKM(km int) Depth { return Depth{Kind: DepthKnown, KM: km} }
func ShallowDepth() Depth       { return Depth{Kind: DepthShallow} }
func UnknownDepth() Depth       { return Depth{Kind: DepthUnknown} }
func Over700Depth() Depth       { return Depth{Kind: DepthOver700} }

// MagnitudeKind discriminates the special magnitude sentinels.
type MagnitudeKind int

const (
	MagnitudeKnown MagnitudeKind = iota
	MagnitudeUnknown              // raw string "NaN" or "1.0"
	MagnitudeOver8
)

// Magnitude carries either a known float magnitude or a sentinel kind.
type Magnitude struct {
	Kind  MagnitudeKind
	Value float64 // meaningful only when Kind == MagnitudeKnown
}

func KnownMagnitude(v float64) Magnitude { return Magnitude{Kind: MagnitudeKnown, Value: v} }
func UnknownMagnitude() Magnitude        { return Magnitude{Kind: MagnitudeUnknown} }
func Over8Magnitude() Magnitude          { return Magnitude{Kind: MagnitudeOver8} }

// Hypocenter is the normalized earthquake source location, per spec §3.
type Hypocenter struct {
	Name       string
	RegionCode string
	Latitude   float64
	Longitude  float64
	Depth      Depth
	Magnitude  Magnitude
}

// IsUnknown reports whether this hypocenter carries no usable coordinates,
// the "震源要素不明" ("hypocenter elements unknown") case.
func (h Hypocenter) IsUnknown() bool {
	return h.Depth.Kind == DepthUnknown && h.Latitude == 0 && h.Longitude == 0
}
