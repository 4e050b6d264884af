package domain

// IssueType classifies which earthquake-report telegram family produced a
// report, spec §3/§4.4.
type IssueType string

const (
	IssueScalePrompt         IssueType = "ScalePrompt"
	IssueDestination         IssueType = "Destination"
	IssueScaleAndDestination IssueType = "ScaleAndDestination"
	IssueDetailScale         IssueType = "DetailScale"
	IssueForeign             IssueType = "Foreign"
	IssueOther               IssueType = "Other"
	// IssueDestinationChange is the rare eq_destination_change family. Only
	// telegram.ParseDestinationChange produces it; telegram.Dispatch has no
	// case for it.
	// TODO: the upstream source treats this as a no-op returning None;
	// nobody has observed a payload that would tell us what it should
	// actually mean, so we keep it inert rather than invent semantics.
	IssueDestinationChange IssueType = "DestinationChange"
)

// DomesticTsunamiComment is the domestic tsunami disposition attached to an
// earthquake report, spec §3.
type DomesticTsunamiComment string

const (
	DomesticTsunamiNone          DomesticTsunamiComment = "None"
	DomesticTsunamiUnknown       DomesticTsunamiComment = "Unknown"
	DomesticTsunamiChecking      DomesticTsunamiComment = "Checking"
	DomesticTsunamiNonEffective  DomesticTsunamiComment = "NonEffective"
	DomesticTsunamiWatch         DomesticTsunamiComment = "Watch"
	DomesticTsunamiWarning       DomesticTsunamiComment = "Warning"
)

// ForeignTsunamiComment is the foreign-tsunami disposition ladder, spec §3 +
// §10 item 5 (WarningNorthwestPacific added from original_source, code 0223,
// a family spec.md's distilled enum omitted).
type ForeignTsunamiComment string

const (
	ForeignTsunamiNone                   ForeignTsunamiComment = "None"
	ForeignTsunamiUnknown                ForeignTsunamiComment = "Unknown"
	ForeignTsunamiChecking                ForeignTsunamiComment = "Checking"
	ForeignTsunamiNonEffectiveNearby      ForeignTsunamiComment = "NonEffectiveNearby"
	ForeignTsunamiWarningNearby           ForeignTsunamiComment = "WarningNearby"
	ForeignTsunamiWarningPacific          ForeignTsunamiComment = "WarningPacific"
	ForeignTsunamiWarningPacificWide      ForeignTsunamiComment = "WarningPacificWide"
	ForeignTsunamiWarningNorthwestPacific ForeignTsunamiComment = "WarningNorthwestPacific"
	ForeignTsunamiWarningIndian           ForeignTsunamiComment = "WarningIndian"
	ForeignTsunamiWarningIndianWide       ForeignTsunamiComment = "WarningIndianWide"
	ForeignTsunamiPotential               ForeignTsunamiComment = "Potential"
)

// AreaIntensity is one area's rolled-up maximum station intensity, spec §3
// "Area-intensity aggregate".
type AreaIntensity struct {
	AreaCode       string
	AreaName       string
	MaxIntensity   Intensity
	RecommendArea  bool // true once MaxIntensity >= Intensity4
}

// EarthquakeReport is the normalized model for ScalePrompt/Destination/
// DetailScale/Foreign telegrams, spec §3 "Earthquake report".
type EarthquakeReport struct {
	ParseOK          bool
	IsCancel         bool
	EventID          string
	IssueType        IssueType
	OccurrenceTime   EpochTime
	ReceiveTime      EpochTime
	MagnitudeRaw     string
	MaxIntensity     Intensity
	MaxIntensityWarn bool // true when observation was unknown/bigger_than_five_lower
	DomesticTsunami  DomesticTsunamiComment
	ForeignTsunami   ForeignTsunamiComment
	Hypocenter       Hypocenter // zero value for intensity-only reports
	Areas            []AreaIntensity
}

// Cancel returns the sentinel cancelled report for eventID, spec §4.4
// "Cancellation info-status yields a sentinel Cancel".
func Cancel(eventID string) EarthquakeReport {
	return EarthquakeReport{ParseOK: true, IsCancel: true, EventID: eventID}
}

// AreaMaxIntensity computes the recommend-area flag for a raw max
// intensity, spec §8 "Area promotion: recommend_areas=true iff
// max(area_intensities) >= 4".
func AreaMaxIntensity(max Intensity) bool {
	return max >= Intensity4
}
