package domain

// TsunamiGrade is the warning severity for a tsunami-expectation area.
type TsunamiGrade string

const (
	TsunamiGradeMajorWarning TsunamiGrade = "MajorWarning"
	TsunamiGradeWarning      TsunamiGrade = "Warning"
	TsunamiGradeWatch        TsunamiGrade = "Watch"
	TsunamiGradeForecast     TsunamiGrade = "Forecast"
	TsunamiGradeUnknown      TsunamiGrade = "Unknown"
)

// TsunamiHeight is the fixed enum of expected/observed wave heights.
type TsunamiHeight string

const (
	TsunamiHeightUnknown TsunamiHeight = "Unknown"
	TsunamiHeight10m     TsunamiHeight = "10m+"
	TsunamiHeight10mLow  TsunamiHeight = "10m"
	TsunamiHeight5m      TsunamiHeight = "5m"
	TsunamiHeight3m      TsunamiHeight = "3m"
	TsunamiHeight1m      TsunamiHeight = "1m"
	TsunamiHeight0_2m    TsunamiHeight = "0.2m"
)

// TsunamiTimeStatus discriminates a concrete first-wave time from the
// special status values, spec §3 "time is either a real epoch+formatted
// pair or one of the special status values".
type TsunamiTimeStatus string

const (
	TsunamiTimeConcrete        TsunamiTimeStatus = ""
	TsunamiTimeArrivingNow     TsunamiTimeStatus = "Arriving Now"
	TsunamiTimeArrivalExpected TsunamiTimeStatus = "Arrival Expected"
	TsunamiTimeArrived         TsunamiTimeStatus = "Arrived"
	TsunamiTimeUnknown         TsunamiTimeStatus = "Unknown"
)

// TsunamiTime carries either a concrete epoch+formatted time or a status
// sentinel.
type TsunamiTime struct {
	Status TsunamiTimeStatus
	Epoch  EpochTime // meaningful only when Status == TsunamiTimeConcrete
}

// TsunamiArea is one area's line within a tsunami-expectation event, spec
// §3 "Tsunami expectation".
type TsunamiArea struct {
	Name   string
	Grade  TsunamiGrade
	Height TsunamiHeight
	Time   TsunamiTime
}

// TsunamiExpectation is the normalized VTSE41 model, spec §4.5.
//
// Note the Python source's variable naming is inverted from what the names
// suggest: tsunami_watch_in_effect is actually len(forecast_list) > 0, and
// tsunami_warning_in_effect is len(area_list) > 0. WarningInEffect/
// WatchInEffect below preserve that exact semantic mapping, not the naming
// intuition — warning fires off the main area list, watch off the forecast
// (「若干の海面変動」) list.
type TsunamiExpectation struct {
	ParseOK         bool
	EventID         string
	Areas           []TsunamiArea // grades other than Forecast
	ForecastAreas   []TsunamiArea // areas tagged 津波予報（若干の海面変動）
	WarningInEffect bool          // len(Areas) > 0
	WatchInEffect   bool          // len(ForecastAreas) > 0
}

// TsunamiObsCondition is a station's current observed condition.
type TsunamiObsCondition string

const (
	TsunamiObsNone      TsunamiObsCondition = "None"
	TsunamiObsWeak      TsunamiObsCondition = "Weak"
	TsunamiObsObserving TsunamiObsCondition = "Observing"
)

// TsunamiHeightCondition flags whether the observed height is still rising.
type TsunamiHeightCondition string

const (
	TsunamiHeightCondNone   TsunamiHeightCondition = "None"
	TsunamiHeightCondRising TsunamiHeightCondition = "Rising"
)

// TsunamiStation is one station's row within a tsunami-observation event,
// spec §3 "Tsunami observation".
type TsunamiStation struct {
	Name            string
	Condition       TsunamiObsCondition
	Height          TsunamiHeight
	HeightCondition TsunamiHeightCondition
	HeightIsMax     bool
	Time            EpochTime
	HasHeight       bool // false for the Weak/Observing short-circuit rows
}

// TsunamiObservation is the normalized VTSE51 model, spec §4.5.
type TsunamiObservation struct {
	ParseOK  bool
	EventID  string
	Stations []TsunamiStation
}
