package telegram

import (
	"testing"

	"github.com/shindosokuho/relay/internal/domain"
)

const tsunamiExpectationFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Report type="VTSE41">
  <Head>
    <Title>津波警報・注意報・予報</Title>
    <EventID>20240101000000</EventID>
  </Head>
  <Body>
    <Tsunami>
      <Forecast>
        <Item>
          <Area><Name>岩手県</Name><Code>121</Code></Area>
          <Category><Kind><Name>大津波警報</Name></Kind></Category>
          <FirstHeight><Condition>ただちに津波来襲と予測</Condition></FirstHeight>
          <MaxHeight><TsunamiHeight><Description>10m超</Description></TsunamiHeight></MaxHeight>
        </Item>
        <Item>
          <Area><Name>東京都</Name><Code>130</Code></Area>
          <Category><Kind><Name>津波注意報</Name></Kind></Category>
          <FirstHeight><Condition>津波到達予想時刻</Condition><ArrivalTime>2024-01-01T00:10:00+09:00</ArrivalTime></FirstHeight>
          <MaxHeight><TsunamiHeight><Description>1m</Description></TsunamiHeight></MaxHeight>
        </Item>
        <Item>
          <Area><Name>沖縄県</Name><Code>471</Code></Area>
          <Category><Kind><Name>津波予報（若干の海面変動）</Name></Kind></Category>
          <FirstHeight><Condition></Condition></FirstHeight>
          <MaxHeight><TsunamiHeight><Description>0.2m</Description></TsunamiHeight></MaxHeight>
        </Item>
      </Forecast>
    </Tsunami>
  </Body>
</Report>`

const tsunamiExpectationCancellationFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Report type="VTSE41">
  <Head>
    <Title>津波警報・注意報・予報</Title>
    <EventID>20240101000100</EventID>
  </Head>
  <Body>
    <Tsunami>
      <Forecast>
        <Item>
          <Area><Name>東京都</Name><Code>130</Code></Area>
          <Category><Kind><Name>津波注意報解除</Name></Kind></Category>
          <FirstHeight><Condition></Condition></FirstHeight>
          <MaxHeight><TsunamiHeight><Description></Description></TsunamiHeight></MaxHeight>
        </Item>
      </Forecast>
    </Tsunami>
  </Body>
</Report>`

func TestParseTsunamiExpectationDropsCancellationEntries(t *testing.T) {
	exp, err := ParseTsunamiExpectation([]byte(tsunamiExpectationCancellationFixture))
	if err != nil {
		t.Fatalf("ParseTsunamiExpectation: %v", err)
	}
	if exp.WatchInEffect || exp.WarningInEffect {
		t.Fatalf("expected a lifted advisory to produce no in-effect areas, got %+v", exp)
	}
	if len(exp.Areas) != 0 || len(exp.ForecastAreas) != 0 {
		t.Fatalf("expected the cancellation entry to be dropped entirely, got %+v", exp)
	}
}

func TestParseTsunamiExpectationMixedGrades(t *testing.T) {
	exp, err := ParseTsunamiExpectation([]byte(tsunamiExpectationFixture))
	if err != nil {
		t.Fatalf("ParseTsunamiExpectation: %v", err)
	}
	if !exp.WarningInEffect {
		t.Fatalf("expected WarningInEffect=true")
	}
	if !exp.WatchInEffect {
		t.Fatalf("expected WatchInEffect=true")
	}
	if len(exp.Areas) != 2 {
		t.Fatalf("expected 2 areas in the main warning list, got %d", len(exp.Areas))
	}
	if len(exp.ForecastAreas) != 1 {
		t.Fatalf("expected 1 area in the forecast list, got %d", len(exp.ForecastAreas))
	}
	if exp.Areas[0].Grade != domain.TsunamiGradeMajorWarning {
		t.Errorf("expected first area grade MajorWarning, got %v", exp.Areas[0].Grade)
	}
	if exp.Areas[0].Time.Status != domain.TsunamiTimeArrivingNow {
		t.Errorf("expected arriving-now time status, got %v", exp.Areas[0].Time.Status)
	}
	if exp.Areas[1].Time.Status != domain.TsunamiTimeConcrete {
		t.Errorf("expected concrete time status for second area, got %v", exp.Areas[1].Time.Status)
	}
}

const tsunamiObservationFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Report type="VTSE51">
  <Head>
    <Title>津波観測に関する情報</Title>
    <EventID>20240101000000</EventID>
  </Head>
  <Control><Status>通常</Status></Control>
  <Body>
    <Tsunami>
      <Observation>
        <Item>
          <Station><Name>相馬</Name></Station>
          <MaxHeight><Condition>観測中</Condition></MaxHeight>
        </Item>
        <Item>
          <Station><Name>宮古</Name></Station>
          <MaxHeight><TsunamiHeight><Description>0.3m以上</Description><DataTime>2024-01-01T00:15:00+09:00</DataTime></TsunamiHeight></MaxHeight>
        </Item>
      </Observation>
    </Tsunami>
  </Body>
</Report>`

func TestParseTsunamiObservationObservingShortCircuitsHeight(t *testing.T) {
	obs, err := ParseTsunamiObservation([]byte(tsunamiObservationFixture))
	if err != nil {
		t.Fatalf("ParseTsunamiObservation: %v", err)
	}
	if len(obs.Stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(obs.Stations))
	}
	if obs.Stations[0].Condition != domain.TsunamiObsObserving || obs.Stations[0].HasHeight {
		t.Fatalf("expected first station to short-circuit with no height, got %+v", obs.Stations[0])
	}
	if !obs.Stations[1].HasHeight || !obs.Stations[1].HeightIsMax {
		t.Fatalf("expected second station to carry a height flagged as max (以上), got %+v", obs.Stations[1])
	}
}

const tsunamiObservationWrongTitleFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Report type="VTSE51">
  <Head>
    <Title>別の情報</Title>
    <EventID>20240101000000</EventID>
  </Head>
  <Control><Status>通常</Status></Control>
  <Body><Tsunami><Observation></Observation></Tsunami></Body>
</Report>`

func TestParseTsunamiObservationRejectsWrongTitle(t *testing.T) {
	if _, err := ParseTsunamiObservation([]byte(tsunamiObservationWrongTitleFixture)); err == nil {
		t.Fatalf("expected an error for a telegram whose title isn't the observation title")
	}
}

const tsunamiObservationCancelledFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Report type="VTSE51">
  <Head>
    <Title>津波観測に関する情報</Title>
    <EventID>20240101000000</EventID>
    <InfoType>取消</InfoType>
  </Head>
  <Control><Status>通常</Status></Control>
  <Body><Tsunami><Observation></Observation></Tsunami></Body>
</Report>`

func TestParseTsunamiObservationRejectsCancelled(t *testing.T) {
	if _, err := ParseTsunamiObservation([]byte(tsunamiObservationCancelledFixture)); err == nil {
		t.Fatalf("expected an error for a cancelled (non-issued) telegram")
	}
}

const tsunamiObservationTestStatusFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Report type="VTSE51">
  <Head>
    <Title>津波観測に関する情報</Title>
    <EventID>20240101000000</EventID>
  </Head>
  <Control><Status>試験</Status></Control>
  <Body><Tsunami><Observation></Observation></Tsunami></Body>
</Report>`

func TestParseTsunamiObservationRejectsNonNormalControlStatus(t *testing.T) {
	if _, err := ParseTsunamiObservation([]byte(tsunamiObservationTestStatusFixture)); err == nil {
		t.Fatalf("expected an error for a non-normal (test/training) control status")
	}
}

func TestObservationTitleMatches(t *testing.T) {
	if !ObservationTitleMatches("津波観測に関する情報") {
		t.Fatalf("expected exact title match to pass")
	}
	if ObservationTitleMatches("別の情報") {
		t.Fatalf("expected a different title to fail the gate")
	}
}
