package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shindosokuho/relay/internal/metrics"
)

const tsunamiExpectationTelegram = `<?xml version="1.0" encoding="UTF-8"?>
<Report type="VTSE41">
  <Head><Title>津波警報・注意報・予報</Title><EventID>1</EventID></Head>
  <Body><Tsunami><Forecast><Item>
    <Area><Name>岩手県</Name><Code>121</Code></Area>
    <Category><Kind><Name>津波注意報</Name></Kind></Category>
    <FirstHeight><Condition></Condition></FirstHeight>
    <MaxHeight><TsunamiHeight><Description>1m</Description></TsunamiHeight></MaxHeight>
  </Item></Forecast></Tsunami></Body>
</Report>`

func TestTsunamiPollerSkipsAlreadySeenEntries(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<feed><entry><id>urn:VTSE41:1</id><title>t</title><link href="/entry1"/></entry></feed>`))
	})
	mux.HandleFunc("/entry1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tsunamiExpectationTelegram))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{Timeout: time.Second, MaxRetries: 0}, metrics.NewRegistry(), nil)
	poller := NewTsunamiPoller()

	result, err := poller.Poll(context.Background(), c, srv.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("first poll: %v", err)
	}
	if !result.HasExpectation {
		t.Fatalf("expected the first poll to surface a new expectation entry")
	}

	result2, err := poller.Poll(context.Background(), c, srv.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("second poll: %v", err)
	}
	if result2.HasExpectation {
		t.Fatalf("expected the second poll to skip the already-seen entry")
	}
}
