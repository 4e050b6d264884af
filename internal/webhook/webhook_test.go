package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shindosokuho/relay/internal/metrics"
)

type fakeSink struct {
	name     string
	err      error
	delivered int32
}

func (f *fakeSink) Name() string { return f.name }
func (f *fakeSink) Deliver(ctx context.Context, telegramType string, body []byte) error {
	atomic.AddInt32(&f.delivered, 1)
	return f.err
}

func TestFanOutDeliversToAllSinksConcurrently(t *testing.T) {
	ok := &fakeSink{name: "ok"}
	failing := &fakeSink{name: "bad", err: context.DeadlineExceeded}

	FanOut(context.Background(), []Sink{ok, failing, NoopSink{}}, "VXSE44", []byte("<xml/>"), metrics.NewRegistry(), nil)

	if atomic.LoadInt32(&ok.delivered) != 1 {
		t.Fatalf("expected the ok sink to be delivered to once")
	}
	if atomic.LoadInt32(&failing.delivered) != 1 {
		t.Fatalf("expected the failing sink to still be attempted")
	}
}

func TestHTTPSinkPostsRawBodyWithXMLContentType(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL)
	if err := sink.Deliver(context.Background(), "VXSE44", []byte("<xml/>")); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if gotContentType != "application/xml" {
		t.Fatalf("expected application/xml content type, got %q", gotContentType)
	}
	if string(gotBody) != "<xml/>" {
		t.Fatalf("expected the raw body to round-trip, got %q", gotBody)
	}
}
