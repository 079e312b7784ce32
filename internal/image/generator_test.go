package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bluenot3/ZENGEN/internal/bot"
	"github.com/Bluenot3/ZENGEN/internal/observability"
	"github.com/Bluenot3/ZENGEN/internal/provider"
	"github.com/Bluenot3/ZENGEN/internal/usage"
	llmerrors "github.com/Bluenot3/ZENGEN/pkg/errors"
)

type noRates struct{}

func (noRates) CostPer1K(string) (float64, bool) { return 0, false }

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.LoggerConfig{Output: io.Discard}, observability.NewRedactor())
}

func newTestGenerator(t *testing.T, openaiURL, replicateURL string) *Generator {
	t.Helper()
	return NewGenerator(testLogger(),
		WithEndpoints(openaiURL, replicateURL),
		WithPolling(5*time.Millisecond, 200*time.Millisecond),
	)
}

func TestGenerateDallE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"data":[{"url":"https://img.example/one.png"}]}`)
	}))
	defer srv.Close()

	g := newTestGenerator(t, srv.URL, "http://unused")
	b := bot.New("b", noRates{})
	b.SetCredential(provider.KindOpenAI, "sk-test")

	url, err := g.Generate(context.Background(), b, Request{Prompt: "a lighthouse", Style: "realistic"})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/one.png", url)

	s := b.Ledger().Summary()
	require.Len(t, s.History, 1)
	assert.Equal(t, usage.KindImage, s.History[0].Kind)
	assert.Equal(t, "dall-e-3", s.History[0].Model)
	assert.InDelta(t, 0.04, s.History[0].Cost, 1e-9)
}

func TestGenerateNoCredentials(t *testing.T) {
	g := newTestGenerator(t, "http://unused", "http://unused")
	b := bot.New("b", noRates{})

	_, err := g.Generate(context.Background(), b, Request{Prompt: "anything", Style: "realistic"})
	require.Error(t, err)
	assert.True(t, llmerrors.IsType(err, llmerrors.TypeMissingCredential))
}

func TestGenerateReplicatePolling(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token r8-test", r.Header.Get("Authorization"))
		fmt.Fprintf(w, `{"id":"p1","status":"starting","urls":{"get":"%s/predictions/p1"}}`, srv.URL)
	})
	mux.HandleFunc("GET /predictions/p1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			fmt.Fprint(w, `{"id":"p1","status":"processing"}`)
			return
		}
		fmt.Fprint(w, `{"id":"p1","status":"succeeded","output":["https://img.example/out.png"]}`)
	})

	g := newTestGenerator(t, "http://unused", srv.URL)
	b := bot.New("b", noRates{})
	b.SetCredential(provider.KindReplicate, "r8-test")

	url, err := g.Generate(context.Background(), b, Request{Prompt: "a fox", Style: "anime"})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/out.png", url)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))

	s := b.Ledger().Summary()
	require.Len(t, s.History, 1)
	assert.Equal(t, "replicate-anime", s.History[0].Model)
	assert.InDelta(t, 0.01, s.History[0].Cost, 1e-9)
}

func TestGenerateReplicateTimeout(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"p1","status":"starting","urls":{"get":"%s/predictions/p1"}}`, srv.URL)
	})
	mux.HandleFunc("GET /predictions/p1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p1","status":"processing"}`)
	})

	g := NewGenerator(testLogger(),
		WithEndpoints("http://unused", srv.URL),
		WithPolling(5*time.Millisecond, 30*time.Millisecond),
	)
	b := bot.New("b", noRates{})
	b.SetCredential(provider.KindReplicate, "r8-test")

	_, err := g.Generate(context.Background(), b, Request{Prompt: "a fox", Style: "3d"})
	require.Error(t, err)
	assert.True(t, llmerrors.IsType(err, llmerrors.TypeTimeout))
	assert.Empty(t, b.Ledger().Summary().History)
}

func TestGenerateReplicateFailedPrediction(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"p1","status":"starting","urls":{"get":"%s/predictions/p1"}}`, srv.URL)
	})
	mux.HandleFunc("GET /predictions/p1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p1","status":"failed"}`)
	})

	g := newTestGenerator(t, "http://unused", srv.URL)
	b := bot.New("b", noRates{})
	b.SetCredential(provider.KindReplicate, "r8-test")

	_, err := g.Generate(context.Background(), b, Request{Prompt: "a fox", Style: "realistic"})
	require.Error(t, err)
	assert.True(t, llmerrors.IsType(err, llmerrors.TypeProvider))
}

func TestGenerateFallsBackToReplicate(t *testing.T) {
	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"billing hard limit reached"}}`)
	}))
	defer openaiSrv.Close()

	mux := http.NewServeMux()
	replicateSrv := httptest.NewServer(mux)
	defer replicateSrv.Close()

	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"id":"p1","status":"starting","urls":{"get":"%s/predictions/p1"}}`, replicateSrv.URL)
	})
	mux.HandleFunc("GET /predictions/p1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p1","status":"succeeded","output":["https://img.example/fallback.png"]}`)
	})

	g := newTestGenerator(t, openaiSrv.URL, replicateSrv.URL)
	b := bot.New("b", noRates{})
	b.SetCredential(provider.KindOpenAI, "sk-test")
	b.SetCredential(provider.KindReplicate, "r8-test")

	url, err := g.Generate(context.Background(), b, Request{Prompt: "a fox", Style: "artistic"})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/fallback.png", url)

	s := b.Ledger().Summary()
	require.Len(t, s.History, 1)
	assert.Equal(t, "replicate-artistic", s.History[0].Model)
}

func TestGenerateUnknownStyle(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := newTestGenerator(t, "http://unused", srv.URL)
	b := bot.New("b", noRates{})
	b.SetCredential(provider.KindReplicate, "r8-test")

	_, err := g.Generate(context.Background(), b, Request{Prompt: "a fox", Style: "cubist"})
	require.Error(t, err)
	assert.True(t, llmerrors.IsType(err, llmerrors.TypeProvider))
}
