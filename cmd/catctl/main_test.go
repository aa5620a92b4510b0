package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cat-shelter/internal/adapters/blob"
	"cat-shelter/internal/adapters/storage/memory"
	"cat-shelter/internal/domain/browse"
	"cat-shelter/internal/domain/cats"
	"cat-shelter/internal/platform/httpclient"
	"cat-shelter/internal/router"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *browse.Service) {
	t.Helper()

	repo, err := memory.NewCatRepo(context.Background(), cats.DefaultSeed(time.Now))
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	catsSvc := cats.NewService(repo)
	browseSvc := browse.NewService(catsSvc)
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Cats:   catsSvc,
		Browse: browseSvc,
		Photos: blob.NewMemory(),
	}))
	t.Cleanup(func() {
		ts.Close()
		browseSvc.CloseAll()
	})
	return ts, browseSvc
}

func runCLI(t *testing.T, serverURL string, args ...string) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", serverURL}, args...))
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("catctl %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestOptions(t *testing.T) {
	ts, _ := newTestServer(t)

	out := runCLI(t, ts.URL, "options")
	if !strings.Contains(out, "age ranges: Any, 0-1 year, 1-2 years, 2-5 years, Over 5 years") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestList_ByAgeRange(t *testing.T) {
	ts, _ := newTestServer(t)

	out := runCLI(t, ts.URL, "list", "--age-range", "1-2 years")
	if !strings.Contains(out, "query: BY_AGE_RANGE") {
		t.Fatalf("expected BY_AGE_RANGE, got:\n%s", out)
	}
	// encabezado + 2 gatos
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 2 cats, got:\n%s", out)
	}
}

func TestList_RejectsUnknownGender(t *testing.T) {
	ts, _ := newTestServer(t)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--server", ts.URL, "list", "--gender", "other"})
	if err := cmd.ExecuteContext(context.Background()); err == nil || !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("expected 400 error, got %v", err)
	}
}

func TestAdd_WithPhotoThenRecent(t *testing.T) {
	ts, _ := newTestServer(t)

	photo := filepath.Join(t.TempDir(), "nala.png")
	if err := os.WriteFile(photo, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := runCLI(t, ts.URL, "add", "--name", "Nala", "--gender", "female", "--breed", "Persian", "--photo", photo)
	if !strings.Contains(out, "Nala") || !strings.Contains(out, "FEMALE") {
		t.Fatalf("unexpected add output:\n%s", out)
	}

	out = runCLI(t, ts.URL, "recent")
	if !strings.Contains(out, "Nala") {
		t.Fatalf("recent should include Nala:\n%s", out)
	}
}

func TestAdd_WithoutPhotoIsDropped(t *testing.T) {
	ts, _ := newTestServer(t)

	out := runCLI(t, ts.URL, "add", "--name", "Ghost", "--gender", "MALE")
	if !strings.Contains(out, "nothing admitted") {
		t.Fatalf("expected silent no-op, got:\n%s", out)
	}
}

func TestFeatured(t *testing.T) {
	ts, _ := newTestServer(t)

	out := runCLI(t, ts.URL, "featured")
	if !strings.Contains(out, "Tibs") {
		t.Fatalf("unexpected featured output:\n%s", out)
	}
}

func TestWatch_OnceClosesSession(t *testing.T) {
	ts, browseSvc := newTestServer(t)

	out := runCLI(t, ts.URL, "watch", "--once", "--gender", "female")
	if !strings.Contains(out, "BY_GENDER") || !strings.Contains(out, "(0)") {
		t.Fatalf("unexpected watch output:\n%s", out)
	}
	if n := browseSvc.Len(); n != 0 {
		t.Fatalf("session should be closed on exit, %d left", n)
	}
}

func TestFollow_ClosedEventEndsWithError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "event: cats\ndata: []\n\nevent: closed\ndata: {}\n\n")
	}))
	defer ts.Close()

	c, err := httpclient.NewWithBaseURL(ts.URL, time.Second)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	a := &app{client: c, logger: zap.NewNop()}

	var out bytes.Buffer
	err = a.follow(context.Background(), &out, "/sessions/x/stream", false)
	if !errors.Is(err, errStreamClosed) {
		t.Fatalf("expected errStreamClosed, got %v", err)
	}
	if !strings.Contains(out.String(), "(0)") {
		t.Fatalf("expected the cats event before closing:\n%s", out.String())
	}
}
