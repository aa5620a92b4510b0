package router_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"cat-shelter/internal/adapters/blob"
	"cat-shelter/internal/adapters/storage/memory"
	"cat-shelter/internal/domain/browse"
	"cat-shelter/internal/domain/cats"
	"cat-shelter/internal/platform/metrics"
	"cat-shelter/internal/ports/photos"
	"cat-shelter/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := memory.NewCatRepo(context.Background(), cats.DefaultSeed(time.Now))
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	m := metrics.New()
	catsSvc := cats.NewService(repo, cats.WithRecorder(m), cats.WithLiveGauge(m.LiveReads()))
	browseSvc := browse.NewService(catsSvc)

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Cats:    catsSvc,
		Browse:  browseSvc,
		Photos:  blob.NewMemory(),
		Metrics: m,
	}))
	t.Cleanup(func() {
		ts.Close()
		browseSvc.CloseAll()
	})
	return ts
}

type catJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	ImagePath string `json:"image_path"`
	PhotoURL  string `json:"photo_url"`
}

type searchJSON struct {
	Query struct {
		Kind string `json:"kind"`
	} `json:"query"`
	Cats []catJSON `json:"cats"`
}

type sessionJSON struct {
	ID    string `json:"id"`
	Query struct {
		Kind     string `json:"kind"`
		AgeRange string `json:"age_range"`
	} `json:"query"`
}

func TestHTTP_Health(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected 200 ok, got %d %q", st, string(body))
	}
}

func TestHTTP_OptionsListAnyFirst(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/options", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	var got struct {
		Breeds          []string `json:"breeds"`
		Genders         []string `json:"genders"`
		AgeRanges       []string `json:"age_ranges"`
		DefaultDistance int      `json:"default_distance"`
	}
	mustDecode(t, body, &got)

	for name, list := range map[string][]string{"breeds": got.Breeds, "genders": got.Genders, "age_ranges": got.AgeRanges} {
		if len(list) == 0 || list[0] != "Any" {
			t.Fatalf("%s should start with Any, got %v", name, list)
		}
	}
	if len(got.AgeRanges) != 5 {
		t.Fatalf("expected Any + 4 age ranges, got %v", got.AgeRanges)
	}
	if got.DefaultDistance != 10 {
		t.Fatalf("expected default distance 10, got %d", got.DefaultDistance)
	}
}

func TestHTTP_SearchClassifiesCriteria(t *testing.T) {
	ts := newServer(t)

	cases := []struct {
		query string
		kind  string
		n     int
	}{
		{"", "ALL", 9},
		{"?age_range=" + url.QueryEscape("1-2 years"), "BY_AGE_RANGE", 2},
		{"?age_range=" + url.QueryEscape("Over 5 years"), "BY_AGE_RANGE", 3},
		{"?gender=female", "BY_GENDER", 0},
		{"?breed=Moggie&gender=MALE", "BY_BREED_AND_GENDER", 9},
		{"?breed=Moggie&gender=MALE&age_range=" + url.QueryEscape("0-1 year") + "&distance=50", "BY_BREED_AND_GENDER_AND_AGE_RANGE", 2},
	}
	for _, tc := range cases {
		st, body := doReq(t, ts.URL, "GET", "/cats"+tc.query, nil)
		if st != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d body=%s", tc.query, st, string(body))
		}
		var got searchJSON
		mustDecode(t, body, &got)
		if got.Query.Kind != tc.kind || len(got.Cats) != tc.n {
			t.Fatalf("%q: expected %s with %d cats, got %s with %d", tc.query, tc.kind, tc.n, got.Query.Kind, len(got.Cats))
		}
	}
}

func TestHTTP_SearchRejectsUnknownValues(t *testing.T) {
	ts := newServer(t)

	for _, q := range []string{"?gender=other", "?age_range=ancient", "?distance=far", "?distance=-1"} {
		st, body := doReq(t, ts.URL, "GET", "/cats"+q, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d body=%s", q, st, string(body))
		}
	}
}

func TestHTTP_AdmitJSON(t *testing.T) {
	ts := newServer(t)

	// sin nombre: no se crea nada
	st, _ := doReq(t, ts.URL, "POST", "/cats", map[string]any{
		"name": "", "gender": "MALE", "breed": "Moggie", "image_path": "assets/images/cat1.png",
	})
	if st != http.StatusNoContent {
		t.Fatalf("expected 204 for empty name, got %d", st)
	}

	st, body := doReq(t, ts.URL, "POST", "/cats", map[string]any{
		"name": "Luna", "gender": "female", "breed": "Siamese", "dob": "2023-02-01", "image_path": "assets/images/cat1.png",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", st, string(body))
	}
	var c catJSON
	mustDecode(t, body, &c)
	if c.ID <= 0 || c.Gender != "FEMALE" || c.PhotoURL != "" {
		t.Fatalf("unexpected cat %+v", c)
	}

	st, body = doReq(t, ts.URL, "GET", "/cats/"+itoa(c.ID), nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get cat, got %d body=%s", st, string(body))
	}

	st, _ = doReq(t, ts.URL, "POST", "/cats", map[string]any{
		"name": "Luna", "gender": "unknown", "image_path": "x.png",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad gender, got %d", st)
	}
}

func TestHTTP_AdmitMultipartStoresPhoto(t *testing.T) {
	ts := newServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "Tom")
	_ = mw.WriteField("gender", "MALE")
	_ = mw.WriteField("breed", "Moggie")
	fw, err := mw.CreateFormFile("photo", "tom.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	photo := []byte("\x89PNG fake image")
	_, _ = fw.Write(photo)
	_ = mw.Close()

	res, err := http.Post(ts.URL+"/cats", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", res.StatusCode, string(body))
	}

	var c catJSON
	mustDecode(t, body, &c)
	if !strings.HasPrefix(c.ImagePath, photos.RefPrefix) || c.PhotoURL == "" {
		t.Fatalf("expected uploaded photo reference, got %+v", c)
	}

	st, got := doReq(t, ts.URL, "GET", c.PhotoURL, nil)
	if st != http.StatusOK || !bytes.Equal(got, photo) {
		t.Fatalf("expected stored photo, got %d %q", st, string(got))
	}

	// recién ingresado: aparece en recientes junto a los dos gatitos de la semilla
	st, body = doReq(t, ts.URL, "GET", "/cats/recent", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 recent, got %d", st)
	}
	var recent []catJSON
	mustDecode(t, body, &recent)
	if len(recent) != 3 {
		t.Fatalf("expected 3 recent cats, got %d", len(recent))
	}
}

func TestHTTP_CatLookupErrors(t *testing.T) {
	ts := newServer(t)

	if st, _ := doReq(t, ts.URL, "GET", "/cats/abc", nil); st != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/cats/999", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", st)
	}
	// la semilla usa una imagen empaquetada, no una foto subida
	if st, _ := doReq(t, ts.URL, "GET", "/cats/1/photo", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 for bundled image, got %d", st)
	}
}

func TestHTTP_Featured(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "GET", "/cats/featured", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}
	var got struct {
		Cat catJSON `json:"cat"`
	}
	mustDecode(t, body, &got)
	if got.Cat.Name != "Tibs" {
		t.Fatalf("unexpected featured cat %+v", got.Cat)
	}
}

func TestHTTP_BrowseSessionLifecycle(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "POST", "/sessions", nil)
	if st != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", st, string(body))
	}
	var sess sessionJSON
	mustDecode(t, body, &sess)
	if sess.ID == "" || sess.Query.Kind != "ALL" {
		t.Fatalf("unexpected session %+v", sess)
	}

	// mismo filtro: sin consulta nueva
	st, body = doReq(t, ts.URL, "PUT", "/sessions/"+sess.ID+"/criteria", map[string]any{
		"breed": "Any", "gender": "Any", "age_range": "Any", "distance": 10,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}
	var upd struct {
		Changed bool        `json:"changed"`
		Session sessionJSON `json:"session"`
	}
	mustDecode(t, body, &upd)
	if upd.Changed {
		t.Fatalf("expected changed=false for identical criteria")
	}

	st, body = doReq(t, ts.URL, "PUT", "/sessions/"+sess.ID+"/criteria", map[string]any{
		"breed": "Any", "gender": "Any", "age_range": "1-2 years", "distance": 10,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}
	mustDecode(t, body, &upd)
	if !upd.Changed || upd.Session.Query.Kind != "BY_AGE_RANGE" || upd.Session.Query.AgeRange != "1-2 years" {
		t.Fatalf("unexpected update %+v", upd)
	}

	got := readStream(t, ts.URL+"/sessions/"+sess.ID+"/stream", func(items []catJSON) bool { return len(items) == 2 })
	if len(got) != 2 {
		t.Fatalf("expected 2 cats from stream, got %d", len(got))
	}

	st, _ = doReq(t, ts.URL, "PUT", "/sessions/"+sess.ID+"/criteria", map[string]any{"age_range": "3-4 years"})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown age range, got %d", st)
	}

	if st, _ := doReq(t, ts.URL, "DELETE", "/sessions/"+sess.ID, nil); st != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/sessions/"+sess.ID, nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", st)
	}
}

func TestHTTP_BrowseCriteriaOmittedFieldsUseDefaults(t *testing.T) {
	ts := newServer(t)

	_, body := doReq(t, ts.URL, "POST", "/sessions", nil)
	var sess sessionJSON
	mustDecode(t, body, &sess)

	// sin distance ni filtros: es el mismo filtro con el que abrió la sesión
	st, body := doReq(t, ts.URL, "PUT", "/sessions/"+sess.ID+"/criteria", map[string]any{})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}
	var upd struct {
		Changed bool `json:"changed"`
		Session struct {
			Criteria struct {
				Distance int `json:"distance"`
			} `json:"criteria"`
		} `json:"session"`
	}
	mustDecode(t, body, &upd)
	if upd.Changed || upd.Session.Criteria.Distance != 10 {
		t.Fatalf("expected unchanged session with distance 10, got %+v", upd)
	}

	st, body = doReq(t, ts.URL, "PUT", "/sessions/"+sess.ID+"/criteria", map[string]any{
		"breed": "Any", "gender": "Any", "age_range": "Any",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}
	mustDecode(t, body, &upd)
	if upd.Changed {
		t.Fatalf("expected changed=false when distance is omitted")
	}
}

func TestHTTP_BrowseStreamEndsWhenSessionCloses(t *testing.T) {
	ts := newServer(t)

	_, body := doReq(t, ts.URL, "POST", "/sessions", nil)
	var sess sessionJSON
	mustDecode(t, body, &sess)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/sessions/"+sess.ID+"/stream", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer res.Body.Close()
	events := scanEvents(res.Body)

	if items := nextCats(t, events); len(items) != 9 {
		t.Fatalf("expected 9 cats on connect, got %d", len(items))
	}

	if st, _ := doReq(t, ts.URL, "DELETE", "/sessions/"+sess.ID, nil); st != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", st)
	}

	var sawClosed bool
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if !sawClosed {
					t.Fatalf("stream ended without a closed event")
				}
				return
			}
			if ev.name == "closed" {
				sawClosed = true
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("stream still open after the session was deleted")
		}
	}
}

func TestHTTP_RecentStreamPushesAdmissions(t *testing.T) {
	ts := newServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/cats/recent/stream", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer res.Body.Close()
	events := scanEvents(res.Body)

	if items := nextCats(t, events); len(items) != 2 {
		t.Fatalf("expected 2 recent cats on connect, got %d", len(items))
	}

	st, body := doReq(t, ts.URL, "POST", "/cats", map[string]any{
		"name": "Nala", "gender": "FEMALE", "breed": "Persian", "image_path": "assets/images/cat1.png",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", st, string(body))
	}

	items := nextCats(t, events)
	if len(items) != 3 || items[0].Name != "Nala" {
		t.Fatalf("expected Nala first among 3 recent cats, got %+v", items)
	}
}

func TestHTTP_MetricsExposeStoreAndHTTP(t *testing.T) {
	ts := newServer(t)

	doReq(t, ts.URL, "GET", "/cats", nil)

	st, body := doReq(t, ts.URL, "GET", "/metrics", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	text := string(body)
	for _, want := range []string{
		`catshelter_store_operations_total{operation="run_all",result="success"}`,
		`catshelter_http_requests_total{method="GET",route="/cats",status="200"}`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}

func mustDecode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", string(body), err)
	}
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

type sseEvent struct {
	name string
	data string
}

// scanEvents parsea el stream en una goroutine; el canal se cierra con el body.
func scanEvents(r io.Reader) <-chan sseEvent {
	out := make(chan sseEvent, 16)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		var ev sseEvent
		for sc.Scan() {
			line := sc.Text()
			switch {
			case line == "":
				if ev.data != "" {
					out <- ev
				}
				ev = sseEvent{}
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			}
		}
	}()
	return out
}

func nextCats(t *testing.T, events <-chan sseEvent) []catJSON {
	t.Helper()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("stream closed")
			}
			if ev.name != "cats" {
				continue
			}
			var items []catJSON
			mustDecode(t, []byte(ev.data), &items)
			return items
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for cats event")
			return nil
		}
	}
}

func readStream(t *testing.T, streamURL string, ok func([]catJSON) bool) []catJSON {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", streamURL, nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 stream, got %d", res.StatusCode)
	}

	events := scanEvents(res.Body)
	for {
		items := nextCats(t, events)
		if ok(items) {
			return items
		}
	}
}
