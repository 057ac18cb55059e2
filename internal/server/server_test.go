package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentngwk/GIT-ML-DS/internal/analysis"
	"github.com/vincentngwk/GIT-ML-DS/internal/dataset"
)

const sensorsCSV = "id,temp,pressure\n" +
	"1,20.5,101.2\n" +
	"2,21.0,101.0\n" +
	"3,21.7,100.8\n" +
	"4,22.1,100.9\n" +
	"5,22.4,101.5\n"

type countingProfiler struct {
	calls atomic.Int32
	inner analysis.Profiler
}

func (c *countingProfiler) Profile(ctx context.Context, ds *dataset.Dataset) (*analysis.Report, error) {
	c.calls.Add(1)
	return c.inner.Profile(ctx, ds)
}

func defaultOptions() Options {
	return Options{
		MaxUploadBytes: 1 << 20,
		TableMaxRows:   50,
		SessionTTL:     time.Hour,
		ExampleSeed:    42,
		ExampleCSVURL:  "http://example.test/ai4i2020.csv",
	}
}

func newTestServer(t *testing.T, opt Options, p analysis.Profiler) (*httptest.Server, *http.Client) {
	t.Helper()
	if p == nil {
		aopt := analysis.DefaultOptions()
		aopt.Explorative = true
		p = analysis.NewEngine(aopt)
	}
	ts := httptest.NewServer(New(opt, p).Handler())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func uploadRequest(t *testing.T, url, name, content string, asJSON bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if asJSON {
		req.Header.Set("Accept", "application/json")
	}
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func getJSON(t *testing.T, c *http.Client, url string) (int, APIResponse) {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestIndexAwaitingInput(t *testing.T) {
	ts, c := newTestServer(t, defaultOptions(), nil)
	for i := 0; i < 2; i++ {
		resp, err := c.Get(ts.URL + "/")
		require.NoError(t, err)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "<title>The EDA App</title>")
		assert.Contains(t, body, "1. Upload CSV data here")
		assert.Contains(t, body, "Awaiting for CSV file to be uploaded.")
		assert.Contains(t, body, "Press to use Example Dataset")
		assert.Contains(t, body, "http://example.test/ai4i2020.csv")
		assert.NotContains(t, body, "Input DataFrame")
	}
	_, state := getJSON(t, c, ts.URL+"/api/state")
	data := state.Data.(map[string]interface{})
	assert.Equal(t, "awaiting_input", data["state"])
	assert.Nil(t, data["dataset"])
}

func TestUploadShowsTableAndReport(t *testing.T) {
	ts, c := newTestServer(t, defaultOptions(), nil)
	resp, err := c.Do(uploadRequest(t, ts.URL+"/upload", "sensors.csv", sensorsCSV, false))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Input DataFrame")
	assert.Contains(t, body, "5 rows × 3 columns")
	assert.Contains(t, body, "Profiling Report")
	assert.Contains(t, body, "Number of variables")
	assert.NotContains(t, body, "Awaiting for CSV file")
	assert.NotContains(t, body, "Press to use Example Dataset")

	_, state := getJSON(t, c, ts.URL+"/api/state")
	data := state.Data.(map[string]interface{})
	assert.Equal(t, "has_uploaded_data", data["state"])
	ds := data["dataset"].(map[string]interface{})
	assert.EqualValues(t, 5, ds["rows"])
	assert.EqualValues(t, 3, ds["cols"])

	code, rep := getJSON(t, c, ts.URL+"/api/report")
	require.Equal(t, http.StatusOK, code)
	vars := rep.Data.(map[string]interface{})["variables"].([]interface{})
	assert.Len(t, vars, 3)
}

func TestMalformedUploadIsVisible(t *testing.T) {
	ts, c := newTestServer(t, defaultOptions(), nil)
	bad := "a,b,c\n1,2,3\n4,5\n"

	resp, err := c.Do(uploadRequest(t, ts.URL+"/upload", "bad.csv", bad, false))
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `class="error"`)
	assert.Contains(t, body, "bad.csv")
	assert.Contains(t, body, "Awaiting for CSV file to be uploaded.")
	assert.NotContains(t, body, "Input DataFrame")

	resp, err = c.Do(uploadRequest(t, ts.URL+"/upload", "bad.csv", bad, true))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var out APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, out.Status)
	assert.NotEmpty(t, out.Msg)
}

func TestExampleDataset(t *testing.T) {
	ts, c := newTestServer(t, defaultOptions(), nil)
	resp, err := c.Post(ts.URL+"/example", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "100 rows × 7 columns, showing the first 50")

	code, table := getJSON(t, c, ts.URL+"/api/table?offset=10&limit=5")
	require.Equal(t, http.StatusOK, code)
	data := table.Data.(map[string]interface{})
	assert.EqualValues(t, 100, data["total_rows"])
	assert.EqualValues(t, 7, data["total_cols"])
	assert.Len(t, data["rows"], 5)
	assert.Equal(t, []interface{}{"a", "b", "c", "d", "e", "f", "g"}, data["columns"])

	resp, err = c.Get(ts.URL + "/api/report?format=markdown")
	require.NoError(t, err)
	md := readBody(t, resp)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/markdown"))
	assert.Contains(t, md, "Variables: 7")

	code, _ = getJSON(t, c, ts.URL+"/api/report?format=pdf")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = getJSON(t, c, ts.URL+"/api/table?limit=-1")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestUploadWinsOverExample(t *testing.T) {
	ts, c := newTestServer(t, defaultOptions(), nil)
	resp, err := c.Do(uploadRequest(t, ts.URL+"/upload", "sensors.csv", sensorsCSV, true))
	require.NoError(t, err)
	readBody(t, resp)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/example", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")
	resp, err = c.Do(req)
	require.NoError(t, err)
	var out APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	data := out.Data.(map[string]interface{})
	assert.Equal(t, "has_uploaded_data", data["state"])
	assert.EqualValues(t, 5, data["dataset"].(map[string]interface{})["rows"])
}

func TestUploadTooLarge(t *testing.T) {
	opt := defaultOptions()
	opt.MaxUploadBytes = 1024
	srv := New(opt, analysis.NewEngine(analysis.DefaultOptions()))
	big := "x\n" + strings.Repeat("1\n", 4096)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, uploadRequest(t, "/upload", "big.csv", big, true))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var out APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Contains(t, out.Msg, "1 KB")
}

func TestReportAwaitingInput(t *testing.T) {
	ts, c := newTestServer(t, defaultOptions(), nil)
	code, out := getJSON(t, c, ts.URL+"/api/report")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, awaitingMsg, out.Msg)
}

func TestResetStartsFreshSession(t *testing.T) {
	ts, c := newTestServer(t, defaultOptions(), nil)
	_, before := getJSON(t, c, ts.URL+"/api/state")
	resp, err := c.Post(ts.URL+"/example", "", nil)
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = c.Post(ts.URL+"/reset", "", nil)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "Awaiting for CSV file to be uploaded.")

	_, after := getJSON(t, c, ts.URL+"/api/state")
	assert.NotEqual(t,
		before.Data.(map[string]interface{})["session"],
		after.Data.(map[string]interface{})["session"])
	assert.Equal(t, "awaiting_input", after.Data.(map[string]interface{})["state"])
}

func TestSameUploadIsProfiledOnce(t *testing.T) {
	p := &countingProfiler{inner: analysis.NewEngine(analysis.DefaultOptions())}
	ts, c := newTestServer(t, defaultOptions(), p)
	for i := 0; i < 2; i++ {
		resp, err := c.Do(uploadRequest(t, ts.URL+"/upload", "sensors.csv", sensorsCSV, false))
		require.NoError(t, err)
		assert.Contains(t, readBody(t, resp), "Profiling Report")
	}
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestHealthAndMetrics(t *testing.T) {
	ts, c := newTestServer(t, defaultOptions(), nil)
	resp, err := c.Get(ts.URL + "/health")
	require.NoError(t, err)
	var h HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	resp.Body.Close()
	assert.Equal(t, "ok", h.Status)

	resp, err = c.Do(uploadRequest(t, ts.URL+"/upload", "sensors.csv", sensorsCSV, false))
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = c.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `eda_uploads_total{result="ok"} 1`)
	assert.Contains(t, body, `eda_profiles_total{result="ok",source="upload"} 1`)
	assert.Contains(t, body, "eda_sessions_active 1")
}

func TestBasePath(t *testing.T) {
	opt := defaultOptions()
	opt.BasePath = "/eda/"
	ts, c := newTestServer(t, opt, nil)

	resp, err := c.Get(ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, "/eda/", resp.Request.URL.Path)
	assert.Contains(t, body, `action="/eda/upload"`)

	resp, err = c.Do(uploadRequest(t, ts.URL+"/eda/upload", "sensors.csv", sensorsCSV, false))
	require.NoError(t, err)
	assert.Contains(t, readBody(t, resp), "Input DataFrame")
}
