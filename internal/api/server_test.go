package api

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/adapters/excel"
	"csvdash/adapters/render"
	"csvdash/app"
	"csvdash/internal/classify"
	"csvdash/internal/session"
	"csvdash/internal/testkit"
	"csvdash/internal/window"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, maxUpload int64) *Server {
	t.Helper()
	svc := app.NewDashboardService(
		excel.NewDataReader(excel.DefaultReaderConfig(), nil),
		classify.New(classify.DefaultConfig(), nil),
		window.NewResolver(nil),
		render.NewPNGRenderer(640, 320, nil),
		nil,
	)
	return NewServer(svc, session.NewMemoryStore(time.Hour, nil), maxUpload, nil)
}

func uploadRequest(t *testing.T, field, name string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server, content []byte) string {
	t.Helper()
	rec := serve(s, uploadRequest(t, "file", "prices.csv", content))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID         string   `json:"id"`
		Rows       int      `json:"rows"`
		ChartTypes []string `json:"chart_types"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Error.Code
}

func TestHealth(t *testing.T) {
	rec := serve(newTestServer(t, 1<<20), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUploadAndDescribeDataset(t *testing.T) {
	s := newTestServer(t, 1<<20)
	rec := serve(s, uploadRequest(t, "file", "prices.csv", testkit.PricesCSV(30)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "prices.csv", created["filename"])
	assert.EqualValues(t, 30, created["rows"])
	assert.Contains(t, created["chart_types"], "candlestick")
	assert.Len(t, created["columns"], 6)

	id := created["id"].(string)
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)
}

func TestUploadErrors(t *testing.T) {
	s := newTestServer(t, 64)

	rec := serve(s, uploadRequest(t, "wrong", "a.csv", []byte("a,b\n1,2\n")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))

	rec = serve(s, uploadRequest(t, "file", "big.csv", testkit.SalesCSV(50)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = serve(s, uploadRequest(t, "file", "empty.csv", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, rec))
}

func TestAnalysisEndpoint(t *testing.T) {
	s := newTestServer(t, 1<<20)
	id := upload(t, s, testkit.PricesCSV(120))

	body := `{"period":"1M","chart":{"type":"line","x_axis":"Date","y_axis":"Close"},"stat_column":"Volume"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/"+id+"/analysis", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Anchor string `json:"anchor"`
		Window *struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"window"`
		Rows  int `json:"rows"`
		Chart *struct {
			Title string `json:"title"`
		} `json:"chart"`
		CustomStat *struct {
			Column string `json:"column"`
		} `json:"custom_stat"`
		Summaries map[string]any `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Date", result.Anchor)
	require.NotNil(t, result.Window)
	assert.False(t, result.Window.Start.After(result.Window.End))
	assert.Less(t, result.Rows, 120)
	require.NotNil(t, result.Chart)
	assert.Equal(t, "Close by Date", result.Chart.Title)
	require.NotNil(t, result.CustomStat)
	assert.Equal(t, "Volume", result.CustomStat.Column)
	assert.Contains(t, result.Summaries, "Close")
}

func TestAnalysisEndpointErrors(t *testing.T) {
	s := newTestServer(t, 1<<20)
	id := upload(t, s, testkit.PricesCSV(20))

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(s, req)
	}

	rec := post("/api/v1/datasets/"+id+"/analysis", `{"period":"Custom","start":"2023-04-15","end":"2023-04-02"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_RANGE", errorCode(t, rec))

	rec = post("/api/v1/datasets/"+id+"/analysis", `{"anchor":"Open"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ANCHOR", errorCode(t, rec))

	rec = post("/api/v1/datasets/"+id+"/analysis", `{"period":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post("/api/v1/datasets/0190f5a2-7c1e-7000-8000-000000000000/analysis", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))

	rec = post("/api/v1/datasets/not-a-uuid/analysis", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisEndpointOverflowingSums(t *testing.T) {
	s := newTestServer(t, 1<<20)
	id := upload(t, s, []byte("Category,Amount\nA,1e308\nA,1e308\nB,1\n"))

	body := `{"chart":{"type":"pie","pie_label":"Category","pie_value":"Amount"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/"+id+"/analysis", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Summaries map[string]struct {
			Sum *float64 `json:"sum"`
			Max *float64 `json:"max"`
		} `json:"summaries"`
		Chart *struct {
			Slices []struct {
				Label string  `json:"label"`
				Value float64 `json:"value"`
			} `json:"slices"`
		} `json:"chart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result), rec.Body.String())
	amount, ok := result.Summaries["Amount"]
	require.True(t, ok)
	assert.Nil(t, amount.Sum)
	require.NotNil(t, amount.Max)
	assert.Equal(t, 1e308, *amount.Max)
	require.NotNil(t, result.Chart)
	require.Len(t, result.Chart.Slices, 2)
	assert.Equal(t, math.MaxFloat64, result.Chart.Slices[0].Value)
}

func TestChartEndpoint(t *testing.T) {
	s := newTestServer(t, 1<<20)
	id := upload(t, s, testkit.PricesCSV(40))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/"+id+"/chart.png",
		strings.NewReader(`{"chart":{"type":"candlestick"}}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	req = httptest.NewRequest(http.MethodPost, "/api/v1/datasets/"+id+"/chart.png",
		strings.NewReader(`{"chart":{"type":"bar","x_axis":"Close"}}`))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(s, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_AXIS_SELECTION", errorCode(t, rec))
}

func TestDeleteDataset(t *testing.T) {
	s := newTestServer(t, 1<<20)
	id := upload(t, s, testkit.SalesCSV(10))

	rec := serve(s, httptest.NewRequest(http.MethodDelete, "/api/v1/datasets/"+id, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/datasets/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(s, httptest.NewRequest(http.MethodDelete, "/api/v1/datasets/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
