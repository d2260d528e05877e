package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLogin_WireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"username":"ada","password":"pw"}` {
			t.Errorf("body = %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	}))
	defer srv.Close()

	tok, res := NewClient(srv.URL, staticTokens{}).Login(context.Background(), "ada", "pw")
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if tok.AccessToken != "tok" || tok.TokenType != "bearer" {
		t.Errorf("token = %+v", tok)
	}
}

func TestWeekly_DecodesTupleListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/weekly-recommendation/7" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("force_new"); got != "false" {
			t.Errorf("force_new = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recommendation":{"movie_id":42,"title":"Heat","is_new":true,"generated_date":"2026-08-29T12:00:00Z"},` +
			`"streaming_data":{"free":[["Tubi",73,"/t.png"]],"flatrate":[["Netflix",8,"/n.png"]]}}`))
	}))
	defer srv.Close()

	out, res := NewClient(srv.URL, staticTokens{}).Weekly(context.Background(), 7, false)
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if out.Recommendation == nil || out.Recommendation.MovieID != 42 || !out.Recommendation.IsNew {
		t.Errorf("recommendation = %+v", out.Recommendation)
	}
	if len(out.StreamingData.Free) != 1 || out.StreamingData.Free[0].Name != "Tubi" {
		t.Errorf("free = %+v", out.StreamingData.Free)
	}
	if len(out.StreamingData.Flatrate) != 1 || out.StreamingData.Flatrate[0].ID != 8 {
		t.Errorf("flatrate = %+v", out.StreamingData.Flatrate)
	}
}

func TestWeeklyStatus_UnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/weekly-recommendation-status/7" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"has_recommendation":true,"days_until_new":5,"can_generate_new":false}}`))
	}))
	defer srv.Close()

	st, res := NewClient(srv.URL, staticTokens{}).WeeklyStatus(context.Background(), 7)
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if !st.HasRecommendation || st.DaysUntilNew != 5 {
		t.Errorf("status = %+v", st)
	}
}

func TestUploadRatings_MultipartWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ratings/upload" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("user_id"); got != "7" {
			t.Errorf("user_id = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "ratings.csv" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if !strings.HasPrefix(string(data), "Name,Rating") {
			t.Errorf("file content = %q", data)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Processed 1 rows.","successful_uploads":1,"failed_uploads":0,"failed_movies":[]}`))
	}))
	defer srv.Close()

	report, res := NewClient(srv.URL, staticTokens{}).UploadRatings(
		context.Background(), 7, "ratings.csv", strings.NewReader("Name,Rating\nHeat,5\n"))
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if report.SuccessfulUploads != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestRecommendations_TopNOnWire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("top_n"); got != "15" {
			t.Errorf("top_n = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recommendations":[],"message":"Rate some movies to get personalized recommendations."}`))
	}))
	defer srv.Close()

	out, res := NewClient(srv.URL, staticTokens{}).Recommendations(context.Background(), 15)
	if !res.OK() {
		t.Fatalf("result = %+v", res)
	}
	if len(out.Recommendations) != 0 || !strings.Contains(out.Message, "Rate some movies") {
		t.Errorf("out = %+v", out)
	}
}
