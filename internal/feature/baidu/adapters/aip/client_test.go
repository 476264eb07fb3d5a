package aip

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient はトークン取得と本体APIを同一のテストサーバーへ向けます。
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/2.0/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token": "test-token", "expires_in": 2592000}`))
	})
	mux.HandleFunc("/", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	tokens := NewTokenProvider(testCreds(), server.Client(), nil).WithEndpoint(server.URL + "/oauth/2.0/token")
	return NewClient(tokens, server.Client(), nil).WithBaseURL(server.URL)
}

func TestClient_AdvancedGeneral(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/2.0/image-classify/v2/advanced_general" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("access_token") != "test-token" {
			t.Errorf("missing access token")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("image") != "img-b64" {
			t.Errorf("unexpected image field %q", r.PostForm.Get("image"))
		}
		_, _ = w.Write([]byte(`{
			"log_id": 123,
			"result": [
				{"keyword": "金毛犬", "score": 0.92, "root": "动物-狗", "baike_info": {"baike_url": "http://example", "description": "desc"}}
			]
		}`))
	})

	res, err := c.AdvancedGeneral(context.Background(), "img-b64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LogID != 123 || len(res.Result) != 1 {
		t.Fatalf("unexpected response: %+v", res)
	}
	if res.Result[0].Keyword != "金毛犬" || res.Result[0].BaikeInfo == nil {
		t.Errorf("unexpected result item: %+v", res.Result[0])
	}
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error_code": 17, "error_msg": "Open api daily request limit reached"}`))
	})

	_, err := c.ObjectDetect(context.Background(), "img-b64")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Code != 17 {
		t.Errorf("expected code 17, got %d", apiErr.Code)
	}
}

func TestClient_FaceDetect_Form(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("image_type") != "BASE64" {
			t.Errorf("expected image_type BASE64")
		}
		if r.PostForm.Get("max_face_num") != "10" {
			t.Errorf("expected max_face_num 10, got %s", r.PostForm.Get("max_face_num"))
		}
		_, _ = w.Write([]byte(`{"error_code": 0, "log_id": 9, "result": {"face_num": 0, "face_list": []}}`))
	})

	res, err := c.FaceDetect(context.Background(), "img-b64", "age,gender", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Result == nil || res.Result.FaceNum != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestClient_SearchPathFallback(t *testing.T) {
	if got := searchPath("search", "unknown"); got != "/rest/2.0/realtime_search/same_hq/search" {
		t.Errorf("expected fallback to same, got %s", got)
	}
	if got := searchPath("add", "product"); got != "/rest/2.0/image-classify/v1/realtime_search/product/add" {
		t.Errorf("unexpected product add path: %s", got)
	}
}

func TestClient_ImageSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/2.0/realtime_search/same_hq/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"log_id": 1, "result": [{"score": 0.99, "brief": "メモ", "cont_sign": "abc"}]}`))
	})

	res, err := c.ImageSearch(context.Background(), "same", "img-b64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Result) != 1 || res.Result[0].ContSign != "abc" {
		t.Errorf("unexpected result: %+v", res)
	}
}
