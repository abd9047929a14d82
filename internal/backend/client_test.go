package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestDoSendsTokenQueryAndPayload(t *testing.T) {
	var gotAuth, gotQuery, gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("barcode")
		gotType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":7}`))
	}))
	t.Cleanup(srv.Close)

	client := New(srv.URL+"/", time.Second, WithToken(" secret "))
	resp, err := client.Do(context.Background(), http.MethodPut, PathStock, url.Values{"barcode": {"779 123"}}, map[string]int{"amount": 3})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if resp.Status != http.StatusCreated {
		t.Fatalf("status = %d", resp.Status)
	}
	var decoded struct {
		ID int `json:"id"`
	}
	if err := resp.Decode(&decoded); err != nil || decoded.ID != 7 {
		t.Fatalf("decode: %+v %v", decoded, err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	if gotQuery != "779 123" {
		t.Fatalf("query = %q", gotQuery)
	}
	if gotType != "application/json" {
		t.Fatalf("content type = %q", gotType)
	}
	var body map[string]int
	if err := json.Unmarshal([]byte(gotBody), &body); err != nil || body["amount"] != 3 {
		t.Fatalf("body = %q (%v)", gotBody, err)
	}
}

func TestDoReportsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()
	client := New(base, 200*time.Millisecond)
	if _, err := client.Get(context.Background(), PathWarehouse, nil); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestEmptyBodyDecodeFails(t *testing.T) {
	resp := &Response{Status: http.StatusNoContent}
	var v map[string]any
	if err := resp.Decode(&v); err == nil {
		t.Fatalf("expected decode error on empty body")
	}
	if got := ProductPath("a/b"); got != "/api/Product/a%2Fb" {
		t.Fatalf("product path = %q", got)
	}
}
