package segformer

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultClientConfig(t *testing.T) {
	config := DefaultClientConfig()

	if config == nil {
		t.Fatal("DefaultClientConfig returned nil")
	}
	if config.BaseURL != "http://localhost:8600" {
		t.Errorf("BaseURL = %v, want http://localhost:8600", config.BaseURL)
	}
	if config.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", config.Timeout)
	}
	if config.HealthInterval != 5*time.Second {
		t.Errorf("HealthInterval = %v, want 5s", config.HealthInterval)
	}
}

func TestNoOpClient(t *testing.T) {
	client := NewNoOpClient()

	if client.IsHealthy() {
		t.Error("NoOpClient.IsHealthy() should return false")
	}
	if _, err := client.LoadModel(context.Background()); err == nil {
		t.Error("NoOpClient.LoadModel should return an error")
	}
	if _, err := client.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("NoOpClient.Predict should return an error")
	}
	client.Close()
}

func TestHTTPClient_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/v1/segment":
			if r.Header.Get("Content-Type") != "image/png" {
				t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
			}
			resp := map[string]any{
				"classes": 2,
				"height":  2,
				"width":   2,
				"logits":  []float32{1, 1, 1, 1, 0, 0, 0, 0},
			}
			json.NewEncoder(w).Encode(resp)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(&ClientConfig{
		BaseURL:        srv.URL,
		Timeout:        5 * time.Second,
		HealthInterval: time.Hour,
		HealthTimeout:  time.Second,
	})
	defer client.Close()

	if !client.IsHealthy() {
		t.Fatal("client should be healthy after initial check")
	}

	scores, err := client.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatal(err)
	}
	if scores.Classes != 2 || scores.Height != 2 || scores.Width != 2 {
		t.Errorf("scores dims = %d/%d/%d", scores.Classes, scores.Height, scores.Width)
	}
	if scores.At(0, 0, 0) != 1 {
		t.Errorf("At(0,0,0) = %v, want 1", scores.At(0, 0, 0))
	}
}

func TestHTTPClient_Predict_MalformedLogits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		// Wrong score count for the declared dimensions
		json.NewEncoder(w).Encode(map[string]any{
			"classes": 2, "height": 2, "width": 2, "logits": []float32{1, 2, 3},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(&ClientConfig{
		BaseURL:        srv.URL,
		Timeout:        5 * time.Second,
		HealthInterval: time.Hour,
		HealthTimeout:  time.Second,
	})
	defer client.Close()

	if _, err := client.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Error("expected error for malformed logits")
	}
}

func TestHTTPClient_Predict_Unhealthy(t *testing.T) {
	client := NewHTTPClient(&ClientConfig{
		BaseURL:        "http://127.0.0.1:1", // nothing listens here
		Timeout:        time.Second,
		HealthInterval: time.Hour,
		HealthTimeout:  100 * time.Millisecond,
	})
	defer client.Close()

	if client.IsHealthy() {
		t.Fatal("client should be unhealthy")
	}
	if _, err := client.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("Predict should fail fast when unhealthy")
	}
}

func TestHTTPClient_LoadModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/v1/model/load":
			json.NewEncoder(w).Encode(map[string]any{
				"name": "mattmdjaga/segformer_b2_clothes", "num_classes": 18, "device": "cpu",
			})
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(&ClientConfig{
		BaseURL:        srv.URL,
		Timeout:        5 * time.Second,
		HealthInterval: time.Hour,
		HealthTimeout:  time.Second,
	})
	defer client.Close()

	meta, err := client.LoadModel(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if meta.Name != "mattmdjaga/segformer_b2_clothes" || meta.Classes != 18 || meta.Device != "cpu" {
		t.Errorf("meta = %+v", meta)
	}
}
