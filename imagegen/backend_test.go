package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"aigen/pipeline"
)

func TestNewBackend_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"missing api key", Config{}, ErrAPIKeyMissing},
		{"local endpoint", Config{APIKey: "sk-test", BaseURL: "http://localhost:1234"}, ErrLocalEndpoint},
		{"valid", Config{APIKey: "sk-test"}, nil},
		{"azure endpoint", Config{APIKey: "sk-test", BaseURL: "https://x.openai.azure.com"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBackend(tt.cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("NewBackend() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewBackend() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewBackend_DefaultModel(t *testing.T) {
	b, err := NewBackend(Config{APIKey: "sk-test"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Model() != "dall-e-3" {
		t.Errorf("Model() = %q, want dall-e-3", b.Model())
	}
}

func TestLoad_OnlyTextToImage(t *testing.T) {
	b, err := NewBackend(Config{APIKey: "sk-test"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.Load(context.Background(), pipeline.LoadSpec{Modality: pipeline.TextToImage}); err != nil {
		t.Errorf("Load(text-to-image) failed: %v", err)
	}

	for _, m := range []pipeline.Modality{pipeline.ImageToImage, pipeline.TextToVideo} {
		_, err := b.Load(context.Background(), pipeline.LoadSpec{Modality: m})
		if !errors.Is(err, ErrUnsupportedModality) {
			t.Errorf("Load(%s) error = %v, want ErrUnsupportedModality", m, err)
		}
	}
}

// newTestBackend builds a Backend whose API and download traffic hits the
// given test server.
func newTestBackend(t *testing.T, srv *httptest.Server, model string) *Backend {
	t.Helper()
	clientConfig := openai.DefaultConfig("sk-test")
	clientConfig.BaseURL = srv.URL + "/v1"
	clientConfig.HTTPClient = srv.Client()

	return &Backend{
		client:     openai.NewClientWithConfig(clientConfig),
		downloader: newDownloader(srv.Client()),
		model:      model,
		logger:     zap.NewNop(),
	}
}

func TestGenerate_RemoteRoundTrip(t *testing.T) {
	imageBody := []byte("png-bytes-from-provider")
	var gotRequest openai.ImageRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		host := "http://" + r.Host
		resp := openai.ImageResponse{Data: []openai.ImageResponseDataInner{
			{URL: host + "/images/one.png"},
		}}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/images/one.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(imageBody)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := newTestBackend(t, srv, "dall-e-3")
	h, err := b.Load(context.Background(), pipeline.LoadSpec{Modality: pipeline.TextToImage})
	if err != nil {
		t.Fatal(err)
	}

	result, err := h.Generate(context.Background(), pipeline.GenerateSpec{
		Prompt: "a sunset", Width: 512, Height: 512, ImageCount: 1, Seed: 7,
	})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if len(result.Artifacts) != 1 || string(result.Artifacts[0]) != string(imageBody) {
		t.Errorf("artifacts = %d entries, want the downloaded image", len(result.Artifacts))
	}
	if result.Seed != 7 {
		t.Errorf("Seed = %d, want 7", result.Seed)
	}
	if gotRequest.Prompt != "a sunset" {
		t.Errorf("request prompt = %q, want %q", gotRequest.Prompt, "a sunset")
	}
	if gotRequest.Size != openai.CreateImageSize512x512 {
		t.Errorf("request size = %q, want 512x512", gotRequest.Size)
	}
	if gotRequest.Style != openai.CreateImageStyleVivid {
		t.Errorf("request style = %q, want vivid for dall-e-3", gotRequest.Style)
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(openai.ImageResponse{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := newTestBackend(t, srv, "dall-e-3")
	h, err := b.Load(context.Background(), pipeline.LoadSpec{Modality: pipeline.TextToImage})
	if err != nil {
		t.Fatal(err)
	}

	_, err = h.Generate(context.Background(), pipeline.GenerateSpec{Prompt: "x", ImageCount: 1})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("error = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerate_DownloadFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		host := "http://" + r.Host
		resp := openai.ImageResponse{Data: []openai.ImageResponseDataInner{
			{URL: host + "/images/gone.png"},
		}}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/images/gone.png", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := newTestBackend(t, srv, "dall-e-3")
	h, err := b.Load(context.Background(), pipeline.LoadSpec{Modality: pipeline.TextToImage})
	if err != nil {
		t.Fatal(err)
	}

	_, err = h.Generate(context.Background(), pipeline.GenerateSpec{Prompt: "x", ImageCount: 1})
	if !errors.Is(err, ErrDownloadFailed) {
		t.Errorf("error = %v, want ErrDownloadFailed", err)
	}
}

func TestGenerate_APIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limited", "type": "requests"}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := newTestBackend(t, srv, "dall-e-3")
	h, err := b.Load(context.Background(), pipeline.LoadSpec{Modality: pipeline.TextToImage})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.Generate(context.Background(), pipeline.GenerateSpec{Prompt: "x", ImageCount: 1}); err == nil {
		t.Error("expected error when the API rejects the request")
	}
}

func TestRequestSize(t *testing.T) {
	tests := []struct {
		width, height int
		want          string
	}{
		{256, 256, openai.CreateImageSize256x256},
		{512, 384, openai.CreateImageSize512x512},
		{512, 512, openai.CreateImageSize512x512},
		{768, 512, openai.CreateImageSize1024x1024},
		{1024, 1024, openai.CreateImageSize1024x1024},
	}

	for _, tt := range tests {
		if got := requestSize(tt.width, tt.height); got != tt.want {
			t.Errorf("requestSize(%d, %d) = %q, want %q", tt.width, tt.height, got, tt.want)
		}
	}
}
