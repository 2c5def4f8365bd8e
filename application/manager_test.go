package application

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stylelens-go/core/apperr"
	"stylelens-go/domain/caption"
	"stylelens-go/domain/segmentation"
	"stylelens-go/domain/vision"
)

// fakeSegmenter counts calls and serves a fixed result.
type fakeSegmenter struct {
	loaded   bool
	loadErr  error
	segCalls int
	result   *segmentation.Result
}

func (f *fakeSegmenter) Name() string { return "fake-segmenter" }

func (f *fakeSegmenter) EnsureLoaded(ctx context.Context) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = true
	return nil
}

func (f *fakeSegmenter) Info() vision.ModelInfo {
	return vision.ModelInfo{Name: "fake-segmenter", Loaded: f.loaded, LoadDuration: 10 * time.Millisecond}
}

func (f *fakeSegmenter) Segment(ctx context.Context, img image.Image) (*segmentation.Result, error) {
	if err := f.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	f.segCalls++
	return f.result, nil
}

// fakeCaptioner counts calls and echoes prompts.
type fakeCaptioner struct {
	loaded   bool
	capCalls int
	text     string
}

func (f *fakeCaptioner) Name() string { return "fake-captioner" }

func (f *fakeCaptioner) EnsureLoaded(ctx context.Context) error {
	f.loaded = true
	return nil
}

func (f *fakeCaptioner) Info() vision.ModelInfo {
	return vision.ModelInfo{Name: "fake-captioner", Loaded: f.loaded, LoadDuration: 5 * time.Millisecond}
}

func (f *fakeCaptioner) Caption(ctx context.Context, img image.Image, prompt string) (string, error) {
	if err := f.EnsureLoaded(ctx); err != nil {
		return "", err
	}
	f.capCalls++
	return f.text, nil
}

// writeTestImage creates a small PNG and returns its path.
func writeTestImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return path
}

func segResult() *segmentation.Result {
	return &segmentation.Result{
		Overlay:  image.NewRGBA(image.Rect(0, 0, 8, 6)),
		ColorMap: image.NewRGBA(image.Rect(0, 0, 8, 6)),
	}
}

func newTestManager(seg *fakeSegmenter, cpt *fakeCaptioner) *ModelManager {
	return NewModelManager(&ManagerConfig{Segmenter: seg, Captioner: cpt})
}

func TestModelManager_ProcessSegmentation(t *testing.T) {
	seg := &fakeSegmenter{result: segResult()}
	m := newTestManager(seg, &fakeCaptioner{})

	res, err := m.ProcessSegmentation(context.Background(), writeTestImage(t))
	if err != nil {
		t.Fatal(err)
	}
	if res.Overlay == nil || res.ColorMap == nil {
		t.Error("result images missing")
	}
	if seg.segCalls != 1 {
		t.Errorf("segCalls = %d", seg.segCalls)
	}
}

func TestModelManager_ProcessSegmentation_BlankPath(t *testing.T) {
	seg := &fakeSegmenter{result: segResult()}
	m := newTestManager(seg, &fakeCaptioner{})

	_, err := m.ProcessSegmentation(context.Background(), "   ")
	if !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
	if seg.segCalls != 0 {
		t.Error("model must not run for blank input")
	}
}

func TestModelManager_ProcessCaption_BlankPath(t *testing.T) {
	cpt := &fakeCaptioner{text: "a dog running"}
	m := newTestManager(&fakeSegmenter{}, cpt)

	_, err := m.ProcessCaption(context.Background(), "", "")
	if !apperr.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
	if cpt.capCalls != 0 {
		t.Error("model must not run for blank input")
	}
}

func TestModelManager_ProcessCaption_PromptedMemoized(t *testing.T) {
	cpt := &fakeCaptioner{text: "a red coat"}
	m := newTestManager(&fakeSegmenter{}, cpt)
	path := writeTestImage(t)

	for i := 0; i < 3; i++ {
		got, err := m.ProcessCaption(context.Background(), path, "what is shown?")
		if err != nil {
			t.Fatal(err)
		}
		if got != "a red coat" {
			t.Errorf("caption = %q", got)
		}
	}
	if cpt.capCalls != 1 {
		t.Errorf("capCalls = %d, want 1 (repeat prompted calls served from cache)", cpt.capCalls)
	}
}

func TestModelManager_ProcessCaption_UnpromptedNotMemoized(t *testing.T) {
	cpt := &fakeCaptioner{text: "a dog running"}
	m := newTestManager(&fakeSegmenter{}, cpt)
	path := writeTestImage(t)

	for i := 0; i < 2; i++ {
		if _, err := m.ProcessCaption(context.Background(), path, ""); err != nil {
			t.Fatal(err)
		}
	}
	if cpt.capCalls != 2 {
		t.Errorf("capCalls = %d, want 2 (unprompted calls always run)", cpt.capCalls)
	}
}

func TestModelManager_AnalyzeFeatures(t *testing.T) {
	m := newTestManager(&fakeSegmenter{}, &fakeCaptioner{})

	features, err := m.AnalyzeFeatures(context.Background(), writeTestImage(t))
	if err != nil {
		t.Fatal(err)
	}
	if features.Width != 8 || features.Height != 6 {
		t.Errorf("features = %+v", features)
	}
}

func TestModelManager_AnalyzeFeatures_MissingFileRecovered(t *testing.T) {
	m := newTestManager(&fakeSegmenter{}, &fakeCaptioner{})

	// The analysis line is display-only, so failures are swallowed by the
	// recover stage instead of surfacing.
	features, err := m.AnalyzeFeatures(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	if err != nil {
		t.Errorf("err = %v, want recovered nil", err)
	}
	if features != (caption.Features{}) {
		t.Errorf("features = %+v, want zero value", features)
	}
}
