package vision

import (
	"strings"
	"testing"
	"time"
)

func TestModelInfo_Summary(t *testing.T) {
	info := ModelInfo{
		Name:         "mattmdjaga/segformer_b2_clothes",
		Kind:         "Clothes Segmentation (SegFormer)",
		Loaded:       true,
		LoadDuration: 2500 * time.Millisecond,
		Device:       "cpu",
		Description:  "Segments clothing items and colors only those regions",
	}

	s := info.Summary()
	for _, want := range []string{
		"mattmdjaga/segformer_b2_clothes",
		"Clothes Segmentation (SegFormer)",
		"loaded in 2.50s",
		"Device: cpu",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary missing %q:\n%s", want, s)
		}
	}
}

func TestModelInfo_Summary_NotLoaded(t *testing.T) {
	info := ModelInfo{Name: "blip", Kind: "Image Captioning (BLIP)", Device: "cpu"}

	if !strings.Contains(info.Summary(), "not loaded") {
		t.Errorf("Summary should report not loaded:\n%s", info.Summary())
	}
}
