package command

// RunSegmentation runs the clothing-segmentation model on an image file and
// delivers an overlay plus a colored class map.
type RunSegmentation struct {
	baseRequestCommand
	ImagePath string
}

func NewRunSegmentation(requestID, imagePath string) *RunSegmentation {
	return &RunSegmentation{
		baseRequestCommand: baseRequestCommand{requestID: requestID},
		ImagePath:          imagePath,
	}
}

func (c *RunSegmentation) CommandName() string {
	return "RunSegmentation"
}

// RunCaption runs the image-captioning model on an image file.
// Prompt optionally conditions the generated caption; prompted captions are
// served from the memoized result on repeat calls with identical arguments.
type RunCaption struct {
	baseRequestCommand
	ImagePath string
	Prompt    string
}

func NewRunCaption(requestID, imagePath, prompt string) *RunCaption {
	return &RunCaption{
		baseRequestCommand: baseRequestCommand{requestID: requestID},
		ImagePath:          imagePath,
		Prompt:             prompt,
	}
}

func (c *RunCaption) CommandName() string {
	return "RunCaption"
}

// AnalyzeImage reports basic image metadata (dimensions, color mode, alpha
// presence) without involving any model.
type AnalyzeImage struct {
	baseRequestCommand
	ImagePath string
}

func NewAnalyzeImage(requestID, imagePath string) *AnalyzeImage {
	return &AnalyzeImage{
		baseRequestCommand: baseRequestCommand{requestID: requestID},
		ImagePath:          imagePath,
	}
}

func (c *AnalyzeImage) CommandName() string {
	return "AnalyzeImage"
}
