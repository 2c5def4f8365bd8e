package presentation

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"stylelens-go/core/state"
	"stylelens-go/domain/caption"
	"stylelens-go/domain/history"
	"stylelens-go/infrastructure/storage"
)

// MainWindow is the main application window.
type MainWindow struct {
	window fyne.Window
	bridge *UIEventBridge
	store  *storage.FileStore
	logger *slog.Logger

	// Toolbar
	modeSelect *widget.Select
	browseBtn  *widget.Button
	processBtn *widget.Button
	pathLabel  *widget.Label

	// Caption prompt (caption mode only)
	promptEntry *widget.Entry
	promptRow   fyne.CanvasObject

	// Previews
	sourceImage   *canvas.Image
	overlayImage  *canvas.Image
	colorMapImage *canvas.Image
	captionLabel  *widget.Label
	featuresLabel *widget.Label
	resultsPanel  *fyne.Container
	segResults    fyne.CanvasObject
	capResults    fyne.CanvasObject

	// Save actions
	saveOverlayBtn *widget.Button
	saveColorBtn   *widget.Button
	saveCaptionBtn *widget.Button

	// Info and history
	infoLabel      *widget.Label
	statusLabel    *widget.Label
	historyList    *widget.List
	historyRecords []*history.Record
	historyMu      sync.RWMutex

	// Current request. activeRequestID is read on the event-bus goroutine
	// and written on the UI side, so it stays behind requestMu.
	imagePath       string
	requestMu       sync.Mutex
	activeRequestID string
	overlay         image.Image
	colorMap        image.Image
	captionText     string

	cleanupOnce sync.Once
}

// MainWindowConfig holds configuration for MainWindow.
type MainWindowConfig struct {
	App    fyne.App
	Bridge *UIEventBridge
	Store  *storage.FileStore
	Logger *slog.Logger
}

// NewMainWindow creates a new main window.
func NewMainWindow(cfg *MainWindowConfig) *MainWindow {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = storage.NewFileStore()
	}

	w := &MainWindow{
		window: cfg.App.NewWindow("StyleLens"),
		bridge: cfg.Bridge,
		store:  cfg.Store,
		logger: cfg.Logger,
	}

	w.init()
	w.setupEventCallbacks()
	w.refreshModelInfo()
	w.reloadHistory()

	w.window.SetOnClosed(func() {
		w.Cleanup()
		cfg.App.Quit()
	})

	return w
}

func (w *MainWindow) init() {
	toolbar := w.createToolbar()

	// Source preview
	w.sourceImage = canvas.NewImageFromImage(nil)
	w.sourceImage.FillMode = canvas.ImageFillContain
	w.sourceImage.SetMinSize(fyne.NewSize(320, 320))
	sourcePanel := container.NewBorder(widget.NewLabel("Source"), nil, nil, nil, w.sourceImage)

	// Segmentation results: overlay and colored class map side by side
	w.overlayImage = canvas.NewImageFromImage(nil)
	w.overlayImage.FillMode = canvas.ImageFillContain
	w.overlayImage.SetMinSize(fyne.NewSize(240, 240))
	w.colorMapImage = canvas.NewImageFromImage(nil)
	w.colorMapImage.FillMode = canvas.ImageFillContain
	w.colorMapImage.SetMinSize(fyne.NewSize(240, 240))

	w.saveOverlayBtn = widget.NewButtonWithIcon("Save Overlay", theme.DocumentSaveIcon(), w.handleSaveOverlay)
	w.saveColorBtn = widget.NewButtonWithIcon("Save Class Map", theme.DocumentSaveIcon(), w.handleSaveColorMap)
	w.saveOverlayBtn.Disable()
	w.saveColorBtn.Disable()

	w.segResults = container.NewVBox(
		container.NewGridWithColumns(2,
			container.NewBorder(widget.NewLabel("Overlay"), nil, nil, nil, w.overlayImage),
			container.NewBorder(widget.NewLabel("Class Map"), nil, nil, nil, w.colorMapImage),
		),
		container.NewHBox(layout.NewSpacer(), w.saveOverlayBtn, w.saveColorBtn),
	)

	// Caption results
	w.captionLabel = widget.NewLabel("")
	w.captionLabel.Wrapping = fyne.TextWrapWord
	w.featuresLabel = widget.NewLabel("")
	w.saveCaptionBtn = widget.NewButtonWithIcon("Save Caption", theme.DocumentSaveIcon(), w.handleSaveCaption)
	w.saveCaptionBtn.Disable()

	w.capResults = container.NewVBox(
		widget.NewLabel("Caption"),
		w.captionLabel,
		w.featuresLabel,
		container.NewHBox(layout.NewSpacer(), w.saveCaptionBtn),
	)

	w.resultsPanel = container.NewStack(w.segResults)

	// Model info and history
	w.infoLabel = widget.NewLabel("")
	w.statusLabel = widget.NewLabel("Ready")
	w.historyList = widget.NewList(
		func() int {
			w.historyMu.RLock()
			defer w.historyMu.RUnlock()
			return len(w.historyRecords)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			w.historyMu.RLock()
			defer w.historyMu.RUnlock()
			if i < 0 || i >= len(w.historyRecords) {
				return
			}
			obj.(*widget.Label).SetText(w.historyRecords[i].Summary())
		},
	)

	sidePanel := container.NewBorder(
		container.NewVBox(
			widget.NewLabel("Model Info"),
			w.infoLabel,
			widget.NewSeparator(),
			widget.NewLabel("Recent Results"),
		),
		nil, nil, nil,
		w.historyList,
	)

	results := container.NewBorder(nil, nil, nil, nil, w.resultsPanel)
	center := container.NewHSplit(sourcePanel, results)
	center.SetOffset(0.42)

	main := container.NewHSplit(center, sidePanel)
	main.SetOffset(0.75)

	content := container.NewBorder(
		container.NewVBox(toolbar, w.promptRow),
		w.statusLabel,
		nil, nil,
		main,
	)
	w.window.SetContent(content)
	w.window.Resize(fyne.NewSize(1100, 680))
}

func (w *MainWindow) createToolbar() fyne.CanvasObject {
	w.modeSelect = widget.NewSelect(
		[]string{state.ModeSegmentation.Title(), state.ModeCaption.Title()},
		w.handleModeChanged,
	)
	// Default mode; set directly so the change handler does not fire before
	// the result panels exist.
	w.modeSelect.Selected = state.ModeSegmentation.Title()

	w.browseBtn = widget.NewButtonWithIcon("Browse...", theme.FolderOpenIcon(), w.handleBrowse)
	w.pathLabel = widget.NewLabel("No image selected")
	w.pathLabel.Truncation = fyne.TextTruncateEllipsis

	w.processBtn = widget.NewButtonWithIcon("Process", theme.MediaPlayIcon(), w.handleProcess)
	w.processBtn.Disable()

	w.promptEntry = widget.NewEntry()
	w.promptEntry.SetPlaceHolder("Optional prompt, e.g. \"what is the person wearing?\"")
	w.promptRow = container.NewBorder(nil, nil, widget.NewLabel("Prompt:"), nil, w.promptEntry)
	w.promptRow.Hide()

	return container.NewHBox(
		w.modeSelect,
		widget.NewSeparator(),
		w.browseBtn,
		w.pathLabel,
		layout.NewSpacer(),
		w.processBtn,
	)
}

func (w *MainWindow) setupEventCallbacks() {
	if w.bridge == nil {
		return
	}

	w.bridge.SetCallbacks(&UICallbacks{
		OnProcessingStarted: func(requestID string, mode state.Mode, path string) {
			w.logger.Debug("Processing started", "request_id", requestID, "mode", mode)
		},
		OnStateChanged: func(requestID string, oldState, newState state.RequestState) {
			if !w.isActiveRequest(requestID) {
				return
			}
			// UI update must run on main thread
			fyne.Do(func() {
				switch newState {
				case state.StateLoading:
					w.statusLabel.SetText("Loading model...")
				case state.StateRunning:
					w.statusLabel.SetText("Processing...")
				}
			})
		},
		OnModelLoaded: func(requestID, modelName string, duration time.Duration) {
			fyne.Do(func() {
				w.statusLabel.SetText(fmt.Sprintf("Model %s loaded in %.2fs", modelName, duration.Seconds()))
				w.refreshModelInfo()
			})
		},
		OnSegmentationResult: func(requestID string, overlay, colorMap image.Image, elapsed time.Duration) {
			if !w.isActiveRequest(requestID) {
				return
			}
			fyne.Do(func() {
				w.showSegmentationResult(overlay, colorMap, elapsed)
			})
		},
		OnCaptionResult: func(requestID, text string, elapsed time.Duration) {
			if !w.isActiveRequest(requestID) {
				return
			}
			fyne.Do(func() {
				w.showCaptionResult(text, elapsed)
			})
		},
		OnFeatures: func(requestID string, features caption.Features) {
			fyne.Do(func() {
				w.featuresLabel.SetText(features.String())
			})
		},
		OnProcessingFailed: func(requestID string, mode state.Mode, err error) {
			if !w.isActiveRequest(requestID) {
				return
			}
			fyne.Do(func() {
				w.endProcessing()
				w.statusLabel.SetText("Failed")
				dialog.ShowError(err, w.window)
			})
		},
		OnHistoryUpdated: func(count int) {
			fyne.Do(func() {
				w.reloadHistory()
			})
		},
	})
}

// Handlers

func (w *MainWindow) currentMode() state.Mode {
	if mode, ok := state.ModeFromTitle(w.modeSelect.Selected); ok {
		return mode
	}
	return state.ModeSegmentation
}

func (w *MainWindow) handleModeChanged(string) {
	// Switching modes discards results from the previous mode.
	w.clearResults()

	if w.currentMode() == state.ModeCaption {
		w.promptRow.Show()
		w.resultsPanel.Objects = []fyne.CanvasObject{w.capResults}
	} else {
		w.promptRow.Hide()
		w.resultsPanel.Objects = []fyne.CanvasObject{w.segResults}
	}
	w.resultsPanel.Refresh()
	w.refreshModelInfo()
}

func (w *MainWindow) handleBrowse() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		w.setImage(path)
	}, w.window)
	fd.SetFilter(fynestorage.NewExtensionFileFilter(storage.SupportedImageExts))
	fd.Show()
}

func (w *MainWindow) setImage(path string) {
	img, err := w.store.LoadImage(path)
	if err != nil {
		w.logger.Error("Failed to load image", "path", path, "error", err)
		dialog.ShowError(err, w.window)
		return
	}

	w.imagePath = path
	w.pathLabel.SetText(path)
	w.sourceImage.Image = img
	w.sourceImage.Refresh()
	w.clearResults()
	w.processBtn.Enable()
	w.statusLabel.SetText("Ready")

	// Kick off the model-free analysis for the features line.
	if _, err := w.bridge.AnalyzeImage(path); err != nil {
		w.logger.Warn("Failed to analyze image", "error", err)
	}
}

func (w *MainWindow) handleProcess() {
	if w.imagePath == "" {
		return
	}

	mode := w.currentMode()
	// The ID is recorded before the dispatch so a completion delivered on
	// the bus goroutine is never filtered against a stale value.
	id := w.bridge.NewRequestID()
	w.setActiveRequest(id)
	w.beginProcessing()

	var err error
	if mode == state.ModeSegmentation {
		err = w.bridge.RunSegmentation(id, w.imagePath)
	} else {
		err = w.bridge.RunCaption(id, w.imagePath, w.promptEntry.Text)
	}
	if err != nil {
		w.logger.Error("Failed to dispatch request", "mode", mode, "error", err)
		w.endProcessing()
		dialog.ShowError(err, w.window)
	}
}

func (w *MainWindow) setActiveRequest(id string) {
	w.requestMu.Lock()
	w.activeRequestID = id
	w.requestMu.Unlock()
}

// isActiveRequest reports whether id belongs to the in-flight request.
func (w *MainWindow) isActiveRequest(id string) bool {
	w.requestMu.Lock()
	defer w.requestMu.Unlock()
	return id != "" && id == w.activeRequestID
}

func (w *MainWindow) beginProcessing() {
	w.processBtn.Disable()
	w.processBtn.SetText("Processing...")
	w.statusLabel.SetText("Processing...")
}

func (w *MainWindow) endProcessing() {
	w.setActiveRequest("")
	w.processBtn.SetText("Process")
	if w.imagePath != "" {
		w.processBtn.Enable()
	}
}

func (w *MainWindow) showSegmentationResult(overlay, colorMap image.Image, elapsed time.Duration) {
	w.endProcessing()

	w.overlay = overlay
	w.colorMap = colorMap
	w.overlayImage.Image = overlay
	w.overlayImage.Refresh()
	w.colorMapImage.Image = colorMap
	w.colorMapImage.Refresh()
	w.saveOverlayBtn.Enable()
	w.saveColorBtn.Enable()
	w.statusLabel.SetText(fmt.Sprintf("Segmentation completed in %.2fs", elapsed.Seconds()))
}

func (w *MainWindow) showCaptionResult(text string, elapsed time.Duration) {
	w.endProcessing()

	w.captionText = text
	w.captionLabel.SetText(text)
	w.saveCaptionBtn.Enable()
	w.statusLabel.SetText(fmt.Sprintf("Caption generated in %.2fs", elapsed.Seconds()))
}

func (w *MainWindow) clearResults() {
	w.overlay = nil
	w.colorMap = nil
	w.captionText = ""
	w.overlayImage.Image = nil
	w.overlayImage.Refresh()
	w.colorMapImage.Image = nil
	w.colorMapImage.Refresh()
	w.captionLabel.SetText("")
	w.featuresLabel.SetText("")
	w.saveOverlayBtn.Disable()
	w.saveColorBtn.Disable()
	w.saveCaptionBtn.Disable()
}

func (w *MainWindow) handleSaveOverlay() {
	w.saveImage(w.overlay, "overlay.png")
}

func (w *MainWindow) handleSaveColorMap() {
	w.saveImage(w.colorMap, "class_map.png")
}

func (w *MainWindow) saveImage(img image.Image, suggested string) {
	if img == nil {
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := w.store.SaveImage(img, path); err != nil {
			w.logger.Error("Failed to save image", "path", path, "error", err)
			dialog.ShowError(err, w.window)
			return
		}
		w.statusLabel.SetText("Saved " + path)
	}, w.window)
	fd.SetFileName(suggested)
	fd.Show()
}

func (w *MainWindow) handleSaveCaption() {
	if w.captionText == "" {
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := w.store.SaveText(w.captionText, path); err != nil {
			w.logger.Error("Failed to save caption", "path", path, "error", err)
			dialog.ShowError(err, w.window)
			return
		}
		w.statusLabel.SetText("Saved " + path)
	}, w.window)
	fd.SetFileName("caption.txt")
	fd.Show()
}

func (w *MainWindow) refreshModelInfo() {
	if w.bridge == nil {
		return
	}
	info := w.bridge.ModelInfo(w.currentMode())
	w.infoLabel.SetText(info.Summary())
}

func (w *MainWindow) reloadHistory() {
	if w.bridge == nil {
		return
	}
	records := w.bridge.RecentHistory()

	w.historyMu.Lock()
	w.historyRecords = records
	w.historyMu.Unlock()

	w.historyList.Refresh()
}

// Public methods

// Show displays the main window.
func (w *MainWindow) Show() {
	w.window.Show()
}

// Cleanup releases resources.
func (w *MainWindow) Cleanup() {
	w.cleanupOnce.Do(func() {
		w.logger.Info("Main window cleanup completed")
	})
}
