package web

import (
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"plastic-detect/internal/domain/entity"
	"plastic-detect/internal/infrastructure/vision"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

const (
	labelIdle    = "Run Detection"
	labelLoading = "Detecting…"
)

type pageView struct {
	SessionID   string
	Version     uint64
	FileName    string
	FileSize    int
	Loading     bool
	CanSubmit   bool
	ButtonLabel string
	Error       string
	Result      *resultView
}

type resultView struct {
	ImageSrc     template.URL
	Caption      string
	PlasticCount int
	Detections   []detectionRow
}

type detectionRow struct {
	Index      int
	ClassName  string
	Confidence string
	Box        string
}

// buildPage строит модель страницы из снимка; панели результата и ошибки взаимоисключающие.
func buildPage(snap entity.Snapshot, previewer *vision.Previewer) pageView {
	view := pageView{
		SessionID:   snap.SessionID,
		Version:     snap.Version,
		Loading:     snap.Loading(),
		CanSubmit:   snap.CanSubmit(),
		ButtonLabel: labelIdle,
	}
	if view.Loading {
		view.ButtonLabel = labelLoading
	}
	if snap.File != nil {
		view.FileName = snap.File.Name
		view.FileSize = snap.File.Size
	}

	switch st := snap.State.(type) {
	case entity.Succeeded:
		view.Result = buildResult(st.Result, previewer)
	case entity.Failed:
		view.Error = st.Message
	}

	return view
}

func buildResult(result entity.DetectionResult, previewer *vision.Previewer) *resultView {
	view := &resultView{
		// Префикс data-URL фиксирован, остальное — base64 от бэкенда
		ImageSrc:     template.URL(result.AnnotatedImage),
		PlasticCount: result.PlasticCount,
	}

	if previewer != nil {
		if data, err := result.AnnotatedJPEG(); err == nil {
			if preview, err := previewer.Inspect(data); err == nil {
				view.Caption = fmt.Sprintf("%d×%d", preview.Width, preview.Height)
			}
		}
	}

	for i, d := range result.Detections {
		row := detectionRow{Index: i + 1, ClassName: "—", Confidence: "—", Box: "—"}
		if info, ok := d.Describe(); ok {
			row.ClassName = info.ClassName
			row.Confidence = strconv.FormatFloat(info.Confidence, 'f', 2, 64)
			if len(info.Box) > 0 {
				coords := make([]string, len(info.Box))
				for j, v := range info.Box {
					coords[j] = strconv.FormatFloat(v, 'f', 0, 64)
				}
				row.Box = strings.Join(coords, ", ")
			}
		}
		view.Detections = append(view.Detections, row)
	}

	return view
}
