//go:build gocv
// +build gocv

package vision

import (
	"errors"

	"gocv.io/x/gocv"
)

// Inspect читает размеры изображения через OpenCV.
func (p *Previewer) Inspect(imageData []byte) (Preview, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return Preview{}, err
	}
	defer mat.Close()

	return p.preview(mat.Cols(), mat.Rows(), "opencv")
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}
