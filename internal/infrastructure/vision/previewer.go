package vision

import "errors"

// Ограничения Telegram на отправку фото
const (
	maxPhotoSideSum = 10000
	maxPhotoRatio   = 20.0
)

// Preview сведения о картинке результата для подписи в интерфейсе
type Preview struct {
	Width   int
	Height  int
	Decoder string // чем декодировано: формат image или "opencv"
}

// Previewer читает размеры картинки с разметкой
type Previewer struct {
	MinSide int
}

// NewPreviewer создаёт Previewer с минимальной стороной 1px
func NewPreviewer() *Previewer {
	return &Previewer{MinSide: 1}
}

func (p *Previewer) preview(width, height int, decoder string) (Preview, error) {
	if width < p.MinSide || height < p.MinSide {
		return Preview{}, errors.New("empty image")
	}
	return Preview{Width: width, Height: height, Decoder: decoder}, nil
}

// SendableAsPhoto сообщает, примет ли Telegram картинку как фото, а не как документ
func (p Preview) SendableAsPhoto() bool {
	if p.Width <= 0 || p.Height <= 0 || p.Width+p.Height > maxPhotoSideSum {
		return false
	}
	ratio := float64(p.Width) / float64(p.Height)
	if ratio < 1 {
		ratio = 1 / ratio
	}
	return ratio <= maxPhotoRatio
}
