// Package scan decodes rendered symbols back to text so exports can be
// checked for readability.
package scan

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/pkg/errors"
)

// ErrMismatch is returned by Verify when the symbol decodes to other text.
var ErrMismatch = errors.New("scan: decoded text does not match")

// Result is a decoded symbol.
type Result struct {
	Text string
}

// Decode reads the single QR symbol in img.
func Decode(img image.Image) (res *Result, err error) {
	if img == nil {
		return nil, errors.New("scan: nil image")
	}
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, errors.Errorf("scan: decoder panic: %v", r)
		}
	}()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, errors.Wrap(err, "scan: binarize")
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return nil, errors.Wrap(err, "scan: decode")
	}
	return &Result{Text: result.GetText()}, nil
}

// DecodeReader decodes an encoded PNG or JPEG image and reads its symbol.
func DecodeReader(r io.Reader) (*Result, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "scan: decode image")
	}
	return Decode(img)
}

// Verify decodes img and checks it carries want.
func Verify(img image.Image, want string) error {
	res, err := Decode(img)
	if err != nil {
		return err
	}
	if res.Text != want {
		return errors.Wrapf(ErrMismatch, "got %q, want %q", res.Text, want)
	}
	return nil
}
