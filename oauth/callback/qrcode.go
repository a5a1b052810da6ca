package callback

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/crazy3lf/colorconv"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

const qrColor = "#69676e"

type nopCloser struct {
	*bytes.Buffer
}

func (nopCloser) Close() error { return nil }

// QRCodeDataURI renders content as a PNG QR code inlined as a data URI.
func QRCodeDataURI(content string) (template.URL, error) {
	c, err := colorconv.HexToColor(qrColor)
	if err != nil {
		return "", fmt.Errorf("qr color: %w", err)
	}
	qrCode, err := qrcode.NewWith(content,
		qrcode.WithEncodingMode(qrcode.EncModeByte),
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart),
	)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}

	var buf bytes.Buffer
	w := standard.NewWithWriter(nopCloser{&buf},
		standard.WithFgColor(c),
		standard.WithQRWidth(6),
		standard.WithBorderWidth(20),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err := qrCode.Save(w); err != nil {
		return "", fmt.Errorf("failed saving qr code: %w", err)
	}

	// html/template would otherwise replace the data URI with #ZgotmplZ.
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}
