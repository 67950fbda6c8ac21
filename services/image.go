package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrNoImage       = errors.New("no image provided")
	ErrInvalidImage  = errors.New("invalid image")
	ErrImageTooLarge = errors.New("image too large")
)

const (
	resizeTo = 256
	cropTo   = 224
)

var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// DecodedImage is an uploaded photo after base64 and image decoding.
type DecodedImage struct {
	Raw    []byte
	Image  image.Image
	Format string
	SHA256 string
}

// DecodeImage accepts raw base64 or a data URI ("data:image/jpeg;base64,...").
func DecodeImage(payload string, maxBytes int) (*DecodedImage, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrNoImage
	}
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.Contains(payload[:idx], ";base64") {
			return nil, fmt.Errorf("%w: invalid data URI", ErrInvalidImage)
		}
		payload = payload[idx+1:]
	}
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	// reject before allocating the decoded buffer
	if maxBytes > 0 && base64.RawStdEncoding.DecodedLen(len(strings.TrimRight(payload, "="))) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrImageTooLarge, maxBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64: %v", ErrInvalidImage, err)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	sum := sha256.Sum256(data)
	return &DecodedImage{
		Raw:    data,
		Image:  img,
		Format: format,
		SHA256: hex.EncodeToString(sum[:]),
	}, nil
}

// ToTensor resizes the shorter side to 256, center-crops 224x224 and returns
// the ImageNet-normalized pixels in CHW order with a batch of one.
func ToTensor(img image.Image) []float32 {
	resized := resizeShorter(opaque(img), resizeTo)
	crop := centerCrop(resized, cropTo)

	plane := cropTo * cropTo
	out := make([]float32, 3*plane)
	b := crop.Bounds()
	for y := 0; y < cropTo; y++ {
		for x := 0; x < cropTo; x++ {
			c := color.NRGBAModel.Convert(crop.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := y*cropTo + x
			out[i] = (float32(c.R)/255 - channelMean[0]) / channelStd[0]
			out[plane+i] = (float32(c.G)/255 - channelMean[1]) / channelStd[1]
			out[2*plane+i] = (float32(c.B)/255 - channelMean[2]) / channelStd[2]
		}
	}
	return out
}

// TensorShape is the NCHW shape of ToTensor's output.
func TensorShape() []int64 {
	return []int64{1, 3, cropTo, cropTo}
}

// opaque drops the alpha channel and keeps each pixel's stored colour, so a
// fully transparent pixel keeps its RGB instead of turning black.
func opaque(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch s := src.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			row := s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):]
			out := dst.Pix[dst.PixOffset(0, y):]
			for x := 0; x < b.Dx(); x++ {
				copy(out[4*x:4*x+3], row[4*x:4*x+3])
				out[4*x+3] = 0xff
			}
		}
	case *image.NRGBA64:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := s.NRGBA64At(b.Min.X+x, b.Min.Y+y)
				dst.SetNRGBA(x, y, color.NRGBA{R: uint8(c.R >> 8), G: uint8(c.G >> 8), B: uint8(c.B >> 8), A: 0xff})
			}
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				c.A = 0xff
				dst.SetNRGBA(x, y, c)
			}
		}
	}
	return dst
}

func resizeShorter(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return src
	}
	var nw, nh int
	if w <= h {
		nw, nh = size, int(float64(size)*float64(h)/float64(w))
	} else {
		nw, nh = int(float64(size)*float64(w)/float64(h)), size
	}
	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func centerCrop(src image.Image, size int) image.Image {
	b := src.Bounds()
	top := int(math.RoundToEven(float64(b.Dy()-size) / 2))
	left := int(math.RoundToEven(float64(b.Dx()-size) / 2))
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), src, image.Pt(b.Min.X+left, b.Min.Y+top), draw.Src)
	return dst
}
