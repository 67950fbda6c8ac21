package services

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

type detectLabelsAPI interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionService classifies with AWS Rekognition labels instead of a
// local model. It has no fixed class list, so indexes are always -1.
type RekognitionService struct {
	client        detectLabelsAPI
	region        string
	minConfidence float32
}

func NewRekognitionService(ctx context.Context, region string, minConfidence float64) (*RekognitionService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return &RekognitionService{
		client:        rekognition.NewFromConfig(cfg),
		region:        region,
		minConfidence: float32(minConfidence),
	}, nil
}

func (r *RekognitionService) Classify(ctx context.Context, img *DecodedImage) (Prediction, error) {
	data := img.Raw
	// Rekognition only takes JPEG and PNG bytes
	if img.Format != "jpeg" && img.Format != "png" {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img.Image, &jpeg.Options{Quality: 90}); err != nil {
			return Prediction{}, fmt.Errorf("failed to re-encode %s image: %w", img.Format, err)
		}
		data = buf.Bytes()
	}

	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: data},
		MaxLabels:     aws.Int32(5),
		MinConfidence: aws.Float32(r.minConfidence),
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("rekognition DetectLabels failed: %w", err)
	}

	var best *types.Label
	for i := range out.Labels {
		l := &out.Labels[i]
		if l.Name == nil {
			continue
		}
		if best == nil || aws.ToFloat32(l.Confidence) > aws.ToFloat32(best.Confidence) {
			best = l
		}
	}
	if best == nil {
		return Prediction{}, fmt.Errorf("no labels detected")
	}
	return Prediction{
		Index:      -1,
		Label:      aws.ToString(best.Name),
		Confidence: float64(aws.ToFloat32(best.Confidence)) / 100,
	}, nil
}

func (r *RekognitionService) NumClasses() int { return 0 }
func (r *RekognitionService) Device() string  { return "aws-rekognition:" + r.region }
func (r *RekognitionService) Name() string    { return "rekognition" }
func (r *RekognitionService) Close() error    { return nil }
