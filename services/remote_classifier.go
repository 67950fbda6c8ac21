package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RemoteClassifier sends the preprocessed tensor to a model server that
// speaks the KServe v2 inference protocol (Triton, TorchServe, KServe).
type RemoteClassifier struct {
	endpoint string
	host     string
	input    string
	classes  ClassIndex
	client   *http.Client
}

type inferTensor struct {
	Name     string    `json:"name"`
	Shape    []int64   `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

type inferRequest struct {
	Inputs []inferTensor `json:"inputs"`
}

type inferResponse struct {
	ModelName string        `json:"model_name"`
	Outputs   []inferTensor `json:"outputs"`
}

func NewRemoteClassifier(serverURL, modelName, inputName string, classes ClassIndex) (*RemoteClassifier, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/"))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid model server URL %q", serverURL)
	}
	return &RemoteClassifier{
		endpoint: fmt.Sprintf("%s/v2/models/%s/infer", u.String(), url.PathEscape(modelName)),
		host:     u.Host,
		input:    inputName,
		classes:  classes,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (r *RemoteClassifier) Classify(ctx context.Context, img *DecodedImage) (Prediction, error) {
	payload := inferRequest{Inputs: []inferTensor{{
		Name:     r.input,
		Shape:    TensorShape(),
		Datatype: "FP32",
		Data:     ToTensor(img.Image),
	}}}
	b, err := json.Marshal(payload)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to marshal inference payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(b))
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to call model server: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to read model server response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("model server error %d: %s", resp.StatusCode, string(body))
	}

	var ir inferResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return Prediction{}, fmt.Errorf("failed to parse model server JSON: %w", err)
	}
	if len(ir.Outputs) == 0 {
		return Prediction{}, fmt.Errorf("model server returned no outputs")
	}
	return PredictFromLogits(ir.Outputs[0].Data, r.classes)
}

func (r *RemoteClassifier) NumClasses() int { return len(r.classes) }
func (r *RemoteClassifier) Device() string  { return "remote:" + r.host }
func (r *RemoteClassifier) Name() string    { return "remote" }
func (r *RemoteClassifier) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
