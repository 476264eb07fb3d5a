package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"

	"vision_backend/internal/feature/vision/adapters/inference/dto"
	"vision_backend/internal/feature/vision/domain/entity"
	"vision_backend/internal/feature/vision/usecase"
	"vision_backend/internal/platform/imaging"
)

// Client は推論サーバーにHTTPで推論を依頼するModelRunner実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがModelRunnerを実装していることをコンパイル時に検証します。
var _ usecase.ModelRunner = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// inferenceRequest は推論サーバーへの共通リクエストボディです。
type inferenceRequest struct {
	ImageBase64 string  `json:"image_base64"`
	Conf        float64 `json:"conf"`
	IoU         float64 `json:"iou,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
}

// post は画像と推論パラメータをJSONでPOSTし、レスポンスをoutへデコードします。
func (c *Client) post(ctx context.Context, path string, img image.Image, body inferenceRequest, out any) error {
	encoded, err := imaging.EncodeJPEGBase64(img)
	if err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	body.ImageBase64 = encoded

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference server request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return fmt.Errorf("inference server http %d", res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode inference response: %w", err)
	}
	return nil
}

// Detect は推論サーバーの/detectを呼び出し、目標検出結果を返します。
func (c *Client) Detect(ctx context.Context, img image.Image, conf, iou float64) ([]entity.Detection, error) {
	var body dto.DetectionResponse
	if err := c.post(ctx, "/detect", img, inferenceRequest{Conf: conf, IoU: iou}, &body); err != nil {
		return nil, err
	}
	if body.Error != "" {
		return nil, fmt.Errorf("inference server: %s", body.Error)
	}

	detections := make([]entity.Detection, 0, len(body.Detections))
	for _, d := range body.Detections {
		detections = append(detections, entity.Detection{
			ClassID:    d.ClassID,
			ClassName:  d.ClassName,
			Confidence: d.Confidence,
			BBox:       entity.BBox{X1: d.BBox[0], Y1: d.BBox[1], X2: d.BBox[2], Y2: d.BBox[3]},
		})
	}
	return detections, nil
}

// Classify は推論サーバーの/classifyを呼び出し、分類結果を返します。
func (c *Client) Classify(ctx context.Context, img image.Image, conf float64, topK int) ([]entity.Classification, error) {
	var body dto.ClassificationResponse
	if err := c.post(ctx, "/classify", img, inferenceRequest{Conf: conf, TopK: topK}, &body); err != nil {
		return nil, err
	}
	if body.Error != "" {
		return nil, fmt.Errorf("inference server: %s", body.Error)
	}

	classifications := make([]entity.Classification, 0, len(body.Classifications))
	for _, cl := range body.Classifications {
		classifications = append(classifications, entity.Classification{
			ClassID:    cl.ClassID,
			ClassName:  cl.ClassName,
			Confidence: cl.Confidence,
		})
	}
	return classifications, nil
}

// Pose は推論サーバーの/poseを呼び出し、姿勢推定結果を返します。
// 関節点名はCOCO 17点のインデックス順で割り当てます。
func (c *Client) Pose(ctx context.Context, img image.Image, conf, iou float64) ([]entity.Pose, error) {
	var body dto.PoseResponse
	if err := c.post(ctx, "/pose", img, inferenceRequest{Conf: conf, IoU: iou}, &body); err != nil {
		return nil, err
	}
	if body.Error != "" {
		return nil, fmt.Errorf("inference server: %s", body.Error)
	}

	poses := make([]entity.Pose, 0, len(body.Poses))
	for i, p := range body.Poses {
		keypoints := make([]entity.Keypoint, 0, len(p.Keypoints))
		for j, kp := range p.Keypoints {
			name := ""
			if j < len(entity.KeypointNames) {
				name = entity.KeypointNames[j]
			}
			keypoints = append(keypoints, entity.Keypoint{
				Name:       name,
				X:          kp[0],
				Y:          kp[1],
				Confidence: kp[2],
			})
		}

		var box *entity.BBox
		if p.BBox != nil {
			box = &entity.BBox{X1: p.BBox[0], Y1: p.BBox[1], X2: p.BBox[2], Y2: p.BBox[3]}
		}
		poses = append(poses, entity.Pose{PersonID: i, BBox: box, Keypoints: keypoints})
	}
	return poses, nil
}

// Segment は推論サーバーの/segmentを呼び出し、セグメンテーション結果を返します。
func (c *Client) Segment(ctx context.Context, img image.Image, conf, iou float64) ([]entity.Segment, error) {
	var body dto.SegmentResponse
	if err := c.post(ctx, "/segment", img, inferenceRequest{Conf: conf, IoU: iou}, &body); err != nil {
		return nil, err
	}
	if body.Error != "" {
		return nil, fmt.Errorf("inference server: %s", body.Error)
	}

	segments := make([]entity.Segment, 0, len(body.Segments))
	for _, s := range body.Segments {
		segments = append(segments, entity.Segment{
			ClassID:    s.ClassID,
			ClassName:  s.ClassName,
			Confidence: s.Confidence,
			BBox:       entity.BBox{X1: s.BBox[0], Y1: s.BBox[1], X2: s.BBox[2], Y2: s.BBox[3]},
		})
	}
	return segments, nil
}
