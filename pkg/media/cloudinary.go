package media

import (
	"context"
	"encoding/json"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ResourceType names the asset kind for deletion. The hosting service
// defaults to image, so video files must pass their type explicitly.
const (
	ResourceImage = "image"
	ResourceVideo = "video"
)

// UploadResult is what the hosting service reports back for a stored asset.
type UploadResult struct {
	URL      string
	PublicID string
	Duration float64 // seconds, zero for images
}

// Service uploads and deletes media assets on the external hosting service.
type Service interface {
	Upload(ctx context.Context, localPath string) (*UploadResult, error)
	Delete(ctx context.Context, publicID, resourceType string) error
}

// CloudinaryService implements Service against Cloudinary.
type CloudinaryService struct {
	client *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryService{client: client}, nil
}

// Upload sends a staged local file to Cloudinary. The caller owns the local
// file and its cleanup.
func (s *CloudinaryService) Upload(ctx context.Context, localPath string) (*UploadResult, error) {
	resp, err := s.client.Upload.Upload(ctx, localPath, uploader.UploadParams{
		ResourceType: "auto",
	})
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Duration: durationFromResponse(resp.Response),
	}, nil
}

// Delete destroys an asset by public id. Deleting a missing id is not an
// error, so retries are safe.
func (s *CloudinaryService) Delete(ctx context.Context, publicID, resourceType string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	return err
}

// durationFromResponse digs the video duration out of the raw upload
// response. The typed upload result does not carry the field; Cloudinary
// reports it only in the JSON body, and only for video assets.
func durationFromResponse(raw interface{}) float64 {
	switch body := raw.(type) {
	case []byte:
		var parsed struct {
			Duration float64 `json:"duration"`
		}
		if err := json.Unmarshal(body, &parsed); err == nil {
			return parsed.Duration
		}
	case json.RawMessage:
		return durationFromResponse([]byte(body))
	case map[string]interface{}:
		if duration, ok := body["duration"].(float64); ok {
			return duration
		}
	}
	return 0
}
