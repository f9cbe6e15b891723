package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coop-inventory/core/storage"
	"coop-inventory/feature/count/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// TotalsSource yields the reconciled totals for a session. The count
// feature's service satisfies it.
type TotalsSource interface {
	Totals(ctx context.Context, sessionID string) ([]models.ItemTotal, time.Time, error)
}

// Report is the uploaded document: the session's reconciled totals plus
// enough metadata to identify the export afterwards.
type Report struct {
	SessionID   string             `json:"session_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Totals      []models.ItemTotal `json:"totals"`
}

// Service uploads finished session totals to object storage so the back
// office can pick them up once the store is back online.
type Service struct {
	client storage.Client
	bucket string
	region string
	totals TotalsSource
	logger *zap.Logger
}

// NewService creates a new export service.
func NewService(client storage.Client, cfg storage.Config, totals TotalsSource, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		totals: totals,
		logger: logger,
	}
}

// objectName is the deterministic key for a session's totals report.
// Re-exporting the same session overwrites the previous report.
func objectName(sessionID string) string {
	return fmt.Sprintf("sessions/%s/totals.json", sessionID)
}

// Upload writes the session's current totals as a JSON report and returns
// the object key.
func (s *Service) Upload(ctx context.Context, sessionID string) (string, error) {
	totals, _, err := s.totals.Totals(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if totals == nil {
		totals = []models.ItemTotal{}
	}

	report := Report{
		SessionID:   sessionID,
		GeneratedAt: time.Now().UTC(),
		Totals:      totals,
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := objectName(sessionID)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	s.logger.Info("Session totals exported",
		zap.String("session_id", sessionID),
		zap.String("bucket", s.bucket),
		zap.String("object", key),
	)
	return key, nil
}

// Download retrieves a previously uploaded report.
func (s *Service) Download(ctx context.Context, sessionID string) (*Report, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName(sessionID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}
	defer obj.Close()

	var report Report
	if err := json.NewDecoder(obj).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// Delete removes a session's report, used when an export was premature.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName(sessionID), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}
