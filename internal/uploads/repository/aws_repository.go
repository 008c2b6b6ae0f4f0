package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/creatorhub/media-orchestrator/internal/models"
	"github.com/creatorhub/media-orchestrator/internal/uploads"
)

type awsRepository struct {
	client        *s3.Client
	preSignClient *s3.PresignClient
	presignExpiry time.Duration
}

func NewAwsRepository(awsClient *s3.Client, preSignClient *s3.PresignClient, presignExpiry time.Duration) uploads.AWSRepository {
	return &awsRepository{
		client:        awsClient,
		preSignClient: preSignClient,
		presignExpiry: presignExpiry,
	}
}

func (a *awsRepository) CreateMultipartUpload(ctx context.Context, bucket, key, contentType string) (string, error) {
	res, err := a.client.CreateMultipartUpload(
		ctx,
		&s3.CreateMultipartUploadInput{
			Bucket:      &bucket,
			Key:         &key,
			ContentType: &contentType,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart upload: %w", err)
	}
	if res.UploadId == nil {
		return "", fmt.Errorf("store returned no upload id")
	}
	return *res.UploadId, nil
}

func (a *awsRepository) PresignUploadPart(ctx context.Context, bucket, key, uploadID string, partNumber int) (string, error) {
	partNum := int32(partNumber)
	req, err := a.preSignClient.PresignUploadPart(
		ctx,
		&s3.UploadPartInput{
			Bucket:     &bucket,
			Key:        &key,
			UploadId:   &uploadID,
			PartNumber: &partNum,
		},
		s3.WithPresignExpires(a.presignExpiry),
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload part %d: %w", partNumber, err)
	}
	return req.URL, nil
}

// CompleteMultipartUpload finalizes with the exact ordered (part, etag) list.
// ETags are forwarded byte-for-byte: S3 compares them string-equal and a
// stripped quote or changed case fails the whole call.
func (a *awsRepository) CompleteMultipartUpload(ctx context.Context, bucket, key, uploadID string, parts []*models.UploadPart) error {
	completed := make([]types.CompletedPart, 0, len(parts))
	for _, part := range parts {
		partNum := int32(part.PartNumber)
		etag := part.ETag
		completed = append(completed, types.CompletedPart{
			PartNumber: &partNum,
			ETag:       &etag,
		})
	}
	_, err := a.client.CompleteMultipartUpload(
		ctx,
		&s3.CompleteMultipartUploadInput{
			Bucket:   &bucket,
			Key:      &key,
			UploadId: &uploadID,
			MultipartUpload: &types.CompletedMultipartUpload{
				Parts: completed,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}
	return nil
}

func (a *awsRepository) AbortMultipartUpload(ctx context.Context, bucket, key, uploadID string) error {
	_, err := a.client.AbortMultipartUpload(
		ctx,
		&s3.AbortMultipartUploadInput{
			Bucket:   &bucket,
			Key:      &key,
			UploadId: &uploadID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}
	return nil
}
