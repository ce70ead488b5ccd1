package main

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bootdotdev/tubely-aspect/internal/database"
)

const presignExpiry = time.Hour

func generatePresignedURL(ctx context.Context, s3Client *s3.Client, bucket, key string, expireTime time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s3Client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(expireTime))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// dbVideoToSignedVideo swaps the stored "bucket,key" video URL for a
// presigned GET URL.
func (cfg *apiConfig) dbVideoToSignedVideo(ctx context.Context, video database.Video) (database.Video, error) {
	if video.VideoURL == nil || cfg.s3Client == nil {
		return video, nil
	}
	bucket, key, ok := strings.Cut(*video.VideoURL, ",")
	if !ok {
		return video, nil
	}
	presignedURL, err := generatePresignedURL(ctx, cfg.s3Client, bucket, key, presignExpiry)
	if err != nil {
		return database.Video{}, err
	}
	video.VideoURL = &presignedURL
	return video, nil
}
