package main

import (
	"io"
	"mime"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const maxUploadSize = 1 << 30 // 1 GB

func (cfg *apiConfig) handlerUploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	video, ok := cfg.ownedVideo(w, r)
	if !ok {
		return
	}
	logger := cfg.logger.With("video_id", video.ID, "user_id", video.UserID)

	// Parse multipart form (use 32MB memory for large files)
	const maxMemory = int64(32 << 20)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		respondWithError(w, http.StatusBadRequest, "Error parsing form data", err)
		return
	}

	file, fileHeader, err := r.FormFile("video")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing or invalid 'video' file", err)
		return
	}
	defer file.Close()

	mediaType, _, err := mime.ParseMediaType(fileHeader.Header.Get("Content-Type"))
	if err != nil || mediaType == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid Content-Type header", err)
		return
	}
	if mediaType != "video/mp4" {
		respondWithError(w, http.StatusBadRequest, "Unsupported media type; only video/mp4 allowed", nil)
		return
	}

	tempFile, err := os.CreateTemp("", "tubely-upload-*.mp4")
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create temp file", err)
		return
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, file); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save video to temp file", err)
		return
	}
	if err := tempFile.Sync(); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to flush temp file", err)
		return
	}

	aspectRatio, err := cfg.analyzeVideo(r.Context(), tempFile.Name())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Couldn't determine aspect ratio", err)
		return
	}
	logger.Info("analyzed video",
		"primary", aspectRatio.Primary, "secondary", aspectRatio.Secondary,
		"primary_raw", aspectRatio.PrimaryRaw, "samples", aspectRatio.TotalSamples)

	processedPath, err := processVideoForFastStart(r.Context(), tempFile.Name())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Couldn't process video for fast start", err)
		return
	}
	defer os.Remove(processedPath)

	processed, err := os.Open(processedPath)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Couldn't open processed video", err)
		return
	}
	defer processed.Close()

	key, err := videoObjectKey(aspectRatio)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to generate object key", err)
		return
	}

	_, err = cfg.s3Client.PutObject(r.Context(), &s3.PutObjectInput{
		Bucket:      &cfg.s3Bucket,
		Key:         &key,
		Body:        processed,
		ContentType: &mediaType,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to upload video to S3", err)
		return
	}

	videoURL := cfg.s3Bucket + "," + key
	video.VideoURL = &videoURL
	video.AspectRatio = aspectRatio
	if err := cfg.db.UpdateVideo(video); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update video", err)
		return
	}

	signed, err := cfg.dbVideoToSignedVideo(r.Context(), video)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Couldn't sign video URL", err)
		return
	}

	respondWithJSON(w, http.StatusOK, signed)
}
