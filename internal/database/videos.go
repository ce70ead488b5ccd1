package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID          uuid.UUID   `json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	VideoURL    *string     `json:"video_url"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
	CreateVideoParams
}

type CreateVideoParams struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      uuid.UUID `json:"user_id"`
}

// AspectRatio is the stored outcome of analysing a video. Zero values mean
// "not analysed" for Primary and "no secondary cut" for Secondary.
type AspectRatio struct {
	Primary      float64 `json:"primary"`
	Secondary    float64 `json:"secondary"`
	PrimaryRaw   float64 `json:"primary_raw"`
	SecondaryRaw float64 `json:"secondary_raw"`
	TotalSamples int     `json:"total_samples"`
	// Histogram is the JSON encoded sample histogram, kept so the video can
	// be reclassified without sampling it again.
	Histogram []byte `json:"-"`
}

const videoColumns = `id, created_at, updated_at, title, description, video_url, user_id,
	aspect_primary, aspect_secondary, aspect_primary_raw, aspect_secondary_raw, aspect_samples, aspect_histogram`

func (c Client) CreateVideo(params CreateVideoParams) (Video, error) {
	id := uuid.New()
	now := time.Now().UTC()
	query := `
	INSERT INTO videos (id, created_at, updated_at, title, description, user_id)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := c.db.Exec(c.rebind(query), id.String(), now, now, params.Title, params.Description, params.UserID.String()); err != nil {
		return Video{}, err
	}
	return c.GetVideo(id)
}

// GetVideo returns a zero Video when id does not exist.
func (c Client) GetVideo(id uuid.UUID) (Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = ?`
	video, err := scanVideo(c.db.QueryRow(c.rebind(query), id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Video{}, nil
	}
	return video, err
}

func (c Client) GetVideos(userID uuid.UUID) ([]Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := c.db.Query(c.rebind(query), userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

func (c Client) UpdateVideo(video Video) error {
	query := `
	UPDATE videos
	SET
		title = ?,
		description = ?,
		video_url = ?,
		aspect_primary = ?,
		aspect_secondary = ?,
		aspect_primary_raw = ?,
		aspect_secondary_raw = ?,
		aspect_samples = ?,
		aspect_histogram = ?,
		updated_at = ?
	WHERE id = ?
	`
	var histogram sql.NullString
	if len(video.AspectRatio.Histogram) > 0 {
		histogram = sql.NullString{String: string(video.AspectRatio.Histogram), Valid: true}
	}
	ar := video.AspectRatio
	_, err := c.db.Exec(c.rebind(query),
		video.Title,
		video.Description,
		video.VideoURL,
		ar.Primary,
		ar.Secondary,
		ar.PrimaryRaw,
		ar.SecondaryRaw,
		ar.TotalSamples,
		histogram,
		time.Now().UTC(),
		video.ID.String(),
	)
	return err
}

func (c Client) DeleteVideo(id uuid.UUID) error {
	_, err := c.db.Exec(c.rebind(`DELETE FROM videos WHERE id = ?`), id.String())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(s scanner) (Video, error) {
	var video Video
	var id, userID string
	var videoURL, histogram sql.NullString
	err := s.Scan(
		&id,
		&video.CreatedAt,
		&video.UpdatedAt,
		&video.Title,
		&video.Description,
		&videoURL,
		&userID,
		&video.AspectRatio.Primary,
		&video.AspectRatio.Secondary,
		&video.AspectRatio.PrimaryRaw,
		&video.AspectRatio.SecondaryRaw,
		&video.AspectRatio.TotalSamples,
		&histogram,
	)
	if err != nil {
		return Video{}, err
	}
	if video.ID, err = uuid.Parse(id); err != nil {
		return Video{}, err
	}
	if video.UserID, err = uuid.Parse(userID); err != nil {
		return Video{}, err
	}
	if videoURL.Valid {
		video.VideoURL = &videoURL.String
	}
	if histogram.Valid {
		video.AspectRatio.Histogram = []byte(histogram.String)
	}
	return video, nil
}
