package main

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/bootdotdev/tubely-aspect/internal/auth"
	"github.com/bootdotdev/tubely-aspect/internal/database"
)

// authenticatedUser validates the bearer token. On failure it has already
// written the response.
func (cfg *apiConfig) authenticatedUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	token, err := auth.GetBearerToken(r.Header)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Couldn't find JWT", err)
		return uuid.Nil, false
	}
	userID, err := auth.ValidateJWT(token, cfg.jwtSecret)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Couldn't validate JWT", err)
		return uuid.Nil, false
	}
	return userID, true
}

// ownedVideo loads the {videoID} path video and checks the caller owns it.
// On failure it has already written the response.
func (cfg *apiConfig) ownedVideo(w http.ResponseWriter, r *http.Request) (database.Video, bool) {
	videoID, err := uuid.Parse(r.PathValue("videoID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid ID", err)
		return database.Video{}, false
	}
	userID, ok := cfg.authenticatedUser(w, r)
	if !ok {
		return database.Video{}, false
	}

	video, err := cfg.db.GetVideo(videoID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Error retrieving video", err)
		return database.Video{}, false
	}
	if video.ID == uuid.Nil {
		respondWithError(w, http.StatusNotFound, "Video not found", nil)
		return database.Video{}, false
	}
	if video.UserID != userID {
		respondWithError(w, http.StatusForbidden, "You do not own this video", nil)
		return database.Video{}, false
	}
	return video, true
}

func (cfg *apiConfig) handlerVideoMetaCreate(w http.ResponseWriter, r *http.Request) {
	type parameters struct {
		database.CreateVideoParams
	}

	userID, ok := cfg.authenticatedUser(w, r)
	if !ok {
		return
	}

	params := parameters{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondWithError(w, http.StatusBadRequest, "Couldn't decode parameters", err)
		return
	}
	if params.Title == "" {
		respondWithError(w, http.StatusBadRequest, "Title is required", nil)
		return
	}
	params.UserID = userID

	video, err := cfg.db.CreateVideo(params.CreateVideoParams)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Couldn't create video", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, video)
}

func (cfg *apiConfig) handlerVideoMetaDelete(w http.ResponseWriter, r *http.Request) {
	video, ok := cfg.ownedVideo(w, r)
	if !ok {
		return
	}

	if err := cfg.db.DeleteVideo(video.ID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Couldn't delete video", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (cfg *apiConfig) handlerVideoGet(w http.ResponseWriter, r *http.Request) {
	video, ok := cfg.ownedVideo(w, r)
	if !ok {
		return
	}

	signed, err := cfg.dbVideoToSignedVideo(r.Context(), video)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Couldn't sign video URL", err)
		return
	}

	respondWithJSON(w, http.StatusOK, signed)
}

func (cfg *apiConfig) handlerVideosRetrieve(w http.ResponseWriter, r *http.Request) {
	userID, ok := cfg.authenticatedUser(w, r)
	if !ok {
		return
	}

	videos, err := cfg.db.GetVideos(userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Couldn't retrieve videos", err)
		return
	}

	for i := range videos {
		videos[i], err = cfg.dbVideoToSignedVideo(r.Context(), videos[i])
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Couldn't sign video URL", err)
			return
		}
	}

	respondWithJSON(w, http.StatusOK, videos)
}
