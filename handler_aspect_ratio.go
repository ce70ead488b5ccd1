package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bootdotdev/tubely-aspect/internal/aspectratio"
)

// configOverride lets a request adjust the server's aspect ratio settings
// for a single call. Unset fields keep the server value.
type configOverride struct {
	CanonicalRatios     []float64 `json:"canonical_ratios"`
	RoundUp             *bool     `json:"round_up"`
	RoundUpTolerancePct *float64  `json:"round_up_tolerance_delta_pct"`
	SecondaryMinShare   *float64  `json:"secondary_min_share"`
}

func (o *configOverride) apply(base aspectratio.Config) (aspectratio.Config, error) {
	cfg := base
	if o != nil {
		if o.CanonicalRatios != nil {
			cfg.CanonicalRatios = o.CanonicalRatios
		}
		if o.RoundUp != nil {
			cfg.RoundUp = *o.RoundUp
		}
		if o.RoundUpTolerancePct != nil {
			cfg.RoundUpTolerancePct = *o.RoundUpTolerancePct
		}
		if o.SecondaryMinShare != nil {
			cfg.SecondaryMinShare = *o.SecondaryMinShare
		}
	}
	return cfg, cfg.Validate()
}

type analysisResponse struct {
	aspectratio.Result
	PrimaryLabel   string             `json:"primary_label"`
	SecondaryLabel string             `json:"secondary_label"`
	Config         aspectratio.Config `json:"config"`
}

func newAnalysisResponse(res aspectratio.Result, cfg aspectratio.Config) analysisResponse {
	return analysisResponse{
		Result:         res,
		PrimaryLabel:   res.PrimaryLabel(),
		SecondaryLabel: res.SecondaryLabel(),
		Config:         cfg,
	}
}

func (cfg *apiConfig) handlerClassify(w http.ResponseWriter, r *http.Request) {
	type parameters struct {
		Histogram *aspectratio.Histogram `json:"histogram"`
		Config    *configOverride        `json:"config"`
	}

	params := parameters{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondWithError(w, http.StatusBadRequest, "Couldn't decode parameters", err)
		return
	}
	if params.Histogram == nil {
		respondWithError(w, http.StatusBadRequest, "Histogram is required", nil)
		return
	}

	arConfig, err := params.Config.apply(cfg.arConfig)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid aspect ratio config", err)
		return
	}

	res, err := aspectratio.Analyze(params.Histogram, arConfig)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Couldn't classify histogram", err)
		return
	}

	respondWithJSON(w, http.StatusOK, newAnalysisResponse(res, arConfig))
}

func (cfg *apiConfig) handlerRound(w http.ResponseWriter, r *http.Request) {
	type parameters struct {
		Ratio  float64         `json:"ratio"`
		Config *configOverride `json:"config"`
	}
	type response struct {
		Ratio     float64 `json:"ratio"`
		Canonical float64 `json:"canonical"`
		Label     string  `json:"label"`
	}

	params := parameters{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		respondWithError(w, http.StatusBadRequest, "Couldn't decode parameters", err)
		return
	}

	arConfig, err := params.Config.apply(cfg.arConfig)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid aspect ratio config", err)
		return
	}

	canonical, err := aspectratio.Round(params.Ratio, arConfig)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Couldn't round ratio", err)
		return
	}

	respondWithJSON(w, http.StatusOK, response{
		Ratio:     params.Ratio,
		Canonical: canonical,
		Label:     aspectratio.Label(canonical),
	})
}

// handlerVideoReclassify re-runs classification on the histogram stored
// with a video, e.g. after the canonical ratio list changed. The body is an
// optional config override.
func (cfg *apiConfig) handlerVideoReclassify(w http.ResponseWriter, r *http.Request) {
	video, ok := cfg.ownedVideo(w, r)
	if !ok {
		return
	}
	if len(video.AspectRatio.Histogram) == 0 {
		respondWithError(w, http.StatusConflict, "Video has not been analyzed yet", nil)
		return
	}

	var override *configOverride
	if err := json.NewDecoder(r.Body).Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Couldn't decode parameters", err)
		return
	}
	arConfig, err := override.apply(cfg.arConfig)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid aspect ratio config", err)
		return
	}

	h := aspectratio.NewHistogram()
	if err := json.Unmarshal(video.AspectRatio.Histogram, h); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Stored histogram is corrupt", err)
		return
	}

	aspectRatio, err := analyzeHistogram(h, arConfig)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Couldn't classify histogram", err)
		return
	}
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
