// Reelmood - Mood-Aware Media Recommendations and Experiment Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmood

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/reelmood/internal/logging"
	"github.com/tomtom215/reelmood/internal/recommend"
	"github.com/tomtom215/reelmood/internal/validation"
)

// Recommend handles POST /api/v1/recommendations.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req recommend.Request
	if err := decodeJSON(w, r, &req); err != nil {
		rw.BadRequest("invalid request body: " + err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.ValidationError(verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	resp, err := h.recommender.Recommend(ctx, &req)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidRequest) {
			rw.BadRequest(err.Error())
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation failed")
		rw.InternalError("failed to compute recommendations")
		return
	}

	rw.Success(resp)
}
