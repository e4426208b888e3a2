// Recipe Web App - Recipe Discovery and Favourites Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nivremi/recipe-web-app

package api

import (
	"net/http"

	"github.com/nivremi/recipe-web-app/internal/history"
	"github.com/nivremi/recipe-web-app/internal/logging"
	"github.com/nivremi/recipe-web-app/internal/metrics"
)

// History handles GET /api/history.
//
// The response is always 200; data.status tells an empty history apart from
// one that could not be decoded. A malformed cookie is cleared.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	result := history.Read(h.jar.FromRequest(r))
	if result.Status == history.StatusMalformed {
		logging.Ctx(r.Context()).Debug().Msg("Discarding malformed history cookie")
		http.SetCookie(w, h.jar.ClearCookie(history.Clear(), isSecureRequest(r)))
	}
	metrics.RecordHistoryRead(string(result.Status))

	rw.Success(result)
}

// ClearHistory handles POST /api/history/clear.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.jar.ClearCookie(history.Clear(), isSecureRequest(r)))
	NewResponseWriter(w, r).Success(MessageResponse{Msg: "History cleared"})
}
