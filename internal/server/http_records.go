package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/StealthPanther/ai-career-navigator/internal/formatters"
	"github.com/StealthPanther/ai-career-navigator/internal/store"
	"github.com/StealthPanther/ai-career-navigator/internal/types"
	"github.com/StealthPanther/ai-career-navigator/internal/utils"
)

const (
	defaultSessionHistory = 10
	defaultChatHistory    = 50
)

// getResumeHandler returns the user's latest resume
func (s *Server) getResumeHandler(w http.ResponseWriter, r *http.Request) {
	resume, err := s.store.LatestResume(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resume)
}

// listRoadmapsHandler returns the user's roadmaps, newest first
func (s *Server) listRoadmapsHandler(w http.ResponseWriter, r *http.Request) {
	roadmaps, err := s.store.ListRoadmaps(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if roadmaps == nil {
		roadmaps = []store.StoredRoadmap{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"roadmaps": roadmaps})
}

// exportRoadmapHandler streams a roadmap as an xlsx workbook.
// ?roadmapId= selects a roadmap, otherwise the active one is exported.
func (s *Server) exportRoadmapHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("userId")

	var (
		roadmap *store.StoredRoadmap
		err     error
	)
	if id := r.URL.Query().Get("roadmapId"); id != "" {
		roadmap, err = s.store.GetRoadmap(ctx, userID, id)
	} else {
		roadmap, err = s.store.ActiveRoadmap(ctx, userID)
	}
	if err != nil {
		writeAppError(w, err)
		return
	}

	data, err := formatters.RoadmapXLSX(roadmap.DisplayName, roadmap.Roadmap)
	if err != nil {
		s.Logger.LogError(err, "Failed to render roadmap workbook", "roadmap_id", roadmap.ID.String())
		writeErrorResponse(w, "Export failed", err.Error(), http.StatusInternalServerError)
		return
	}

	filename := utils.SlugFilename(roadmap.DisplayName, "roadmap")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.Logger.LogError(err, "Failed to write roadmap workbook")
	}
}

// getSessionHandler returns one interview session
func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.GetSession(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// sessionHistoryHandler returns the user's recent sessions, ?limit= defaults to 10
func (s *Server) sessionHistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context(), r.PathValue("userId"), queryLimit(r, defaultSessionHistory))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if sessions == nil {
		sessions = []store.InterviewSession{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// chatHistoryHandler returns a conversation, oldest turn first.
// ?roadmapId= selects a roadmap conversation, ?limit= defaults to 50.
func (s *Server) chatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	turns, err := s.store.RecentTurns(r.Context(), r.PathValue("userId"),
		r.URL.Query().Get("roadmapId"), queryLimit(r, defaultChatHistory))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if turns == nil {
		turns = []types.ChatTurn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": turns})
}

// clearChatHandler deletes a conversation, or all of the user's chats without ?roadmapId=
func (s *Server) clearChatHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	removed, err := s.store.ClearChat(r.Context(), userID, r.URL.Query().Get("roadmapId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.Logger.Info("Chat history cleared", "user_id", userID, "turns", removed)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Chat history cleared",
		"removed": removed,
	})
}

// dashboardHandler returns the latest resume, skill analysis and active roadmap.
// Missing records are reported as null.
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("userId")

	resume, err := optional(ctx, userID, s.store.LatestResume)
	if err != nil {
		writeAppError(w, err)
		return
	}
	analysis, err := optional(ctx, userID, s.store.LatestSkillAnalysis)
	if err != nil {
		writeAppError(w, err)
		return
	}
	roadmap, err := optional(ctx, userID, s.store.ActiveRoadmap)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resume":        resume,
		"skillAnalysis": analysis,
		"roadmap":       roadmap,
	})
}

// optional turns a not-found lookup into a nil record
func optional[T any](ctx context.Context, userID string, get func(context.Context, string) (*T, error)) (*T, error) {
	v, err := get(ctx, userID)
	if store.IsNotFound(err) {
		return nil, nil
	}
	return v, err
}
