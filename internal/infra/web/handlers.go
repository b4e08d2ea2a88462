package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ai-showcase-client/internal/domain"
	"ai-showcase-client/internal/domain/model"
	"ai-showcase-client/internal/domain/ports/adapter"
)

// invocationContext keeps request-scoped values but drops cancellation: a
// client that goes away must not abort a backend call whose job still commits.
func invocationContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	s.writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, msg))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": model.Catalog()})
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) setCurrentService(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "invalid request body")
		return
	}
	if _, ok := model.LookupService(req.ID); !ok {
		s.badRequest(w, r, "unknown service")
		return
	}
	s.store.SetCurrentService(req.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": s.store.RecentJobs()})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.store.Job(model.ID(chi.URLParam(r, "id")))
	if !ok {
		s.writeError(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) refreshJobs(w http.ResponseWriter, r *http.Request) {
	if err := s.invoke.RefreshJobs(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": s.store.RecentJobs()})
}

type generateRequest struct {
	Prompt     string                       `json:"prompt"`
	Parameters adapter.GenerationParameters `json:"parameters"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "invalid request body")
		return
	}
	job, err := s.invoke.Generate(invocationContext(r), req.Prompt, req.Parameters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type imageCall func(r *http.Request, img adapter.ImageUpload, useAlternate bool) (model.AIJob, error)

func (s *Server) imageHandler(w http.ResponseWriter, r *http.Request, call imageCall) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.badRequest(w, r, "invalid multipart body")
		return
	}
	f, hdr, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, domain.ErrInvalidArgument)
		return
	}
	defer f.Close()

	useAlternate, _ := strconv.ParseBool(r.FormValue("use_hugging_face"))
	img := adapter.ImageUpload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Body:        f,
	}
	job, err := call(r, img, useAlternate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) classify(w http.ResponseWriter, r *http.Request) {
	s.imageHandler(w, r, func(r *http.Request, img adapter.ImageUpload, alt bool) (model.AIJob, error) {
		return s.invoke.Classify(invocationContext(r), img, alt)
	})
}

func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	s.imageHandler(w, r, func(r *http.Request, img adapter.ImageUpload, alt bool) (model.AIJob, error) {
		return s.invoke.Detect(invocationContext(r), img, alt)
	})
}

func (s *Server) segment(w http.ResponseWriter, r *http.Request) {
	s.imageHandler(w, r, func(r *http.Request, img adapter.ImageUpload, alt bool) (model.AIJob, error) {
		return s.invoke.Segment(invocationContext(r), img, alt)
	})
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	s.invoke.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "invalid request body")
		return
	}
	msg, err := s.invoke.Chat(invocationContext(r), req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"messages": s.store.ChatMessages()})
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.toasts.List()})
}

func (s *Server) dismissNotification(w http.ResponseWriter, r *http.Request) {
	if !s.toasts.Dismiss(chi.URLParam(r, "id")) {
		s.writeError(w, r, domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) authStatus(w http.ResponseWriter, r *http.Request) {
	info, err := s.auth.Status(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrTokenExpired) {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse(info.Subject, info.ExpiresAt.Unix(), info.ExpiresAt.IsZero()))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, "invalid request body")
		return
	}
	info, err := s.auth.Login(r.Context(), req.Token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse(info.Subject, info.ExpiresAt.Unix(), info.ExpiresAt.IsZero()))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func authResponse(subject string, exp int64, noExp bool) map[string]any {
	out := map[string]any{"authenticated": true, "subject": subject}
	if !noExp {
		out["expires_at"] = exp
	}
	return out
}
