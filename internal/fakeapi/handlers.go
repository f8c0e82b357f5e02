package fakeapi

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coursework-roadmap/internal/models"
)

func (s *Server) tokenResponse(acct *account) models.TokenResponse {
	return models.TokenResponse{
		AccessToken: s.IssueToken(acct.user.ID, TokenTTL),
		TokenType:   "bearer",
		User:        acct.user,
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	acct := s.addUserLocked(req.Email, req.Password, req.Name)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, s.tokenResponse(acct))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || acct.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, s.tokenResponse(acct))
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, caller(r).account.user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ac := caller(r)
	s.mu.Lock()
	s.revoked[ac.claims.ID] = true
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCourseworks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	summaries := s.summariesFor(caller(r).account.user.ID)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) createCoursework(w http.ResponseWriter, r *http.Request) {
	var req models.CourseworkCreate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if req.CourseName == "" {
		req.CourseName = models.DefaultCourseName
	}

	s.mu.Lock()
	now := s.now().UTC()
	id := uuid.NewString()
	detail := models.CourseworkDetail{
		ID:           id,
		CourseName:   req.CourseName,
		Deadline:     req.Deadline,
		DeadlineNote: req.DeadlineNote,
		RoadmapData:  req.RoadmapData,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.courseworks[id] = &coursework{owner: caller(r).account.user.ID, detail: detail}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, detail)
}

// owned returns the caller's coursework or nil. s.mu must be held.
func (s *Server) owned(r *http.Request) *coursework {
	cw, ok := s.courseworks[chi.URLParam(r, "id")]
	if !ok || cw.owner != caller(r).account.user.ID {
		return nil
	}
	return cw
}

func (s *Server) getCoursework(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cw := s.owned(r)
	var detail models.CourseworkDetail
	if cw != nil {
		detail = cw.detail
	}
	s.mu.Unlock()

	if cw == nil {
		writeError(w, http.StatusNotFound, "Coursework not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) updateCoursework(w http.ResponseWriter, r *http.Request) {
	var req models.CourseworkUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	s.mu.Lock()
	cw := s.owned(r)
	if cw == nil {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Coursework not found")
		return
	}
	if req.CourseName != nil {
		cw.detail.CourseName = *req.CourseName
	}
	if req.RoadmapData != nil {
		cw.detail.RoadmapData = *req.RoadmapData
		cw.detail.Deadline = req.RoadmapData.Deadline
		cw.detail.DeadlineNote = req.RoadmapData.DeadlineNote
	}
	cw.detail.UpdatedAt = s.now().UTC()
	detail := cw.detail
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) deleteCoursework(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cw := s.owned(r)
	if cw != nil {
		delete(s.courseworks, cw.detail.ID)
	}
	s.mu.Unlock()

	if cw == nil {
		writeError(w, http.StatusNotFound, "Coursework not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	s.mu.Lock()
	history, ok := s.sessions[req.SessionID]
	if ok {
		s.sessions[req.SessionID] = append(history, req.Question)
	}
	answer := s.answer
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Session %s not found. Please upload a document first.", req.SessionID))
		return
	}
	if answer == nil {
		answer = &models.ChatResponse{
			Answer:  "You asked: " + req.Question,
			Sources: []models.ChatSource{},
			Images:  []string{},
		}
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) clearChat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	s.mu.Lock()
	if _, ok := s.sessions[sessionID]; ok {
		s.sessions[sessionID] = nil
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": sessionID})
}

func (s *Server) decompose(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1024*1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "Only PDF files are accepted")
		return
	}
	content, err := io.ReadAll(file)
	if err != nil || len(content) > MaxUploadSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File too large. Maximum size is %dMB", MaxUploadSize/(1024*1024)))
		return
	}

	s.mu.Lock()
	var doc *models.DecompositionResponse
	if s.decomposed != nil {
		doc = s.decomposed.Clone()
	} else {
		doc = &models.DecompositionResponse{Tasks: []models.Task{}}
	}
	sessionID := uuid.NewString()
	doc.SessionID = models.StringPtr(sessionID)
	doc.DocumentID = models.StringPtr(uuid.NewString())
	s.sessions[sessionID] = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, doc)
}

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	documentID, err1 := url.PathUnescape(chi.URLParam(r, "documentID"))
	filename, err2 := url.PathUnescape(chi.URLParam(r, "filename"))
	if err1 != nil || err2 != nil || strings.ContainsAny(documentID+filename, `/\`) || strings.Contains(documentID+filename, "..") {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	s.mu.Lock()
	data, ok := s.images[documentID+"/"+filename]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}

	contentType, known := imageTypes[strings.ToLower(filepath.Ext(filename))]
	if !known {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
