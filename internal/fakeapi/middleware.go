package fakeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userKey contextKey = "user"

// record counts calls, keeps request bodies and serves injected failures
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		var body []byte
		if r.Body != nil && !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.calls[key]++
		s.lastBodies[key] = body
		var injected *failure
		if queue := s.failures[key]; len(queue) > 0 {
			injected = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if injected != nil {
			writeError(w, injected.status, injected.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser rejects requests without a valid bearer token
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		acct, claims, msg := s.authenticate(raw)
		if acct == nil {
			writeError(w, http.StatusUnauthorized, msg)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, &authContext{account: acct, claims: claims, token: raw})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalUser attaches the caller when a valid token is sent
func (s *Server) optionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := bearerToken(r); raw != "" {
			if acct, claims, _ := s.authenticate(raw); acct != nil {
				ctx := context.WithValue(r.Context(), userKey, &authContext{account: acct, claims: claims, token: raw})
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

type authContext struct {
	account *account
	claims  *jwt.RegisteredClaims
	token   string
}

func caller(r *http.Request) *authContext {
	ac, _ := r.Context().Value(userKey).(*authContext)
	return ac
}

func (s *Server) authenticate(raw string) (*account, *jwt.RegisteredClaims, string) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, nil, "Invalid or expired token"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revoked[claims.ID] {
		return nil, nil, "Token has been revoked"
	}
	acct, ok := s.users[claims.Subject]
	if !ok {
		return nil, nil, "User not found"
	}
	return acct, claims, ""
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
