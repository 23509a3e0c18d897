package daemon

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/felixgeelhaar/codelab/internal/domain"
	"github.com/felixgeelhaar/codelab/internal/session"
	"github.com/felixgeelhaar/codelab/internal/view"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the browser's page session ID
	SessionCookie = "codelab_session"

	fetchHeader = "X-Requested-With"
	fetchValue  = "fetch"
)

// pageSession returns the session named by the cookie, starting a new one
// when the cookie is missing or stale.
func (s *Server) pageSession(w http.ResponseWriter, r *http.Request) (session.State, error) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			if st, err := s.sessions.Get(r.Context(), id); err == nil {
				return st, nil
			}
		}
	}

	st, err := s.sessions.Create(r.Context(), session.CreateRequest{})
	if err != nil {
		return session.State{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    st.ID.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return st, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st, err := s.pageSession(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Page(&buf, view.Build(st)); err != nil {
		s.logger.Error("render page failed", "session_id", st.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleSelectForm(w http.ResponseWriter, r *http.Request) {
	st, err := s.pageSession(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if code := r.PostForm["code"]; len(code) > 0 {
		if _, err := s.sessions.UpdateCode(r.Context(), st.ID, code[0]); err != nil {
			s.afterAction(w, r, err)
			return
		}
	}
	_, err = s.sessions.Select(r.Context(), st.ID, r.FormValue("exercise_id"))
	s.afterAction(w, r, err)
}

func (s *Server) handleRunForm(w http.ResponseWriter, r *http.Request) {
	st, err := s.pageSession(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	code := r.FormValue("code")
	if isFetch(r) {
		// the result arrives over the websocket
		_, err = s.sessions.StartRun(r.Context(), st.ID, code)
	} else {
		_, err = s.sessions.Run(r.Context(), st.ID, code)
	}
	s.afterAction(w, r, err)
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	st, err := s.pageSession(w, r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	_, err = s.sessions.Reset(r.Context(), st.ID)
	s.afterAction(w, r, err)
}

// afterAction answers a form post: 204 for script submissions, otherwise a
// redirect back to the page. A rejected run leaves the page as it is.
func (s *Server) afterAction(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil && !(errors.Is(err, domain.ErrRunInProgress) || errors.Is(err, domain.ErrRateLimited)) {
		s.pageError(w, r, err)
		return
	}

	if isFetch(r) {
		if err != nil {
			status, message := statusFor(err)
			http.Error(w, message, status)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("page action failed", "path", r.URL.Path, "error", err)
	}
	http.Error(w, message, status)
}

func isFetch(r *http.Request) bool {
	return r.Header.Get(fetchHeader) == fetchValue
}
