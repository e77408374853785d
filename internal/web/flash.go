package web

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const flashSessionName = "geonosis_flash"

type ToastVariant string

const (
	ToastDefault     ToastVariant = "default"
	ToastDestructive ToastVariant = "destructive"
)

// Toast is a transient notification shown at the top of the next page.
type Toast struct {
	Title       string
	Description string
	Variant     ToastVariant
}

func errorToast(message string) Toast {
	return Toast{Title: "Error", Description: message, Variant: ToastDestructive}
}

func init() {
	gob.Register(Toast{})
}

func newFlashStore(key []byte) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// addToast queues a toast for the next rendered page. Call it before the
// response header is written.
func (s *Server) addToast(w http.ResponseWriter, r *http.Request, toast Toast) {
	session, err := s.flash.Get(r, flashSessionName)
	if err != nil {
		s.logger.Warn("flash session unreadable, starting fresh", "error", err)
	}
	session.AddFlash(toast)
	if err := session.Save(r, w); err != nil {
		s.logger.Error("save flash session failed", "error", err)
	}
}

func (s *Server) popToasts(w http.ResponseWriter, r *http.Request) []Toast {
	session, err := s.flash.Get(r, flashSessionName)
	if err != nil {
		return nil
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		s.logger.Error("clear flash session failed", "error", err)
	}

	toasts := make([]Toast, 0, len(flashes))
	for _, flash := range flashes {
		if toast, ok := flash.(Toast); ok {
			toasts = append(toasts, toast)
		}
	}
	return toasts
}
