package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ranconf/enodebd-go/pkg/devices"
	"github.com/ranconf/enodebd-go/pkg/service"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// Session ID carriers on the CWMP ingress.
const (
	SessionHeader = "X-CWMP-Session"
	SessionCookie = "cwmp_session"
)

// ContentTypeCBOR is the media type of CWMP envelopes.
const ContentTypeCBOR = "application/cbor"

func sessionID(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) handleCWMP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading body: "+err.Error())
		return
	}

	var msg tr069.Message = &tr069.Empty{}
	if len(body) > 0 {
		msg, err = tr069.Decode(body)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}

	reply, err := s.svc.Handle(r.Context(), sessionID(r), msg)
	if reply.SessionID != "" {
		w.Header().Set(SessionHeader, reply.SessionID)
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    reply.SessionID,
			Path:     s.cfg.CWMPPath,
			HttpOnly: true,
		})
	}
	if err != nil {
		s.writeCWMPError(w, msg, err)
		return
	}

	if reply.Message == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	out, err := tr069.Encode(reply.Message)
	if err != nil {
		s.logger.Error("encoding cwmp reply", slog.Any("error", err))
		writeInternalError(w, "encoding reply")
		return
	}
	w.Header().Set("Content-Type", ContentTypeCBOR)
	w.WriteHeader(http.StatusOK)
	w.Write(out) //nolint:errcheck // the device may have gone away
}

func (s *Server) writeCWMPError(w http.ResponseWriter, msg tr069.Message, err error) {
	s.logger.Warn("cwmp message rejected",
		slog.String("kind", msg.Kind().String()),
		slog.Any("error", err),
	)
	switch {
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	case errors.Is(err, service.ErrUnknownSession):
		writeNotFound(w, err.Error())
	case errors.Is(err, service.ErrInvalidInform), errors.Is(err, devices.ErrUnknownDevice):
		writeError(w, http.StatusForbidden, ErrCodeValidation, err.Error())
	case errors.Is(err, service.ErrSessionClosed):
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}
