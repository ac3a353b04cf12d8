package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ranconf/enodebd-go/pkg/intent"
	"github.com/ranconf/enodebd-go/pkg/persistence"
	"github.com/ranconf/enodebd-go/pkg/service"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// FaultView is the last protocol fault of a device.
type FaultView struct {
	State  string `json:"state"`
	Code   int    `json:"code,omitempty"`
	String string `json:"string,omitempty"`
	Status int    `json:"status,omitempty"`
}

// DeviceView is the JSON form of a device session.
type DeviceView struct {
	Serial          string         `json:"serial"`
	SessionID       string         `json:"session_id"`
	DeviceType      string         `json:"device_type"`
	Device          tr069.DeviceID `json:"device"`
	SoftwareVersion string         `json:"software_version,omitempty"`
	State           string         `json:"state"`
	Description     string         `json:"description"`
	Connected       bool           `json:"connected"`
	InError         bool           `json:"in_error"`
	RebootPending   bool           `json:"reboot_pending"`
	LastFault       *FaultView     `json:"last_fault,omitempty"`
	Started         time.Time      `json:"started"`
	LastSeen        time.Time      `json:"last_seen"`
}

func newDeviceView(info service.SessionInfo) DeviceView {
	st := info.Status
	v := DeviceView{
		Serial:          info.Serial,
		SessionID:       info.SessionID,
		DeviceType:      info.DeviceType,
		Device:          st.Device,
		SoftwareVersion: st.SoftwareVersion,
		State:           st.State.String(),
		Description:     st.Description,
		Connected:       st.Connected,
		InError:         st.InError,
		RebootPending:   st.RebootPending,
		Started:         info.Started.UTC(),
		LastSeen:        info.LastSeen.UTC(),
	}
	if f := st.LastFault; f != nil {
		v.LastFault = &FaultView{
			State:  f.State.String(),
			Code:   f.Code,
			String: f.String,
			Status: f.Status,
		}
	}
	return v
}

func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	infos := s.svc.Sessions()
	views := make([]DeviceView, 0, len(infos))
	for _, info := range infos {
		views = append(views, newDeviceView(info))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": views,
		"count":   len(views),
	})
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")
	info, ok := s.svc.Session(serial)
	if !ok {
		writeNotFound(w, "device not found")
		return
	}
	writeJSON(w, http.StatusOK, newDeviceView(info))
}

func (s *Server) handleReboot(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")
	outcome, err := s.svc.RequestReboot(serial)
	if errors.Is(err, service.ErrDeviceNotFound) {
		writeNotFound(w, "device not found")
		return
	}
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"serial":  serial,
		"outcome": outcome.String(),
	})
}

// handlePutIntent builds a desired configuration from the intent document
// in the body and stores it for the device. The device does not need to be
// connected.
func (s *Server) handlePutIntent(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")
	if err := persistence.ValidSerial(serial); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading body: "+err.Error())
		return
	}

	desired, err := intent.Build(body, s.svc.MaxPLMNs(serial))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		return
	}

	if err := s.svc.SetDesired(r.Context(), serial, desired); err != nil {
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"serial":     serial,
		"parameters": desired.Len(),
	})
}
