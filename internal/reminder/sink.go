package reminder

import (
	"time"

	"github.com/medminder/medminder/internal/platform/ws"
)

// Sink receives the user-facing side effects of the alarm state machine for
// one patient: the alert sound, the prompt popup and the advisory banner.
// Implementations must not block; the controller calls them with its lock
// held.
type Sink interface {
	PlayAlert(medicineName string)
	StopAlert()
	ShowPrompt(medicineName string, ordinal int)
	HidePrompt(medicineName string)
	ShowAdvice(medicineName, message string)
	ClearAdvice(medicineName string)
}

// HubSink publishes alarm effects as websocket events to every client
// subscribed to the patient.
type HubSink struct {
	Hub       *ws.Hub
	PatientID string
}

func (h *HubSink) publish(eventType, medicine, message string, ordinal int) {
	h.Hub.Broadcast(ws.Event{
		Type:      eventType,
		PatientID: h.PatientID,
		Medicine:  medicine,
		Ordinal:   ordinal,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (h *HubSink) PlayAlert(medicineName string) {
	h.publish(ws.EventAlert, medicineName, "", 0)
}

func (h *HubSink) StopAlert() {
	h.publish(ws.EventAlertDone, "", "", 0)
}

func (h *HubSink) ShowPrompt(medicineName string, ordinal int) {
	h.publish(ws.EventPrompt, medicineName, "", ordinal)
}

func (h *HubSink) HidePrompt(medicineName string) {
	h.publish(ws.EventPromptDone, medicineName, "", 0)
}

func (h *HubSink) ShowAdvice(medicineName, message string) {
	h.publish(ws.EventAdvice, medicineName, message, 0)
}

func (h *HubSink) ClearAdvice(medicineName string) {
	h.publish(ws.EventAdviceDone, medicineName, "", 0)
}

// NopSink discards all effects. Used when a session runs without any
// connected client and in tests that only exercise state transitions.
type NopSink struct{}

func (NopSink) PlayAlert(string)          {}
func (NopSink) StopAlert()                {}
func (NopSink) ShowPrompt(string, int)    {}
func (NopSink) HidePrompt(string)         {}
func (NopSink) ShowAdvice(string, string) {}
func (NopSink) ClearAdvice(string)        {}
