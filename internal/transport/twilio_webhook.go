package transport

import (
	"net/http"
	"strings"
)

// TwilioRecordingStatusForm captures the subset of recording status callback
// fields we care about. Twilio sends application/x-www-form-urlencoded.
// Ref: https://www.twilio.com/docs/voice/api/recording
//
// Provider-adapter-only; nothing here decides what happens to the recording.

type TwilioRecordingStatusForm struct {
	AccountSid      string
	CallSid         string
	RecordingSid    string
	RecordingURL    string
	RecordingStatus string
	Duration        string
}

func ParseTwilioRecordingStatus(r *http.Request) (TwilioRecordingStatusForm, error) {
	if err := r.ParseForm(); err != nil {
		return TwilioRecordingStatusForm{}, err
	}
	f := TwilioRecordingStatusForm{
		AccountSid:      r.PostFormValue("AccountSid"),
		CallSid:         r.PostFormValue("CallSid"),
		RecordingSid:    r.PostFormValue("RecordingSid"),
		RecordingURL:    strings.TrimSpace(r.PostFormValue("RecordingUrl")),
		RecordingStatus: r.PostFormValue("RecordingStatus"),
		Duration:        r.PostFormValue("RecordingDuration"),
	}
	return f, nil
}

// Completed reports whether the callback marks the recording as finished
// and retrievable.
func (f TwilioRecordingStatusForm) Completed() bool {
	return f.RecordingStatus == "completed" && f.RecordingSid != ""
}
