package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTwilioProvider_StartCapture(t *testing.T) {
	var gotPath, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostFormValue("RecordingChannels") != "dual" {
			t.Errorf("expected dual channel recording")
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"sid": "RE123", "status": "in-progress"})
	}))
	defer srv.Close()

	p := NewTwilioProvider(TwilioConfig{AccountSID: "AC1", AuthToken: "tok", BaseURL: srv.URL})

	res, err := p.StartCapture(context.Background(), StartCaptureRequest{
		CallSessionID:  "call-1",
		ProviderCallID: "CA999",
	})
	if err != nil {
		t.Fatalf("start capture: %v", err)
	}
	if res.RecordingRef != "RE123" {
		t.Fatalf("expected RE123, got %q", res.RecordingRef)
	}
	if gotPath != "/Accounts/AC1/Calls/CA999/Recordings.json" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotUser != "AC1" {
		t.Fatalf("expected basic auth with account sid")
	}
}

func TestTwilioProvider_StartCapture_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code": 21220, "message": "call not in progress"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewTwilioProvider(TwilioConfig{AccountSID: "AC1", AuthToken: "tok", BaseURL: srv.URL})
	if _, err := p.StartCapture(context.Background(), StartCaptureRequest{ProviderCallID: "CA1"}); err == nil {
		t.Fatalf("expected error from provider")
	}
}

func TestParseTwilioRecordingStatus(t *testing.T) {
	body := strings.NewReader("CallSid=CA123&RecordingSid=RE456&RecordingStatus=completed&RecordingUrl=https%3A%2F%2Fapi.twilio.com%2Frec%2FRE456")
	r := httptest.NewRequest(http.MethodPost, "/webhooks/twilio/recording-status", body)
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := ParseTwilioRecordingStatus(r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if form.RecordingSid != "RE456" || form.CallSid != "CA123" {
		t.Fatalf("unexpected form: %+v", form)
	}
	if !form.Completed() {
		t.Fatalf("expected completed callback")
	}
}
