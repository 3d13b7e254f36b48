package vk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestPersonalInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/method/users.get" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("access_token"); got != "external-token" {
			t.Errorf("Expected access_token 'external-token', got %q", got)
		}
		if got := r.URL.Query().Get("v"); got != apiVersion {
			t.Errorf("Expected api version %q, got %q", apiVersion, got)
		}
		fmt.Fprint(w, `{"response":[{"id":42,"first_name":"Test","last_name":"User"}]}`)
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	integration := &Integration{
		clientID:   "id",
		apiBase:    server.URL + "/method/",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}

	info, err := integration.PersonalInfo(context.Background(), "external-token", "42")
	if err != nil {
		t.Fatalf("PersonalInfo failed: %v", err)
	}
	if info.FirstName != "Test" || info.LastName != "User" {
		t.Errorf("Unexpected personal info: %+v", info)
	}
}

func TestPersonalInfoEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":[]}`)
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	integration := &Integration{
		apiBase:    server.URL + "/method/",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     logger,
	}

	if _, err := integration.PersonalInfo(context.Background(), "external-token", "42"); err == nil {
		t.Fatal("Expected error for empty users.get response")
	}
}

func TestRedirectURI(t *testing.T) {
	integration := &Integration{}
	got := integration.RedirectURI("http://localhost:8080/")
	if got != "http://localhost:8080/vk/callback" {
		t.Errorf("Unexpected redirect URI: %s", got)
	}
}
