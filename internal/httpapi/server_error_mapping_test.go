package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"textclassd/internal/predictor"
	"textclassd/internal/registry"
)

func TestPredict_NotLoadedMaps503(t *testing.T) {
	r := NewMux(&mockService{predictErr: predictor.ErrNotLoaded()})
	w := postJSON(t, r, "/predict", `{"text":"hi"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestPredict_TokenizationMaps400(t *testing.T) {
	r := NewMux(&mockService{predictErr: predictor.ErrTokenization("text is not valid UTF-8")})
	w := postJSON(t, r, "/predict", `{"text":"hi"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPredict_InferenceMaps500(t *testing.T) {
	r := NewMux(&mockService{predictErr: predictor.ErrInference(errors.New("session closed"))})
	w := postJSON(t, r, "/predict", `{"text":"hi"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestLoad_VersionNotFoundMaps404(t *testing.T) {
	r := NewMux(&mockService{loadErr: registry.ErrVersionNotFound("v-missing")})
	w := postJSON(t, r, "/models/load", `{"model_version":"v-missing"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestLoad_NoModelsMaps404(t *testing.T) {
	r := NewMux(&mockService{loadErr: registry.ErrNoModels()})
	w := postJSON(t, r, "/models/load", `{}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPredict_UnknownErrorMaps500(t *testing.T) {
	r := NewMux(&mockService{predictErr: errors.New("boom")})
	w := postJSON(t, r, "/predict", `{"text":"hi"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
