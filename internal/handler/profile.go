// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/adboardhq/adboard-web/internal/api"
	"github.com/adboardhq/adboard-web/internal/imaging"
	"github.com/adboardhq/adboard-web/internal/middleware"
	"github.com/adboardhq/adboard-web/internal/render"
	"github.com/adboardhq/adboard-web/internal/service"
	"github.com/adboardhq/adboard-web/internal/session"
	"github.com/adboardhq/adboard-web/internal/util"
	"github.com/adboardhq/adboard-web/internal/wizard"
)

// maxProfileFormBytes bounds the multipart wizard forms.
const maxProfileFormBytes = 12 << 20

// ProfileHandler drives the profile-completion wizard. The wizard state
// machine itself lives in the wizard package; this handler only merges form
// fields, asks for transitions and persists the result in the session.
type ProfileHandler struct {
	apiClient    *api.Client
	renderer     *render.Renderer
	sessions     *session.Store
	eventService *service.EventService
	processor    *imaging.Processor
	stagingDir   string
}

// NewProfileHandler creates a new ProfileHandler. stagingDir holds uploaded
// photos between the wizard step that collects them and the final submit.
func NewProfileHandler(apiClient *api.Client, renderer *render.Renderer, sessions *session.Store, es *service.EventService, processor *imaging.Processor, stagingDir string) *ProfileHandler {
	return &ProfileHandler{
		apiClient:    apiClient,
		renderer:     renderer,
		sessions:     sessions,
		eventService: es,
		processor:    processor,
		stagingDir:   stagingDir,
	}
}

// wizardPageData feeds the wizard step templates.
type wizardPageData struct {
	Wizard     *wizard.Wizard
	StepNumber int
	CanSubmit  bool
	HasPhoto   bool
}

// Show renders the wizard at its current step.
func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	if h.sessions.ProfileCompleted(r.Context()) {
		http.Redirect(w, r, middleware.HomeFor(h.sessions.UserType(r.Context())), http.StatusSeeOther)
		return
	}

	wz := wizard.Decode(h.sessions.WizardState(r.Context()))
	data := wizardPageData{
		Wizard:     wz,
		StepNumber: wz.StepNumber(),
		CanSubmit:  wz.CanSubmit(),
		HasPhoto:   wz.Data.PhotoRef != "",
	}
	if err := h.renderer.Render(w, r, "profile_wizard", render.TemplateData{
		Title:           "Complete Your Profile",
		Data:            data,
		IsAuthenticated: true,
	}); err != nil {
		logAndInternalError(w, "failed to render profile wizard", "error", err)
	}
}

// Next merges the submitted fields into the wizard and advances one step.
// A failing validator flashes the missing fields and stays put.
func (h *ProfileHandler) Next(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.loadAndMerge(w, r)
	if !ok {
		return
	}

	if err := wz.Next(); err != nil {
		h.saveAndFlashTransitionError(w, r, wz, err)
		return
	}

	h.save(r, wz)
	http.Redirect(w, r, RouteProfileComplete, http.StatusSeeOther)
}

// Prev steps the wizard backward, keeping all collected data.
func (h *ProfileHandler) Prev(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.loadAndMerge(w, r)
	if !ok {
		return
	}

	if err := wz.Prev(); err != nil && !errors.Is(err, wizard.ErrInvalidTransition) {
		logAndInternalError(w, "wizard prev failed", "error", err)
		return
	}

	h.save(r, wz)
	http.Redirect(w, r, RouteProfileComplete, http.StatusSeeOther)
}

// Submit performs the terminal transition and forwards the collected profile
// to the backend in a single multipart request. On backend failure the wizard
// stays at the address step with everything intact.
func (h *ProfileHandler) Submit(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.loadAndMerge(w, r)
	if !ok {
		return
	}

	if !wz.CanSubmit() {
		h.save(r, wz)
		flashError(w, r, h.renderer, RouteProfileComplete, "Please finish the remaining steps first")
		return
	}

	params := api.CompleteProfileParams{
		UserType: wz.Data.UserType,
		Phone:    wz.Data.Phone,
		Address:  wz.Data.Address,
		Company:  wz.Data.Company,
		Pincode:  wz.Data.Pincode,
	}

	if wz.Data.PhotoRef != "" {
		photo, err := os.ReadFile(h.stagedPhotoPath(wz.Data.PhotoRef))
		if err != nil {
			slog.Warn("staged photo missing, submitting without it", "error", err)
		} else {
			params.PhotoName = wz.Data.PhotoRef
			params.PhotoData = bytes.NewReader(photo)
		}
	}

	token := h.sessions.AccessToken(r.Context())
	if err := h.apiClient.CompleteProfile(r.Context(), token, params); err != nil {
		h.save(r, wz)
		handleAPIError(w, r, h.renderer, h.sessions, RouteProfileComplete, err)
		return
	}

	if err := wz.Submit(); err != nil {
		// CanSubmit was checked above; this cannot happen.
		logAndInternalError(w, "wizard submit failed", "error", err)
		return
	}

	h.discardStagedPhoto(wz.Data.PhotoRef)
	h.sessions.ClearWizardState(r.Context())
	h.sessions.SetUserType(r.Context(), wz.Data.UserType)
	h.sessions.SetProfileCompleted(r.Context(), true)

	h.eventService.LogProfile(r.Context(), "info", "Profile completed",
		util.ClientIP(r), r.UserAgent(), r.URL.Path, map[string]any{"user_type": wz.Data.UserType})

	flashSuccess(w, r, h.renderer, middleware.HomeFor(wz.Data.UserType), "Welcome aboard! Your profile is complete.")
}

// loadAndMerge parses the form (multipart when a photo is attached), restores
// the wizard from the session and merges any submitted fields into it. Fields
// absent from the form keep their stored values, so going back never loses
// data.
func (h *ProfileHandler) loadAndMerge(w http.ResponseWriter, r *http.Request) (*wizard.Wizard, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxProfileFormBytes); err != nil {
			flashError(w, r, h.renderer, RouteProfileComplete, "Invalid form data")
			return nil, false
		}
	} else if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteProfileComplete, "Invalid form data")
		return nil, false
	}

	wz := wizard.Decode(h.sessions.WizardState(r.Context()))

	merge := func(field string, dst *string) {
		if values, ok := r.Form[field]; ok && len(values) > 0 {
			*dst = strings.TrimSpace(values[0])
		}
	}
	merge("usertype", &wz.Data.UserType)
	merge("phone", &wz.Data.Phone)
	merge("company", &wz.Data.Company)
	merge("address", &wz.Data.Address)
	merge("pincode", &wz.Data.Pincode)

	if file, header, err := r.FormFile("photo"); err == nil {
		defer func() { _ = file.Close() }()
		ref, err := h.stagePhoto(file, header.Filename)
		if err != nil {
			flashError(w, r, h.renderer, RouteProfileComplete, "Could not process the photo: "+err.Error())
			return nil, false
		}
		h.discardStagedPhoto(wz.Data.PhotoRef)
		wz.Data.PhotoRef = ref
	}

	return wz, true
}

// stagePhoto normalizes an upload and writes it to the staging directory,
// returning the reference stored in the wizard.
func (h *ProfileHandler) stagePhoto(file io.Reader, filename string) (string, error) {
	normalized, err := h.processor.Normalize(file, filename)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(h.stagingDir, 0o755); err != nil {
		return "", err
	}

	ref := uuid.NewString() + ".jpg"
	if err := os.WriteFile(h.stagedPhotoPath(ref), normalized.Data, 0o600); err != nil {
		return "", err
	}
	return ref, nil
}

func (h *ProfileHandler) stagedPhotoPath(ref string) string {
	// References are generated server-side, but never trust a stored value.
	return filepath.Join(h.stagingDir, filepath.Base(ref))
}

func (h *ProfileHandler) discardStagedPhoto(ref string) {
	if ref == "" {
		return
	}
	if err := os.Remove(h.stagedPhotoPath(ref)); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove staged photo", "error", err, "ref", ref)
	}
}

func (h *ProfileHandler) save(r *http.Request, wz *wizard.Wizard) {
	state, err := wz.Encode()
	if err != nil {
		slog.Error("failed to encode wizard state", "error", err)
		return
	}
	h.sessions.SetWizardState(r.Context(), state)
}

func (h *ProfileHandler) saveAndFlashTransitionError(w http.ResponseWriter, r *http.Request, wz *wizard.Wizard, err error) {
	h.save(r, wz)

	var ve *wizard.ValidationError
	if errors.As(err, &ve) {
		flashError(w, r, h.renderer, RouteProfileComplete, "Please fill in: "+strings.Join(ve.Fields, ", "))
		return
	}
	flashError(w, r, h.renderer, RouteProfileComplete, "That step is not available")
}
