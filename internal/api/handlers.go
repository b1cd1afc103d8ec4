package api

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gogpu/overlaycam"
	"github.com/gogpu/overlaycam/camera"
	"github.com/gogpu/overlaycam/capture"
	"github.com/gogpu/overlaycam/layer"
	"github.com/gogpu/overlaycam/surface"
)

const maxBody = 1 << 20

// StartRequest is the body of POST /camera/start.
type StartRequest struct {
	Facing       string    `json:"facing,omitempty"`
	Viewport     *Viewport `json:"viewport,omitempty"`
	ZoomGesture  bool      `json:"zoomGesture,omitempty"`
	FocusGesture bool      `json:"focusGesture,omitempty"`
}

type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`

	// Surfaces lists the available render backends, preferred first.
	Surfaces []string `json:"surfaces"`
}

// StateResponse describes the session.
type StateResponse struct {
	State  string      `json:"state"`
	Facing string      `json:"facing"`
	Flash  string      `json:"flash"`
	Zoom   float64     `json:"zoom"`
	Focus  *FocusPoint `json:"focus,omitempty"`
}

type FocusPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CaptureRequest is the body of POST /capture. Absent fields take the
// capture defaults.
type CaptureRequest struct {
	Quality        *int   `json:"quality,omitempty"`
	Output         string `json:"output,omitempty"`
	SaveExternally bool   `json:"saveExternally,omitempty"`
}

// CaptureResponse describes a finished capture.
type CaptureResponse struct {
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Base64           string `json:"base64,omitempty"`
	Location         string `json:"location,omitempty"`
	ExternalLocation string `json:"externalLocation,omitempty"`
}

// decode reads an optional JSON body into v. An empty body leaves v unchanged.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Surfaces: surface.Backends()})
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	facing, err := camera.ParseFacing(req.Facing)
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	opts := overlaycam.StartOptions{
		Facing:       facing,
		ZoomGesture:  req.ZoomGesture,
		FocusGesture: req.FocusGesture,
	}
	if req.Viewport != nil {
		opts.Viewport = image.Pt(req.Viewport.Width, req.Viewport.Height)
	}
	if err := s.cam.Start(r.Context(), opts); err != nil {
		writeError(w, err)
		return
	}
	s.state(w, r)
}

func (s *Server) stop(w http.ResponseWriter, r *http.Request) {
	s.cam.Stop()
	s.state(w, r)
}

func (s *Server) switchCamera(w http.ResponseWriter, r *http.Request) {
	if err := s.cam.SwitchCamera(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.state(w, r)
}

func (s *Server) flash(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	m, err := camera.ParseFlashMode(req.Mode)
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	s.cam.SetFlashMode(m)
	s.state(w, r)
}

func (s *Server) zoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Factor *float64 `json:"factor"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Factor == nil {
		writeError(w, fmt.Errorf("%w: factor is required", errBadRequest))
		return
	}
	s.cam.SetZoom(*req.Factor)
	s.state(w, r)
}

func (s *Server) focus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, fmt.Errorf("%w: x and y are required", errBadRequest))
		return
	}
	s.cam.SetFocus(*req.X, *req.Y)
	s.state(w, r)
}

func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	st := s.cam.Settings()
	resp := StateResponse{
		State:  s.cam.State().String(),
		Facing: st.Facing.String(),
		Flash:  st.Flash.String(),
		Zoom:   st.Zoom,
	}
	if st.Focus.Valid {
		resp.Focus = &FocusPoint{X: st.Focus.X, Y: st.Focus.Y}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) capture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	creq := capture.DefaultRequest()
	if req.Quality != nil {
		creq.Quality = *req.Quality
	}
	out, err := capture.ParseSelector(req.Output)
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	creq.Output = out
	creq.SaveExternally = req.SaveExternally

	res, err := s.cam.Capture(r.Context(), creq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CaptureResponse{
		Width:            res.Width,
		Height:           res.Height,
		Base64:           res.Base64,
		Location:         res.Location,
		ExternalLocation: res.ExternalLocation,
	})
}

func (s *Server) listLayers(w http.ResponseWriter, _ *http.Request) {
	layers := s.cam.Layers()
	defs := make([]layer.Definition, len(layers))
	for i, l := range layers {
		defs[i] = layer.DefinitionOf(l)
	}
	writeJSON(w, http.StatusOK, defs)
}

func (s *Server) addLayer(w http.ResponseWriter, r *http.Request) {
	var d layer.Definition
	if err := decode(r, &d); err != nil {
		writeError(w, err)
		return
	}
	id, err := s.cam.AddLayerDefinition(d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) clearLayers(w http.ResponseWriter, _ *http.Request) {
	s.cam.ClearLayers()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) getLayer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	l, ok := s.cam.Layer(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", overlaycam.ErrLayerNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, layer.DefinitionOf(l))
}

func (s *Server) updateLayer(w http.ResponseWriter, r *http.Request) {
	var d layer.Definition
	if err := decode(r, &d); err != nil {
		writeError(w, err)
		return
	}
	id := mux.Vars(r)["id"]
	if err := s.cam.UpdateLayerDefinition(id, d); err != nil {
		writeError(w, err)
		return
	}
	s.getLayer(w, r)
}

func (s *Server) removeLayer(w http.ResponseWriter, r *http.Request) {
	s.cam.RemoveLayer(mux.Vars(r)["id"])
	writeJSON(w, http.StatusNoContent, nil)
}
