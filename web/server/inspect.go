package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/df07/voxel-timelapse/pkg/core"
	"github.com/df07/voxel-timelapse/pkg/material"
	"github.com/df07/voxel-timelapse/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit        bool           `json:"hit"`
	Kind       string         `json:"kind"` // "voxel", "water" or "ground"
	Material   string         `json:"material"`
	Voxel      *[3]int        `json:"voxel,omitempty"`
	Point      [3]float64     `json:"point"`
	Normal     [3]float64     `json:"normal"`
	Distance   float64        `json:"distance"`
	Properties map[string]any `json:"properties"`
}

// handleInspect reports what the primary ray through pixel (x, y) of a frame hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	query := r.URL.Query()
	req, err := s.parseFrameRequest(query)
	if err != nil {
		s.writeJSONError(w, err)
		return
	}
	x, y, err := parsePixel(query, req)
	if err != nil {
		s.writeJSONError(w, err)
		return
	}

	driver := s.driver.WithSettings(s.settings(req))
	cam, err := driver.CameraAt(req.Index)
	if err != nil {
		s.writeJSONError(w, err)
		return
	}

	ray := cam.RayThrough(x, y, req.Width, req.Height, 0.5, 0.5)
	hit, ok := driver.Scene().Intersect(ray)

	resp := InspectResponse{Hit: ok}
	if ok {
		mat := driver.Scene().Materials().At(hit.Material)
		resp.Kind = hit.Kind.String()
		resp.Material = mat.Name
		resp.Point = toArray(hit.Point)
		resp.Normal = toArray(hit.Normal)
		resp.Distance = hit.T
		resp.Properties = materialProperties(mat)
		if hit.Kind == scene.KindVoxel {
			resp.Voxel = &[3]int{hit.Cell.X, hit.Cell.Y, hit.Cell.Z}
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func parsePixel(query url.Values, req *FrameRequest) (int, int, error) {
	x, err := parseIntParam(query, "x", req.Width/2, 0, req.Width-1)
	if err != nil {
		return 0, 0, err
	}
	y, err := parseIntParam(query, "y", req.Height/2, 0, req.Height-1)
	if err != nil {
		return 0, 0, err
	}
	if req.Index >= req.Frames {
		return 0, 0, fmt.Errorf("index %d outside %d frames", req.Index, req.Frames)
	}
	return x, y, nil
}

// materialProperties lists the shading parameters of mat
func materialProperties(mat *material.Material) map[string]any {
	props := map[string]any{
		"albedo":     toArray(mat.Albedo),
		"color":      hexColor(mat.Albedo),
		"specular":   mat.Specular,
		"shininess":  mat.Shininess,
		"reflection": mat.Reflection,
		"textured":   mat.HasTexture(),
		"animated":   mat.AnimatedUV,
	}
	if mat.IsEmissive() {
		props["emissive"] = toArray(mat.Emissive)
	}
	return props
}

func (s *Server) writeJSONError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	return fmt.Sprintf("#%02x%02x%02x", core.ToByte(c.X), core.ToByte(c.Y), core.ToByte(c.Z))
}
