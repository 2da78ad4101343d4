package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/leadsend/replytag/internal/classifier"
	"github.com/leadsend/replytag/internal/label"
)

type classifyRequest struct {
	Text *string `json:"text"`
}

type batchRequest struct {
	Texts []string `json:"texts"`
}

type batchResponse struct {
	Results []classifier.Result `json:"results"`
}

type labelInfo struct {
	Label        label.Category     `json:"label"`
	InterestType label.InterestType `json:"interestType"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	all := label.All()
	out := make([]labelInfo, 0, len(all))
	for _, c := range all {
		out = append(out, labelInfo{Label: c, InterestType: label.Interest(c)})
	}
	writeJSON(w, http.StatusOK, out)
}

// A missing or null text classifies as empty input
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if status, err := decodeBody(w, r, &req); err != nil {
		writeError(w, status, err.Error())
		return
	}

	if wantExplain(r) {
		text := ""
		if req.Text != nil {
			text = *req.Text
		}
		writeJSON(w, http.StatusOK, s.classifier.Explain(text))
		return
	}
	writeJSON(w, http.StatusOK, s.classifier.ClassifyPtr(req.Text))
}

func (s *Server) handleClassifyBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if status, err := decodeBody(w, r, &req); err != nil {
		writeError(w, status, err.Error())
		return
	}
	if len(req.Texts) > s.opts.MaxBatch {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d texts exceeds the limit of %d", len(req.Texts), s.opts.MaxBatch))
		return
	}

	writeJSON(w, http.StatusOK, batchResponse{Results: s.classifier.ClassifyBatch(req.Texts)})
}

func wantExplain(r *http.Request) bool {
	switch r.URL.Query().Get("explain") {
	case "1", "true", "yes":
		return true
	}
	return false
}

// decodeBody reads one JSON object capped at maxBodyBytes
func decodeBody(w http.ResponseWriter, r *http.Request, v any) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err)
	}
	return http.StatusOK, nil
}
