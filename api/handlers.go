package api

import (
	"encoding/json"
	"net/http"

	"github.com/rpreen/xcsf/persistence"
	"github.com/rpreen/xcsf/rng"
	"github.com/rpreen/xcsf/xlog"
)

type learnRequest struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

type learnResponse struct {
	Prediction []float64 `json:"prediction"`
	Error      float64   `json:"error"`
}

type predictRequest struct {
	X []float64 `json:"x"`
}

type predictResponse struct {
	Prediction []float64 `json:"prediction"`
}

type stateResponse struct {
	Time          int     `json:"time"`
	Count         int     `json:"count"`
	NumerositySum int     `json:"numerositySum"`
	MeanFitness   float64 `json:"meanFitness"`
}

type pathRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleLearn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	yhat, loss, err := s.x.Learn(req.X, req.Y)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, learnResponse{Prediction: yhat, Error: loss})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s.mu.Lock()
	yhat, err := s.x.Predict(req.X)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{Prediction: yhat})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pop := s.x.Engine().Population()
	resp := stateResponse{
		Time:          s.x.Engine().Time(),
		Count:         pop.Count(),
		NumerositySum: pop.NumerositySum(),
		MeanFitness:   pop.MeanFitness(),
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	path := s.resolvePath(req.Path)

	s.mu.Lock()
	err := persistence.Save(path, s.x.Engine(), s.rng())
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	xlog.Info("api: saved population to %s", path)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	path := s.resolvePath(req.Path)

	eng, source, err := persistence.Load(path, s.x.Config())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.mu.Lock()
	s.x.Replace(eng, source)
	s.mu.Unlock()
	xlog.Info("api: loaded population from %s", path)
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		xlog.Warn("api: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// rng exposes the current RNG source for Save, which needs the live stream
// rather than a fresh one.
func (s *Server) rng() *rng.Source { return s.x.RNG() }
