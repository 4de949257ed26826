package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rpreen/xcsf"
	"github.com/rpreen/xcsf/config"
)

func testServer(t *testing.T) *Server {
	cfg := config.Default()
	cfg.NumXVars = 1
	cfg.NumYVars = 1
	cfg.N = 50
	x, err := xcsf.New(cfg)
	if err != nil {
		t.Fatalf("xcsf.New: %v", err)
	}
	return New(x, filepath.Join(t.TempDir(), "pop.bin"))
}

func TestLearnPredictStateRoundTrip(t *testing.T) {
	Convey("Given a fresh server", t, func() {
		s := testServer(t)
		router := s.Router()

		Convey("POST /learn trains and returns a prediction and loss", func() {
			body, _ := json.Marshal(learnRequest{X: []float64{0.5}, Y: []float64{1}})
			req := httptest.NewRequest("POST", "/learn", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, 200)

			var resp learnResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Prediction, ShouldHaveLength, 1)
		})

		Convey("GET /state reports a non-empty population after learning", func() {
			body, _ := json.Marshal(learnRequest{X: []float64{0.5}, Y: []float64{1}})
			req := httptest.NewRequest("POST", "/learn", bytes.NewReader(body))
			router.ServeHTTP(httptest.NewRecorder(), req)

			req = httptest.NewRequest("GET", "/state", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, 200)

			var resp stateResponse
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Count, ShouldBeGreaterThan, 0)
		})

		Convey("POST /predict with a wrong-dimension x is rejected", func() {
			body, _ := json.Marshal(predictRequest{X: []float64{1, 2}})
			req := httptest.NewRequest("POST", "/predict", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			So(rec.Code, ShouldEqual, 422)
		})
	})
}

func TestSaveLoadRoundTripOverHTTP(t *testing.T) {
	Convey("Given a server that has learned from a few trials", t, func() {
		s := testServer(t)
		router := s.Router()
		for i := 0; i < 5; i++ {
			body, _ := json.Marshal(learnRequest{X: []float64{0.3}, Y: []float64{0.7}})
			req := httptest.NewRequest("POST", "/learn", bytes.NewReader(body))
			router.ServeHTTP(httptest.NewRecorder(), req)
		}

		Convey("POST /save then /load preserves the population size", func() {
			saveReq := httptest.NewRequest("POST", "/save", bytes.NewReader([]byte("{}")))
			saveRec := httptest.NewRecorder()
			router.ServeHTTP(saveRec, saveReq)
			So(saveRec.Code, ShouldEqual, 204)

			beforeCount := s.x.Engine().Population().Count()

			loadReq := httptest.NewRequest("POST", "/load", bytes.NewReader([]byte("{}")))
			loadRec := httptest.NewRecorder()
			router.ServeHTTP(loadRec, loadReq)
			So(loadRec.Code, ShouldEqual, 204)

			So(s.x.Engine().Population().Count(), ShouldEqual, beforeCount)
		})
	})
}
