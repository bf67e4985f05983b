package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rusocsci/bitsigo/bitsi"
)

var errUnknownType = errors.New("unknown device type, expected buttonbox, extended or joystick")

// device is the subset of client behaviour the HTTP API serves. The
// wrappers return ErrNotConnected for operations their device lacks.
type device interface {
	Identity() string
	Kind() bitsi.DeviceKind
	Close() error

	GetButtons(filter string) (string, error)
	WaitButtons(maxWait time.Duration, filter string, flush bool) ([]bitsi.ButtonEvent, error)
	SetLeds(pattern []bool) error
	SetLedsRaw(v byte) error
	SendMarkerRaw(v byte) error
	Calibrate(what string) error
	X() (int, error)
}

type buttonboxDevice struct {
	*bitsi.Buttonbox
}

func (d *buttonboxDevice) Calibrate(string) error { return bitsi.ErrNotConnected }
func (d *buttonboxDevice) X() (int, error)        { return 0, bitsi.ErrNotConnected }

type extendedDevice struct {
	buttonboxDevice
	ex *bitsi.Extended
}

func (d *extendedDevice) SetLeds(pattern []bool) error { return d.ex.SetLeds(pattern) }
func (d *extendedDevice) SetLedsRaw(v byte) error      { return d.ex.SetLedsRaw(v) }
func (d *extendedDevice) SendMarkerRaw(v byte) error   { return d.ex.SendMarkerRaw(v) }

func (d *extendedDevice) Calibrate(what string) error {
	switch what {
	case "sound":
		return d.ex.CalibrateSound()
	case "voice":
		return d.ex.CalibrateVoice()
	}
	return fmt.Errorf("unknown calibration %q, expected sound or voice", what)
}

type joystickDevice struct {
	*bitsi.Joystick
}

func (d *joystickDevice) X() (int, error) { return d.Joystick.X(), nil }

func (d *joystickDevice) GetButtons(string) (string, error) { return "", bitsi.ErrNotConnected }
func (d *joystickDevice) WaitButtons(time.Duration, string, bool) ([]bitsi.ButtonEvent, error) {
	return nil, bitsi.ErrNotConnected
}
func (d *joystickDevice) SetLeds([]bool) error     { return bitsi.ErrNotConnected }
func (d *joystickDevice) SetLedsRaw(byte) error    { return bitsi.ErrNotConnected }
func (d *joystickDevice) SendMarkerRaw(byte) error { return bitsi.ErrNotConnected }
func (d *joystickDevice) Calibrate(string) error   { return bitsi.ErrNotConnected }

type server struct {
	dev device
}

func newRouter(dev device) *mux.Router {
	s := &server{dev: dev}
	r := mux.NewRouter()
	r.HandleFunc("/version", versionInfo).Methods("GET")
	r.HandleFunc("/device", s.getDevice).Methods("GET")
	r.HandleFunc("/buttons", s.getButtons).Methods("GET")
	r.HandleFunc("/buttons/wait", s.waitButtons).Methods("GET")
	r.HandleFunc("/leds", s.setLeds).Methods("POST")
	r.HandleFunc("/marker", s.sendMarker).Methods("POST")
	r.HandleFunc("/calibrate/{what}", s.calibrate).Methods("POST")
	r.HandleFunc("/joystick", s.getJoystick).Methods("GET")
	return r
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	v := struct {
		Version   string `json:"version"`
		BuildDate string `json:"build_date"`
	}{Version: buildVersion, BuildDate: buildDate}
	writeJSON(w, v)
}

func (s *server) getDevice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, struct {
		Identity string `json:"identity"`
		Kind     string `json:"kind"`
	}{Identity: s.dev.Identity(), Kind: s.dev.Kind().String()})
}

func (s *server) getButtons(w http.ResponseWriter, r *http.Request) {
	buttons, err := s.dev.GetButtons(r.URL.Query().Get("filter"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, struct {
		Buttons string `json:"buttons"`
	}{Buttons: buttons})
}

func (s *server) waitButtons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxWait := bitsi.Forever
	if mw := q.Get("maxwait"); mw != "" {
		d, err := time.ParseDuration(mw)
		if err != nil {
			http.Error(w, fmt.Sprintf("bad maxwait: %v", err), http.StatusBadRequest)
			return
		}
		maxWait = d
	}
	flush := q.Get("flush") != "0"

	events, err := s.dev.WaitButtons(maxWait, q.Get("filter"), flush)
	if err != nil {
		httpError(w, err)
		return
	}
	if events == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, struct {
		Button  string  `json:"button"`
		Elapsed float64 `json:"elapsed"`
	}{Button: string(events[0].Code), Elapsed: events[0].Elapsed.Seconds()})
}

type ledRequest struct {
	Pattern []bool `json:"pattern"`
	Raw     *byte  `json:"raw"`
}

func (s *server) setLeds(w http.ResponseWriter, r *http.Request) {
	s.writeOutput(w, r, s.dev.SetLeds, s.dev.SetLedsRaw)
}

func (s *server) sendMarker(w http.ResponseWriter, r *http.Request) {
	s.writeOutput(w, r, func(pattern []bool) error {
		return s.dev.SendMarkerRaw(bitsi.LedByte(pattern))
	}, s.dev.SendMarkerRaw)
}

func (s *server) writeOutput(w http.ResponseWriter, r *http.Request, byPattern func([]bool) error, byRaw func(byte) error) {
	var req ledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var err error
	if req.Raw != nil {
		err = byRaw(*req.Raw)
	} else {
		err = byPattern(req.Pattern)
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, "OK")
}

func (s *server) calibrate(w http.ResponseWriter, r *http.Request) {
	if err := s.dev.Calibrate(mux.Vars(r)["what"]); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, "OK")
}

func (s *server) getJoystick(w http.ResponseWriter, r *http.Request) {
	x, err := s.dev.X()
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, struct {
		X int `json:"x"`
	}{X: x})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	e := json.NewEncoder(w)
	e.SetIndent("", "    ")
	e.Encode(v)
}

func httpError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, bitsi.ErrNotConnected) {
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	w.Write([]byte(err.Error()))
}
