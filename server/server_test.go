package server

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"github.com/pthm-cable/sph/fluid"
)

func newTestSim(t *testing.T, n int) *fluid.Simulation {
	t.Helper()
	sim, err := fluid.New(2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sim.Initialize(n); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return sim
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) FrameMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg FrameMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return msg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInitialFrameOnConnect(t *testing.T) {
	sim := newTestSim(t, 25)
	var pub fluid.FramePublisher
	pub.Publish(sim)

	s := New("", 30, &pub, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	msg := readFrame(t, dial(t, ts))

	if msg.Type != "frame" {
		t.Errorf("Type = %q, want frame", msg.Type)
	}
	if msg.Count != 25 || len(msg.Positions) != 50 || len(msg.Densities) != 25 {
		t.Errorf("got count %d with %d coords and %d densities, want 25/50/25",
			msg.Count, len(msg.Positions), len(msg.Densities))
	}
	if msg.Width != 2 || msg.Height != 2 {
		t.Errorf("domain = %vx%v, want 2x2", msg.Width, msg.Height)
	}
	if msg.Params.RestDensity != 1000 {
		t.Errorf("RestDensity = %v, want 1000", msg.Params.RestDensity)
	}
}

func TestBroadcastSendsOnlyNewFrames(t *testing.T) {
	sim := newTestSim(t, 10)
	var pub fluid.FramePublisher

	s := New("", 30, &pub, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	waitFor(t, func() bool { return s.ClientCount() == 1 })

	// Nothing published yet: broadcast is a no-op.
	s.Broadcast()

	if err := sim.Update(0.01); err != nil {
		t.Fatalf("Update: %v", err)
	}
	pub.Publish(sim)
	s.Broadcast()
	s.Broadcast() // same seq, must not resend

	msg := readFrame(t, conn)
	if msg.Step != 1 {
		t.Errorf("Step = %d, want 1", msg.Step)
	}

	if err := sim.Update(0.01); err != nil {
		t.Fatalf("Update: %v", err)
	}
	pub.Publish(sim)
	s.Broadcast()

	msg = readFrame(t, conn)
	if msg.Step != 2 {
		t.Errorf("Step = %d, want 2 (duplicate frame was sent)", msg.Step)
	}
}

func TestClientUpdatesForwarded(t *testing.T) {
	var pub fluid.FramePublisher
	updates := make(chan ParamUpdate, 1)

	s := New("", 30, &pub, updates)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"viscosity": 0.2, "particles": 500}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case u := <-updates:
		if u.Viscosity == nil || *u.Viscosity != 0.2 {
			t.Errorf("Viscosity = %v, want 0.2", u.Viscosity)
		}
		if u.Particles == nil || *u.Particles != 500 {
			t.Errorf("Particles = %v, want 500", u.Particles)
		}
		if u.GasConstant != nil {
			t.Error("unset fields should stay nil")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("update not forwarded")
	}
}

func TestClientRemovedOnDisconnect(t *testing.T) {
	var pub fluid.FramePublisher
	s := New("", 30, &pub, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dial(t, ts)
	waitFor(t, func() bool { return s.ClientCount() == 1 })

	conn.Close()
	waitFor(t, func() bool { return s.ClientCount() == 0 })
}

func TestStatusEndpoint(t *testing.T) {
	var pub fluid.FramePublisher
	pub.Publish(newTestSim(t, 5))

	s := New("", 30, &pub, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestFrameMessageSkipsNonFinite(t *testing.T) {
	frame := &fluid.Frame{
		Width: 1, Height: 1,
		Particles: []fluid.Particle{
			{Position: mgl32.Vec2{0.5, 0.5}, Mass: 1, Density: 1000},
			{Position: mgl32.Vec2{float32(math.NaN()), 0.5}, Mass: 1},
		},
	}

	msg := NewFrameMessage(frame)
	if msg.Count != 1 || msg.NonFinite != 1 {
		t.Errorf("Count/NonFinite = %d/%d, want 1/1", msg.Count, msg.NonFinite)
	}
	if len(msg.Positions) != 2 || msg.Positions[0] != 0.5 {
		t.Errorf("Positions = %v", msg.Positions)
	}
}

func TestParamUpdateApply(t *testing.T) {
	visc := float32(0.7)
	gy := float32(-3)
	u := ParamUpdate{Viscosity: &visc, GravityY: &gy}

	base := fluid.DefaultParams()
	got := u.Apply(base)

	if got.Viscosity != 0.7 || got.Gravity[1] != -3 {
		t.Errorf("applied params = %+v", got)
	}
	if got.Gravity[0] != base.Gravity[0] || got.GasConstant != base.GasConstant {
		t.Error("unset fields changed")
	}
	if !u.ChangesParams() {
		t.Error("expected ChangesParams")
	}
	if (ParamUpdate{Reset: true}).ChangesParams() {
		t.Error("reset alone should not change params")
	}
}
