package storage

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rcjetpilot/rotors-simulator/internal/world"
)

func sampleResult() *world.Result {
	return &world.Result{
		States:   []world.State{{0.0, 0.0}, {0.1, 0.5}, {0.2, 0.4}},
		Controls: []world.Control{{2.0}, {1.5}},
		Times:    []float64{0.0, 0.01, 0.02},
		Metrics:  map[string]float64{"control_effort": 1.75},
		Steps:    2,
	}
}

func TestSaveAndLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := st.Save("arm_joint", "dc_servo", 0.01, 0.02, "rk4", sampleResult())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(runID, "arm_joint_") {
		t.Errorf("run id = %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Joint != "arm_joint" || meta.MotorModel != "dc_servo" {
		t.Errorf("metadata wrong: %+v", meta)
	}
	if meta.Metrics["control_effort"] != 1.75 {
		t.Errorf("metrics not persisted: %+v", meta.Metrics)
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("samples = %d, want 3", len(samples))
	}
	if samples[1].Angle != 0.1 || samples[1].Velocity != 0.5 || samples[1].Effort != 1.5 {
		t.Errorf("sample wrong: %+v", samples[1])
	}
	// The final state has no matching control: effort defaults to 0.
	if samples[2].Effort != 0 {
		t.Errorf("trailing effort = %f, want 0", samples[2].Effort)
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty list: %v, %v", runs, err)
	}

	if _, err := st.Save("a", "m", 0.01, 1, "euler", sampleResult()); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("runs = %d, want 1", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New("/nonexistent/path/for/test")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs = %d, want 0", len(runs))
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := st.Save("arm_joint", "dc_servo", 0.01, 0.02, "rk4", sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	meta, _ := st.Load(runID)
	samples, _ := st.LoadSamples(runID)

	var buf bytes.Buffer
	if err := ExportJSON(&buf, meta, samples); err != nil {
		t.Fatalf("export: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Steps != 3 || data.Angles[1] != 0.1 || data.Efforts[0] != 2.0 {
		t.Errorf("export wrong: %+v", data)
	}
}
