package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	ID         string             `json:"id"`
	Joint      string             `json:"joint"`
	MotorModel string             `json:"motor_model"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	Angles     []float64          `json:"angles"`
	Velocities []float64          `json:"velocities"`
	Efforts    []float64          `json:"efforts"`
	Metrics    map[string]float64 `json:"metrics"`
}

func exportData(meta *RunMetadata, samples []Sample) ExportData {
	data := ExportData{
		ID:         meta.ID,
		Joint:      meta.Joint,
		MotorModel: meta.MotorModel,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Integrator: meta.Integrator,
		Steps:      len(samples),
		Times:      make([]float64, len(samples)),
		Angles:     make([]float64, len(samples)),
		Velocities: make([]float64, len(samples)),
		Efforts:    make([]float64, len(samples)),
		Metrics:    meta.Metrics,
	}
	for i, s := range samples {
		data.Times[i] = s.Time
		data.Angles[i] = s.Angle
		data.Velocities[i] = s.Velocity
		data.Efforts[i] = s.Effort
	}
	return data
}

func ExportJSON(w io.Writer, meta *RunMetadata, samples []Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData(meta, samples))
}

func ExportJSONStdout(meta *RunMetadata, samples []Sample) error {
	return ExportJSON(os.Stdout, meta, samples)
}
