package domain

import "time"

// WavePlannedEvent reports the selection written into a wave
type WavePlannedEvent struct {
	WaveID    string    `json:"waveId"`
	Strategy  Strategy  `json:"strategy"`
	Orders    int       `json:"orders"`
	Units     int       `json:"units"`
	Timestamp time.Time `json:"timestamp"`
}

func (e WavePlannedEvent) EventType() string     { return "fulfillment.wave.planned" }
func (e WavePlannedEvent) OccurredAt() time.Time { return e.Timestamp }

// WaveReleasedEvent reports a wave handed to picking
type WaveReleasedEvent struct {
	WaveID    string    `json:"waveId"`
	Orders    int       `json:"orders"`
	Timestamp time.Time `json:"timestamp"`
}

func (e WaveReleasedEvent) EventType() string     { return "fulfillment.wave.released" }
func (e WaveReleasedEvent) OccurredAt() time.Time { return e.Timestamp }

// WaveCompletedEvent reports a finished wave
type WaveCompletedEvent struct {
	WaveID    string    `json:"waveId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e WaveCompletedEvent) EventType() string     { return "fulfillment.wave.completed" }
func (e WaveCompletedEvent) OccurredAt() time.Time { return e.Timestamp }
