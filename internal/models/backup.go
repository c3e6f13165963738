package models

import "time"

// BackupVersion is the current export format version
const BackupVersion = "1.0"

// BackupData is the exported state of every store
type BackupData struct {
	Progress     *UserProgress `json:"progress"`
	Results      []QuizResult  `json:"results"`
	Activities   []Activity    `json:"activities"`
	Achievements []Achievement `json:"achievements"`
	Settings     *Settings     `json:"settings"`
}

// Backup is the full export envelope
type Backup struct {
	Version   string     `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
	Data      BackupData `json:"data"`
}
