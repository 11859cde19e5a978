package store

import "time"

type TokenInput struct {
	ID          string
	SourceFile  string
	SourceHash  string
	Mode        int
	Seed        int
	Direction   int
	Resource    float64
	ClassIDs    string
	Background  string
	MainCharSet []int32
	CharSet     []int32
	// BaseColors maps a class letter to its "#rrggbb" color.
	BaseColors map[string]string
}

type Token struct {
	ID           string            `json:"id"`
	SourceFile   string            `json:"source_file"`
	SourceHash   string            `json:"source_hash"`
	Mode         int               `json:"mode"`
	Seed         int               `json:"seed"`
	Direction    int               `json:"direction"`
	Resource     float64           `json:"resource"`
	ClassIDs     string            `json:"class_ids"`
	Background   string            `json:"background"`
	MainCharSet  []int32           `json:"main_char_set"`
	CharSet      []int32           `json:"char_set"`
	BaseColors   map[string]string `json:"base_colors"`
	LastIngested time.Time         `json:"last_ingested"`
}

type TokenSummary struct {
	ID         string `json:"id"`
	Mode       int    `json:"mode"`
	Seed       int    `json:"seed"`
	SourceFile string `json:"source_file"`
}
