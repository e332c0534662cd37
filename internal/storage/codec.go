package storage

import (
	"encoding/json"
	"errors"

	"reassort/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRunConfig(cfg model.RunConfig) ([]byte, error) {
	return json.Marshal(cfg)
}

func DecodeRunConfig(data []byte) (model.RunConfig, error) {
	var cfg model.RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.RunConfig{}, err
	}
	if err := checkVersion(cfg.VersionedRecord); err != nil {
		return model.RunConfig{}, err
	}
	return cfg, nil
}

func EncodeRecords(records []model.GenerationRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeRecords(data []byte) ([]model.GenerationRecord, error) {
	var records []model.GenerationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := checkVersion(record.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func EncodeRunSummary(summary model.RunSummary) ([]byte, error) {
	return json.Marshal(summary)
}

func DecodeRunSummary(data []byte) (model.RunSummary, error) {
	var summary model.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.RunSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.RunSummary{}, err
	}
	return summary, nil
}

// Versioned stamps the current schema and codec versions.
func Versioned() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
