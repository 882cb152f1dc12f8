package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
)

// JobConfig is configuration tree submitted with the job, opaque to the store
type JobConfig map[string]any

// ConfigStore keeps job configs in CONFIGS. Configs are written once and never updated.
type ConfigStore struct {
	db *DB
}

// NewConfigStore makes config store
func NewConfigStore(db *DB) *ConfigStore {
	return &ConfigStore{db: db}
}

// SaveJobConfig stores config of the job in concise text form.
// Saving a config for the same job twice fails with PersistenceError.
func (s *ConfigStore) SaveJobConfig(ctx context.Context, jobID string, cfg JobConfig) error {
	text, err := renderConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to render config of %s: %w", jobID, err)
	}

	return s.db.submit(ctx, "save job config", func(ctx context.Context, q sqlx.ExtContext) error {
		res, err := q.ExecContext(ctx, `INSERT INTO CONFIGS (jobId, jobConfig) VALUES (?, ?)`, jobID, text)
		if err != nil {
			return writeError("save job config", jobID, err)
		}
		_, err = affected(res, "save job config", jobID)
		return err
	})
}

// GetJobConfig returns config of the job, false if not found
func (s *ConfigStore) GetJobConfig(ctx context.Context, jobID string) (JobConfig, bool, error) {
	var text string
	found := false
	err := s.db.submit(ctx, "get job config", func(ctx context.Context, q sqlx.ExtContext) error {
		err := sqlx.GetContext(ctx, q, &text, `SELECT jobConfig FROM CONFIGS WHERE jobId = ?`, jobID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query config of %s: %w", jobID, err)
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}

	cfg, err := parseConfig(text)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse config of %s: %w", jobID, err)
	}
	return cfg, true, nil
}

// renderConfig makes single line yaml flow text, i.e. {input: {string: a b c}, spark: {cores: 4}}
func renderConfig(cfg JobConfig) (string, error) {
	if cfg == nil {
		cfg = JobConfig{}
	}
	var node yaml.Node
	if err := node.Encode(map[string]any(cfg)); err != nil {
		return "", err
	}
	flowStyle(&node)
	data, err := yaml.Marshal(&node)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func flowStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style |= yaml.FlowStyle
	}
	for _, c := range n.Content {
		flowStyle(c)
	}
}

func parseConfig(text string) (JobConfig, error) {
	cfg := JobConfig{}
	if err := yaml.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
