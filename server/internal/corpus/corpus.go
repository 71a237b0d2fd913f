// Package corpus bundles the built-in fraudulent reference sessions.
package corpus

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/maasir554/fingertail/server/internal/classifier"
	"github.com/maasir554/fingertail/server/internal/metrics"
	"github.com/maasir554/fingertail/server/internal/models"
)

//go:embed fraudulent.yaml
var fraudulentYAML []byte

// Corpus is the on-disk shape of a session collection.
type Corpus struct {
	Sessions []models.BehavioralSession `yaml:"sessions"`
}

// Parse decodes a YAML session collection.
func Parse(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal corpus YAML: %w", err)
	}
	return &c, nil
}

// LoadFraudulent returns the bundled fraudulent sessions.
func LoadFraudulent() (*Corpus, error) {
	return Parse(fraudulentYAML)
}

// Features extracts one vector per non-empty session.
func (c *Corpus) Features() []models.FeatureVector {
	return metrics.ExtractAll(c.Sessions)
}

// NegativeSource wraps the corpus features as the classifier's negative class.
func (c *Corpus) NegativeSource() classifier.CorpusSource {
	return classifier.CorpusSource{Vectors: c.Features()}
}
