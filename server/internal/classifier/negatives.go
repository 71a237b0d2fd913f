package classifier

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/maasir554/fingertail/server/internal/models"
)

// NegativeSource produces the reference vectors of the fraudulent class.
type NegativeSource interface {
	Negatives(legitimate []models.FeatureVector) []models.FeatureVector
}

// MinNegatives is the smallest real negative set used as-is; anything smaller
// is replaced by synthetic vectors.
const MinNegatives = 3

// CorpusSource returns a fixed set of vectors, typically extracted from the
// built-in fraudulent corpus.
type CorpusSource struct {
	Vectors []models.FeatureVector
}

func (c CorpusSource) Negatives([]models.FeatureVector) []models.FeatureVector {
	out := make([]models.FeatureVector, len(c.Vectors))
	copy(out, c.Vectors)
	return out
}

// SyntheticSource perturbs the mean of the legitimate set with independent
// uniform relative noise per feature.
type SyntheticSource struct {
	// Count is the minimum number of vectors generated.
	Count int
	// Noise is the relative amplitude, e.g. 0.3 for ±30%.
	Noise float64
	// Seed makes the generated set reproducible.
	Seed int64
}

const (
	defaultSyntheticCount = 5
	defaultSyntheticNoise = 0.3
	defaultSyntheticSeed  = 42
)

// NewSyntheticSource returns a SyntheticSource with the stock settings.
func NewSyntheticSource() SyntheticSource {
	return SyntheticSource{Count: defaultSyntheticCount, Noise: defaultSyntheticNoise, Seed: defaultSyntheticSeed}
}

func (s SyntheticSource) Negatives(legitimate []models.FeatureVector) []models.FeatureVector {
	if len(legitimate) == 0 {
		return nil
	}
	count := s.Count
	if count < defaultSyntheticCount {
		count = defaultSyntheticCount
	}
	if len(legitimate) > count {
		count = len(legitimate)
	}
	noise := s.Noise
	if noise <= 0 {
		noise = defaultSyntheticNoise
	}

	means := make([]float64, models.FeatureCount)
	column := make([]float64, len(legitimate))
	for f := range means {
		for i, fv := range legitimate {
			column[i] = fv.Values()[f]
		}
		means[f] = stat.Mean(column, nil)
	}

	rng := rand.New(rand.NewSource(s.Seed))
	out := make([]models.FeatureVector, 0, count)
	values := make([]float64, models.FeatureCount)
	for n := 0; n < count; n++ {
		for f, mu := range means {
			amplitude := math.Max(noise*math.Abs(mu), 1)
			values[f] = mu + (rng.Float64()*2-1)*amplitude
		}
		fv, _ := models.FeatureVectorFromValues(values)
		out = append(out, fv)
	}
	return out
}

// FallbackSource uses Primary while it yields at least MinNegatives vectors
// and Fallback otherwise.
type FallbackSource struct {
	Primary  NegativeSource
	Fallback NegativeSource
}

func (f FallbackSource) Negatives(legitimate []models.FeatureVector) []models.FeatureVector {
	if f.Primary != nil {
		if neg := f.Primary.Negatives(legitimate); len(neg) >= MinNegatives {
			return neg
		}
	}
	if f.Fallback == nil {
		return nil
	}
	return f.Fallback.Negatives(legitimate)
}
