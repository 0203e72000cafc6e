package plan

import (
	"context"
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlPlan is the on-disk representation of a plan.
type yamlPlan struct {
	ID               string           `yaml:"id"`
	Name             string           `yaml:"name"`
	Price            int64            `yaml:"price"`
	Currency         string           `yaml:"currency"`
	DailyRate        int64            `yaml:"daily_rate"`
	BaseDurationDays int              `yaml:"base_duration_days"`
	Cadence          string           `yaml:"cadence"`
	TrialDays        int              `yaml:"trial_days"`
	Limits           map[string]int64 `yaml:"limits"`
}

type yamlCatalog struct {
	Plans []yamlPlan `yaml:"plans"`
}

// fileSource loads the plan catalog from a YAML file. The file is re-read on
// every Load so operators can tweak limits without a rebuild.
type fileSource struct {
	path string
}

// NewFileSource returns a Source backed by a YAML catalog file.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Load(ctx context.Context) (map[ID]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var doc yamlCatalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[ID]Plan, len(doc.Plans))
	for _, yp := range doc.Plans {
		id := Normalize(ID(yp.ID))

		limits := make(map[Feature]int64, len(yp.Limits))
		for f, v := range yp.Limits {
			limits[Feature(f)] = v
		}

		plans[id] = Plan{
			ID:               id,
			Name:             yp.Name,
			Price:            Money{Amount: yp.Price, Currency: yp.Currency},
			DailyRate:        yp.DailyRate,
			BaseDurationDays: yp.BaseDurationDays,
			Cadence:          Cadence(yp.Cadence),
			TrialDays:        yp.TrialDays,
			Limits:           limits,
		}
	}
	return plans, nil
}
