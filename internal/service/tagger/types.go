package tagger

import "github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"

// TypeConfig holds the thresholds of column type inference.
type TypeConfig struct {
	// A column is categorical when its distinct non-missing values number
	// at most the larger of SmallCardinalityMax and SmallCardinalityRatio
	// times the row count, so small tables still qualify.
	SmallCardinalityMax   int
	SmallCardinalityRatio float64
}

// DefaultTypeConfig returns the built-in inference thresholds.
func DefaultTypeConfig() TypeConfig {
	return TypeConfig{
		SmallCardinalityMax:   10,
		SmallCardinalityRatio: 0.05,
	}
}

// InferType infers a column's type from its cells: numeric when every
// non-missing value is a number, otherwise categorical on small
// cardinality, date when every non-missing value parses as a date, else
// text. A fully missing column is text.
func InferType(cells []model.Cell, cfg TypeConfig) model.VarType {
	nonMissing := 0
	numbers := 0
	dates := 0
	distinct := make(map[string]struct{})

	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		nonMissing++
		distinct[c.Raw] = struct{}{}
		switch c.Kind {
		case model.CellNumber:
			numbers++
		case model.CellDate:
			dates++
		}
	}

	if nonMissing == 0 {
		return model.TypeText
	}
	if numbers == nonMissing {
		return model.TypeNumeric
	}

	limit := float64(cfg.SmallCardinalityMax)
	if byRatio := cfg.SmallCardinalityRatio * float64(len(cells)); byRatio > limit {
		limit = byRatio
	}
	if float64(len(distinct)) <= limit {
		return model.TypeCategorical
	}

	if dates == nonMissing {
		return model.TypeDate
	}
	return model.TypeText
}
