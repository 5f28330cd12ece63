// Package tagger assigns clinical-domain relevance tags to variables by
// matching their names and dictionary descriptions against a keyword
// taxonomy, and infers each column's type from its values.
package tagger

import (
	"sort"
	"strings"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
)

// Tag labels of the built-in taxonomy.
const (
	TagMotor         = "motor"
	TagNonMotor      = "non-motor"
	TagCognitive     = "cognitive"
	TagDemographic   = "demographic"
	TagClinicalScale = "clinical-scale"
	TagImaging       = "imaging"
	TagGenetic       = "genetic"
	TagOther         = "other"
)

// Taxonomy maps a category tag to the substrings that assign it. The exact
// term lists are domain judgment calls, so they stay data: callers can
// replace or extend them from configuration.
type Taxonomy map[string][]string

// DefaultTaxonomy returns the built-in Parkinson's research keyword lists.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		TagMotor: {
			"motor", "tremor", "rigidity", "bradykinesia", "gait", "balance",
			"freezing", "dyskinesia", "postural", "pigd",
		},
		TagNonMotor: {
			"depression", "anxiety", "sleep", "olfactory", "constipation",
			"rbd", "fatigue", "autonomic",
		},
		TagCognitive: {
			"cognitive", "cognition", "memory", "attention", "executive",
		},
		// "age" is deliberately absent: as a substring it hits "stage",
		// "percentage" and most duration variables.
		TagDemographic: {
			"gender", "sex", "race", "ethnic", "education", "handed",
		},
		TagClinicalScale: {
			"updrs", "hoehn", "yahr", "moca", "mmse", "schwab", "england", "adl",
		},
		TagImaging: {
			"mri", "datscan", "spect", "pet", "imaging", "scan",
		},
		TagGenetic: {
			"gene", "genetic", "lrrk2", "gba", "snca", "apoe", "mutation",
		},
	}
}

// miscKeywords flag a dictionary category as miscellaneous; only such
// variables receive the "other" tag.
var miscKeywords = []string{"misc", "other"}

// Tagger scans variable search text for taxonomy keywords.
type Tagger struct {
	taxonomy Taxonomy
	order    []string
}

// New creates a tagger. A nil taxonomy falls back to the defaults.
func New(taxonomy Taxonomy) *Tagger {
	if len(taxonomy) == 0 {
		taxonomy = DefaultTaxonomy()
	}

	order := make([]string, 0, len(taxonomy))
	for tag := range taxonomy {
		order = append(order, tag)
	}
	sort.Strings(order)

	return &Tagger{taxonomy: taxonomy, order: order}
}

// Tags returns the category tags whose keywords appear in the variable's
// name or description. Categories are not mutually exclusive. A variable
// with no keyword hit gets an empty set, not "other": "other" is reserved
// for variables whose dictionary entry is explicitly miscellaneous.
func (t *Tagger) Tags(name string, entry *model.DictionaryEntry) []string {
	search := strings.ToLower(name)
	if entry != nil {
		search += " " + strings.ToLower(entry.Description)
	}

	tags := []string{}
	for _, tag := range t.order {
		if containsAny(search, t.taxonomy[tag]) {
			tags = append(tags, tag)
		}
	}

	if entry != nil && containsAny(strings.ToLower(entry.Category), miscKeywords) {
		if !contains(tags, TagOther) {
			tags = append(tags, TagOther)
			sort.Strings(tags)
		}
	}

	return tags
}

// BuildMetadata produces exactly one VariableMetadata per main-table column,
// even when no dictionary entry or tag applies.
func (t *Tagger) BuildMetadata(table *model.Table, merge model.MergeResult, cfg TypeConfig) map[string]model.VariableMetadata {
	out := make(map[string]model.VariableMetadata, len(table.Columns))

	for _, col := range table.Columns {
		meta := model.VariableMetadata{
			Name:         col,
			Tags:         []string{},
			InferredType: InferType(table.Column(col), cfg),
		}
		if entry, ok := merge.Entries[col]; ok {
			e := entry
			meta.Entry = &e
		}
		meta.Tags = t.Tags(col, meta.Entry)
		out[col] = meta
	}

	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func contains(items []string, want string) bool {
	for _, it := range items {
		if it == want {
			return true
		}
	}
	return false
}
