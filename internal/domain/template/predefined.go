package template

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/trackerext/article-templates/backend/internal/shared/types"
)

//go:embed seeds.yaml
var seedsYAML []byte

type seedFile struct {
	Templates []struct {
		ID      string `yaml:"id"`
		Name    string `yaml:"name"`
		Summary string `yaml:"summary"`
		Content string `yaml:"content"`
	} `yaml:"templates"`
}

// predefined is the immutable built-in seed set. Copies placed into the
// shared collection get their own lifecycle fields; the originals are
// never referenced after copy.
var predefined = loadSeeds()

func loadSeeds() []types.StoredTemplate {
	var f seedFile
	if err := yaml.Unmarshal(seedsYAML, &f); err != nil {
		panic(fmt.Sprintf("embedded seed templates are malformed: %v", err))
	}

	templates := make([]types.StoredTemplate, 0, len(f.Templates))
	for _, s := range f.Templates {
		templates = append(templates, types.StoredTemplate{
			ID:      s.ID,
			Name:    s.Name,
			Summary: s.Summary,
			Content: s.Content,
		})
	}
	return templates
}

// Predefined returns a copy of the built-in seed set.
func Predefined() []types.StoredTemplate {
	out := make([]types.StoredTemplate, len(predefined))
	copy(out, predefined)
	return out
}
