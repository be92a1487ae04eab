package classifier

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_lists.yaml
var defaultLists []byte

// Lists holds the operational data the classifier matches against. The lists
// are open sets maintained outside the code and injected at construction.
type Lists struct {
	PremiumOfficial  []string `yaml:"premiumOfficial"`
	Official         []string `yaml:"official"`
	SNS              []string `yaml:"sns"`
	Suspicious       []string `yaml:"suspicious"`
	ImageShare       []string `yaml:"imageShare"`
	UnofficialViewer []string `yaml:"unofficialViewer"`
	ArtSite          []string `yaml:"artSite"`
	Forum            []string `yaml:"forum"`

	// TextSearchPatterns flag URLs that look like a text search results page.
	TextSearchPatterns []string `yaml:"textSearchPatterns"`
	// IllegalKeywords are handed to the judgment model as hints.
	IllegalKeywords []string `yaml:"illegalKeywords"`
}

// ParseLists decodes lists from YAML.
func ParseLists(b []byte) (Lists, error) {
	var l Lists
	if err := yaml.Unmarshal(b, &l); err != nil {
		return Lists{}, fmt.Errorf("could not decode domain lists: %w", err)
	}

	return l, nil
}

// DefaultLists returns the lists bundled with the binary.
func DefaultLists() Lists {
	l, err := ParseLists(defaultLists)
	if err != nil {
		panic(err)
	}

	return l
}

// LoadLists reads lists from a YAML file. An empty path yields DefaultLists.
func LoadLists(path string) (Lists, error) {
	if path == "" {
		return DefaultLists(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Lists{}, fmt.Errorf("could not read domain lists: %w", err)
	}

	return ParseLists(b)
}
