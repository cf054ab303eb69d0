// Package extract pulls structured facts and skills out of unstructured text.
package extract

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the fixed phrase sets used by the extractors. Loaded once
// at process start and treated as read-only afterwards; safe for concurrent
// use by multiple analyses.
type Vocabulary struct {
	Skills   []string `yaml:"skills"`
	Degrees  []string `yaml:"degrees"`
	Branches []string `yaml:"branches"`
}

// DefaultVocabulary returns the built-in phrase sets.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Skills: []string{
			"python", "java", "c++", "sql", "react", "node.js", "django", "flask",
			"html", "css", "tensorflow", "keras", "pytorch", "mongodb", "git",
			"docker", "aws", "azure", "linux", "communication", "leadership",
			"problem solving", "teamwork", "javascript", "typescript", "next.js",
			"vue", "angular", "express", "fastapi", "mysql", "postgres", "firebase",
			"go", "kubernetes", "terraform", "redis", "kafka", "grpc",
		},
		Degrees:  []string{"btech", "mtech", "b.e", "m.e", "bachelor", "master", "phd"},
		Branches: []string{"computer science", "information technology", "mechanical", "electrical", "electronics", "civil"},
	}
}

// LoadVocabulary reads phrase sets from a YAML file. An empty path yields the
// built-in defaults; lists omitted from the file fall back to them too.
func LoadVocabulary(path string) (Vocabulary, error) {
	if path == "" {
		v := DefaultVocabulary()
		v.normalize()
		return v, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("op=vocab.load: %w", err)
	}
	var v Vocabulary
	if err := yaml.Unmarshal(b, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("op=vocab.parse: %w", err)
	}
	def := DefaultVocabulary()
	if len(v.Skills) == 0 {
		v.Skills = def.Skills
	}
	if len(v.Degrees) == 0 {
		v.Degrees = def.Degrees
	}
	if len(v.Branches) == 0 {
		v.Branches = def.Branches
	}
	v.normalize()
	return v, nil
}

// normalize lowercases and deduplicates all phrase lists in place.
func (v *Vocabulary) normalize() {
	v.Skills = normalizePhrases(v.Skills)
	v.Degrees = normalizePhrases(v.Degrees)
	v.Branches = normalizePhrases(v.Branches)
}

func normalizePhrases(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
