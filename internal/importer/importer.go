// Package importer loads restaurant menu seeds into the nutrition store.
//
// A seed is a YAML document:
//
//	brand: Sukiya
//	translate: true
//	items:
//	  - name: 牛丼
//	    size: 並盛
//	    calories: 733kcal
//	    protein: 22.9g
//	    fat: 25g
//	    carbs: 104.1g
//
// Numbers may carry units; anything unparsable becomes 0.
package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ai-calories/internal/models"
)

// Seed is one menu file.
type Seed struct {
	Brand     string     `yaml:"brand"`
	Translate bool       `yaml:"translate"`
	Items     []SeedItem `yaml:"items"`
}

type SeedItem struct {
	Name     string          `yaml:"name"`
	Size     string          `yaml:"size,omitempty"`
	Calories models.Quantity `yaml:"calories"`
	Protein  models.Quantity `yaml:"protein"`
	Fat      models.Quantity `yaml:"fat"`
	Carbs    models.Quantity `yaml:"carbs"`
}

// Writer is the part of the store an import needs.
type Writer interface {
	Put(ctx context.Context, rec models.NutritionRecord) error
}

// Translator renders menu text in English.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Report summarizes one import run.
type Report struct {
	Imported int
	Skipped  int
}

// Importer writes seeds to a store. A nil translator leaves names as they
// are even when a seed asks for translation.
type Importer struct {
	store      Writer
	translator Translator
}

func New(store Writer, translator Translator) *Importer {
	return &Importer{store: store, translator: translator}
}

// ParseSeed decodes a seed document.
func ParseSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	return &seed, nil
}

// ImportFile reads and imports the seed at path.
func (im *Importer) ImportFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to open seed: %w", err)
	}
	defer f.Close()

	seed, err := ParseSeed(f)
	if err != nil {
		return Report{}, err
	}
	return im.Import(ctx, seed)
}

// Import stores every item of seed as a manual record. Items without a
// name are skipped. The first store error aborts the run.
func (im *Importer) Import(ctx context.Context, seed *Seed) (Report, error) {
	var report Report
	var cache *TranslationCache
	if seed.Translate && im.translator != nil {
		cache = NewTranslationCache(im.translator, nil)
	}

	for _, item := range seed.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			report.Skipped++
			continue
		}
		size := strings.TrimSpace(item.Size)
		if cache != nil {
			name = cache.Lookup(ctx, name)
			size = cache.Lookup(ctx, size)
		}

		rec := models.NutritionRecord{
			Name:     FullName(seed.Brand, name, size),
			Calories: item.Calories.Float(),
			Protein:  item.Protein.Float(),
			Fat:      item.Fat.Float(),
			Carbs:    item.Carbs.Float(),
			Source:   models.SourceManual,
		}
		if err := im.store.Put(ctx, rec); err != nil {
			return report, fmt.Errorf("failed to import %q: %w", rec.Name, err)
		}
		report.Imported++
	}

	log.Printf("Importer: imported %d items for %q (%d skipped)", report.Imported, seed.Brand, report.Skipped)
	return report, nil
}

// FullName prefixes name with brand unless it already mentions it, and
// appends size in parentheses.
func FullName(brand, name, size string) string {
	brand = strings.TrimSpace(brand)
	full := strings.TrimSpace(name)
	if brand != "" && !strings.Contains(strings.ToLower(full), strings.ToLower(brandStem(brand))) {
		full = brand + " " + full
	}
	if size = strings.TrimSpace(size); size != "" {
		full = fmt.Sprintf("%s (%s)", full, size)
	}
	return full
}

// brandStem drops a trailing possessive so "McDonald's" matches names that
// say "mcdonald".
func brandStem(brand string) string {
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(strings.ToLower(brand), suffix) {
			return brand[:len(brand)-len(suffix)]
		}
	}
	return brand
}
