package scoring

import (
	"fmt"
	"strings"

	"github.com/Aliserag/Dometrics-sub001/internal/models"
)

// rarity scores lexical and TLD scarcity; higher is rarer. Four weighted
// signals summed and clamped.
func (e *Engine) rarity(d *models.DomainDescription) (int, []models.ScoreFactor) {
	w := e.weights.Rarity
	name := strings.ToLower(d.Name)
	tld := strings.ToLower(d.TLD)
	factors := make([]models.ScoreFactor, 0, 4)
	var sum float64

	length := lengthRarity(float64(len(name)), w)
	c := length * w.Length
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "name_length",
		Description:  fmt.Sprintf("%d-char name", len(name)),
		Value:        length,
		Weight:       w.Length,
		Contribution: c,
	})

	word, wordKind := e.wordMatch(name, w)
	c = word * w.WordMatch
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "word_match",
		Description:  wordKind + " name",
		Value:        word,
		Weight:       w.WordMatch,
		Contribution: c,
	})

	bucket := e.tldBucketFor(tld)
	scarcity := e.bucketScore[bucket]
	c = scarcity * w.TLDScarcity
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "tld_scarcity",
		Description:  fmt.Sprintf(".%s is a %s TLD", tld, bucket),
		Value:        scarcity,
		Weight:       w.TLDScarcity,
		Contribution: c,
	})

	offers := nonNegative(d.OfferCount)
	demand := clamp(float64(offers)*w.DemandPerOffer, 0, 100)
	c = demand * w.Demand
	sum += c
	factors = append(factors, models.ScoreFactor{
		Name:         "historic_demand",
		Description:  fmt.Sprintf("%d offers received", offers),
		Value:        demand,
		Weight:       w.Demand,
		Contribution: c,
	})

	return clampScore(sum), topFactors(factors, maxRarityFactors)
}

// lengthRarity interpolates linearly between the max-rarity threshold
// (short names score 100) and the min-rarity threshold (long names score 0).
func lengthRarity(length float64, w RarityWeights) float64 {
	switch {
	case length <= w.MaxRarityLength:
		return 100
	case length >= w.MinRarityLength:
		return 0
	default:
		return 100 * (w.MinRarityLength - length) / (w.MinRarityLength - w.MaxRarityLength)
	}
}

// wordMatch classifies the label as a dictionary word, a brandable coinage
// (pronounceable short name), or a random string.
func (e *Engine) wordMatch(name string, w RarityWeights) (float64, string) {
	if _, ok := e.dictionary[name]; ok {
		return w.DictionaryValue, "dictionary"
	}
	if isBrandable(name, w.BrandableMinLen, w.BrandableMaxLen) {
		return w.BrandableValue, "brandable"
	}
	return 0, "random"
}

func isBrandable(name string, minLen, maxLen int) bool {
	if len(name) < minLen || len(name) > maxLen {
		return false
	}
	var vowels, consonants int
	for _, r := range name {
		switch {
		case strings.ContainsRune("aeiou", r):
			vowels++
		case r >= 'a' && r <= 'z':
			consonants++
		}
	}
	return vowels > 0 && consonants > 0
}

func (e *Engine) tldBucketFor(tld string) string {
	if bucket, ok := e.tldBucket[tld]; ok {
		if _, scored := e.bucketScore[bucket]; scored {
			return bucket
		}
	}
	return e.weights.Tables.DefaultBucket
}
