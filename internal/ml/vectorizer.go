package ml

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFitted is returned when a model is used before Fit
	ErrNotFitted = errors.New("model is not fitted")
	// ErrNoDocuments is returned when a vectorizer gets an empty corpus
	ErrNoDocuments = errors.New("no documents")
	// ErrEmptyVocabulary is returned when no document contains a usable token
	ErrEmptyVocabulary = errors.New("empty vocabulary")
)

// tokens of two or more letters, digits or underscores in any script
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases a text and splits it into tokens
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// CountVectorizer turns documents into term count vectors
type CountVectorizer struct {
	vocabulary map[string]int
	terms      []string
}

// NewCountVectorizer creates an unfitted vectorizer
func NewCountVectorizer() *CountVectorizer {
	return &CountVectorizer{}
}

// Fit learns the vocabulary of the corpus. Terms are indexed in alphabetical order.
func (v *CountVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}

	seen := make(map[string]struct{})
	for _, doc := range docs {
		for _, tok := range Tokenize(doc) {
			seen[tok] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
	}
	return nil
}

// Transform counts known terms of each document. Unknown terms are ignored.
func (v *CountVectorizer) Transform(docs []string) (*mat.Dense, error) {
	if v.vocabulary == nil {
		return nil, ErrNotFitted
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	out := mat.NewDense(len(docs), len(v.terms), nil)
	for i, doc := range docs {
		for _, tok := range Tokenize(doc) {
			if j, ok := v.vocabulary[tok]; ok {
				out.Set(i, j, out.At(i, j)+1)
			}
		}
	}
	return out, nil
}

// FitTransform fits the vocabulary and transforms the same corpus
func (v *CountVectorizer) FitTransform(docs []string) (*mat.Dense, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

// VocabularySize returns the number of known terms
func (v *CountVectorizer) VocabularySize() int {
	return len(v.terms)
}

// Terms returns the vocabulary in index order
func (v *CountVectorizer) Terms() []string {
	return append([]string(nil), v.terms...)
}

// TfidfVectorizer weights term counts by smoothed inverse document frequency
// and L2-normalizes every row.
type TfidfVectorizer struct {
	counts *CountVectorizer
	idf    []float64
}

// NewTfidfVectorizer creates an unfitted TF-IDF vectorizer
func NewTfidfVectorizer() *TfidfVectorizer {
	return &TfidfVectorizer{counts: NewCountVectorizer()}
}

// Fit learns vocabulary and idf weights
func (v *TfidfVectorizer) Fit(docs []string) error {
	counts, err := v.counts.FitTransform(docs)
	if err != nil {
		return err
	}

	rows, cols := counts.Dims()
	v.idf = make([]float64, cols)
	for j := 0; j < cols; j++ {
		df := 0
		for i := 0; i < rows; i++ {
			if counts.At(i, j) > 0 {
				df++
			}
		}
		// idf = ln((1+n)/(1+df)) + 1
		v.idf[j] = math.Log(float64(1+rows)/float64(1+df)) + 1
	}
	return nil
}

// Transform returns L2-normalized TF-IDF rows
func (v *TfidfVectorizer) Transform(docs []string) (*mat.Dense, error) {
	if v.idf == nil {
		return nil, ErrNotFitted
	}
	counts, err := v.counts.Transform(docs)
	if err != nil {
		return nil, err
	}

	rows, cols := counts.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			counts.Set(i, j, counts.At(i, j)*v.idf[j])
		}
		row := counts.RawRowView(i)
		if norm := mat.Norm(mat.NewVecDense(cols, row), 2); norm > 0 {
			for j := range row {
				row[j] /= norm
			}
		}
	}
	return counts, nil
}

// FitTransform fits and transforms the same corpus
func (v *TfidfVectorizer) FitTransform(docs []string) (*mat.Dense, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.Transform(docs)
}

// VocabularySize returns the number of known terms
func (v *TfidfVectorizer) VocabularySize() int {
	return v.counts.VocabularySize()
}
