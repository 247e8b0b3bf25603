package etl

import (
	"strings"

	"github.com/BartekS5/csvbatch/pkg/models"
)

// DefaultExcludedTitle drops every person whose title mentions it.
const DefaultExcludedTitle = "Professor"

// PersonProcessor projects PersonCSV rows onto PersonDB, filtering by title.
type PersonProcessor struct {
	// ExcludedTitle is matched as a case-sensitive substring of Title.
	ExcludedTitle string
}

func NewPersonProcessor() *PersonProcessor {
	return &PersonProcessor{ExcludedTitle: DefaultExcludedTitle}
}

func (p *PersonProcessor) Process(in models.PersonCSV) (models.PersonDB, bool) {
	if p.ExcludedTitle != "" && strings.Contains(in.Title, p.ExcludedTitle) {
		return models.PersonDB{}, false
	}
	return models.PersonDB{FirstName: in.First, LastName: in.Last}, true
}
