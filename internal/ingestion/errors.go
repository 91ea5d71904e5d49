package ingestion

import (
	"fmt"
	"sort"

	"github.com/ThiagoRGoveia/plan-fact/internal/models"
)

// maxReportedErrors bounds how many row errors an import keeps; past that the
// sheet is most likely malformed and only the total is counted.
const maxReportedErrors = 100

// ImportError reports every row that kept an import from committing.
type ImportError struct {
	FileName string
	Errors   []models.RowError
	// Total counts all failures, including those beyond the reported ones.
	Total int
}

func (e *ImportError) Error() string {
	msg := fmt.Sprintf("import of %s failed: %d invalid rows", e.FileName, e.Total)
	if len(e.Errors) > 0 {
		msg += fmt.Sprintf(", first %s", e.Errors[0].Error())
	}
	return msg
}

type errorCollector struct {
	errs  []models.RowError
	total int
}

func (c *errorCollector) add(errs ...models.RowError) {
	for _, e := range errs {
		c.total++
		if len(c.errs) < maxReportedErrors {
			c.errs = append(c.errs, e)
		}
	}
}

func (c *errorCollector) empty() bool {
	return c.total == 0
}

// sorted returns the collected errors ordered by sheet row.
func (c *errorCollector) sorted() []models.RowError {
	sort.SliceStable(c.errs, func(i, j int) bool {
		return c.errs[i].Row < c.errs[j].Row
	})
	return c.errs
}
