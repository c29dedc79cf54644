package sheets

import (
	"regexp"
	"strings"

	"github.com/iliyamo/wedding-seating/internal/model"
)

// Classifier decides which columns hold the guest fields.  The
// reconciliation core only depends on the resulting model.ColumnMap, so a
// fixed map can be plugged in for tests or for sheets with a known shape.
type Classifier interface {
	Classify(headers []string, rows [][]string) model.ColumnMap
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(headers []string, rows [][]string) model.ColumnMap

func (f ClassifierFunc) Classify(headers []string, rows [][]string) model.ColumnMap {
	return f(headers, rows)
}

// FixedColumns returns a Classifier that always answers m.
func FixedColumns(m model.ColumnMap) Classifier {
	return ClassifierFunc(func([]string, [][]string) model.ColumnMap { return m })
}

var (
	nameHeaderRe      = regexp.MustCompile(`(?i)(^|\s)nombre(\s|$)`)
	plusHeaderRe      = regexp.MustCompile(`\+1`)
	tableHeaderRe     = regexp.MustCompile(`(?i)^mesa$`)
	groupHeaderRe     = regexp.MustCompile(`(?i)^(grupo|group)$`)
	attendingHeaderRe = regexp.MustCompile(`(?i)^(asiste|asistencia|confirmado|confirma|attending)`)
)

// HeuristicClassifier is a best-effort classifier.  It first looks for the
// usual header labels ("Nombre", "Con +1", "Mesa") and, when any of them is
// missing, scores every column by its content.
type HeuristicClassifier struct{}

func (HeuristicClassifier) Classify(headers []string, rows [][]string) model.ColumnMap {
	m := model.ColumnMap{
		Name:      findHeader(headers, nameHeaderRe),
		PlusOne:   findHeader(headers, plusHeaderRe),
		Table:     findHeader(headers, tableHeaderRe),
		Group:     findHeader(headers, groupHeaderRe),
		Attending: findHeader(headers, attendingHeaderRe),
	}
	if m.Complete() {
		return m
	}

	width := len(headers)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	m.Name = bestColumn(rows, width, func(v string) bool {
		return len([]rune(strings.TrimSpace(v))) >= 4
	})
	m.PlusOne = bestColumn(rows, width, func(v string) bool {
		s := model.Normalize(v)
		return s == "si" || s == "no"
	})
	m.Table = bestColumn(rows, width, func(v string) bool {
		_, ok := model.ParseTableRef(v)
		return ok
	})
	return m
}

func findHeader(headers []string, re *regexp.Regexp) int {
	for i, h := range headers {
		if re.MatchString(strings.TrimSpace(h)) {
			return i
		}
	}
	return -1
}

// bestColumn returns the first column with the highest number of matching
// cells, or -1 when there are no columns.
func bestColumn(rows [][]string, width int, match func(string) bool) int {
	best, bestScore := -1, -1
	for col := 0; col < width; col++ {
		score := 0
		for _, r := range rows {
			if col < len(r) && match(r[col]) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = col, score
		}
	}
	return best
}
